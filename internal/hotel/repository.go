package hotel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotelhive/hotel-booking-backend/internal/pkg/apperror"
)

type Repository interface {
	Create(ctx context.Context, h *Hotel) error
	GetByID(ctx context.Context, id string) (*Hotel, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]*Hotel, int, error)
	SearchByEmbedding(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*Hotel, []float64, error)
	ListMissingEmbedding(ctx context.Context, limit int) ([]*Hotel, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
	AppendImage(ctx context.Context, id, url string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var hotelColumns = []string{
	"id", "name", "description", "star_rating",
	"location", "amenities", "images",
	"check_in_time", "check_out_time",
	"contact_info", "policies",
	"created_at", "updated_at",
}

func (r *pgxRepository) Create(ctx context.Context, h *Hotel) error {
	location, err := json.Marshal(h.Location)
	if err != nil {
		return fmt.Errorf("marshal location failed: %w", err)
	}
	contact, err := json.Marshal(h.ContactInfo)
	if err != nil {
		return fmt.Errorf("marshal contact info failed: %w", err)
	}
	policies, err := json.Marshal(h.Policies)
	if err != nil {
		return fmt.Errorf("marshal policies failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.hotels").
		Columns(
			"name", "description", "star_rating",
			"location", "amenities", "images",
			"check_in_time", "check_out_time",
			"contact_info", "policies",
		).
		Values(
			h.Name, h.Description, h.StarRating,
			location, h.Amenities, h.Images,
			h.CheckInTime, h.CheckOutTime,
			contact, policies,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create hotel query failed: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create hotel failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Hotel, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(hotelColumns...).
		From("public.hotels").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get hotel query failed: %w", err)
	}

	h, err := scanHotel(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

// Search runs the cheap SQL candidate filter. Availability and price
// filtering happen later in the enhancement pass, so the total returned
// here counts keyword matches, not bookable hotels.
func (r *pgxRepository) Search(ctx context.Context, criteria SearchCriteria) ([]*Hotel, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	cols := make([]string, len(hotelColumns))
	copy(cols, hotelColumns)
	cols = append(cols, "count(*) OVER() AS total")

	builder := psql.Select(cols...).From("public.hotels")

	if city := strings.TrimSpace(criteria.City); city != "" {
		builder = builder.Where(squirrel.ILike{"location->>'city'": "%" + city + "%"})
	}
	if len(criteria.StarRatings) > 0 {
		builder = builder.Where(squirrel.Eq{"star_rating": criteria.StarRatings})
	}
	if len(criteria.Amenities) > 0 {
		builder = builder.Where(squirrel.Expr("amenities @> ?", criteria.Amenities))
	}

	offset := (criteria.Page - 1) * criteria.PageSize
	builder = builder.
		OrderBy("star_rating DESC", "name ASC").
		Limit(uint64(criteria.PageSize)).
		Offset(uint64(offset))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build search hotels query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search hotels failed: %w", err)
	}
	defer rows.Close()

	var hotels []*Hotel
	var total int
	for rows.Next() {
		h, rowTotal, err := scanHotelWithTotal(rows)
		if err != nil {
			return nil, 0, err
		}
		hotels = append(hotels, h)
		total = rowTotal
	}

	return hotels, total, nil
}

// SearchByEmbedding returns hotels ordered by cosine similarity to the
// query vector, keeping only matches at or above the threshold. Hotels
// without an embedding are never matched.
func (r *pgxRepository) SearchByEmbedding(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*Hotel, []float64, error) {
	query := fmt.Sprintf(`
		SELECT %s, 1 - (embedding <=> $1::vector) AS similarity
		FROM public.hotels
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1::vector) >= $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3`,
		strings.Join(hotelColumns, ", "))

	rows, err := r.pool.Query(ctx, query, vectorLiteral(embedding), threshold, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("semantic hotel search failed: %w", err)
	}
	defer rows.Close()

	var hotels []*Hotel
	var similarities []float64
	for rows.Next() {
		h, sim, err := scanHotelWithSimilarity(rows)
		if err != nil {
			return nil, nil, err
		}
		hotels = append(hotels, h)
		similarities = append(similarities, sim)
	}

	return hotels, similarities, nil
}

func (r *pgxRepository) ListMissingEmbedding(ctx context.Context, limit int) ([]*Hotel, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(hotelColumns...).
		From("public.hotels").
		Where("embedding IS NULL").
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list hotels missing embedding query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list hotels missing embedding failed: %w", err)
	}
	defer rows.Close()

	var hotels []*Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		hotels = append(hotels, h)
	}

	return hotels, nil
}

func (r *pgxRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE public.hotels SET embedding = $1::vector, updated_at = now() WHERE id = $2`,
		vectorLiteral(embedding), id)
	if err != nil {
		return fmt.Errorf("update hotel embedding failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) AppendImage(ctx context.Context, id, url string) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE public.hotels SET images = array_append(images, $1), updated_at = now() WHERE id = $2`,
		url, id)
	if err != nil {
		return fmt.Errorf("append hotel image failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// vectorLiteral renders a float slice in pgvector's text input format.
func vectorLiteral(v []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

func scanHotel(row pgx.Row) (*Hotel, error) {
	return scanHotelInto(row)
}

func scanHotelWithTotal(row pgx.Row) (*Hotel, int, error) {
	var total int
	h, err := scanHotelInto(row, &total)
	return h, total, err
}

func scanHotelWithSimilarity(row pgx.Row) (*Hotel, float64, error) {
	var sim float64
	h, err := scanHotelInto(row, &sim)
	return h, sim, err
}

// scanHotelInto reads one row plus any trailing columns. JSONB columns
// are parsed eagerly so a malformed record fails loudly instead of
// serving a hotel with empty details.
func scanHotelInto(row pgx.Row, extra ...any) (*Hotel, error) {
	var h Hotel
	var location, contact, policies []byte

	dest := []any{
		&h.ID, &h.Name, &h.Description, &h.StarRating,
		&location, &h.Amenities, &h.Images,
		&h.CheckInTime, &h.CheckOutTime,
		&contact, &policies,
		&h.CreatedAt, &h.UpdatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan hotel failed: %w", err)
	}

	if err := json.Unmarshal(location, &h.Location); err != nil {
		return nil, apperror.Wrap(fmt.Errorf("hotel %s: bad location: %w", h.ID, err),
			ErrMalformedRecord.Code, ErrMalformedRecord.Message)
	}
	if len(contact) > 0 {
		if err := json.Unmarshal(contact, &h.ContactInfo); err != nil {
			return nil, apperror.Wrap(fmt.Errorf("hotel %s: bad contact_info: %w", h.ID, err),
				ErrMalformedRecord.Code, ErrMalformedRecord.Message)
		}
	}
	if len(policies) > 0 {
		if err := json.Unmarshal(policies, &h.Policies); err != nil {
			return nil, apperror.Wrap(fmt.Errorf("hotel %s: bad policies: %w", h.ID, err),
				ErrMalformedRecord.Code, ErrMalformedRecord.Message)
		}
	}

	return &h, nil
}
