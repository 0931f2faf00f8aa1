package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotelhive/hotel-booking-backend/internal/pkg/apperror"
)

type Repository interface {
	Create(ctx context.Context, rt *RoomType) error
	GetByID(ctx context.Context, id string) (*RoomType, error)
	ListByHotel(ctx context.Context, hotelID string) ([]*RoomType, error)
	Update(ctx context.Context, rt *RoomType) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var roomTypeColumns = []string{
	"id", "hotel_id", "name", "type", "description",
	"max_occupancy", "bed_configuration", "size_sqm",
	"amenities", "images", "base_price", "total_inventory",
	"created_at", "updated_at",
}

func (r *pgxRepository) Create(ctx context.Context, rt *RoomType) error {
	occupancy, err := json.Marshal(rt.MaxOccupancy)
	if err != nil {
		return fmt.Errorf("marshal max occupancy failed: %w", err)
	}
	beds, err := json.Marshal(rt.BedConfiguration)
	if err != nil {
		return fmt.Errorf("marshal bed configuration failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.room_types").
		Columns(
			"hotel_id", "name", "type", "description",
			"max_occupancy", "bed_configuration", "size_sqm",
			"amenities", "images", "base_price", "total_inventory",
		).
		Values(
			rt.HotelID, rt.Name, rt.Type, rt.Description,
			occupancy, beds, rt.SizeSqm,
			rt.Amenities, rt.Images, rt.BasePrice, rt.TotalInventory,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create room type query failed: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create room type failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*RoomType, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(roomTypeColumns...).
		From("public.room_types").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get room type query failed: %w", err)
	}

	rt, err := scanRoomType(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rt, nil
}

func (r *pgxRepository) ListByHotel(ctx context.Context, hotelID string) ([]*RoomType, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(roomTypeColumns...).
		From("public.room_types").
		Where(squirrel.Eq{"hotel_id": hotelID}).
		OrderBy("base_price ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list room types query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list room types failed: %w", err)
	}
	defer rows.Close()

	var result []*RoomType
	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rt)
	}

	return result, nil
}

func (r *pgxRepository) Update(ctx context.Context, rt *RoomType) error {
	occupancy, err := json.Marshal(rt.MaxOccupancy)
	if err != nil {
		return fmt.Errorf("marshal max occupancy failed: %w", err)
	}
	beds, err := json.Marshal(rt.BedConfiguration)
	if err != nil {
		return fmt.Errorf("marshal bed configuration failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.room_types").
		Set("name", rt.Name).
		Set("type", rt.Type).
		Set("description", rt.Description).
		Set("max_occupancy", occupancy).
		Set("bed_configuration", beds).
		Set("size_sqm", rt.SizeSqm).
		Set("amenities", rt.Amenities).
		Set("images", rt.Images).
		Set("base_price", rt.BasePrice).
		Set("total_inventory", rt.TotalInventory).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": rt.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room type query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update room type failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.room_types").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete room type query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete room type failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanRoomType reads one row. JSONB columns are parsed eagerly: a record whose
// occupancy or bed configuration cannot be decoded is reported as malformed
// instead of silently defaulting.
func scanRoomType(row pgx.Row) (*RoomType, error) {
	var rt RoomType
	var occupancy, beds []byte

	err := row.Scan(
		&rt.ID, &rt.HotelID, &rt.Name, &rt.Type, &rt.Description,
		&occupancy, &beds, &rt.SizeSqm,
		&rt.Amenities, &rt.Images, &rt.BasePrice, &rt.TotalInventory,
		&rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan room type failed: %w", err)
	}

	if err := json.Unmarshal(occupancy, &rt.MaxOccupancy); err != nil {
		return nil, apperror.Wrap(fmt.Errorf("room type %s: bad max_occupancy: %w", rt.ID, err),
			ErrMalformedRecord.Code, ErrMalformedRecord.Message)
	}
	if len(beds) > 0 {
		if err := json.Unmarshal(beds, &rt.BedConfiguration); err != nil {
			return nil, apperror.Wrap(fmt.Errorf("room type %s: bad bed_configuration: %w", rt.ID, err),
				ErrMalformedRecord.Code, ErrMalformedRecord.Message)
		}
	}

	return &rt, nil
}
