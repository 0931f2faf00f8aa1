package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*Booking, error)
	ListForUser(ctx context.Context, userID string, filter Filter) ([]*Booking, int, error)

	// Update persists the mutable fields of b, guarded by an optimistic
	// concurrency check on the previously loaded updated_at. A stale
	// timestamp after a successful load means a concurrent writer won.
	Update(ctx context.Context, b *Booking, expectedUpdatedAt time.Time) error

	// SumOverlappingRooms returns the total rooms committed by reservations
	// in non-terminal status (pending, confirmed) whose half-open date range
	// overlaps [checkIn, checkOut).
	SumOverlappingRooms(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) (int, error)

	// WithRoomTypeLock runs fn inside a transaction that holds a per-room-type
	// advisory lock, serializing concurrent check-then-reserve sequences for
	// the same room type. The Repository passed to fn operates on the
	// transaction; the whole unit commits or rolls back atomically.
	WithRoomTypeLock(ctx context.Context, roomTypeID string, fn func(Repository) error) error
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRepository struct {
	db   dbtx
	pool *pgxpool.Pool // nil when the repository is bound to a transaction
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{db: pool, pool: pool}
}

var bookingColumns = []string{
	"id", "user_id", "hotel_id", "room_type_id", "booking_reference",
	"status", "payment_status", "check_in_date", "check_out_date",
	"guests", "guest_info", "rooms_booked", "pricing",
	"payment_method", "payment_transaction_id",
	"booking_date", "cancellation_date", "cancellation_reason", "special_requests",
	"created_at", "updated_at",
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	guests, err := json.Marshal(b.Guests)
	if err != nil {
		return fmt.Errorf("marshal guests failed: %w", err)
	}
	guestInfo, err := json.Marshal(b.GuestInfo)
	if err != nil {
		return fmt.Errorf("marshal guest info failed: %w", err)
	}
	pricing, err := json.Marshal(b.Pricing)
	if err != nil {
		return fmt.Errorf("marshal pricing failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"user_id", "hotel_id", "room_type_id", "booking_reference",
			"status", "payment_status", "check_in_date", "check_out_date",
			"guests", "guest_info", "rooms_booked", "pricing",
			"payment_method", "booking_date", "special_requests",
		).
		Values(
			b.UserID, b.HotelID, b.RoomTypeID, b.BookingReference,
			b.Status, b.PaymentStatus, b.CheckInDate, b.CheckOutDate,
			guests, guestInfo, b.RoomsBooked, pricing,
			b.PaymentMethod, b.BookingDate, b.SpecialRequests,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// Reference collision or a serialization abort are both
			// legitimate retryable conflicts, not internal failures.
			if pgErr.Code == pgerrcode.UniqueViolation || pgErr.Code == pgerrcode.SerializationFailure {
				return ErrConcurrentUpdate
			}
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *pgxRepository) GetByIDForUser(ctx context.Context, id, userID string) (*Booking, error) {
	// Ownership is part of the predicate: a booking owned by someone else is
	// indistinguishable from a missing one.
	return r.getOne(ctx, squirrel.Eq{"id": id, "user_id": userID})
}

func (r *pgxRepository) getOne(ctx context.Context, pred squirrel.Eq) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *pgxRepository) ListForUser(ctx context.Context, userID string, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	columns := append(append([]string{}, bookingColumns...), "count(*) OVER() as total_count")
	query := psql.Select(columns...).
		From("public.bookings").
		Where(squirrel.Eq{"user_id": userID})

	if len(filter.Statuses) > 0 {
		query = query.Where(squirrel.Eq{"status": filter.Statuses})
	}
	if filter.CheckInFrom != nil {
		query = query.Where(squirrel.GtOrEq{"check_in_date": *filter.CheckInFrom})
	}
	if filter.CheckInTo != nil {
		query = query.Where(squirrel.LtOrEq{"check_in_date": *filter.CheckInTo})
	}
	if filter.BookingDateFrom != nil {
		query = query.Where(squirrel.GtOrEq{"booking_date": *filter.BookingDateFrom})
	}
	if filter.BookingDateTo != nil {
		query = query.Where(squirrel.LtOrEq{"booking_date": *filter.BookingDateTo})
	}

	// Sorting; default is check-in date ascending.
	orderBy := sortColumn(filter.SortBy)
	orderDir := "ASC"
	if filter.SortOrder == "desc" {
		orderDir = "DESC"
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		b, n, err := scanBookingWithTotal(rows)
		if err != nil {
			return nil, 0, err
		}
		total = n
		bookings = append(bookings, b)
	}

	return bookings, total, nil
}

func sortColumn(sortBy string) string {
	switch sortBy {
	case "booking_date":
		return "booking_date"
	case "total":
		return "(pricing->>'total')::numeric"
	default:
		return "check_in_date"
	}
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking, expectedUpdatedAt time.Time) error {
	guestInfo, err := json.Marshal(b.GuestInfo)
	if err != nil {
		return fmt.Errorf("marshal guest info failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", b.Status).
		Set("payment_status", b.PaymentStatus).
		Set("guest_info", guestInfo).
		Set("payment_transaction_id", b.PaymentTransactionID).
		Set("cancellation_date", b.CancellationDate).
		Set("cancellation_reason", b.CancellationReason).
		Set("special_requests", b.SpecialRequests).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID, "user_id": b.UserID}).
		Where(squirrel.Eq{"updated_at": expectedUpdatedAt}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The row existed when loaded; a vanished match means the
			// optimistic check lost to a concurrent writer.
			return ErrConcurrentUpdate
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) SumOverlappingRooms(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) (int, error) {
	// Half-open overlap test: existing.check_in < requested.check_out AND
	// existing.check_out > requested.check_in. Back-to-back stays sharing a
	// turnover day do not compete.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("COALESCE(SUM(rooms_booked), 0)").
		From("public.bookings").
		Where(squirrel.Eq{"room_type_id": roomTypeID}).
		Where(squirrel.Eq{"status": []Status{StatusPending, StatusConfirmed}}).
		Where(squirrel.Lt{"check_in_date": checkOut}).
		Where(squirrel.Gt{"check_out_date": checkIn}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build overlap sum query failed: %w", err)
	}

	var committed int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&committed); err != nil {
		return 0, fmt.Errorf("sum overlapping bookings failed: %w", err)
	}
	return committed, nil
}

func (r *pgxRepository) WithRoomTypeLock(ctx context.Context, roomTypeID string, fn func(Repository) error) error {
	if r.pool == nil {
		// Already inside a lock scope; run directly.
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// Transaction-scoped advisory lock keyed on the room type. Released
	// automatically on commit or rollback, so a cancelled request cannot
	// leave a partial reservation behind.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", roomTypeID); err != nil {
		return fmt.Errorf("acquire room type lock failed: %w", err)
	}

	if err := fn(&pgxRepository{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking transaction failed: %w", err)
	}
	return nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	b, _, err := scanBookingFields(row, false)
	return b, err
}

func scanBookingWithTotal(row pgx.Row) (*Booking, int, error) {
	return scanBookingFields(row, true)
}

func scanBookingFields(row pgx.Row, withTotal bool) (*Booking, int, error) {
	var b Booking
	var guests, guestInfo, pricing []byte
	var total int

	dest := []any{
		&b.ID, &b.UserID, &b.HotelID, &b.RoomTypeID, &b.BookingReference,
		&b.Status, &b.PaymentStatus, &b.CheckInDate, &b.CheckOutDate,
		&guests, &guestInfo, &b.RoomsBooked, &pricing,
		&b.PaymentMethod, &b.PaymentTransactionID,
		&b.BookingDate, &b.CancellationDate, &b.CancellationReason, &b.SpecialRequests,
		&b.CreatedAt, &b.UpdatedAt,
	}
	if withTotal {
		dest = append(dest, &total)
	}

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("scan booking failed: %w", err)
	}

	if err := json.Unmarshal(guests, &b.Guests); err != nil {
		return nil, 0, fmt.Errorf("booking %s: bad guests field: %w", b.ID, err)
	}
	if err := json.Unmarshal(guestInfo, &b.GuestInfo); err != nil {
		return nil, 0, fmt.Errorf("booking %s: bad guest_info field: %w", b.ID, err)
	}
	if err := json.Unmarshal(pricing, &b.Pricing); err != nil {
		return nil, 0, fmt.Errorf("booking %s: bad pricing field: %w", b.ID, err)
	}

	return &b, total, nil
}
