/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the SQL queries for bookings, resources,
 * coupons, coupon usage records, and subscriptions.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/domain"
)

var (
	ErrResourceNotFound     = errors.New("resource not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrCouponNotFound       = errors.New("coupon not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindResourceByID retrieves a single kiosk resource.
func (r *PostgresRepository) FindResourceByID(ctx context.Context, resourceID uuid.UUID) (*domain.Resource, error) {
	var res domain.Resource
	query := `
        SELECT id, name, location, base_rate, status, created_at, updated_at
        FROM resources
        WHERE id = $1
    `
	err := r.db.QueryRow(ctx, query, resourceID).Scan(
		&res.ID, &res.Name, &res.Location, &res.BaseRate, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return &res, nil
}

// ListActiveResources returns all kiosks currently open for booking.
func (r *PostgresRepository) ListActiveResources(ctx context.Context) ([]domain.Resource, error) {
	query := `
        SELECT id, name, location, base_rate, status, created_at, updated_at
        FROM resources
        WHERE status = 'active'
        ORDER BY name
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []domain.Resource
	for rows.Next() {
		var res domain.Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Location, &res.BaseRate, &res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

// CreateBooking inserts a new booking row and returns it with generated fields.
func (r *PostgresRepository) CreateBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	var created domain.Booking
	query := `
        INSERT INTO bookings (owner_id, name, resource_ids, start_date, end_date, total_slots, total_cost, status, asset_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, owner_id, name, resource_ids, start_date, end_date, total_slots, total_cost, status, asset_id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		booking.OwnerID,
		booking.Name,
		booking.ResourceIDs,
		booking.StartDate,
		booking.EndDate,
		booking.TotalSlots,
		booking.TotalCost,
		booking.Status,
		booking.AssetID,
	).Scan(
		&created.ID, &created.OwnerID, &created.Name, &created.ResourceIDs,
		&created.StartDate, &created.EndDate, &created.TotalSlots, &created.TotalCost,
		&created.Status, &created.AssetID, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetBookingByID retrieves a booking by its id.
func (r *PostgresRepository) GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	query := `
        SELECT id, owner_id, name, resource_ids, start_date, end_date, total_slots, total_cost, status, asset_id, created_at, updated_at
        FROM bookings
        WHERE id = $1
    `
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&b.ID, &b.OwnerID, &b.Name, &b.ResourceIDs,
		&b.StartDate, &b.EndDate, &b.TotalSlots, &b.TotalCost,
		&b.Status, &b.AssetID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListBookingsByOwner returns all bookings belonging to a user, newest first.
func (r *PostgresRepository) ListBookingsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Booking, error) {
	query := `
        SELECT id, owner_id, name, resource_ids, start_date, end_date, total_slots, total_cost, status, asset_id, created_at, updated_at
        FROM bookings
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.OwnerID, &b.Name, &b.ResourceIDs,
			&b.StartDate, &b.EndDate, &b.TotalSlots, &b.TotalCost,
			&b.Status, &b.AssetID, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// UpdateBookingStatus persists a status change and touches updated_at.
func (r *PostgresRepository) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error {
	query := `
        UPDATE bookings
        SET status = $1,
            updated_at = NOW()
        WHERE id = $2
    `
	tag, err := r.db.Exec(ctx, query, status, bookingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// UpdateDraftBooking applies the restricted editable field subset to a draft.
// The WHERE clause re-checks the draft status so a concurrent submission
// cannot be overwritten.
func (r *PostgresRepository) UpdateDraftBooking(ctx context.Context, bookingID uuid.UUID, update domain.DraftUpdate) (*domain.Booking, error) {
	var b domain.Booking
	query := `
        UPDATE bookings
        SET start_date = COALESCE($1, start_date),
            end_date   = COALESCE($2, end_date),
            asset_id   = COALESCE($3, asset_id),
            updated_at = NOW()
        WHERE id = $4 AND status = 'draft'
        RETURNING id, owner_id, name, resource_ids, start_date, end_date, total_slots, total_cost, status, asset_id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query, update.StartDate, update.EndDate, update.AssetID, bookingID).Scan(
		&b.ID, &b.OwnerID, &b.Name, &b.ResourceIDs,
		&b.StartDate, &b.EndDate, &b.TotalSlots, &b.TotalCost,
		&b.Status, &b.AssetID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// DeleteBooking removes a booking row. Callers must enforce the draft-only
// deletion rule before invoking this.
func (r *PostgresRepository) DeleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, bookingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// GetLifecycleCandidates fetches all bookings the lifecycle pass may advance.
func (r *PostgresRepository) GetLifecycleCandidates(ctx context.Context) ([]domain.Booking, error) {
	query := `
        SELECT id, owner_id, name, resource_ids, start_date, end_date, total_slots, total_cost, status, asset_id, created_at, updated_at
        FROM bookings
        WHERE status IN ('pending', 'active')
        ORDER BY start_date
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.OwnerID, &b.Name, &b.ResourceIDs,
			&b.StartDate, &b.EndDate, &b.TotalSlots, &b.TotalCost,
			&b.Status, &b.AssetID, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetBookedWindows returns the date windows already committed on a resource.
// Draft and terminal bookings do not block the calendar.
func (r *PostgresRepository) GetBookedWindows(ctx context.Context, resourceID uuid.UUID) ([]domain.SelectedWindow, error) {
	query := `
        SELECT start_date, end_date, total_slots
        FROM bookings
        WHERE $1 = ANY(resource_ids)
          AND status IN ('pending', 'active', 'paused')
        ORDER BY start_date
    `
	rows, err := r.db.Query(ctx, query, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []domain.SelectedWindow
	for rows.Next() {
		var w domain.SelectedWindow
		if err := rows.Scan(&w.StartDate, &w.EndDate, &w.Slots); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// GetCouponByCode retrieves a coupon and its scopes by normalized code.
func (r *PostgresRepository) GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var c domain.Coupon
	query := `
        SELECT id, code, type, value, max_uses, current_uses, min_amount, valid_from, valid_until, is_active, created_at, updated_at
        FROM coupons
        WHERE UPPER(code) = $1
    `
	err := r.db.QueryRow(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.Type, &c.Value, &c.MaxUses, &c.CurrentUses,
		&c.MinAmount, &c.ValidFrom, &c.ValidUntil, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	scopeQuery := `
        SELECT scope_type, scope_value
        FROM coupon_scopes
        WHERE coupon_id = $1
        ORDER BY scope_type, scope_value
    `
	rows, err := r.db.Query(ctx, scopeQuery, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.CouponScope
		if err := rows.Scan(&s.ScopeType, &s.ScopeValue); err != nil {
			return nil, err
		}
		c.Scopes = append(c.Scopes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

// HasCouponUsage reports whether a (coupon, user) usage record already exists.
func (r *PostgresRepository) HasCouponUsage(ctx context.Context, couponID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS (
            SELECT 1 FROM coupon_usage WHERE coupon_id = $1 AND user_id = $2
        )
    `
	if err := r.db.QueryRow(ctx, query, couponID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// RecordCouponUsage inserts a usage record for a redeemed coupon.
func (r *PostgresRepository) RecordCouponUsage(ctx context.Context, usage domain.CouponUsage) error {
	query := `
        INSERT INTO coupon_usage (coupon_id, user_id, booking_id, discount_amount, used_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.db.Exec(ctx, query, usage.CouponID, usage.UserID, usage.BookingID, usage.DiscountAmount, usage.UsedAt)
	return err
}

// IncrementCouponUses bumps the redemption counter by one.
func (r *PostgresRepository) IncrementCouponUses(ctx context.Context, couponID uuid.UUID) error {
	query := `
        UPDATE coupons
        SET current_uses = current_uses + 1,
            updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, couponID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCouponNotFound
	}
	return nil
}

// CreateSubscription inserts a subscription row and returns it.
func (r *PostgresRepository) CreateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	var created domain.Subscription
	query := `
        INSERT INTO subscriptions (owner_id, status, auto_renewal, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, owner_id, status, auto_renewal, start_date, end_date, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query, sub.OwnerID, sub.Status, sub.AutoRenewal, sub.StartDate, sub.EndDate).Scan(
		&created.ID, &created.OwnerID, &created.Status, &created.AutoRenewal,
		&created.StartDate, &created.EndDate, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetSubscriptionByID retrieves a subscription with its linked booking ids.
func (r *PostgresRepository) GetSubscriptionByID(ctx context.Context, subID uuid.UUID) (*domain.Subscription, error) {
	var sub domain.Subscription
	query := `
        SELECT id, owner_id, status, auto_renewal, start_date, end_date, created_at, updated_at
        FROM subscriptions
        WHERE id = $1
    `
	err := r.db.QueryRow(ctx, query, subID).Scan(
		&sub.ID, &sub.OwnerID, &sub.Status, &sub.AutoRenewal,
		&sub.StartDate, &sub.EndDate, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT booking_id FROM subscription_bookings WHERE subscription_id = $1`, subID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var bookingID uuid.UUID
		if err := rows.Scan(&bookingID); err != nil {
			return nil, err
		}
		sub.BookingIDs = append(sub.BookingIDs, bookingID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateSubscriptionStatus persists a subscription status change.
func (r *PostgresRepository) UpdateSubscriptionStatus(ctx context.Context, subID uuid.UUID, status domain.SubscriptionStatus) error {
	query := `
        UPDATE subscriptions
        SET status = $1,
            updated_at = NOW()
        WHERE id = $2
    `
	tag, err := r.db.Exec(ctx, query, status, subID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// SetSubscriptionAutoRenewal toggles auto-renewal for a subscription.
func (r *PostgresRepository) SetSubscriptionAutoRenewal(ctx context.Context, subID uuid.UUID, autoRenewal bool) error {
	query := `
        UPDATE subscriptions
        SET auto_renewal = $1,
            updated_at = NOW()
        WHERE id = $2
    `
	tag, err := r.db.Exec(ctx, query, autoRenewal, subID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// LinkBookingToSubscription attaches a booking to a subscription.
func (r *PostgresRepository) LinkBookingToSubscription(ctx context.Context, subID, bookingID uuid.UUID) error {
	query := `
        INSERT INTO subscription_bookings (subscription_id, booking_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, subID, bookingID)
	return err
}
