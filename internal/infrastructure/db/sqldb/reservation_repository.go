package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

const reservationColumns = `id, user_id, session_id, reservation_time`

type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) FindAll(ctx context.Context) ([]*domain.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY id`)
}

func (r *ReservationRepository) FindByUser(ctx context.Context, userID int64) ([]*domain.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *ReservationRepository) FindBySession(ctx context.Context, sessionID int64) ([]*domain.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE session_id = $1 ORDER BY id`, sessionID)
}

func (r *ReservationRepository) list(ctx context.Context, q string, args ...any) ([]*domain.Reservation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return out, nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := scanReservation(r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(domain.KindReservation, id)
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return res, nil
}

// Create is a single INSERT; the unique (user_id, session_id) index rejects
// double bookings.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	const q = `INSERT INTO reservations (user_id, session_id, reservation_time)
		VALUES ($1, $2, $3) RETURNING id`

	res.ReservationTime = dbTime(res.ReservationTime)
	if err := r.db.QueryRowContext(ctx, q, res.UserID, res.SessionID, res.ReservationTime).Scan(&res.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrReservationExists
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "reservations", id)
}

func scanReservation(row scannable) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := row.Scan(&res.ID, &res.UserID, &res.SessionID, &res.ReservationTime); err != nil {
		return nil, err
	}
	res.ReservationTime = res.ReservationTime.UTC()
	return &res, nil
}
