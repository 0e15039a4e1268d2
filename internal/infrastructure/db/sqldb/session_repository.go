package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

const sessionColumns = `id, title, description, start_time, end_time, trainer_id`

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) FindAll(ctx context.Context) ([]*domain.TrainingSession, error) {
	return r.list(ctx, `SELECT `+sessionColumns+` FROM training_sessions ORDER BY start_time, id`)
}

func (r *SessionRepository) FindByStartBetween(ctx context.Context, from, to time.Time) ([]*domain.TrainingSession, error) {
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM training_sessions
		WHERE start_time >= $1 AND start_time <= $2 ORDER BY start_time, id`,
		dbTime(from), dbTime(to))
}

func (r *SessionRepository) list(ctx context.Context, q string, args ...any) ([]*domain.TrainingSession, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*domain.TrainingSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*domain.TrainingSession, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	s, err := scanSession(r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM training_sessions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(domain.KindSession, id)
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.TrainingSession) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	const q = `INSERT INTO training_sessions (title, description, start_time, end_time, trainer_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := r.db.QueryRowContext(ctx, q,
		s.Title, s.Description, dbTime(s.StartTime), dbTime(s.EndTime), s.TrainerID,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, s *domain.TrainingSession) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	const q = `UPDATE training_sessions
		SET title = $1, description = $2, start_time = $3, end_time = $4, trainer_id = $5
		WHERE id = $6`

	res, err := r.db.ExecContext(ctx, q,
		s.Title, s.Description, dbTime(s.StartTime), dbTime(s.EndTime), s.TrainerID, s.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return requireAffected(res, domain.KindSession, s.ID)
}

// Delete removes the session; its reservations cascade.
func (r *SessionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "training_sessions", id)
}

func scanSession(row scannable) (*domain.TrainingSession, error) {
	var s domain.TrainingSession
	if err := row.Scan(&s.ID, &s.Title, &s.Description, &s.StartTime, &s.EndTime, &s.TrainerID); err != nil {
		return nil, err
	}
	s.StartTime = s.StartTime.UTC()
	s.EndTime = s.EndTime.UTC()
	return &s, nil
}
