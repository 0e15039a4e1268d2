package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

const trainerColumns = `id, name, specialization, created_at, updated_at`

type TrainerRepository struct {
	db *sql.DB
}

func NewTrainerRepository(db *sql.DB) *TrainerRepository {
	return &TrainerRepository{db: db}
}

func (r *TrainerRepository) FindAll(ctx context.Context) ([]*domain.Trainer, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+trainerColumns+` FROM trainers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list trainers: %w", err)
	}
	defer rows.Close()

	trainers := make([]*domain.Trainer, 0)
	for rows.Next() {
		t, err := scanTrainer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trainer: %w", err)
		}
		trainers = append(trainers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trainers: %w", err)
	}
	return trainers, nil
}

func (r *TrainerRepository) FindByID(ctx context.Context, id int64) (*domain.Trainer, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	t, err := scanTrainer(r.db.QueryRowContext(ctx, `SELECT `+trainerColumns+` FROM trainers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(domain.KindTrainer, id)
		}
		return nil, fmt.Errorf("find trainer: %w", err)
	}
	return t, nil
}

func (r *TrainerRepository) Create(ctx context.Context, t *domain.Trainer) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	const q = `INSERT INTO trainers (name, specialization, created_at, updated_at)
		VALUES ($1, $2, $3, $4) RETURNING id`

	if err := r.db.QueryRowContext(ctx, q, t.Name, t.Specialization, dbTime(t.CreatedAt), dbTime(t.UpdatedAt)).Scan(&t.ID); err != nil {
		return fmt.Errorf("insert trainer: %w", err)
	}
	return nil
}

func (r *TrainerRepository) Update(ctx context.Context, t *domain.Trainer) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	const q = `UPDATE trainers SET name = $1, specialization = $2, updated_at = $3 WHERE id = $4`

	res, err := r.db.ExecContext(ctx, q, t.Name, t.Specialization, dbTime(t.UpdatedAt), t.ID)
	if err != nil {
		return fmt.Errorf("update trainer: %w", err)
	}
	return requireAffected(res, domain.KindTrainer, t.ID)
}

// Delete removes the trainer; sessions and their reservations cascade.
func (r *TrainerRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "trainers", id)
}

func scanTrainer(row scannable) (*domain.Trainer, error) {
	var t domain.Trainer
	if err := row.Scan(&t.ID, &t.Name, &t.Specialization, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}
