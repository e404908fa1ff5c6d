package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studymate-backend/internal/models"
)

type PlanRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) *PlanRepo {
	return &PlanRepo{pool: pool}
}

func (r *PlanRepo) Create(ctx context.Context, e *models.PlanEntry) error {
	e.ID = uuid.New()
	query := `
		INSERT INTO study_plan_entries (id, user_id, topic, review_date)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query, e.ID, e.UserID, e.Topic, e.ReviewDate).Scan(&e.CreatedAt)
	})
}

func (r *PlanRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.PlanEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, topic, review_date, created_at
		FROM study_plan_entries
		WHERE user_id = $1
		ORDER BY review_date, created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.PlanEntry{}
	for rows.Next() {
		e := &models.PlanEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Topic, &e.ReviewDate, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PlanRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM study_plan_entries WHERE id = $1 AND user_id = $2", id, userID)
		if err != nil {
			return err
		}
		return requireAffected(tag)
	})
}
