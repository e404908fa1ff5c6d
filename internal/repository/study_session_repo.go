package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studymate-backend/internal/models"
)

type StudySessionRepo struct {
	pool *pgxpool.Pool
}

func NewStudySessionRepo(pool *pgxpool.Pool) *StudySessionRepo {
	return &StudySessionRepo{pool: pool}
}

func (r *StudySessionRepo) Create(ctx context.Context, s *models.StudySession) error {
	videosJSON, err := marshalNullable(s.Videos, len(s.Videos) > 0)
	if err != nil {
		return fmt.Errorf("failed to encode videos: %w", err)
	}

	s.ID = uuid.New()
	query := `
		INSERT INTO study_sessions (id, user_id, topic, notes, summary, videos_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query,
			s.ID, s.UserID, s.Topic, s.Notes, s.Summary, videosJSON,
		).Scan(&s.CreatedAt)
	})
}

func (r *StudySessionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SessionListItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, topic, created_at
		FROM study_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.SessionListItem{}
	for rows.Next() {
		var item models.SessionListItem
		if err := rows.Scan(&item.ID, &item.Topic, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByID only returns sessions owned by userID. A session owned by someone
// else yields pgx.ErrNoRows, exactly like a missing one.
func (r *StudySessionRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.StudySession, error) {
	s := &models.StudySession{}
	var videosJSON, quizJSON, flashcardsJSON []byte

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, topic, notes, summary, videos_json, quiz_json, flashcards_json, created_at
		FROM study_sessions
		WHERE id = $1 AND user_id = $2`, id, userID).Scan(
		&s.ID, &s.UserID, &s.Topic, &s.Notes, &s.Summary,
		&videosJSON, &quizJSON, &flashcardsJSON, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalNullable(videosJSON, &s.Videos); err != nil {
		return nil, fmt.Errorf("failed to decode videos: %w", err)
	}
	if err := unmarshalNullable(quizJSON, &s.Quiz); err != nil {
		return nil, fmt.Errorf("failed to decode quiz: %w", err)
	}
	if err := unmarshalNullable(flashcardsJSON, &s.Flashcards); err != nil {
		return nil, fmt.Errorf("failed to decode flashcards: %w", err)
	}
	return s, nil
}

func (r *StudySessionRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM study_sessions WHERE id = $1 AND user_id = $2", id, userID)
		if err != nil {
			return err
		}
		return requireAffected(tag)
	})
}

func (r *StudySessionRepo) UpdateQuiz(ctx context.Context, userID, id uuid.UUID, quiz []models.QuizItem) error {
	return r.updateJSONColumn(ctx, "quiz_json", userID, id, quiz)
}

func (r *StudySessionRepo) UpdateFlashcards(ctx context.Context, userID, id uuid.UUID, cards []models.Flashcard) error {
	return r.updateJSONColumn(ctx, "flashcards_json", userID, id, cards)
}

// column is always one of the fixed names above, never caller input.
func (r *StudySessionRepo) updateJSONColumn(ctx context.Context, column string, userID, id uuid.UUID, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", column, err)
	}

	query := fmt.Sprintf("UPDATE study_sessions SET %s = $1 WHERE id = $2 AND user_id = $3", column)
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, data, id, userID)
		if err != nil {
			return err
		}
		return requireAffected(tag)
	})
}

func marshalNullable(v interface{}, present bool) ([]byte, error) {
	if !present {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalNullable(data []byte, dst interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
