package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanEntry is a single spaced-review reminder. ReviewDate is a calendar
// date with no time-of-day component.
type PlanEntry struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"-"`
	Topic      string    `json:"topic"`
	ReviewDate time.Time `json:"-"`
	CreatedAt  time.Time `json:"-"`
}

const ReviewDateLayout = "2006-01-02"

type PlanEntryResponse struct {
	ID         uuid.UUID `json:"id"`
	Topic      string    `json:"topic"`
	ReviewDate string    `json:"review_date"`
}

func (p *PlanEntry) Response() PlanEntryResponse {
	return PlanEntryResponse{
		ID:         p.ID,
		Topic:      p.Topic,
		ReviewDate: p.ReviewDate.Format(ReviewDateLayout),
	}
}

type CreatePlanEntryRequest struct {
	Topic      string `json:"topic"`
	ReviewDate string `json:"review_date"`
}
