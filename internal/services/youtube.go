package services

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
)

// VideoSearcher finds videos for a topic. Failures yield an empty list.
type VideoSearcher interface {
	Search(ctx context.Context, topic string) []models.VideoRef
}

type YouTubeService struct {
	svc        *youtube.Service
	maxResults int64
	timeout    time.Duration
	log        *logger.Logger
}

func NewYouTubeService(ctx context.Context, apiKey string, maxResults int, timeout time.Duration, log *logger.Logger, opts ...option.ClientOption) (*YouTubeService, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}
	return &YouTubeService{
		svc:        svc,
		maxResults: int64(maxResults),
		timeout:    timeout,
		log:        log,
	}, nil
}

func (s *YouTubeService) Search(ctx context.Context, topic string) []models.VideoRef {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.svc.Search.List([]string{"snippet"}).
		Q(topic).
		Type("video").
		MaxResults(s.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		s.log.Warn("YouTube search failed", "topic", topic, "error", err)
		return []models.VideoRef{}
	}

	videos := make([]models.VideoRef, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		var thumbnail string
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Medium != nil {
			thumbnail = item.Snippet.Thumbnails.Medium.Url
		}
		videos = append(videos, models.VideoRef{
			Title:     item.Snippet.Title,
			Thumbnail: thumbnail,
			URL:       "https://www.youtube.com/watch?v=" + item.Id.VideoId,
			ID:        item.Id.VideoId,
		})
	}
	return videos
}
