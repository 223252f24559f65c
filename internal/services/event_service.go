package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/google/uuid"
	"github.com/harxxhilgg/univent/internal/infrastructure/kafka"
	"github.com/harxxhilgg/univent/internal/infrastructure/redis"
	"github.com/harxxhilgg/univent/internal/models"
	"github.com/harxxhilgg/univent/internal/repository"
	"github.com/harxxhilgg/univent/internal/session"
	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const (
	eventsCacheKey = "events:all"
	eventsCacheTTL = 5 * time.Minute
)

// FeedPublisher pushes newly created events to live subscribers.
type FeedPublisher interface {
	Broadcast(event models.Event)
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, image []byte, filename string) (string, error)
}

type EventService interface {
	Create(ctx context.Context, event models.Event) (*models.Event, error)
	GetAll(ctx context.Context) ([]models.Event, error)
	GetByCreator(ctx context.Context, email string) ([]models.Event, error)
	UploadImage(ctx context.Context, image []byte, filename string) (string, error)
}

type eventService struct {
	eventRepo   repository.EventRepository
	redisClient redis.Client
	producer    kafka.EventProducer
	uploader    Uploader
	feed        FeedPublisher
}

func NewEventService(
	eventRepo repository.EventRepository,
	redisClient redis.Client,
	producer kafka.EventProducer,
	uploader Uploader,
	feed FeedPublisher,
) EventService {
	return &eventService{
		eventRepo:   eventRepo,
		redisClient: redisClient,
		producer:    producer,
		uploader:    uploader,
		feed:        feed,
	}
}

func (s *eventService) Create(ctx context.Context, event models.Event) (*models.Event, error) {
	tracer := otel.Tracer("univent")
	ctx, span := tracer.Start(ctx, "CreateEvent")
	defer span.End()

	if session.IsGuest(event.CreatedByEmail) {
		span.SetStatus(codes.Error, "guest account")
		return nil, pkgerrors.ErrGuestRestricted
	}
	if event.Title == "" || event.Organizer == "" || event.EventDate == "" ||
		event.EventTime == "" || event.Location == "" || event.CreatedByEmail == "" {
		span.SetStatus(codes.Error, "missing fields")
		return nil, pkgerrors.ErrMissingFields
	}

	exists, err := s.eventRepo.ExistsByTitle(ctx, event.Title)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "existence check failed")
		slog.Error("failed to check event existence", "title", event.Title, "error", err)
		return nil, fmt.Errorf("%w: failed to check event existence", pkgerrors.ErrInternal)
	}
	if exists {
		span.SetStatus(codes.Error, "event already exists")
		return nil, pkgerrors.ErrEventExists
	}

	if err := s.eventRepo.Create(ctx, &event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event creation failed")
		slog.Error("failed to create event", "title", event.Title, "error", err)
		return nil, fmt.Errorf("%w: failed to create event", pkgerrors.ErrInternal)
	}

	s.invalidateCaches(ctx, event.CreatedByEmail)
	s.publishEventCreated(event)

	if s.feed != nil {
		s.feed.Broadcast(event)
	}

	slog.Info("event created", "event_id", event.ID, "title", event.Title, "created_by", event.CreatedByEmail)
	return &event, nil
}

func (s *eventService) GetAll(ctx context.Context) ([]models.Event, error) {
	tracer := otel.Tracer("univent")
	ctx, span := tracer.Start(ctx, "GetAllEvents")
	defer span.End()

	if cached, err := s.redisClient.Get(ctx, eventsCacheKey); err == nil {
		var events []models.Event
		if err := json.Unmarshal([]byte(cached), &events); err == nil {
			return events, nil
		}
		slog.Warn("dropping corrupt events cache", "key", eventsCacheKey)
	} else if !stderrors.Is(err, redis.ErrKeyNotFound) {
		slog.Warn("events cache read failed", "error", err)
	}

	events, err := s.eventRepo.GetAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event list failed")
		slog.Error("failed to list events", "error", err)
		return nil, fmt.Errorf("%w: failed to list events", pkgerrors.ErrInternal)
	}

	s.fillCache(ctx, eventsCacheKey, events)
	return events, nil
}

func (s *eventService) GetByCreator(ctx context.Context, email string) ([]models.Event, error) {
	tracer := otel.Tracer("univent")
	ctx, span := tracer.Start(ctx, "GetEventsByCreator")
	defer span.End()

	if email == "" {
		span.SetStatus(codes.Error, "missing email")
		return nil, pkgerrors.ErrMissingFields
	}

	cacheKey := userEventsCacheKey(email)
	if cached, err := s.redisClient.Get(ctx, cacheKey); err == nil {
		var events []models.Event
		if err := json.Unmarshal([]byte(cached), &events); err == nil {
			return events, nil
		}
	}

	events, err := s.eventRepo.GetByCreator(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event list failed")
		slog.Error("failed to list events by creator", "email", email, "error", err)
		return nil, fmt.Errorf("%w: failed to list events", pkgerrors.ErrInternal)
	}

	s.fillCache(ctx, cacheKey, events)
	return events, nil
}

func (s *eventService) UploadImage(ctx context.Context, image []byte, filename string) (string, error) {
	tracer := otel.Tracer("univent")
	ctx, span := tracer.Start(ctx, "UploadImage")
	defer span.End()

	url, err := s.uploader.Upload(ctx, image, filename)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		slog.Error("image upload failed", "filename", filename, "error", err)
		return "", err
	}
	slog.Info("image uploaded", "filename", filename, "url", url)
	return url, nil
}

func userEventsCacheKey(email string) string {
	return fmt.Sprintf("events:user:%s", email)
}

func (s *eventService) fillCache(ctx context.Context, key string, events []models.Event) {
	data, err := json.Marshal(events)
	if err != nil {
		slog.Warn("failed to marshal events for cache", "key", key, "error", err)
		return
	}
	if err := s.redisClient.Set(ctx, key, string(data), eventsCacheTTL); err != nil {
		slog.Warn("failed to fill events cache", "key", key, "error", err)
	}
}

func (s *eventService) invalidateCaches(ctx context.Context, email string) {
	if err := s.redisClient.Del(ctx, eventsCacheKey); err != nil {
		slog.Warn("failed to invalidate events cache", "error", err)
	}
	if err := s.redisClient.Del(ctx, userEventsCacheKey(email)); err != nil {
		slog.Warn("failed to invalidate user events cache", "email", email, "error", err)
	}
}

func (s *eventService) publishEventCreated(event models.Event) {
	payload := map[string]interface{}{
		"event_type":       "event_created",
		"event_id":         event.ID,
		"title":            event.Title,
		"created_by_email": event.CreatedByEmail,
		"created_at":       time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal event message", "event_id", event.ID, "error", err)
		return
	}

	go func() {
		if err := s.producer.Send(context.Background(), "events", uuid.NewString(), data); err != nil {
			slog.Error("failed to publish event message", "event_id", event.ID, "error", err)
		}
	}()
}
