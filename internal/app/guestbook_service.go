package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"guestbook/internal/model"
)

//go:generate mockgen -source=guestbook_service.go -destination=mocks/mock_guestbook.go -package=mocks

var ErrMessageEmpty = errors.New("message is required")

// Store is the message persistence the service needs. Each call acquires
// and releases its own connection.
type Store interface {
	ListRecent(ctx context.Context, limit int) ([]model.Message, error)
	Create(ctx context.Context, message *model.Message) error
	Ping(ctx context.Context) error
}

// RecentCache holds listings per generation. GetRecent reports the
// generation it looked at, and SetRecent must be given that value so a
// listing read before an Invalidate is never served after it.
type RecentCache interface {
	GetRecent(ctx context.Context, limit int) ([]model.Message, int64, bool, error)
	SetRecent(ctx context.Context, limit int, generation int64, messages []model.Message) error
	Invalidate(ctx context.Context) error
}

type MessagePublisher interface {
	PublishCreated(ctx context.Context, msg model.Message) error
}

type GuestbookService struct {
	store       Store
	cache       RecentCache
	publisher   MessagePublisher
	log         logrus.FieldLogger
	recentLimit int
}

// NewGuestbookService wires the service. cache and publisher may be nil.
func NewGuestbookService(
	store Store,
	cache RecentCache,
	publisher MessagePublisher,
	log logrus.FieldLogger,
	recentLimit int,
) *GuestbookService {
	if recentLimit <= 0 {
		recentLimit = 50
	}
	return &GuestbookService{
		store:       store,
		cache:       cache,
		publisher:   publisher,
		log:         log,
		recentLimit: recentLimit,
	}
}

func (s *GuestbookService) RecentLimit() int {
	return s.recentLimit
}

// ListRecent returns the newest messages. A cache failure falls through to
// the store without refilling; a store failure is returned to the caller.
func (s *GuestbookService) ListRecent(ctx context.Context) ([]model.Message, error) {
	fill := false
	var generation int64
	if s.cache != nil {
		cached, gen, ok, err := s.cache.GetRecent(ctx, s.recentLimit)
		switch {
		case err != nil:
			s.log.WithError(err).Warn("read recent messages cache failed")
		case ok:
			return cached, nil
		default:
			fill = true
			generation = gen
		}
	}

	messages, err := s.store.ListRecent(ctx, s.recentLimit)
	if err != nil {
		return nil, err
	}

	if fill {
		if err := s.cache.SetRecent(ctx, s.recentLimit, generation, messages); err != nil {
			s.log.WithError(err).Warn("write recent messages cache failed")
		}
	}
	return messages, nil
}

// Submit stores a new message. Side effects after the insert never fail the
// submission.
func (s *GuestbookService) Submit(ctx context.Context, content string) (*model.Message, error) {
	if content == "" {
		return nil, ErrMessageEmpty
	}

	message := &model.Message{Content: content}
	if err := s.store.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("submit message failed: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.WithError(err).WithField("message_id", message.ID).Warn("invalidate recent messages cache failed")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishCreated(ctx, *message); err != nil {
			s.log.WithError(err).WithField("message_id", message.ID).Warn("publish message created event failed")
		}
	}
	return message, nil
}

func (s *GuestbookService) Health(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}
