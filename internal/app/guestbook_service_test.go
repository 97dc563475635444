package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"guestbook/internal/app/mocks"
	"guestbook/internal/model"
)

func TestGuestbookService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("should store the message and notify", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		cache := mocks.NewMockRecentCache(ctrl)
		publisher := mocks.NewMockMessagePublisher(ctrl)
		log, _ := logtest.NewNullLogger()
		svc := NewGuestbookService(store, cache, publisher, log, 50)

		store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, m *model.Message) error {
				m.ID = 42
				m.CreatedAt = time.Now()
				return nil
			}).Times(1)
		cache.EXPECT().Invalidate(gomock.Any()).Return(nil).Times(1)
		publisher.EXPECT().PublishCreated(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, m model.Message) error {
				req.EqualValues(42, m.ID)
				req.Equal("hello", m.Content)
				return nil
			}).Times(1)

		msg, err := svc.Submit(ctx, "hello")

		req.NoError(err)
		req.EqualValues(42, msg.ID)
		req.Equal("hello", msg.Content)
	})

	t.Run("should reject an empty message without touching the store", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		log, _ := logtest.NewNullLogger()
		svc := NewGuestbookService(store, nil, nil, log, 50)

		store.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

		msg, err := svc.Submit(ctx, "")

		req.ErrorIs(err, ErrMessageEmpty)
		req.Nil(msg)
	})

	t.Run("should keep whitespace-only messages", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		log, _ := logtest.NewNullLogger()
		svc := NewGuestbookService(store, nil, nil, log, 50)

		store.EXPECT().Create(gomock.Any(), &model.Message{Content: "   "}).Return(nil).Times(1)

		_, err := svc.Submit(ctx, "   ")
		req.NoError(err)
	})

	t.Run("should surface store failures", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		cache := mocks.NewMockRecentCache(ctrl)
		publisher := mocks.NewMockMessagePublisher(ctrl)
		log, _ := logtest.NewNullLogger()
		svc := NewGuestbookService(store, cache, publisher, log, 50)
		storeErr := errors.New("connection refused")

		store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(storeErr).Times(1)
		cache.EXPECT().Invalidate(gomock.Any()).Times(0)
		publisher.EXPECT().PublishCreated(gomock.Any(), gomock.Any()).Times(0)

		msg, err := svc.Submit(ctx, "hello")

		req.ErrorIs(err, storeErr)
		req.NotErrorIs(err, ErrMessageEmpty)
		req.Nil(msg)
	})

	t.Run("should log but not fail on side effect errors", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		cache := mocks.NewMockRecentCache(ctrl)
		publisher := mocks.NewMockMessagePublisher(ctrl)
		log, hook := logtest.NewNullLogger()
		svc := NewGuestbookService(store, cache, publisher, log, 50)

		store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
		cache.EXPECT().Invalidate(gomock.Any()).Return(errors.New("redis down")).Times(1)
		publisher.EXPECT().PublishCreated(gomock.Any(), gomock.Any()).Return(errors.New("broker down")).Times(1)

		msg, err := svc.Submit(ctx, "hello")

		req.NoError(err)
		req.NotNil(msg)
		req.Len(hook.AllEntries(), 2)
		for _, entry := range hook.AllEntries() {
			req.Equal(logrus.WarnLevel, entry.Level)
		}
	})
}

func TestGuestbookService_ListRecent(t *testing.T) {
	ctx := context.Background()
	stored := []model.Message{{ID: 2, Content: "b"}, {ID: 1, Content: "a"}}

	t.Run("should read from the store with the configured limit", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		log, _ := logtest.NewNullLogger()
		svc := NewGuestbookService(store, nil, nil, log, 50)

		store.EXPECT().ListRecent(gomock.Any(), 50).Return(stored, nil).Times(1)

		messages, err := svc.ListRecent(ctx)
		req.NoError(err)
		req.Equal(stored, messages)
	})

	t.Run("should default a non positive limit", func(t *testing.T) {
		log, _ := logtest.NewNullLogger()
		svc := NewGuestbookService(nil, nil, nil, log, 0)
		require.Equal(t, 50, svc.RecentLimit())
	})

	t.Run("should serve a cache hit without the store", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		cache := mocks.NewMockRecentCache(ctrl)
		log, _ := logtest.NewNullLogger()
		svc := NewGuestbookService(store, cache, nil, log, 50)

		cache.EXPECT().GetRecent(gomock.Any(), 50).Return(stored, int64(3), true, nil).Times(1)
		store.EXPECT().ListRecent(gomock.Any(), gomock.Any()).Times(0)

		messages, err := svc.ListRecent(ctx)
		req.NoError(err)
		req.Equal(stored, messages)
	})

	t.Run("should fill the cache on a miss", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		cache := mocks.NewMockRecentCache(ctrl)
		log, _ := logtest.NewNullLogger()
		svc := NewGuestbookService(store, cache, nil, log, 50)

		gomock.InOrder(
			cache.EXPECT().GetRecent(gomock.Any(), 50).Return(nil, int64(7), false, nil),
			store.EXPECT().ListRecent(gomock.Any(), 50).Return(stored, nil),
			cache.EXPECT().SetRecent(gomock.Any(), 50, int64(7), stored).Return(nil),
		)

		messages, err := svc.ListRecent(ctx)
		req.NoError(err)
		req.Equal(stored, messages)
	})

	t.Run("should fall back to the store when the cache read fails", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		cache := mocks.NewMockRecentCache(ctrl)
		log, hook := logtest.NewNullLogger()
		svc := NewGuestbookService(store, cache, nil, log, 50)

		cache.EXPECT().GetRecent(gomock.Any(), 50).Return(nil, int64(0), false, errors.New("redis down"))
		store.EXPECT().ListRecent(gomock.Any(), 50).Return(stored, nil)
		cache.EXPECT().SetRecent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		messages, err := svc.ListRecent(ctx)
		req.NoError(err)
		req.Equal(stored, messages)
		req.Len(hook.AllEntries(), 1)
	})

	t.Run("should log but not fail when the cache write fails", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		cache := mocks.NewMockRecentCache(ctrl)
		log, hook := logtest.NewNullLogger()
		svc := NewGuestbookService(store, cache, nil, log, 50)

		cache.EXPECT().GetRecent(gomock.Any(), 50).Return(nil, int64(0), false, nil)
		store.EXPECT().ListRecent(gomock.Any(), 50).Return(stored, nil)
		cache.EXPECT().SetRecent(gomock.Any(), 50, int64(0), stored).Return(errors.New("redis down"))

		messages, err := svc.ListRecent(ctx)
		req.NoError(err)
		req.Equal(stored, messages)
		req.Len(hook.AllEntries(), 1)
	})

	t.Run("should return store errors and skip the cache write", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		cache := mocks.NewMockRecentCache(ctrl)
		log, _ := logtest.NewNullLogger()
		svc := NewGuestbookService(store, cache, nil, log, 50)
		storeErr := errors.New("table missing")

		cache.EXPECT().GetRecent(gomock.Any(), 50).Return(nil, int64(0), false, nil)
		store.EXPECT().ListRecent(gomock.Any(), 50).Return(nil, storeErr)
		cache.EXPECT().SetRecent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		messages, err := svc.ListRecent(ctx)
		req.ErrorIs(err, storeErr)
		req.Nil(messages)
	})
}

func TestGuestbookService_Health(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	log, _ := logtest.NewNullLogger()
	svc := NewGuestbookService(store, nil, nil, log, 50)
	pingErr := errors.New("dial tcp: connection refused")

	store.EXPECT().Ping(gomock.Any()).Return(nil)
	req.NoError(svc.Health(context.Background()))

	store.EXPECT().Ping(gomock.Any()).Return(pingErr)
	req.ErrorIs(svc.Health(context.Background()), pingErr)
}
