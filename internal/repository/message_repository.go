package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"guestbook/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// EnsureSchema creates the messages table when it is absent. An existing
// table is never altered, whatever its column types or indexes.
func (r *MessageRepository) EnsureSchema(ctx context.Context) error {
	migrator := r.db.WithContext(ctx).Migrator()
	if migrator.HasTable(&model.Message{}) {
		return nil
	}
	if err := migrator.CreateTable(&model.Message{}); err != nil {
		return fmt.Errorf("create messages table failed: %w", err)
	}
	return nil
}

func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListRecent returns at most limit messages, newest first. Equal timestamps
// fall back to insertion order.
func (r *MessageRepository) ListRecent(ctx context.Context, limit int) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list recent messages failed: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db failed: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database failed: %w", err)
	}
	if err := r.db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("query database failed: %w", err)
	}
	return nil
}
