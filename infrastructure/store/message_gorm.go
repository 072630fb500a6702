package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	domainMessage "github.com/shipliyo/smsgate/domains/message"
	"gorm.io/gorm"
)

// --- Persistence Model ---

type messageModel struct {
	ID              string    `gorm:"primaryKey"`
	Sender          string    `gorm:"column:sender;index:idx_sms_sender;not null"`
	Body            string    `gorm:"type:text;not null"`
	ReceivedAt      time.Time `gorm:"index:idx_sms_received_at;not null"`
	DeviceID        string    `gorm:"default:'unknown'"`
	ClientTimestamp string
	Processed       bool   `gorm:"index:idx_sms_processed;default:false"`
	Source          string `gorm:"not null"`
	BotReply        *string
	CreatedAt       time.Time `gorm:"not null"`
}

func (messageModel) TableName() string {
	return "sms_messages"
}

// --- Repository Implementation ---

type MessageGormRepository struct {
	db *gorm.DB
}

func NewMessageGormRepository(db *gorm.DB) *MessageGormRepository {
	return &MessageGormRepository{db: db}
}

func (r *MessageGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&messageModel{})
}

func (r *MessageGormRepository) Insert(ctx context.Context, msg *domainMessage.InboundMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = time.Now().UTC()
	}
	model := toMessageModel(msg)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *MessageGormRepository) MarkProcessed(ctx context.Context, id string, botReply *string) error {
	result := r.db.WithContext(ctx).Model(&messageModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processed": true,
		"bot_reply": botReply,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainMessage.ErrMessageNotFound
	}
	return nil
}

func (r *MessageGormRepository) Find(ctx context.Context, filter domainMessage.Filter) ([]domainMessage.InboundMessage, error) {
	query := r.db.WithContext(ctx).Model(&messageModel{})

	if !filter.Since.IsZero() {
		query = query.Where("received_at >= ?", filter.Since.UTC())
	}

	if len(filter.ContainsAny) > 0 {
		clauses := make([]string, 0, len(filter.ContainsAny))
		args := make([]interface{}, 0, len(filter.ContainsAny))
		for _, kw := range filter.ContainsAny {
			clauses = append(clauses, "LOWER(body) LIKE ?")
			args = append(args, likePattern(kw))
		}
		query = query.Where(strings.Join(clauses, " OR "), args...)
	}

	for _, kw := range filter.ExcludesAll {
		query = query.Where("LOWER(body) NOT LIKE ?", likePattern(kw))
	}

	query = query.Order("received_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []messageModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return fromMessageModels(models), nil
}

func (r *MessageGormRepository) Recent(ctx context.Context, limit int) ([]domainMessage.InboundMessage, error) {
	return r.Find(ctx, domainMessage.Filter{Limit: limit})
}

func (r *MessageGormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *MessageGormRepository) Close(_ context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		if errors.Is(err, gorm.ErrInvalidDB) {
			return nil
		}
		return err
	}
	return sqlDB.Close()
}

// Keywords are site table entries or alphanumeric references; none carry LIKE wildcards.
func likePattern(kw string) string {
	return "%" + strings.ToLower(kw) + "%"
}

// --- Mappers ---

func toMessageModel(m *domainMessage.InboundMessage) messageModel {
	return messageModel{
		ID:              m.ID,
		Sender:          m.Sender,
		Body:            m.Body,
		ReceivedAt:      m.ReceivedAt.UTC(),
		DeviceID:        m.DeviceID,
		ClientTimestamp: m.ClientTimestamp,
		Processed:       m.Processed,
		Source:          string(m.Source),
		BotReply:        m.BotReply,
		CreatedAt:       time.Now().UTC(),
	}
}

func fromMessageModels(models []messageModel) []domainMessage.InboundMessage {
	out := make([]domainMessage.InboundMessage, len(models))
	for i, m := range models {
		out[i] = domainMessage.InboundMessage{
			ID:              m.ID,
			Sender:          m.Sender,
			Body:            m.Body,
			ReceivedAt:      m.ReceivedAt.UTC(),
			DeviceID:        m.DeviceID,
			ClientTimestamp: m.ClientTimestamp,
			Processed:       m.Processed,
			Source:          domainMessage.Source(m.Source),
			BotReply:        m.BotReply,
		}
	}
	return out
}
