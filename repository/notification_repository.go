package repository

import (
	"context"
	"fmt"

	"clanwallet/database"
	"clanwallet/models"

	"github.com/jackc/pgx/v5"
)

// NotificationRepository implements the NotificationRepository interface
type NotificationRepository struct {
	q queryable
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{q: db.Pool}
}

// newNotificationRepositoryWithTx creates a new notification repository with a transaction
func newNotificationRepositoryWithTx(tx queryable) *NotificationRepository {
	return &NotificationRepository{q: tx}
}

// CreateBatch inserts notifications in a single round trip
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	query := `
		INSERT INTO notifications (user_id, type, title, message, data, action_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	batch := &pgx.Batch{}
	for _, n := range notifications {
		batch.Queue(query, n.UserID, n.Type, n.Title, n.Message, n.Data, n.ActionData).
			QueryRow(func(row pgx.Row) error {
				return row.Scan(&n.ID, &n.CreatedAt)
			})
	}

	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to create %d notifications: %w", len(notifications), err)
	}
	return nil
}
