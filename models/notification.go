package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies in-app notifications
type NotificationType string

const (
	NotificationTypeGiveaway NotificationType = "giveaway"
	NotificationTypeWallet   NotificationType = "wallet"
	NotificationTypeGeneral  NotificationType = "general"
)

// Notification is an in-app notification row
type Notification struct {
	ID         int64            `db:"id" json:"id"`
	UserID     uuid.UUID        `db:"user_id" json:"user_id"`
	Type       NotificationType `db:"type" json:"type"`
	Title      string           `db:"title" json:"title"`
	Message    string           `db:"message" json:"message"`
	Data       map[string]any   `db:"data" json:"data,omitempty"`
	ActionData map[string]any   `db:"action_data" json:"action_data,omitempty"`
	IsRead     bool             `db:"is_read" json:"is_read"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// NotificationRequest is the input of the notification dispatcher.
// A nil UserID broadcasts to every member.
type NotificationRequest struct {
	Type       NotificationType
	Title      string
	Message    string
	UserID     *uuid.UUID
	Data       map[string]any
	ActionData map[string]any
}

// PushMessage is handed to the push delivery pipeline
type PushMessage struct {
	UserIDs []uuid.UUID      `json:"user_ids"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Data    map[string]any   `json:"data,omitempty"`
}
