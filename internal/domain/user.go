// Package domain defines shared domain models and constants.
package domain

import "time"

// User is the internal record for a Telegram Web App user. UserID is the
// application's own primary key; TelegramID is unique and is the join key used
// by the continuing-session header flow.
type User struct {
	UserID       string    `bson:"user_id" json:"user_id"`
	TelegramID   int64     `bson:"telegram_id" json:"telegram_id"`
	FirstName    string    `bson:"first_name" json:"first_name"`
	LastName     string    `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Username     string    `bson:"username,omitempty" json:"username,omitempty"`
	LanguageCode string    `bson:"language_code,omitempty" json:"language_code,omitempty"`
	PhotoURL     string    `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	IsPremium    bool      `bson:"is_premium" json:"is_premium"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
