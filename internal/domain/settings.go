package domain

import "time"

// Cook rotation modes for households that alternate who cooks.
const (
	RotationNone   = "none"
	RotationByDay  = "by_day"
	RotationByWeek = "by_week"
)

// Cook rotation starting member.
const (
	RotationFirstMe      = "me"
	RotationFirstPartner = "partner"
)

// Settings holds per-user notification and household preferences. A settings
// record is provisioned with the user's own Telegram id as the default
// notification recipient.
type Settings struct {
	UserID             string    `bson:"user_id" json:"user_id"`
	RecipientChatID    string    `bson:"recipient_chat_id" json:"recipient_chat_id"`
	SecondMemberChatID string    `bson:"second_member_chat_id,omitempty" json:"second_member_chat_id,omitempty"`
	CookRotationMode   string    `bson:"cook_rotation_mode" json:"cook_rotation_mode"`
	CookRotationFirst  string    `bson:"cook_rotation_first" json:"cook_rotation_first"`
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidRotationMode reports whether mode is a recognized cook rotation mode.
func ValidRotationMode(mode string) bool {
	return mode == RotationNone || mode == RotationByDay || mode == RotationByWeek
}

// ValidRotationFirst reports whether first is a recognized rotation starter.
func ValidRotationFirst(first string) bool {
	return first == RotationFirstMe || first == RotationFirstPartner
}
