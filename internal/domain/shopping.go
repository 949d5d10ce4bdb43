package domain

import "time"

// Shopping list item origins.
const (
	SourceDish   = "dish"
	SourceManual = "manual"
	SourceCommon = "common"
)

// ShoppingItem is one entry on a user's shopping list. WeekStart ties the
// item to a planned week when it was generated from a menu; manual items may
// leave it empty.
type ShoppingItem struct {
	ItemID       string    `bson:"item_id" json:"id"`
	UserID       string    `bson:"user_id" json:"-"`
	Name         string    `bson:"name" json:"name"`
	Quantity     string    `bson:"quantity,omitempty" json:"quantity,omitempty"`
	IsChecked    bool      `bson:"is_checked" json:"is_checked"`
	SourceType   string    `bson:"source_type" json:"source_type"`
	SourceDishID string    `bson:"source_dish_id,omitempty" json:"source_dish_id,omitempty"`
	WeekStart    string    `bson:"week_start,omitempty" json:"week_start,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// CommonItem is a reusable staple (milk, bread) that can be added to the
// shopping list in one tap. Names are unique per user (case-insensitive).
type CommonItem struct {
	ItemID          string    `bson:"item_id" json:"id"`
	UserID          string    `bson:"user_id" json:"-"`
	Name            string    `bson:"name" json:"name"`
	DefaultQuantity string    `bson:"default_quantity,omitempty" json:"default_quantity,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}
