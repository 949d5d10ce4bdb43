package domain

import "time"

// Dish categories matching the weekly menu slots.
const (
	CategoryBrunch  = "brunch"
	CategoryDinner  = "dinner"
	CategoryDessert = "dessert"
)

// Optional dish cuisines.
const (
	CuisineAsian    = "asian"
	CuisineEuropean = "european"
	CuisineSlavic   = "slavic"
)

// Categories lists the valid dish categories in menu order.
var Categories = []string{CategoryBrunch, CategoryDinner, CategoryDessert}

// Dish is a user-owned dish in the personal catalog. Names are unique per
// user and category (case-insensitive).
type Dish struct {
	DishID    string    `bson:"dish_id" json:"id"`
	UserID    string    `bson:"user_id" json:"-"`
	Name      string    `bson:"name" json:"name"`
	Category  string    `bson:"category" json:"category"`
	Cuisine   string    `bson:"cuisine,omitempty" json:"cuisine,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Ingredient belongs to a dish; quantity is free-form ("2 pcs", "300 g").
type Ingredient struct {
	IngredientID string    `bson:"ingredient_id" json:"id"`
	DishID       string    `bson:"dish_id" json:"dish_id"`
	UserID       string    `bson:"user_id" json:"-"`
	Name         string    `bson:"name" json:"name"`
	Quantity     string    `bson:"quantity,omitempty" json:"quantity,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// ValidCategory reports whether category is a recognized dish category.
func ValidCategory(category string) bool {
	return category == CategoryBrunch || category == CategoryDinner || category == CategoryDessert
}

// ValidCuisine reports whether cuisine is empty or a recognized cuisine.
func ValidCuisine(cuisine string) bool {
	return cuisine == "" || cuisine == CuisineAsian || cuisine == CuisineEuropean || cuisine == CuisineSlavic
}
