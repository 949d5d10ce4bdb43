package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tg_meal_planner_bot/internal/domain"
)

type dishCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// DishRepository persists the per-user dish catalog. A unique index on
// (user_id, category, name_lower) rejects case-insensitive duplicates.
type DishRepository struct {
	collection dishCollection
}

// NewDishRepository constructs a DishRepository.
func NewDishRepository(collection dishCollection) *DishRepository {
	return &DishRepository{collection: collection}
}

// ListByUser returns the user's dishes sorted by name.
func (r *DishRepository) ListByUser(ctx context.Context, userID string) ([]domain.Dish, error) {
	if r == nil || r.collection == nil {
		return nil, errors.New("dish repository is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if userID == "" {
		return nil, errors.New("user_id is required")
	}

	cursor, err := r.collection.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, translateError("list dishes", err)
	}

	var dishes []domain.Dish
	if err := cursor.All(ctx, &dishes); err != nil {
		return nil, translateError("decode dishes", err)
	}

	return dishes, nil
}

// FindByNames returns the user's dishes whose names appear in names.
func (r *DishRepository) FindByNames(ctx context.Context, userID string, names []string) ([]domain.Dish, error) {
	if r == nil || r.collection == nil {
		return nil, errors.New("dish repository is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if userID == "" {
		return nil, errors.New("user_id is required")
	}
	if len(names) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"user_id": userID,
		"name":    bson.M{"$in": names},
	})
	if err != nil {
		return nil, translateError("find dishes by name", err)
	}

	var dishes []domain.Dish
	if err := cursor.All(ctx, &dishes); err != nil {
		return nil, translateError("decode dishes", err)
	}

	return dishes, nil
}

// Get fetches a single dish enforcing ownership through the filter.
func (r *DishRepository) Get(ctx context.Context, userID, dishID string) (domain.Dish, error) {
	if r == nil || r.collection == nil {
		return domain.Dish{}, errors.New("dish repository is not initialized")
	}
	if ctx == nil {
		return domain.Dish{}, errors.New("context is required")
	}
	if userID == "" || dishID == "" {
		return domain.Dish{}, errors.New("user_id and dish_id are required")
	}

	result := r.collection.FindOne(ctx, bson.M{"user_id": userID, "dish_id": dishID})
	if result == nil {
		return domain.Dish{}, errors.New("find dish returned no result")
	}
	if err := result.Err(); err != nil {
		return domain.Dish{}, translateError("find dish", err)
	}

	var dish domain.Dish
	if err := result.Decode(&dish); err != nil {
		return domain.Dish{}, translateError("decode dish", err)
	}

	return dish, nil
}

// Insert stores a new dish, returning ErrDuplicate when the user already has
// a dish with the same name in the same category.
func (r *DishRepository) Insert(ctx context.Context, dish domain.Dish) (domain.Dish, error) {
	if r == nil || r.collection == nil {
		return domain.Dish{}, errors.New("dish repository is not initialized")
	}
	if ctx == nil {
		return domain.Dish{}, errors.New("context is required")
	}
	if dish.DishID == "" || dish.UserID == "" {
		return domain.Dish{}, errors.New("dish_id and user_id are required")
	}
	if dish.Name == "" {
		return domain.Dish{}, errors.New("dish name is required")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	dish.CreatedAt = now
	dish.UpdatedAt = now

	doc := bson.M{
		"dish_id":    dish.DishID,
		"user_id":    dish.UserID,
		"name":       dish.Name,
		"name_lower": strings.ToLower(dish.Name),
		"category":   dish.Category,
		"cuisine":    dish.Cuisine,
		"created_at": dish.CreatedAt,
		"updated_at": dish.UpdatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return domain.Dish{}, translateError("insert dish", err)
	}

	return dish, nil
}

// Update rewrites the mutable dish fields, enforcing ownership. ErrNotFound
// when the dish does not exist or belongs to someone else, ErrDuplicate when
// the new name collides within the category.
func (r *DishRepository) Update(ctx context.Context, userID, dishID, name, category, cuisine string) (domain.Dish, error) {
	if r == nil || r.collection == nil {
		return domain.Dish{}, errors.New("dish repository is not initialized")
	}
	if ctx == nil {
		return domain.Dish{}, errors.New("context is required")
	}
	if userID == "" || dishID == "" {
		return domain.Dish{}, errors.New("user_id and dish_id are required")
	}

	update := bson.M{
		"$set": bson.M{
			"name":       name,
			"name_lower": strings.ToLower(name),
			"category":   category,
			"cuisine":    cuisine,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID, "dish_id": dishID}, update)
	if err != nil {
		return domain.Dish{}, translateError("update dish", err)
	}
	if result != nil && result.MatchedCount == 0 {
		return domain.Dish{}, translateError("update dish", mongo.ErrNoDocuments)
	}

	return r.Get(ctx, userID, dishID)
}

// Delete removes a dish enforcing ownership. ErrNotFound when nothing matched.
func (r *DishRepository) Delete(ctx context.Context, userID, dishID string) error {
	if r == nil || r.collection == nil {
		return errors.New("dish repository is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if userID == "" || dishID == "" {
		return errors.New("user_id and dish_id are required")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "dish_id": dishID})
	if err != nil {
		return translateError("delete dish", err)
	}
	if result != nil && result.DeletedCount == 0 {
		return translateError("delete dish", mongo.ErrNoDocuments)
	}

	return nil
}

type ingredientCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// IngredientRepository persists dish ingredients.
type IngredientRepository struct {
	collection ingredientCollection
}

// NewIngredientRepository constructs an IngredientRepository.
func NewIngredientRepository(collection ingredientCollection) *IngredientRepository {
	return &IngredientRepository{collection: collection}
}

// ListByDish returns the ingredients of one dish sorted by creation time.
func (r *IngredientRepository) ListByDish(ctx context.Context, userID, dishID string) ([]domain.Ingredient, error) {
	if r == nil || r.collection == nil {
		return nil, errors.New("ingredient repository is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if userID == "" || dishID == "" {
		return nil, errors.New("user_id and dish_id are required")
	}

	cursor, err := r.collection.Find(ctx,
		bson.M{"user_id": userID, "dish_id": dishID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, translateError("list ingredients", err)
	}

	var ingredients []domain.Ingredient
	if err := cursor.All(ctx, &ingredients); err != nil {
		return nil, translateError("decode ingredients", err)
	}

	return ingredients, nil
}

// ListByDishIDs returns all ingredients across the given dishes.
func (r *IngredientRepository) ListByDishIDs(ctx context.Context, dishIDs []string) ([]domain.Ingredient, error) {
	if r == nil || r.collection == nil {
		return nil, errors.New("ingredient repository is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if len(dishIDs) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"dish_id": bson.M{"$in": dishIDs}})
	if err != nil {
		return nil, translateError("list ingredients by dish", err)
	}

	var ingredients []domain.Ingredient
	if err := cursor.All(ctx, &ingredients); err != nil {
		return nil, translateError("decode ingredients", err)
	}

	return ingredients, nil
}

// Insert stores a new ingredient with a populated creation timestamp.
func (r *IngredientRepository) Insert(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error) {
	if r == nil || r.collection == nil {
		return domain.Ingredient{}, errors.New("ingredient repository is not initialized")
	}
	if ctx == nil {
		return domain.Ingredient{}, errors.New("context is required")
	}
	if ingredient.IngredientID == "" || ingredient.DishID == "" || ingredient.UserID == "" {
		return domain.Ingredient{}, errors.New("ingredient_id, dish_id and user_id are required")
	}
	if ingredient.Name == "" {
		return domain.Ingredient{}, errors.New("ingredient name is required")
	}

	if ingredient.CreatedAt.IsZero() {
		ingredient.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	if _, err := r.collection.InsertOne(ctx, ingredient); err != nil {
		return domain.Ingredient{}, translateError("insert ingredient", err)
	}

	return ingredient, nil
}

// Delete removes one ingredient enforcing ownership.
func (r *IngredientRepository) Delete(ctx context.Context, userID, ingredientID string) error {
	if r == nil || r.collection == nil {
		return errors.New("ingredient repository is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if userID == "" || ingredientID == "" {
		return errors.New("user_id and ingredient_id are required")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "ingredient_id": ingredientID})
	if err != nil {
		return translateError("delete ingredient", err)
	}
	if result != nil && result.DeletedCount == 0 {
		return translateError("delete ingredient", mongo.ErrNoDocuments)
	}

	return nil
}

// DeleteByDish removes every ingredient of a dish; used when the dish itself
// is deleted.
func (r *IngredientRepository) DeleteByDish(ctx context.Context, userID, dishID string) error {
	if r == nil || r.collection == nil {
		return errors.New("ingredient repository is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if userID == "" || dishID == "" {
		return errors.New("user_id and dish_id are required")
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID, "dish_id": dishID}); err != nil {
		return translateError("delete dish ingredients", err)
	}

	return nil
}
