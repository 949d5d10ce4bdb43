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

type shoppingCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// ShoppingRepository persists shopping list items.
type ShoppingRepository struct {
	collection shoppingCollection
}

// NewShoppingRepository constructs a ShoppingRepository.
func NewShoppingRepository(collection shoppingCollection) *ShoppingRepository {
	return &ShoppingRepository{collection: collection}
}

func weekFilter(userID, weekStart string) bson.M {
	filter := bson.M{"user_id": userID}
	if weekStart != "" {
		filter["week_start"] = weekStart
	}
	return filter
}

// List returns the user's items, unchecked first, oldest first within each
// group. An empty weekStart returns all weeks.
func (r *ShoppingRepository) List(ctx context.Context, userID, weekStart string) ([]domain.ShoppingItem, error) {
	if r == nil || r.collection == nil {
		return nil, errors.New("shopping repository is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if userID == "" {
		return nil, errors.New("user_id is required")
	}

	cursor, err := r.collection.Find(ctx,
		weekFilter(userID, weekStart),
		options.Find().SetSort(bson.D{
			{Key: "is_checked", Value: 1},
			{Key: "created_at", Value: 1},
		}),
	)
	if err != nil {
		return nil, translateError("list shopping items", err)
	}

	var items []domain.ShoppingItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, translateError("decode shopping items", err)
	}

	return items, nil
}

// Insert stores one item with populated timestamps.
func (r *ShoppingRepository) Insert(ctx context.Context, item domain.ShoppingItem) (domain.ShoppingItem, error) {
	if r == nil || r.collection == nil {
		return domain.ShoppingItem{}, errors.New("shopping repository is not initialized")
	}
	if ctx == nil {
		return domain.ShoppingItem{}, errors.New("context is required")
	}
	if item.ItemID == "" || item.UserID == "" {
		return domain.ShoppingItem{}, errors.New("item_id and user_id are required")
	}
	if item.Name == "" {
		return domain.ShoppingItem{}, errors.New("item name is required")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	item.CreatedAt = now
	item.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return domain.ShoppingItem{}, translateError("insert shopping item", err)
	}

	return item, nil
}

// InsertMany stores a batch of items (menu generation, common staples) in one
// round trip. Timestamps are populated uniformly.
func (r *ShoppingRepository) InsertMany(ctx context.Context, items []domain.ShoppingItem) (int, error) {
	if r == nil || r.collection == nil {
		return 0, errors.New("shopping repository is not initialized")
	}
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if len(items) == 0 {
		return 0, nil
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		if item.ItemID == "" || item.UserID == "" || item.Name == "" {
			return 0, errors.New("item_id, user_id and name are required for every item")
		}
		item.CreatedAt = now
		item.UpdatedAt = now
		docs = append(docs, item)
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, translateError("insert shopping items", err)
	}

	return len(result.InsertedIDs), nil
}

// ItemPatch carries the optional field updates for one shopping item. Nil
// pointers leave the stored value untouched.
type ItemPatch struct {
	IsChecked *bool
	Name      *string
	Quantity  *string
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.IsChecked == nil && p.Name == nil && p.Quantity == nil
}

// Update applies a patch to one item enforcing ownership. ErrNotFound when
// the item does not exist or belongs to another user.
func (r *ShoppingRepository) Update(ctx context.Context, userID, itemID string, patch ItemPatch) (domain.ShoppingItem, error) {
	if r == nil || r.collection == nil {
		return domain.ShoppingItem{}, errors.New("shopping repository is not initialized")
	}
	if ctx == nil {
		return domain.ShoppingItem{}, errors.New("context is required")
	}
	if userID == "" || itemID == "" {
		return domain.ShoppingItem{}, errors.New("user_id and item_id are required")
	}
	if patch.Empty() {
		return domain.ShoppingItem{}, errors.New("patch must change at least one field")
	}

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if patch.IsChecked != nil {
		set["is_checked"] = *patch.IsChecked
	}
	if patch.Name != nil {
		set["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Quantity != nil {
		set["quantity"] = strings.TrimSpace(*patch.Quantity)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID, "item_id": itemID},
		bson.M{"$set": set},
	)
	if err != nil {
		return domain.ShoppingItem{}, translateError("update shopping item", err)
	}
	if result != nil && result.MatchedCount == 0 {
		return domain.ShoppingItem{}, translateError("update shopping item", mongo.ErrNoDocuments)
	}

	return r.get(ctx, userID, itemID)
}

func (r *ShoppingRepository) get(ctx context.Context, userID, itemID string) (domain.ShoppingItem, error) {
	result := r.collection.FindOne(ctx, bson.M{"user_id": userID, "item_id": itemID})
	if result == nil {
		return domain.ShoppingItem{}, errors.New("find shopping item returned no result")
	}
	if err := result.Err(); err != nil {
		return domain.ShoppingItem{}, translateError("find shopping item", err)
	}

	var item domain.ShoppingItem
	if err := result.Decode(&item); err != nil {
		return domain.ShoppingItem{}, translateError("decode shopping item", err)
	}

	return item, nil
}

// Delete removes one item enforcing ownership.
func (r *ShoppingRepository) Delete(ctx context.Context, userID, itemID string) error {
	if r == nil || r.collection == nil {
		return errors.New("shopping repository is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if userID == "" || itemID == "" {
		return errors.New("user_id and item_id are required")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "item_id": itemID})
	if err != nil {
		return translateError("delete shopping item", err)
	}
	if result != nil && result.DeletedCount == 0 {
		return translateError("delete shopping item", mongo.ErrNoDocuments)
	}

	return nil
}

// ClearChecked removes the user's checked items, optionally scoped to one
// week, and reports how many were deleted.
func (r *ShoppingRepository) ClearChecked(ctx context.Context, userID, weekStart string) (int64, error) {
	if r == nil || r.collection == nil {
		return 0, errors.New("shopping repository is not initialized")
	}
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if userID == "" {
		return 0, errors.New("user_id is required")
	}

	filter := weekFilter(userID, weekStart)
	filter["is_checked"] = true

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, translateError("clear checked items", err)
	}

	return result.DeletedCount, nil
}

type commonItemCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// CommonItemRepository persists the user's reusable staples.
type CommonItemRepository struct {
	collection commonItemCollection
}

// NewCommonItemRepository constructs a CommonItemRepository.
func NewCommonItemRepository(collection commonItemCollection) *CommonItemRepository {
	return &CommonItemRepository{collection: collection}
}

// List returns the user's common items sorted by name.
func (r *CommonItemRepository) List(ctx context.Context, userID string) ([]domain.CommonItem, error) {
	if r == nil || r.collection == nil {
		return nil, errors.New("common item repository is not initialized")
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
		return nil, translateError("list common items", err)
	}

	var items []domain.CommonItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, translateError("decode common items", err)
	}

	return items, nil
}

// FindByIDs returns the subset of the user's common items matching ids.
func (r *CommonItemRepository) FindByIDs(ctx context.Context, userID string, ids []string) ([]domain.CommonItem, error) {
	if r == nil || r.collection == nil {
		return nil, errors.New("common item repository is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if userID == "" {
		return nil, errors.New("user_id is required")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"user_id": userID,
		"item_id": bson.M{"$in": ids},
	})
	if err != nil {
		return nil, translateError("find common items", err)
	}

	var items []domain.CommonItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, translateError("decode common items", err)
	}

	return items, nil
}

// Insert stores a new common item; ErrDuplicate when the user already has an
// item with the same name (case-insensitive).
func (r *CommonItemRepository) Insert(ctx context.Context, item domain.CommonItem) (domain.CommonItem, error) {
	if r == nil || r.collection == nil {
		return domain.CommonItem{}, errors.New("common item repository is not initialized")
	}
	if ctx == nil {
		return domain.CommonItem{}, errors.New("context is required")
	}
	if item.ItemID == "" || item.UserID == "" {
		return domain.CommonItem{}, errors.New("item_id and user_id are required")
	}
	if item.Name == "" {
		return domain.CommonItem{}, errors.New("item name is required")
	}

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	doc := bson.M{
		"item_id":          item.ItemID,
		"user_id":          item.UserID,
		"name":             item.Name,
		"name_lower":       strings.ToLower(item.Name),
		"default_quantity": item.DefaultQuantity,
		"created_at":       item.CreatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return domain.CommonItem{}, translateError("insert common item", err)
	}

	return item, nil
}
