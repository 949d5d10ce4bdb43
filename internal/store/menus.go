package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tg_meal_planner_bot/internal/domain"
)

type menuCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// MenuRepository persists weekly menus, one per user and week.
type MenuRepository struct {
	collection menuCollection
}

// NewMenuRepository constructs a MenuRepository.
func NewMenuRepository(collection menuCollection) *MenuRepository {
	return &MenuRepository{collection: collection}
}

// Get fetches the menu for one week, returning ErrNotFound when the week has
// not been planned yet.
func (r *MenuRepository) Get(ctx context.Context, userID, weekStart string) (domain.WeekMenu, error) {
	if r == nil || r.collection == nil {
		return domain.WeekMenu{}, errors.New("menu repository is not initialized")
	}
	if ctx == nil {
		return domain.WeekMenu{}, errors.New("context is required")
	}
	if userID == "" || weekStart == "" {
		return domain.WeekMenu{}, errors.New("user_id and week_start are required")
	}

	result := r.collection.FindOne(ctx, bson.M{"user_id": userID, "week_start": weekStart})
	if result == nil {
		return domain.WeekMenu{}, errors.New("find menu returned no result")
	}
	if err := result.Err(); err != nil {
		return domain.WeekMenu{}, translateError("find menu", err)
	}

	var menu domain.WeekMenu
	if err := result.Decode(&menu); err != nil {
		return domain.WeekMenu{}, translateError("decode menu", err)
	}

	return menu, nil
}

// List returns the user's planned weeks, newest first.
func (r *MenuRepository) List(ctx context.Context, userID string) ([]domain.WeekMenu, error) {
	if r == nil || r.collection == nil {
		return nil, errors.New("menu repository is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if userID == "" {
		return nil, errors.New("user_id is required")
	}

	cursor, err := r.collection.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "week_start", Value: -1}}),
	)
	if err != nil {
		return nil, translateError("list menus", err)
	}

	var menus []domain.WeekMenu
	if err := cursor.All(ctx, &menus); err != nil {
		return nil, translateError("decode menus", err)
	}

	return menus, nil
}

// Save upserts the week's menu grid. The unique (user_id, week_start) index
// keeps concurrent saves from producing two records for the same week.
func (r *MenuRepository) Save(ctx context.Context, menu domain.WeekMenu) (domain.WeekMenu, error) {
	if r == nil || r.collection == nil {
		return domain.WeekMenu{}, errors.New("menu repository is not initialized")
	}
	if ctx == nil {
		return domain.WeekMenu{}, errors.New("context is required")
	}
	if menu.UserID == "" || menu.WeekStart == "" {
		return domain.WeekMenu{}, errors.New("user_id and week_start are required")
	}
	if len(menu.Days) != domain.DaysPerWeek {
		return domain.WeekMenu{}, errors.New("menu must cover exactly seven days")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"days":       menu.Days,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"user_id":    menu.UserID,
			"week_start": menu.WeekStart,
			"created_at": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": menu.UserID, "week_start": menu.WeekStart},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return domain.WeekMenu{}, translateError("save menu", err)
	}

	return r.Get(ctx, menu.UserID, menu.WeekStart)
}
