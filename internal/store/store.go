// Package store encapsulates MongoDB client management, collection helpers,
// and the repositories built on top of them.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"tg_meal_planner_bot/internal/config"
)

// Collection names used across the service.
const (
	CollectionUsers         = "users"
	CollectionUserSettings  = "user_settings"
	CollectionDishes        = "dishes"
	CollectionIngredients   = "dish_ingredients"
	CollectionWeekMenus     = "week_menus"
	CollectionShoppingItems = "shopping_items"
	CollectionCommonItems   = "common_items"
)

// Sentinel errors translated from MongoDB so callers do not depend on driver
// error types.
var (
	// ErrNotFound is returned when a single-document lookup matches nothing.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("store: duplicate key")
)

// mongoClient captures the subset of mongo.Client behavior we rely on to allow
// lightweight stubbing in tests without a live Mongo deployment.
type mongoClient interface {
	Ping(context.Context, *readpref.ReadPref) error
	Database(string, ...*options.DatabaseOptions) *mongo.Database
	Disconnect(context.Context) error
}

// connectMongo is overridable for tests.
var connectMongo = func(ctx context.Context, opts *options.ClientOptions) (mongoClient, error) {
	return mongo.Connect(ctx, opts)
}

// createIndexes is overridable for tests.
var createIndexes = func(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) ([]string, error) {
	return coll.Indexes().CreateMany(ctx, models)
}

// Manager owns a MongoDB client and the configured database handle.
type Manager struct {
	client mongoClient
	db     *mongo.Database
}

// NewManager initializes the Mongo client using the supplied configuration and
// verifies connectivity with a ping.
func NewManager(ctx context.Context, cfg config.Config) (*Manager, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	client, err := connectMongo(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Manager{
		client: client,
		db:     client.Database(cfg.MongoDB),
	}, nil
}

// Database returns the configured database handle.
func (m *Manager) Database() *mongo.Database {
	return m.db
}

// Ping verifies connectivity against the primary; used by the health endpoint.
func (m *Manager) Ping(ctx context.Context) error {
	if m == nil || m.client == nil {
		return errors.New("store manager is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	return m.client.Ping(ctx, readpref.Primary())
}

// Collection returns a collection handle for the given name.
func (m *Manager) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// Users returns the users collection handle.
func (m *Manager) Users() *mongo.Collection {
	return m.Collection(CollectionUsers)
}

// UserSettings returns the user settings collection handle.
func (m *Manager) UserSettings() *mongo.Collection {
	return m.Collection(CollectionUserSettings)
}

// Dishes returns the dishes collection handle.
func (m *Manager) Dishes() *mongo.Collection {
	return m.Collection(CollectionDishes)
}

// Ingredients returns the dish ingredients collection handle.
func (m *Manager) Ingredients() *mongo.Collection {
	return m.Collection(CollectionIngredients)
}

// WeekMenus returns the weekly menus collection handle.
func (m *Manager) WeekMenus() *mongo.Collection {
	return m.Collection(CollectionWeekMenus)
}

// ShoppingItems returns the shopping list items collection handle.
func (m *Manager) ShoppingItems() *mongo.Collection {
	return m.Collection(CollectionShoppingItems)
}

// CommonItems returns the common items collection handle.
func (m *Manager) CommonItems() *mongo.Collection {
	return m.Collection(CollectionCommonItems)
}

// EnsureBaseIndexes creates the foundational indexes for all collections.
// The unique telegram_id index on users is load-bearing: identity resolution
// relies on it to arbitrate concurrent first logins for the same Telegram
// account. Collections are created implicitly if they do not already exist.
func (m *Manager) EnsureBaseIndexes(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if m == nil || m.db == nil {
		return errors.New("store manager is not initialized")
	}

	plan := []struct {
		coll    *mongo.Collection
		indexes []mongo.IndexModel
	}{
		{
			coll: m.Users(),
			indexes: []mongo.IndexModel{
				{
					Keys: bson.D{{Key: "telegram_id", Value: 1}},
					Options: options.Index().
						SetName("telegram_id_unique").
						SetUnique(true),
				},
			},
		},
		{
			coll: m.UserSettings(),
			indexes: []mongo.IndexModel{
				{
					Keys: bson.D{{Key: "user_id", Value: 1}},
					Options: options.Index().
						SetName("user_id_unique").
						SetUnique(true),
				},
			},
		},
		{
			coll: m.Dishes(),
			indexes: []mongo.IndexModel{
				{
					Keys: bson.D{
						{Key: "user_id", Value: 1},
						{Key: "category", Value: 1},
						{Key: "name_lower", Value: 1},
					},
					Options: options.Index().
						SetName("user_category_name_unique").
						SetUnique(true),
				},
			},
		},
		{
			coll: m.Ingredients(),
			indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "dish_id", Value: 1}},
					Options: options.Index().SetName("dish_id"),
				},
			},
		},
		{
			coll: m.WeekMenus(),
			indexes: []mongo.IndexModel{
				{
					Keys: bson.D{
						{Key: "user_id", Value: 1},
						{Key: "week_start", Value: 1},
					},
					Options: options.Index().
						SetName("user_week_unique").
						SetUnique(true),
				},
			},
		},
		{
			coll: m.ShoppingItems(),
			indexes: []mongo.IndexModel{
				{
					Keys: bson.D{
						{Key: "user_id", Value: 1},
						{Key: "week_start", Value: 1},
					},
					Options: options.Index().SetName("user_week"),
				},
			},
		},
		{
			coll: m.CommonItems(),
			indexes: []mongo.IndexModel{
				{
					Keys: bson.D{
						{Key: "user_id", Value: 1},
						{Key: "name_lower", Value: 1},
					},
					Options: options.Index().
						SetName("user_name_unique").
						SetUnique(true),
				},
			},
		},
	}

	for _, entry := range plan {
		if _, err := createIndexes(ctx, entry.coll, entry.indexes); err != nil {
			return fmt.Errorf("create %s indexes: %w", entry.coll.Name(), err)
		}
	}

	return nil
}

// Close disconnects the Mongo client.
func (m *Manager) Close(ctx context.Context) error {
	if m == nil || m.client == nil {
		return nil
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	return m.client.Disconnect(ctx)
}

// translateError maps driver-level errors onto the package sentinels while
// preserving the original via %w for diagnostics.
func translateError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
