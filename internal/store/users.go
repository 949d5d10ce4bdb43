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

type userCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// UserRepository persists and retrieves internal user records keyed by their
// Telegram id. The collection carries a unique index on telegram_id; Insert
// surfaces ErrDuplicate when two first logins race.
type UserRepository struct {
	collection userCollection
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(collection userCollection) *UserRepository {
	return &UserRepository{collection: collection}
}

// FindByTelegramID fetches the user owning the given Telegram id, returning
// ErrNotFound when no record exists.
func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (domain.User, error) {
	if r == nil || r.collection == nil {
		return domain.User{}, errors.New("user repository is not initialized")
	}
	if ctx == nil {
		return domain.User{}, errors.New("context is required")
	}
	if telegramID == 0 {
		return domain.User{}, errors.New("telegram id is required")
	}

	result := r.collection.FindOne(ctx, bson.M{"telegram_id": telegramID})
	if result == nil {
		return domain.User{}, errors.New("find user returned no result")
	}
	if err := result.Err(); err != nil {
		return domain.User{}, translateError("find user", err)
	}

	var user domain.User
	if err := result.Decode(&user); err != nil {
		return domain.User{}, translateError("decode user", err)
	}

	return user, nil
}

// Insert stores a new user record with populated timestamps. A concurrent
// insert for the same telegram_id yields ErrDuplicate.
func (r *UserRepository) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	if r == nil || r.collection == nil {
		return domain.User{}, errors.New("user repository is not initialized")
	}
	if ctx == nil {
		return domain.User{}, errors.New("context is required")
	}
	if user.UserID == "" {
		return domain.User{}, errors.New("user_id is required")
	}
	if user.TelegramID == 0 {
		return domain.User{}, errors.New("telegram id is required")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return domain.User{}, translateError("insert user", err)
	}

	return user, nil
}

// RefreshProfile updates the mutable profile fields of an existing user. It
// is best-effort from the caller's perspective: identity resolution logs and
// continues when this fails.
func (r *UserRepository) RefreshProfile(ctx context.Context, user domain.User) error {
	if r == nil || r.collection == nil {
		return errors.New("user repository is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if user.TelegramID == 0 {
		return errors.New("telegram id is required")
	}

	update := bson.M{
		"$set": bson.M{
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"username":      user.Username,
			"language_code": user.LanguageCode,
			"photo_url":     user.PhotoURL,
			"is_premium":    user.IsPremium,
			"updated_at":    time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"telegram_id": user.TelegramID}, update); err != nil {
		return translateError("refresh profile", err)
	}

	return nil
}

// ListAll returns every registered user; used by the reminder fan-out.
func (r *UserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	if r == nil || r.collection == nil {
		return nil, errors.New("user repository is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, translateError("list users", err)
	}

	var users []domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translateError("decode users", err)
	}

	return users, nil
}

type settingsCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// SettingsRepository persists per-user notification preferences keyed by the
// internal user id.
type SettingsRepository struct {
	collection settingsCollection
}

// NewSettingsRepository constructs a SettingsRepository.
func NewSettingsRepository(collection settingsCollection) *SettingsRepository {
	return &SettingsRepository{collection: collection}
}

// Get fetches the settings for the given internal user id, returning
// ErrNotFound when the record has not been provisioned yet.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (domain.Settings, error) {
	if r == nil || r.collection == nil {
		return domain.Settings{}, errors.New("settings repository is not initialized")
	}
	if ctx == nil {
		return domain.Settings{}, errors.New("context is required")
	}
	if userID == "" {
		return domain.Settings{}, errors.New("user_id is required")
	}

	result := r.collection.FindOne(ctx, bson.M{"user_id": userID})
	if result == nil {
		return domain.Settings{}, errors.New("find settings returned no result")
	}
	if err := result.Err(); err != nil {
		return domain.Settings{}, translateError("find settings", err)
	}

	var settings domain.Settings
	if err := result.Decode(&settings); err != nil {
		return domain.Settings{}, translateError("decode settings", err)
	}

	return settings, nil
}

// EnsureDefaults provisions a settings record with the default notification
// recipient if one does not exist yet. Existing records are left untouched,
// which makes the call safe to repeat for lazy healing.
func (r *SettingsRepository) EnsureDefaults(ctx context.Context, userID, recipientChatID string) error {
	if r == nil || r.collection == nil {
		return errors.New("settings repository is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if userID == "" {
		return errors.New("user_id is required")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$setOnInsert": bson.M{
			"user_id":             userID,
			"recipient_chat_id":   recipientChatID,
			"cook_rotation_mode":  domain.RotationNone,
			"cook_rotation_first": domain.RotationFirstMe,
			"created_at":          now,
			"updated_at":          now,
		},
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return translateError("ensure settings", err)
	}

	return nil
}

// Save upserts the mutable settings fields and returns the stored state.
func (r *SettingsRepository) Save(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	if r == nil || r.collection == nil {
		return domain.Settings{}, errors.New("settings repository is not initialized")
	}
	if ctx == nil {
		return domain.Settings{}, errors.New("context is required")
	}
	if settings.UserID == "" {
		return domain.Settings{}, errors.New("user_id is required")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"recipient_chat_id":     settings.RecipientChatID,
			"second_member_chat_id": settings.SecondMemberChatID,
			"cook_rotation_mode":    settings.CookRotationMode,
			"cook_rotation_first":   settings.CookRotationFirst,
			"updated_at":            now,
		},
		"$setOnInsert": bson.M{
			"user_id":    settings.UserID,
			"created_at": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": settings.UserID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return domain.Settings{}, translateError("save settings", err)
	}

	return r.Get(ctx, settings.UserID)
}
