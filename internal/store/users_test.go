package store

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"tg_meal_planner_bot/internal/domain"
)

func TestUserRepositoryFindByTelegramID(t *testing.T) {
	coll := &fakeCollection{
		findOneDoc: bson.M{
			"user_id":     "uid-1",
			"telegram_id": int64(42),
			"first_name":  "Ann",
		},
	}
	repo := NewUserRepository(coll)

	user, err := repo.FindByTelegramID(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected lookup to succeed, got %v", err)
	}
	if user.UserID != "uid-1" || user.TelegramID != 42 || user.FirstName != "Ann" {
		t.Fatalf("unexpected user: %+v", user)
	}

	filter, ok := coll.findOneFilters[0].(bson.M)
	if !ok || filter["telegram_id"] != int64(42) {
		t.Fatalf("expected telegram_id filter, got %v", coll.findOneFilters[0])
	}
}

func TestUserRepositoryFindByTelegramIDMapsMiss(t *testing.T) {
	repo := NewUserRepository(&fakeCollection{})

	_, err := repo.FindByTelegramID(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepositoryInsertPopulatesTimestamps(t *testing.T) {
	coll := &fakeCollection{}
	repo := NewUserRepository(coll)

	user, err := repo.Insert(context.Background(), domain.User{UserID: "uid-1", TelegramID: 42})
	if err != nil {
		t.Fatalf("expected insert to succeed, got %v", err)
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be populated, got %+v", user)
	}
	if len(coll.inserted) != 1 {
		t.Fatalf("expected one inserted document, got %d", len(coll.inserted))
	}
}

func TestUserRepositoryInsertMapsDuplicate(t *testing.T) {
	coll := &fakeCollection{insertErr: duplicateKeyErr()}
	repo := NewUserRepository(coll)

	_, err := repo.Insert(context.Background(), domain.User{UserID: "uid-1", TelegramID: 42})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUserRepositoryInsertValidatesInput(t *testing.T) {
	repo := NewUserRepository(&fakeCollection{})

	if _, err := repo.Insert(context.Background(), domain.User{TelegramID: 42}); err == nil {
		t.Fatalf("expected error for missing user_id")
	}
	if _, err := repo.Insert(context.Background(), domain.User{UserID: "uid-1"}); err == nil {
		t.Fatalf("expected error for missing telegram id")
	}
	if _, err := repo.Insert(nil, domain.User{UserID: "uid-1", TelegramID: 42}); err == nil {
		t.Fatalf("expected error for nil context")
	}
}

func TestUserRepositoryRefreshProfileTargetsTelegramID(t *testing.T) {
	coll := &fakeCollection{}
	repo := NewUserRepository(coll)

	err := repo.RefreshProfile(context.Background(), domain.User{TelegramID: 42, FirstName: "Anna"})
	if err != nil {
		t.Fatalf("expected refresh to succeed, got %v", err)
	}

	if len(coll.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(coll.updates))
	}
	filter, ok := coll.updates[0].filter.(bson.M)
	if !ok || filter["telegram_id"] != int64(42) {
		t.Fatalf("expected telegram_id filter, got %v", coll.updates[0].filter)
	}
	update, ok := coll.updates[0].update.(bson.M)
	if !ok {
		t.Fatalf("expected bson.M update, got %T", coll.updates[0].update)
	}
	set, ok := update["$set"].(bson.M)
	if !ok || set["first_name"] != "Anna" {
		t.Fatalf("expected $set with first_name, got %v", update)
	}
}

func TestUserRepositoryListAll(t *testing.T) {
	coll := &fakeCollection{
		findDocs: []interface{}{
			bson.M{"user_id": "uid-1", "telegram_id": int64(1)},
			bson.M{"user_id": "uid-2", "telegram_id": int64(2)},
		},
	}
	repo := NewUserRepository(coll)

	users, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(users) != 2 || users[0].UserID != "uid-1" || users[1].UserID != "uid-2" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestSettingsRepositoryGetMapsMiss(t *testing.T) {
	repo := NewSettingsRepository(&fakeCollection{})

	_, err := repo.Get(context.Background(), "uid-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSettingsRepositoryEnsureDefaultsUpsertsOnce(t *testing.T) {
	coll := &fakeCollection{}
	repo := NewSettingsRepository(coll)

	if err := repo.EnsureDefaults(context.Background(), "uid-1", "42"); err != nil {
		t.Fatalf("expected ensure to succeed, got %v", err)
	}

	if len(coll.updates) != 1 || !coll.updates[0].upsert {
		t.Fatalf("expected one upsert, got %+v", coll.updates)
	}

	update, ok := coll.updates[0].update.(bson.M)
	if !ok {
		t.Fatalf("expected bson.M update, got %T", coll.updates[0].update)
	}
	setOnInsert, ok := update["$setOnInsert"].(bson.M)
	if !ok {
		t.Fatalf("expected $setOnInsert, got %v", update)
	}
	if setOnInsert["recipient_chat_id"] != "42" {
		t.Fatalf("expected default recipient 42, got %v", setOnInsert["recipient_chat_id"])
	}
	if setOnInsert["cook_rotation_mode"] != domain.RotationNone {
		t.Fatalf("expected rotation none default, got %v", setOnInsert["cook_rotation_mode"])
	}
	if _, hasSet := update["$set"]; hasSet {
		t.Fatalf("ensure must not overwrite existing settings, got %v", update)
	}
}

func TestSettingsRepositorySaveUpsertsAndRereads(t *testing.T) {
	coll := &fakeCollection{
		findOneDoc: bson.M{
			"user_id":             "uid-1",
			"recipient_chat_id":   "100",
			"cook_rotation_mode":  domain.RotationByWeek,
			"cook_rotation_first": domain.RotationFirstPartner,
		},
	}
	repo := NewSettingsRepository(coll)

	saved, err := repo.Save(context.Background(), domain.Settings{
		UserID:            "uid-1",
		RecipientChatID:   "100",
		CookRotationMode:  domain.RotationByWeek,
		CookRotationFirst: domain.RotationFirstPartner,
	})
	if err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}
	if saved.RecipientChatID != "100" || saved.CookRotationMode != domain.RotationByWeek {
		t.Fatalf("unexpected saved settings: %+v", saved)
	}
	if len(coll.updates) != 1 || !coll.updates[0].upsert {
		t.Fatalf("expected one upsert, got %+v", coll.updates)
	}
}
