package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tg_meal_planner_bot/internal/domain"
	"tg_meal_planner_bot/internal/logging"
	"tg_meal_planner_bot/internal/store"
)

// UserStore is the subset of the user repository identity resolution needs.
type UserStore interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (domain.User, error)
	Insert(ctx context.Context, user domain.User) (domain.User, error)
	RefreshProfile(ctx context.Context, user domain.User) error
}

// SettingsStore provisions the companion settings record for new users.
type SettingsStore interface {
	EnsureDefaults(ctx context.Context, userID, recipientChatID string) error
}

// newUserID is overridable for tests.
var newUserID = uuid.NewString

// Resolver maps a verified Telegram identity to a stable internal user id,
// creating the internal record on first contact. It keeps no state of its
// own; concurrent first logins for the same Telegram account are arbitrated
// by the storage layer's unique telegram_id index.
type Resolver struct {
	users    UserStore
	settings SettingsStore
	logger   *logrus.Entry
}

// NewResolver constructs a Resolver.
func NewResolver(users UserStore, settings SettingsStore, logger *logrus.Entry) *Resolver {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Resolver{
		users:    users,
		settings: settings,
		logger:   logger,
	}
}

// Resolve returns the internal user id for a verified Telegram identity,
// provisioning the user and their default settings on first sight. Existing
// users get a best-effort profile refresh; a refresh failure never fails the
// login. Only errors on the primary lookup/insert propagate.
func (r *Resolver) Resolve(ctx context.Context, tgUser WebAppUser) (string, bool, error) {
	if r == nil || r.users == nil {
		return "", false, errors.New("resolver is not initialized")
	}
	if ctx == nil {
		return "", false, errors.New("context is required")
	}
	if tgUser.ID == 0 {
		return "", false, errors.New("telegram id is required")
	}

	existing, err := r.users.FindByTelegramID(ctx, tgUser.ID)
	if err == nil {
		if refreshErr := r.users.RefreshProfile(ctx, userRecord(existing.UserID, tgUser)); refreshErr != nil {
			r.logger.WithFields(logging.Fields{
				"event":       "profile_refresh_failed",
				"telegram_id": tgUser.ID,
			}).WithError(refreshErr).Warn("failed to refresh user profile")
		}
		return existing.UserID, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", false, fmt.Errorf("lookup user: %w", err)
	}

	created, err := r.users.Insert(ctx, userRecord(newUserID(), tgUser))
	if errors.Is(err, store.ErrDuplicate) {
		// Lost the first-contact race; the unique index guarantees the
		// winner's record is now visible.
		winner, lookupErr := r.users.FindByTelegramID(ctx, tgUser.ID)
		if lookupErr != nil {
			return "", false, fmt.Errorf("lookup user after duplicate insert: %w", lookupErr)
		}
		return winner.UserID, false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("create user: %w", err)
	}

	r.logger.WithFields(logging.Fields{
		"event":       "user_registered",
		"telegram_id": tgUser.ID,
		"user_id":     created.UserID,
	}).Info("registered new user")

	r.ensureSettings(ctx, created.UserID, tgUser.ID)

	return created.UserID, true, nil
}

// LookupInternalID resolves a previously registered Telegram id without
// touching the profile; this is the continuing-session path. A miss is
// reported via the boolean, not an error.
func (r *Resolver) LookupInternalID(ctx context.Context, telegramID int64) (string, bool, error) {
	if r == nil || r.users == nil {
		return "", false, errors.New("resolver is not initialized")
	}
	if ctx == nil {
		return "", false, errors.New("context is required")
	}
	if telegramID == 0 {
		return "", false, nil
	}

	user, err := r.users.FindByTelegramID(ctx, telegramID)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup user: %w", err)
	}

	return user.UserID, true, nil
}

// ensureSettings provisions the companion settings record defaulting the
// notification recipient to the user's own Telegram chat. Failures are logged
// and swallowed: the user exists, settings heal lazily on the next login.
func (r *Resolver) ensureSettings(ctx context.Context, userID string, telegramID int64) {
	if r.settings == nil {
		return
	}

	err := r.settings.EnsureDefaults(ctx, userID, strconv.FormatInt(telegramID, 10))
	if err != nil {
		r.logger.WithFields(logging.Fields{
			"event":       "settings_provision_failed",
			"telegram_id": telegramID,
			"user_id":     userID,
		}).WithError(err).Warn("failed to provision default settings")
	}
}

func userRecord(userID string, tgUser WebAppUser) domain.User {
	return domain.User{
		UserID:       userID,
		TelegramID:   tgUser.ID,
		FirstName:    tgUser.FirstName,
		LastName:     tgUser.LastName,
		Username:     tgUser.Username,
		LanguageCode: tgUser.LanguageCode,
		PhotoURL:     tgUser.PhotoURL,
		IsPremium:    tgUser.IsPremium,
	}
}
