package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tg_meal_planner_bot/internal/domain"
	"tg_meal_planner_bot/internal/logging"
	"tg_meal_planner_bot/internal/store"
)

// timeNow is overridable for tests.
var timeNow = time.Now

// authorizeCron gates the reminder endpoints behind the shared bearer token.
// An unset token rejects every call.
func (s *Server) authorizeCron(c *gin.Context) bool {
	secret := s.deps.Config.CronSecretToken
	if secret == "" {
		c.JSON(http.StatusUnauthorized, errorBody("Unauthorized."))
		return false
	}

	header := c.GetHeader("Authorization")
	presented, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		c.JSON(http.StatusUnauthorized, errorBody("Unauthorized."))
		return false
	}

	if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
		c.JSON(http.StatusUnauthorized, errorBody("Unauthorized."))
		return false
	}

	return true
}

// handleSundayShopping sends every user their current shopping list ahead of
// the weekly shop. Per-user failures are counted and logged, never aborting
// the fan-out.
func (s *Server) handleSundayShopping(c *gin.Context) {
	if !s.authorizeCron(c) {
		return
	}

	ctx := c.Request.Context()
	weekStart := startOfWeek(timeNow().UTC()).Format(weekStartLayout)

	users, err := s.deps.Users.ListAll(ctx)
	if err != nil {
		s.logHandlerError("sunday_reminder_list_users_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to run reminder."))
		return
	}

	var sent, failed, skipped int
	for _, user := range users {
		items, err := s.deps.Shopping.List(ctx, user.UserID, weekStart)
		if err != nil {
			failed++
			s.deps.Logger.WithFields(logging.Fields{
				"event":   "sunday_reminder_list_failed",
				"user_id": user.UserID,
			}).WithError(err).Warn("failed to load shopping list")
			continue
		}
		if len(items) == 0 {
			skipped++
			continue
		}

		recipient := s.reminderRecipient(ctx, user)
		if err := s.deps.Notifier.SendShoppingList(ctx, recipient, items); err != nil {
			failed++
			s.deps.Logger.WithFields(logging.Fields{
				"event":   "sunday_reminder_send_failed",
				"user_id": user.UserID,
			}).WithError(err).Warn("failed to send shopping list")
			continue
		}
		sent++
	}

	s.deps.Logger.WithFields(logging.Fields{
		"event":   "sunday_reminder_done",
		"sent":    sent,
		"failed":  failed,
		"skipped": skipped,
	}).Info("sunday shopping reminder finished")

	c.JSON(http.StatusOK, gin.H{"sent": sent, "failed": failed, "skipped": skipped})
}

// handleMondayCleanup clears checked items from the previous week's lists for
// every user. It only acts on Mondays so a misconfigured scheduler cannot
// wipe mid-week progress.
func (s *Server) handleMondayCleanup(c *gin.Context) {
	if !s.authorizeCron(c) {
		return
	}

	today := timeNow().UTC()
	if today.Weekday() != time.Monday {
		c.JSON(http.StatusOK, gin.H{"skipped": true, "reason": "not monday"})
		return
	}

	ctx := c.Request.Context()
	previousWeek := startOfWeek(today).AddDate(0, 0, -domain.DaysPerWeek).Format(weekStartLayout)

	users, err := s.deps.Users.ListAll(ctx)
	if err != nil {
		s.logHandlerError("monday_cleanup_list_users_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to run cleanup."))
		return
	}

	var removed int64
	var failed int
	for _, user := range users {
		count, err := s.deps.Shopping.ClearChecked(ctx, user.UserID, previousWeek)
		if err != nil {
			failed++
			s.deps.Logger.WithFields(logging.Fields{
				"event":   "monday_cleanup_failed",
				"user_id": user.UserID,
			}).WithError(err).Warn("failed to clear checked items")
			continue
		}
		removed += count
	}

	s.deps.Logger.WithFields(logging.Fields{
		"event":   "monday_cleanup_done",
		"removed": removed,
		"failed":  failed,
		"week":    previousWeek,
	}).Info("monday cleanup finished")

	c.JSON(http.StatusOK, gin.H{"removed": removed, "failed": failed})
}

// reminderRecipient resolves where a user's reminders go, defaulting to their
// own Telegram chat.
func (s *Server) reminderRecipient(ctx context.Context, user domain.User) string {
	settings, err := s.deps.Settings.Get(ctx, user.UserID)
	if err == nil && strings.TrimSpace(settings.RecipientChatID) != "" {
		return strings.TrimSpace(settings.RecipientChatID)
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.deps.Logger.WithFields(logging.Fields{
			"event":   "reminder_settings_lookup_failed",
			"user_id": user.UserID,
		}).WithError(err).Warn("failed to load settings")
	}

	return strconv.FormatInt(user.TelegramID, 10)
}
