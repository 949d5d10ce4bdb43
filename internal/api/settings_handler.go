package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tg_meal_planner_bot/internal/auth"
	"tg_meal_planner_bot/internal/domain"
	"tg_meal_planner_bot/internal/store"
)

type settingsPayload struct {
	RecipientChatID    string `json:"recipient_chat_id"`
	SecondMemberChatID string `json:"second_member_chat_id"`
	CookRotationMode   string `json:"cook_rotation_mode"`
	CookRotationFirst  string `json:"cook_rotation_first"`
}

// handleGetSettings returns the caller's notification settings. A user who
// has no settings record yet gets the defaults: their own Telegram chat as
// recipient, no cook rotation.
func (s *Server) handleGetSettings(c *gin.Context) {
	telegramID, internalID, ok := s.settingsIdentity(c)
	if !ok {
		return
	}

	settings, err := s.deps.Settings.Get(c.Request.Context(), internalID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, domain.Settings{
			UserID:            internalID,
			RecipientChatID:   strconv.FormatInt(telegramID, 10),
			CookRotationMode:  domain.RotationNone,
			CookRotationFirst: domain.RotationFirstMe,
		})
		return
	}
	if err != nil {
		s.logHandlerError("get_settings_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to load settings."))
		return
	}

	c.JSON(http.StatusOK, settings)
}

// handleSaveSettings overwrites the caller's notification settings. An empty
// recipient falls back to the caller's own Telegram chat so notifications
// always have somewhere to go.
func (s *Server) handleSaveSettings(c *gin.Context) {
	telegramID, internalID, ok := s.settingsIdentity(c)
	if !ok {
		return
	}

	var payload settingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid settings payload."))
		return
	}

	mode := strings.TrimSpace(payload.CookRotationMode)
	if mode == "" {
		mode = domain.RotationNone
	}
	if !domain.ValidRotationMode(mode) {
		c.JSON(http.StatusBadRequest, errorBody("Invalid cook rotation mode."))
		return
	}

	first := strings.TrimSpace(payload.CookRotationFirst)
	if first == "" {
		first = domain.RotationFirstMe
	}
	if !domain.ValidRotationFirst(first) {
		c.JSON(http.StatusBadRequest, errorBody("Invalid cook rotation start."))
		return
	}

	recipient := strings.TrimSpace(payload.RecipientChatID)
	if recipient == "" {
		recipient = strconv.FormatInt(telegramID, 10)
	}

	saved, err := s.deps.Settings.Save(c.Request.Context(), domain.Settings{
		UserID:             internalID,
		RecipientChatID:    recipient,
		SecondMemberChatID: strings.TrimSpace(payload.SecondMemberChatID),
		CookRotationMode:   mode,
		CookRotationFirst:  first,
	})
	if err != nil {
		s.logHandlerError("save_settings_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to save settings."))
		return
	}

	c.JSON(http.StatusOK, saved)
}

// settingsIdentity resolves both identities the settings handlers need: the
// raw Telegram id from the header (for recipient defaults) and the internal
// user id that keys the settings record.
func (s *Server) settingsIdentity(c *gin.Context) (int64, string, bool) {
	telegramID, ok := auth.RequireTelegramID(c)
	if !ok {
		return 0, "", false
	}

	internalID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return 0, "", false
	}

	return telegramID, internalID, true
}
