package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tg_meal_planner_bot/internal/auth"
	"tg_meal_planner_bot/internal/logging"
)

type loginRequest struct {
	InitData string `json:"initData"`
}

type loginUser struct {
	ID           string `json:"id"`
	TelegramID   int64  `json:"telegram_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// handleTelegramLogin is the init-data exchange: the Web App posts the raw
// init-data string, the server verifies its signature against the bot token,
// extracts the embedded user, and resolves it to an internal account. Every
// failure mode answers with the same 401 body.
func (s *Server) handleTelegramLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.InitData == "" {
		c.JSON(http.StatusUnauthorized, unauthorizedResponse())
		return
	}

	if !auth.ValidateInitData(req.InitData, s.deps.Config.TelegramToken) {
		c.JSON(http.StatusUnauthorized, unauthorizedResponse())
		return
	}

	tgUser := auth.ParseInitData(req.InitData)
	if tgUser == nil || tgUser.ID == 0 {
		c.JSON(http.StatusUnauthorized, unauthorizedResponse())
		return
	}

	internalID, created, err := s.deps.Resolver.Resolve(c.Request.Context(), *tgUser)
	if err != nil {
		s.logHandlerError("login_resolve_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to log in."))
		return
	}

	s.deps.Logger.WithFields(logging.Fields{
		"event":       "login",
		"telegram_id": tgUser.ID,
		"new_user":    created,
	}).Info("telegram login")

	c.JSON(http.StatusOK, gin.H{
		"user": loginUser{
			ID:           internalID,
			TelegramID:   tgUser.ID,
			FirstName:    tgUser.FirstName,
			LastName:     tgUser.LastName,
			Username:     tgUser.Username,
			PhotoURL:     tgUser.PhotoURL,
			LanguageCode: tgUser.LanguageCode,
			IsPremium:    tgUser.IsPremium,
		},
		"is_new_user": created,
	})
}

func unauthorizedResponse() gin.H {
	return gin.H{"error": "Unauthorized. Please log in via Telegram."}
}
