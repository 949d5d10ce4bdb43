package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tg_meal_planner_bot/internal/auth"
	"tg_meal_planner_bot/internal/domain"
	"tg_meal_planner_bot/internal/store"
)

const weekStartLayout = "2006-01-02"

type menuPayload struct {
	WeekStart string           `json:"week_start"`
	Days      []domain.MenuDay `json:"days"`
}

type sendMenuPayload struct {
	WeekStart string `json:"week_start"`
}

// handleGetMenu returns the caller's menu for the requested week, defaulting
// to the current week. A week without a saved menu answers with an empty
// seven-day grid so the frontend can render it directly.
func (s *Server) handleGetMenu(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	weekStart, ok := resolveWeekStart(c, c.Query("week_start"))
	if !ok {
		return
	}

	menu, err := s.deps.Menus.Get(c.Request.Context(), userID, weekStart)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, domain.WeekMenu{
			WeekStart: weekStart,
			Days:      make([]domain.MenuDay, domain.DaysPerWeek),
		})
		return
	}
	if err != nil {
		s.logHandlerError("get_menu_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to load menu."))
		return
	}

	c.JSON(http.StatusOK, menu)
}

// handleListMenuWeeks returns every week the caller has planned, newest
// first.
func (s *Server) handleListMenuWeeks(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	menus, err := s.deps.Menus.List(c.Request.Context(), userID)
	if err != nil {
		s.logHandlerError("list_menu_weeks_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to load planned weeks."))
		return
	}

	if menus == nil {
		menus = []domain.WeekMenu{}
	}

	c.JSON(http.StatusOK, menus)
}

// handleSaveMenu upserts the caller's menu for one week. The grid must carry
// exactly seven days.
func (s *Server) handleSaveMenu(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	var payload menuPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid menu payload."))
		return
	}

	weekStart, ok := resolveWeekStart(c, payload.WeekStart)
	if !ok {
		return
	}

	if len(payload.Days) != domain.DaysPerWeek {
		c.JSON(http.StatusBadRequest, errorBody("A menu must cover exactly 7 days."))
		return
	}

	menu, err := s.deps.Menus.Save(c.Request.Context(), domain.WeekMenu{
		UserID:    userID,
		WeekStart: weekStart,
		Days:      payload.Days,
	})
	if err != nil {
		s.logHandlerError("save_menu_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to save menu."))
		return
	}

	c.JSON(http.StatusOK, menu)
}

// handleSendMenu delivers the caller's weekly menu to the chat configured in
// their settings, falling back to their own Telegram chat when no recipient is
// set.
func (s *Server) handleSendMenu(c *gin.Context) {
	telegramID, internalID, ok := s.settingsIdentity(c)
	if !ok {
		return
	}

	var payload sendMenuPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid payload."))
		return
	}

	weekStart, ok := resolveWeekStart(c, payload.WeekStart)
	if !ok {
		return
	}

	menu, err := s.deps.Menus.Get(c.Request.Context(), internalID, weekStart)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("No menu saved for this week."))
		return
	}
	if err != nil {
		s.logHandlerError("send_menu_load_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to load menu."))
		return
	}

	recipient := s.recipientChatID(c, internalID, telegramID)

	if err := s.deps.Notifier.SendMenu(c.Request.Context(), recipient, menu); err != nil {
		s.logHandlerError("send_menu_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to send menu."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// recipientChatID looks up the configured notification recipient, falling
// back to the caller's own chat on any miss.
func (s *Server) recipientChatID(c *gin.Context, internalID string, telegramID int64) string {
	settings, err := s.deps.Settings.Get(c.Request.Context(), internalID)
	if err == nil && strings.TrimSpace(settings.RecipientChatID) != "" {
		return strings.TrimSpace(settings.RecipientChatID)
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logHandlerError("recipient_lookup_failed", err)
	}

	return strconv.FormatInt(telegramID, 10)
}

// resolveWeekStart normalizes a requested week_start. Empty means the current
// week; anything else must parse as a YYYY-MM-DD date. Invalid values answer
// 400 and report false.
func resolveWeekStart(c *gin.Context, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return startOfWeek(time.Now().UTC()).Format(weekStartLayout), true
	}

	if _, err := time.Parse(weekStartLayout, raw); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid week_start; expected YYYY-MM-DD."))
		return "", false
	}

	return raw, true
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	t = t.Truncate(24 * time.Hour)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
