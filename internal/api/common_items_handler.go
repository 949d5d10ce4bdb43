package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tg_meal_planner_bot/internal/auth"
	"tg_meal_planner_bot/internal/domain"
	"tg_meal_planner_bot/internal/store"
)

type commonItemPayload struct {
	Name            string `json:"name"`
	DefaultQuantity string `json:"default_quantity"`
}

type addToListPayload struct {
	ItemIDs   []string `json:"item_ids"`
	WeekStart string   `json:"week_start"`
}

func (s *Server) handleListCommonItems(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	items, err := s.deps.CommonItems.List(c.Request.Context(), userID)
	if err != nil {
		s.logHandlerError("list_common_items_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to load common items."))
		return
	}

	if items == nil {
		items = []domain.CommonItem{}
	}

	c.JSON(http.StatusOK, items)
}

func (s *Server) handleCreateCommonItem(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	var payload commonItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid item payload."))
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		c.JSON(http.StatusBadRequest, errorBody("Item name is required."))
		return
	}

	item, err := s.deps.CommonItems.Insert(c.Request.Context(), domain.CommonItem{
		ItemID:          uuid.NewString(),
		UserID:          userID,
		Name:            payload.Name,
		DefaultQuantity: strings.TrimSpace(payload.DefaultQuantity),
	})
	if errors.Is(err, store.ErrDuplicate) {
		c.JSON(http.StatusBadRequest, errorBody("An item with this name already exists."))
		return
	}
	if err != nil {
		s.logHandlerError("create_common_item_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to create item."))
		return
	}

	c.JSON(http.StatusCreated, item)
}

// handleAddCommonToList copies the selected common items onto the shopping
// list for one week, carrying each item's default quantity.
func (s *Server) handleAddCommonToList(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	var payload addToListPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid payload."))
		return
	}
	if len(payload.ItemIDs) == 0 {
		c.JSON(http.StatusBadRequest, errorBody("item_ids is required."))
		return
	}

	weekStart, ok := resolveWeekStart(c, payload.WeekStart)
	if !ok {
		return
	}

	commonItems, err := s.deps.CommonItems.FindByIDs(c.Request.Context(), userID, payload.ItemIDs)
	if err != nil {
		s.logHandlerError("add_common_lookup_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to add items."))
		return
	}

	items := make([]domain.ShoppingItem, 0, len(commonItems))
	for _, common := range commonItems {
		items = append(items, domain.ShoppingItem{
			ItemID:     uuid.NewString(),
			UserID:     userID,
			Name:       common.Name,
			Quantity:   common.DefaultQuantity,
			SourceType: domain.SourceCommon,
			WeekStart:  weekStart,
		})
	}

	added, err := s.deps.Shopping.InsertMany(c.Request.Context(), items)
	if err != nil {
		s.logHandlerError("add_common_insert_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to add items."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": added})
}
