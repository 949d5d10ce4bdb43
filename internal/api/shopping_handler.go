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

type shoppingItemPayload struct {
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	WeekStart string `json:"week_start"`
}

type shoppingPatchPayload struct {
	IsChecked *bool   `json:"is_checked"`
	Name      *string `json:"name"`
	Quantity  *string `json:"quantity"`
}

type generatePayload struct {
	WeekStart string `json:"week_start"`
}

func (s *Server) handleListShopping(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	items, err := s.deps.Shopping.List(c.Request.Context(), userID, strings.TrimSpace(c.Query("week_start")))
	if err != nil {
		s.logHandlerError("list_shopping_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to load shopping list."))
		return
	}

	if items == nil {
		items = []domain.ShoppingItem{}
	}

	c.JSON(http.StatusOK, items)
}

func (s *Server) handleAddShoppingItem(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	var payload shoppingItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid item payload."))
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		c.JSON(http.StatusBadRequest, errorBody("Item name is required."))
		return
	}

	item, err := s.deps.Shopping.Insert(c.Request.Context(), domain.ShoppingItem{
		ItemID:     uuid.NewString(),
		UserID:     userID,
		Name:       payload.Name,
		Quantity:   strings.TrimSpace(payload.Quantity),
		SourceType: domain.SourceManual,
		WeekStart:  strings.TrimSpace(payload.WeekStart),
	})
	if err != nil {
		s.logHandlerError("add_shopping_item_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to add item."))
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (s *Server) handlePatchShoppingItem(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	var payload shoppingPatchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid patch payload."))
		return
	}

	patch := store.ItemPatch{
		IsChecked: payload.IsChecked,
		Name:      payload.Name,
		Quantity:  payload.Quantity,
	}
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, errorBody("Patch must change at least one field."))
		return
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		c.JSON(http.StatusBadRequest, errorBody("Item name cannot be empty."))
		return
	}

	item, err := s.deps.Shopping.Update(c.Request.Context(), userID, c.Param("id"), patch)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("Item not found."))
		return
	}
	if err != nil {
		s.logHandlerError("patch_shopping_item_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to update item."))
		return
	}

	c.JSON(http.StatusOK, item)
}

func (s *Server) handleDeleteShoppingItem(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	err := s.deps.Shopping.Delete(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("Item not found."))
		return
	}
	if err != nil {
		s.logHandlerError("delete_shopping_item_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to delete item."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleClearChecked(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	removed, err := s.deps.Shopping.ClearChecked(c.Request.Context(), userID, strings.TrimSpace(c.Query("week_start")))
	if err != nil {
		s.logHandlerError("clear_checked_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to clear checked items."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// handleGenerateShopping builds the shopping list for one week from the
// ingredients of the dishes planned in that week's menu. Ingredients sharing a
// name (case-insensitive) across dishes collapse into one item with the
// quantities joined.
func (s *Server) handleGenerateShopping(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	var payload generatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid payload."))
		return
	}

	weekStart, ok := resolveWeekStart(c, payload.WeekStart)
	if !ok {
		return
	}

	menu, err := s.deps.Menus.Get(c.Request.Context(), userID, weekStart)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("No menu saved for this week."))
		return
	}
	if err != nil {
		s.logHandlerError("generate_menu_load_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to load menu."))
		return
	}

	dishNames := menu.DishNames()
	if len(dishNames) == 0 {
		c.JSON(http.StatusOK, gin.H{"added": 0})
		return
	}

	dishes, err := s.deps.Dishes.FindByNames(c.Request.Context(), userID, dishNames)
	if err != nil {
		s.logHandlerError("generate_dish_lookup_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to generate shopping list."))
		return
	}

	dishIDs := make([]string, 0, len(dishes))
	for _, dish := range dishes {
		dishIDs = append(dishIDs, dish.DishID)
	}

	ingredients, err := s.deps.Ingredients.ListByDishIDs(c.Request.Context(), dishIDs)
	if err != nil {
		s.logHandlerError("generate_ingredient_lookup_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to generate shopping list."))
		return
	}

	items := aggregateIngredients(userID, weekStart, ingredients)
	added, err := s.deps.Shopping.InsertMany(c.Request.Context(), items)
	if err != nil {
		s.logHandlerError("generate_insert_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to generate shopping list."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": added})
}

// aggregateIngredients merges same-named ingredients into single shopping
// items, preserving first-seen order and display casing.
func aggregateIngredients(userID, weekStart string, ingredients []domain.Ingredient) []domain.ShoppingItem {
	type bucket struct {
		name       string
		quantities []string
		dishID     string
	}

	order := make([]string, 0, len(ingredients))
	buckets := make(map[string]*bucket)

	for _, ingredient := range ingredients {
		key := strings.ToLower(strings.TrimSpace(ingredient.Name))
		if key == "" {
			continue
		}

		b, seen := buckets[key]
		if !seen {
			b = &bucket{name: strings.TrimSpace(ingredient.Name), dishID: ingredient.DishID}
			buckets[key] = b
			order = append(order, key)
		}
		if q := strings.TrimSpace(ingredient.Quantity); q != "" {
			b.quantities = append(b.quantities, q)
		}
	}

	items := make([]domain.ShoppingItem, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		items = append(items, domain.ShoppingItem{
			ItemID:       uuid.NewString(),
			UserID:       userID,
			Name:         b.name,
			Quantity:     strings.Join(b.quantities, " + "),
			SourceType:   domain.SourceDish,
			SourceDishID: b.dishID,
			WeekStart:    weekStart,
		})
	}

	return items
}
