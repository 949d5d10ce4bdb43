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

type dishPayload struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Cuisine  string `json:"cuisine"`
}

type ingredientPayload struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

func (s *Server) handleListDishes(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	dishes, err := s.deps.Dishes.ListByUser(c.Request.Context(), userID)
	if err != nil {
		s.logHandlerError("list_dishes_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to load dishes."))
		return
	}

	if dishes == nil {
		dishes = []domain.Dish{}
	}

	c.JSON(http.StatusOK, dishes)
}

func (s *Server) handleCreateDish(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	payload, ok := bindDishPayload(c)
	if !ok {
		return
	}

	dish, err := s.deps.Dishes.Insert(c.Request.Context(), domain.Dish{
		DishID:   uuid.NewString(),
		UserID:   userID,
		Name:     payload.Name,
		Category: payload.Category,
		Cuisine:  payload.Cuisine,
	})
	if errors.Is(err, store.ErrDuplicate) {
		c.JSON(http.StatusBadRequest, errorBody("A dish with this name already exists in this category."))
		return
	}
	if err != nil {
		s.logHandlerError("create_dish_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to create dish."))
		return
	}

	c.JSON(http.StatusCreated, dish)
}

func (s *Server) handleUpdateDish(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	payload, ok := bindDishPayload(c)
	if !ok {
		return
	}

	dish, err := s.deps.Dishes.Update(c.Request.Context(), userID, c.Param("id"),
		payload.Name, payload.Category, payload.Cuisine)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("Dish not found."))
		return
	}
	if errors.Is(err, store.ErrDuplicate) {
		c.JSON(http.StatusBadRequest, errorBody("A dish with this name already exists in this category."))
		return
	}
	if err != nil {
		s.logHandlerError("update_dish_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to update dish."))
		return
	}

	c.JSON(http.StatusOK, dish)
}

// handleDeleteDish removes the dish and then its ingredients; the cleanup is
// best-effort and only logged on failure.
func (s *Server) handleDeleteDish(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	dishID := c.Param("id")

	if err := s.deps.Dishes.Delete(c.Request.Context(), userID, dishID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("Dish not found."))
			return
		}
		s.logHandlerError("delete_dish_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to delete dish."))
		return
	}

	if err := s.deps.Ingredients.DeleteByDish(c.Request.Context(), userID, dishID); err != nil {
		s.logHandlerError("delete_dish_ingredients_failed", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleListIngredients(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	ingredients, err := s.deps.Ingredients.ListByDish(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		s.logHandlerError("list_ingredients_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to load ingredients."))
		return
	}

	if ingredients == nil {
		ingredients = []domain.Ingredient{}
	}

	c.JSON(http.StatusOK, ingredients)
}

func (s *Server) handleAddIngredient(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	dishID := c.Param("id")
	if _, err := s.deps.Dishes.Get(c.Request.Context(), userID, dishID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("Dish not found."))
			return
		}
		s.logHandlerError("add_ingredient_lookup_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to add ingredient."))
		return
	}

	var payload ingredientPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid ingredient payload."))
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		c.JSON(http.StatusBadRequest, errorBody("Ingredient name is required."))
		return
	}

	ingredient, err := s.deps.Ingredients.Insert(c.Request.Context(), domain.Ingredient{
		IngredientID: uuid.NewString(),
		DishID:       dishID,
		UserID:       userID,
		Name:         payload.Name,
		Quantity:     strings.TrimSpace(payload.Quantity),
	})
	if err != nil {
		s.logHandlerError("add_ingredient_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to add ingredient."))
		return
	}

	c.JSON(http.StatusCreated, ingredient)
}

func (s *Server) handleDeleteIngredient(c *gin.Context) {
	userID, ok := auth.RequireInternalID(c, s.deps.Resolver)
	if !ok {
		return
	}

	err := s.deps.Ingredients.Delete(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("Ingredient not found."))
		return
	}
	if err != nil {
		s.logHandlerError("delete_ingredient_failed", err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to delete ingredient."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func bindDishPayload(c *gin.Context) (dishPayload, bool) {
	var payload dishPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid dish payload."))
		return dishPayload{}, false
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Category = strings.TrimSpace(payload.Category)
	payload.Cuisine = strings.TrimSpace(payload.Cuisine)

	if payload.Name == "" {
		c.JSON(http.StatusBadRequest, errorBody("Dish name is required."))
		return dishPayload{}, false
	}
	if !domain.ValidCategory(payload.Category) {
		c.JSON(http.StatusBadRequest, errorBody("Invalid dish category."))
		return dishPayload{}, false
	}
	if !domain.ValidCuisine(payload.Cuisine) {
		c.JSON(http.StatusBadRequest, errorBody("Invalid dish cuisine."))
		return dishPayload{}, false
	}

	return payload, true
}
