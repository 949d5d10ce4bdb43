// Package api hosts the HTTP API consumed by the Telegram Web App frontend.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tg_meal_planner_bot/internal/auth"
	"tg_meal_planner_bot/internal/config"
	"tg_meal_planner_bot/internal/domain"
	"tg_meal_planner_bot/internal/logging"
	"tg_meal_planner_bot/internal/store"
)

const readHeaderTimeout = 5 * time.Second

// IdentityResolver maps Telegram identities to internal user ids.
type IdentityResolver interface {
	Resolve(ctx context.Context, tgUser auth.WebAppUser) (string, bool, error)
	LookupInternalID(ctx context.Context, telegramID int64) (string, bool, error)
}

// UserDirectory reads user records for header resolution and reminder fan-out.
type UserDirectory interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (domain.User, error)
	ListAll(ctx context.Context) ([]domain.User, error)
}

// SettingsStore reads and writes per-user settings.
type SettingsStore interface {
	Get(ctx context.Context, userID string) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}

// DishStore manages the per-user dish catalog.
type DishStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Dish, error)
	FindByNames(ctx context.Context, userID string, names []string) ([]domain.Dish, error)
	Get(ctx context.Context, userID, dishID string) (domain.Dish, error)
	Insert(ctx context.Context, dish domain.Dish) (domain.Dish, error)
	Update(ctx context.Context, userID, dishID, name, category, cuisine string) (domain.Dish, error)
	Delete(ctx context.Context, userID, dishID string) error
}

// IngredientStore manages dish ingredients.
type IngredientStore interface {
	ListByDish(ctx context.Context, userID, dishID string) ([]domain.Ingredient, error)
	ListByDishIDs(ctx context.Context, dishIDs []string) ([]domain.Ingredient, error)
	Insert(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error)
	Delete(ctx context.Context, userID, ingredientID string) error
	DeleteByDish(ctx context.Context, userID, dishID string) error
}

// MenuStore manages weekly menus.
type MenuStore interface {
	Get(ctx context.Context, userID, weekStart string) (domain.WeekMenu, error)
	List(ctx context.Context, userID string) ([]domain.WeekMenu, error)
	Save(ctx context.Context, menu domain.WeekMenu) (domain.WeekMenu, error)
}

// ShoppingStore manages shopping list items.
type ShoppingStore interface {
	List(ctx context.Context, userID, weekStart string) ([]domain.ShoppingItem, error)
	Insert(ctx context.Context, item domain.ShoppingItem) (domain.ShoppingItem, error)
	InsertMany(ctx context.Context, items []domain.ShoppingItem) (int, error)
	Update(ctx context.Context, userID, itemID string, patch store.ItemPatch) (domain.ShoppingItem, error)
	Delete(ctx context.Context, userID, itemID string) error
	ClearChecked(ctx context.Context, userID, weekStart string) (int64, error)
}

// CommonItemStore manages the user's reusable staples.
type CommonItemStore interface {
	List(ctx context.Context, userID string) ([]domain.CommonItem, error)
	FindByIDs(ctx context.Context, userID string, ids []string) ([]domain.CommonItem, error)
	Insert(ctx context.Context, item domain.CommonItem) (domain.CommonItem, error)
}

// Notifier delivers outbound Telegram messages.
type Notifier interface {
	SendText(ctx context.Context, chatID, text string) error
	SendMenu(ctx context.Context, chatID string, menu domain.WeekMenu) error
	SendShoppingList(ctx context.Context, chatID string, items []domain.ShoppingItem) error
}

// Pinger checks storage connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stats exposes collection counts for the health endpoint.
type Stats interface {
	CountUsers(ctx context.Context) (int64, error)
	CountDishes(ctx context.Context) (int64, error)
}

// Deps bundles everything the API server needs.
type Deps struct {
	Config      config.Config
	Logger      *logrus.Entry
	Resolver    IdentityResolver
	Users       UserDirectory
	Settings    SettingsStore
	Dishes      DishStore
	Ingredients IngredientStore
	Menus       MenuStore
	Shopping    ShoppingStore
	CommonItems CommonItemStore
	Notifier    Notifier
	Pinger      Pinger
	Stats       Stats
}

// Server hosts the HTTP API and owns the underlying HTTP server.
type Server struct {
	deps   Deps
	engine *gin.Engine
	server *http.Server
}

// NewServer builds the gin engine, registers all routes, and prepares the
// HTTP server on the configured port.
func NewServer(deps Deps) (*Server, error) {
	if deps.Resolver == nil {
		return nil, errors.New("identity resolver is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Logger()
	}

	if !deps.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(deps.Logger))

	srv := &Server{
		deps:   deps,
		engine: engine,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", deps.Config.HTTPPort),
			Handler:           engine,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}

	srv.registerRoutes()

	return srv, nil
}

// Engine exposes the router; used by handler tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.POST("/auth/telegram", s.handleTelegramLogin)

		api.GET("/user/settings", s.handleGetSettings)
		api.POST("/user/settings", s.handleSaveSettings)

		api.GET("/user/dishes", s.handleListDishes)
		api.POST("/user/dishes", s.handleCreateDish)
		api.PUT("/user/dishes/:id", s.handleUpdateDish)
		api.DELETE("/user/dishes/:id", s.handleDeleteDish)
		api.GET("/user/dishes/:id/ingredients", s.handleListIngredients)
		api.POST("/user/dishes/:id/ingredients", s.handleAddIngredient)
		api.DELETE("/user/ingredients/:id", s.handleDeleteIngredient)

		api.GET("/menu", s.handleGetMenu)
		api.GET("/menu/weeks", s.handleListMenuWeeks)
		api.POST("/menu", s.handleSaveMenu)
		api.POST("/send-menu", s.handleSendMenu)

		api.GET("/shopping-list", s.handleListShopping)
		api.POST("/shopping-list", s.handleAddShoppingItem)
		api.PATCH("/shopping-list/:id", s.handlePatchShoppingItem)
		api.DELETE("/shopping-list/:id", s.handleDeleteShoppingItem)
		api.DELETE("/shopping-list/clear-checked", s.handleClearChecked)
		api.POST("/shopping-list/generate", s.handleGenerateShopping)

		api.GET("/common-items", s.handleListCommonItems)
		api.POST("/common-items", s.handleCreateCommonItem)
		api.POST("/common-items/add-to-list", s.handleAddCommonToList)

		api.POST("/reminders/sunday-shopping", s.handleSundayShopping)
		api.POST("/reminders/monday-cleanup", s.handleMondayCleanup)
	}
}

// ListenAndServe starts the API server and blocks until shutdown.
func (s *Server) ListenAndServe() error {
	s.deps.Logger.WithFields(logging.Fields{
		"event": "api_listen",
		"addr":  s.server.Addr,
	}).Info("starting api server")

	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			s.deps.Logger.WithField("event", "api_stopped").Info("api server stopped")
			return nil
		}

		return fmt.Errorf("api server listen: %w", err)
	}

	s.deps.Logger.WithField("event", "api_stopped").Info("api server stopped")
	return nil
}

// Shutdown gracefully stops the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}

	return s.server.Shutdown(ctx)
}

func requestLogger(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logging.Fields{
			"event":    "http_request",
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("handled request")
	}
}
