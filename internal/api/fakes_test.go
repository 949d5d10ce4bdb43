package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"tg_meal_planner_bot/internal/auth"
	"tg_meal_planner_bot/internal/config"
	"tg_meal_planner_bot/internal/domain"
	"tg_meal_planner_bot/internal/store"
)

type fakeResolver struct {
	resolveID      string
	resolveCreated bool
	resolveErr     error
	resolved       []auth.WebAppUser

	lookupID    string
	lookupFound bool
	lookupErr   error
}

func (f *fakeResolver) Resolve(_ context.Context, tgUser auth.WebAppUser) (string, bool, error) {
	f.resolved = append(f.resolved, tgUser)
	return f.resolveID, f.resolveCreated, f.resolveErr
}

func (f *fakeResolver) LookupInternalID(_ context.Context, _ int64) (string, bool, error) {
	return f.lookupID, f.lookupFound, f.lookupErr
}

type fakeUsers struct {
	byTelegramID map[int64]domain.User
	all          []domain.User
	err          error
}

func (f *fakeUsers) FindByTelegramID(_ context.Context, telegramID int64) (domain.User, error) {
	if f.err != nil {
		return domain.User{}, f.err
	}
	user, ok := f.byTelegramID[telegramID]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) ListAll(_ context.Context) ([]domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.all, nil
}

type fakeSettings struct {
	byUser  map[string]domain.Settings
	getErr  error
	saveErr error
	saved   []domain.Settings
}

func (f *fakeSettings) Get(_ context.Context, userID string) (domain.Settings, error) {
	if f.getErr != nil {
		return domain.Settings{}, f.getErr
	}
	settings, ok := f.byUser[userID]
	if !ok {
		return domain.Settings{}, store.ErrNotFound
	}
	return settings, nil
}

func (f *fakeSettings) Save(_ context.Context, settings domain.Settings) (domain.Settings, error) {
	f.saved = append(f.saved, settings)
	if f.saveErr != nil {
		return domain.Settings{}, f.saveErr
	}
	return settings, nil
}

type fakeDishes struct {
	dishes    []domain.Dish
	insertErr error
	updateErr error
	deleteErr error
	getErr    error
	inserted  []domain.Dish
	deleted   []string
}

func (f *fakeDishes) ListByUser(_ context.Context, _ string) ([]domain.Dish, error) {
	return f.dishes, nil
}

func (f *fakeDishes) FindByNames(_ context.Context, _ string, names []string) ([]domain.Dish, error) {
	var matched []domain.Dish
	for _, dish := range f.dishes {
		for _, name := range names {
			if dish.Name == name {
				matched = append(matched, dish)
			}
		}
	}
	return matched, nil
}

func (f *fakeDishes) Get(_ context.Context, _, dishID string) (domain.Dish, error) {
	if f.getErr != nil {
		return domain.Dish{}, f.getErr
	}
	for _, dish := range f.dishes {
		if dish.DishID == dishID {
			return dish, nil
		}
	}
	return domain.Dish{}, store.ErrNotFound
}

func (f *fakeDishes) Insert(_ context.Context, dish domain.Dish) (domain.Dish, error) {
	f.inserted = append(f.inserted, dish)
	if f.insertErr != nil {
		return domain.Dish{}, f.insertErr
	}
	return dish, nil
}

func (f *fakeDishes) Update(_ context.Context, _, dishID, name, category, cuisine string) (domain.Dish, error) {
	if f.updateErr != nil {
		return domain.Dish{}, f.updateErr
	}
	return domain.Dish{DishID: dishID, Name: name, Category: category, Cuisine: cuisine}, nil
}

func (f *fakeDishes) Delete(_ context.Context, _, dishID string) error {
	f.deleted = append(f.deleted, dishID)
	return f.deleteErr
}

type fakeIngredients struct {
	ingredients []domain.Ingredient
	insertErr   error
	deleteErr   error
	inserted    []domain.Ingredient
	deletedDish []string
}

func (f *fakeIngredients) ListByDish(_ context.Context, _, dishID string) ([]domain.Ingredient, error) {
	var matched []domain.Ingredient
	for _, ingredient := range f.ingredients {
		if ingredient.DishID == dishID {
			matched = append(matched, ingredient)
		}
	}
	return matched, nil
}

func (f *fakeIngredients) ListByDishIDs(_ context.Context, dishIDs []string) ([]domain.Ingredient, error) {
	var matched []domain.Ingredient
	for _, ingredient := range f.ingredients {
		for _, id := range dishIDs {
			if ingredient.DishID == id {
				matched = append(matched, ingredient)
			}
		}
	}
	return matched, nil
}

func (f *fakeIngredients) Insert(_ context.Context, ingredient domain.Ingredient) (domain.Ingredient, error) {
	f.inserted = append(f.inserted, ingredient)
	if f.insertErr != nil {
		return domain.Ingredient{}, f.insertErr
	}
	return ingredient, nil
}

func (f *fakeIngredients) Delete(_ context.Context, _, _ string) error {
	return f.deleteErr
}

func (f *fakeIngredients) DeleteByDish(_ context.Context, _, dishID string) error {
	f.deletedDish = append(f.deletedDish, dishID)
	return nil
}

type fakeMenus struct {
	byWeek  map[string]domain.WeekMenu
	menus   []domain.WeekMenu
	saveErr error
	saved   []domain.WeekMenu
}

func (f *fakeMenus) Get(_ context.Context, _, weekStart string) (domain.WeekMenu, error) {
	menu, ok := f.byWeek[weekStart]
	if !ok {
		return domain.WeekMenu{}, store.ErrNotFound
	}
	return menu, nil
}

func (f *fakeMenus) List(_ context.Context, _ string) ([]domain.WeekMenu, error) {
	return f.menus, nil
}

func (f *fakeMenus) Save(_ context.Context, menu domain.WeekMenu) (domain.WeekMenu, error) {
	f.saved = append(f.saved, menu)
	if f.saveErr != nil {
		return domain.WeekMenu{}, f.saveErr
	}
	return menu, nil
}

type fakeShopping struct {
	items      []domain.ShoppingItem
	listErr    error
	insertErr  error
	updateErr  error
	deleteErr  error
	clearErr   error
	cleared    int64
	inserted   []domain.ShoppingItem
	clearCalls []string
	patches    []store.ItemPatch
}

func (f *fakeShopping) List(_ context.Context, _, _ string) ([]domain.ShoppingItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeShopping) Insert(_ context.Context, item domain.ShoppingItem) (domain.ShoppingItem, error) {
	f.inserted = append(f.inserted, item)
	if f.insertErr != nil {
		return domain.ShoppingItem{}, f.insertErr
	}
	return item, nil
}

func (f *fakeShopping) InsertMany(_ context.Context, items []domain.ShoppingItem) (int, error) {
	f.inserted = append(f.inserted, items...)
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	return len(items), nil
}

func (f *fakeShopping) Update(_ context.Context, _, itemID string, patch store.ItemPatch) (domain.ShoppingItem, error) {
	f.patches = append(f.patches, patch)
	if f.updateErr != nil {
		return domain.ShoppingItem{}, f.updateErr
	}
	return domain.ShoppingItem{ItemID: itemID}, nil
}

func (f *fakeShopping) Delete(_ context.Context, _, _ string) error {
	return f.deleteErr
}

func (f *fakeShopping) ClearChecked(_ context.Context, userID, weekStart string) (int64, error) {
	f.clearCalls = append(f.clearCalls, userID+"/"+weekStart)
	if f.clearErr != nil {
		return 0, f.clearErr
	}
	return f.cleared, nil
}

type fakeCommonItems struct {
	items     []domain.CommonItem
	insertErr error
	inserted  []domain.CommonItem
}

func (f *fakeCommonItems) List(_ context.Context, _ string) ([]domain.CommonItem, error) {
	return f.items, nil
}

func (f *fakeCommonItems) FindByIDs(_ context.Context, _ string, ids []string) ([]domain.CommonItem, error) {
	var matched []domain.CommonItem
	for _, item := range f.items {
		for _, id := range ids {
			if item.ItemID == id {
				matched = append(matched, item)
			}
		}
	}
	return matched, nil
}

func (f *fakeCommonItems) Insert(_ context.Context, item domain.CommonItem) (domain.CommonItem, error) {
	f.inserted = append(f.inserted, item)
	if f.insertErr != nil {
		return domain.CommonItem{}, f.insertErr
	}
	return item, nil
}

type sentNotification struct {
	chatID string
	kind   string
	text   string
}

type fakeNotifier struct {
	sent    []sentNotification
	sendErr error
}

func (f *fakeNotifier) SendText(_ context.Context, chatID, text string) error {
	f.sent = append(f.sent, sentNotification{chatID: chatID, kind: "text", text: text})
	return f.sendErr
}

func (f *fakeNotifier) SendMenu(_ context.Context, chatID string, _ domain.WeekMenu) error {
	f.sent = append(f.sent, sentNotification{chatID: chatID, kind: "menu"})
	return f.sendErr
}

func (f *fakeNotifier) SendShoppingList(_ context.Context, chatID string, _ []domain.ShoppingItem) error {
	f.sent = append(f.sent, sentNotification{chatID: chatID, kind: "shopping"})
	return f.sendErr
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error {
	return f.err
}

type fakeStats struct {
	users  int64
	dishes int64
	err    error
}

func (f *fakeStats) CountUsers(_ context.Context) (int64, error) {
	return f.users, f.err
}

func (f *fakeStats) CountDishes(_ context.Context) (int64, error) {
	return f.dishes, f.err
}

type testDeps struct {
	resolver    *fakeResolver
	users       *fakeUsers
	settings    *fakeSettings
	dishes      *fakeDishes
	ingredients *fakeIngredients
	menus       *fakeMenus
	shopping    *fakeShopping
	commonItems *fakeCommonItems
	notifier    *fakeNotifier
	pinger      *fakePinger
	stats       *fakeStats
}

func newTestDeps() *testDeps {
	return &testDeps{
		resolver:    &fakeResolver{lookupID: "uid-1", lookupFound: true},
		users:       &fakeUsers{byTelegramID: map[int64]domain.User{}},
		settings:    &fakeSettings{byUser: map[string]domain.Settings{}},
		dishes:      &fakeDishes{},
		ingredients: &fakeIngredients{},
		menus:       &fakeMenus{byWeek: map[string]domain.WeekMenu{}},
		shopping:    &fakeShopping{},
		commonItems: &fakeCommonItems{},
		notifier:    &fakeNotifier{},
		pinger:      &fakePinger{},
		stats:       &fakeStats{},
	}
}

func newTestServer(t *testing.T, deps *testDeps, cfg config.Config) (*Server, *logtest.Hook) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hookLogger, hook := logtest.NewNullLogger()

	server, err := NewServer(Deps{
		Config:      cfg,
		Logger:      logrus.NewEntry(hookLogger),
		Resolver:    deps.resolver,
		Users:       deps.users,
		Settings:    deps.settings,
		Dishes:      deps.dishes,
		Ingredients: deps.ingredients,
		Menus:       deps.menus,
		Shopping:    deps.shopping,
		CommonItems: deps.commonItems,
		Notifier:    deps.notifier,
		Pinger:      deps.pinger,
		Stats:       deps.stats,
	})
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}

	return server, hook
}

func performRequest(t *testing.T, server *Server, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	server.Engine().ServeHTTP(recorder, req)
	return recorder
}

func authHeaders() map[string]string {
	return map[string]string{auth.HeaderTelegramUserID: "42"}
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
}
