package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg_meal_planner_bot/internal/config"
	"tg_meal_planner_bot/internal/domain"
)

func sevenDays() []domain.MenuDay {
	return make([]domain.MenuDay, domain.DaysPerWeek)
}

func TestGetMenuReturnsEmptyGridWhenUnplanned(t *testing.T) {
	deps := newTestDeps()
	server, _ := newTestServer(t, deps, config.Config{})

	recorder := performRequest(t, server, http.MethodGet, "/api/menu?week_start=2026-01-05", nil, authHeaders())

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var menu domain.WeekMenu
	decodeJSON(t, recorder, &menu)
	assert.Equal(t, "2026-01-05", menu.WeekStart)
	assert.Len(t, menu.Days, domain.DaysPerWeek)
}

func TestGetMenuRejectsMalformedWeekStart(t *testing.T) {
	server, _ := newTestServer(t, newTestDeps(), config.Config{})

	recorder := performRequest(t, server, http.MethodGet, "/api/menu?week_start=next-week", nil, authHeaders())

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetMenuReturnsSavedWeek(t *testing.T) {
	deps := newTestDeps()
	deps.menus.byWeek["2026-01-05"] = domain.WeekMenu{
		WeekStart: "2026-01-05",
		Days:      []domain.MenuDay{{Dinner: "Borscht"}, {}, {}, {}, {}, {}, {}},
	}

	server, _ := newTestServer(t, deps, config.Config{})

	recorder := performRequest(t, server, http.MethodGet, "/api/menu?week_start=2026-01-05", nil, authHeaders())

	require.Equal(t, http.StatusOK, recorder.Code)

	var menu domain.WeekMenu
	decodeJSON(t, recorder, &menu)
	assert.Equal(t, "Borscht", menu.Days[0].Dinner)
}

func TestListMenuWeeksReturnsEmptyArray(t *testing.T) {
	server, _ := newTestServer(t, newTestDeps(), config.Config{})

	recorder := performRequest(t, server, http.MethodGet, "/api/menu/weeks", nil, authHeaders())

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "[]", recorder.Body.String())
}

func TestSaveMenuRequiresSevenDays(t *testing.T) {
	deps := newTestDeps()
	server, _ := newTestServer(t, deps, config.Config{})

	recorder := performRequest(t, server, http.MethodPost, "/api/menu", map[string]interface{}{
		"week_start": "2026-01-05",
		"days":       []domain.MenuDay{{Dinner: "Borscht"}},
	}, authHeaders())

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, deps.menus.saved)
}

func TestSaveMenuPersistsGrid(t *testing.T) {
	deps := newTestDeps()
	server, _ := newTestServer(t, deps, config.Config{})

	days := sevenDays()
	days[0].Dinner = "Borscht"

	recorder := performRequest(t, server, http.MethodPost, "/api/menu", map[string]interface{}{
		"week_start": "2026-01-05",
		"days":       days,
	}, authHeaders())

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	require.Len(t, deps.menus.saved, 1)
	saved := deps.menus.saved[0]
	assert.Equal(t, "uid-1", saved.UserID)
	assert.Equal(t, "2026-01-05", saved.WeekStart)
	assert.Equal(t, "Borscht", saved.Days[0].Dinner)
}

func TestSendMenuAnswers404WithoutSavedMenu(t *testing.T) {
	deps := newTestDeps()
	server, _ := newTestServer(t, deps, config.Config{})

	recorder := performRequest(t, server, http.MethodPost, "/api/send-menu",
		map[string]string{"week_start": "2026-01-05"}, authHeaders())

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Empty(t, deps.notifier.sent)
}

func TestSendMenuUsesConfiguredRecipient(t *testing.T) {
	deps := newTestDeps()
	deps.menus.byWeek["2026-01-05"] = domain.WeekMenu{WeekStart: "2026-01-05", Days: sevenDays()}
	deps.settings.byUser["uid-1"] = domain.Settings{UserID: "uid-1", RecipientChatID: "-1001"}

	server, _ := newTestServer(t, deps, config.Config{})

	recorder := performRequest(t, server, http.MethodPost, "/api/send-menu",
		map[string]string{"week_start": "2026-01-05"}, authHeaders())

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	require.Len(t, deps.notifier.sent, 1)
	assert.Equal(t, "-1001", deps.notifier.sent[0].chatID)
	assert.Equal(t, "menu", deps.notifier.sent[0].kind)
}

func TestSendMenuFallsBackToOwnChat(t *testing.T) {
	deps := newTestDeps()
	deps.menus.byWeek["2026-01-05"] = domain.WeekMenu{WeekStart: "2026-01-05", Days: sevenDays()}

	server, _ := newTestServer(t, deps, config.Config{})

	recorder := performRequest(t, server, http.MethodPost, "/api/send-menu",
		map[string]string{"week_start": "2026-01-05"}, authHeaders())

	require.Equal(t, http.StatusOK, recorder.Code)

	require.Len(t, deps.notifier.sent, 1)
	assert.Equal(t, "42", deps.notifier.sent[0].chatID)
}

func TestStartOfWeekSnapsToMonday(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "monday stays", in: "2026-01-05", want: "2026-01-05"},
		{name: "wednesday rewinds", in: "2026-01-07", want: "2026-01-05"},
		{name: "sunday rewinds six days", in: "2026-01-11", want: "2026-01-05"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			day, err := time.Parse(weekStartLayout, tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, startOfWeek(day).Format(weekStartLayout))
		})
	}
}
