package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakeLookup struct {
	id    string
	found bool
	err   error
	calls int
}

func (f *fakeLookup) LookupInternalID(_ context.Context, _ int64) (string, bool, error) {
	f.calls++
	return f.id, f.found, f.err
}

func testContext(t *testing.T, header string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(HeaderTelegramUserID, header)
	}
	c.Request = req

	return c, recorder
}

func TestTelegramIDFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		wantID int64
		wantOK bool
	}{
		{name: "valid", header: "42", wantID: 42, wantOK: true},
		{name: "padded", header: " 42 ", wantID: 42, wantOK: true},
		{name: "missing", header: "", wantOK: false},
		{name: "non numeric", header: "abc", wantOK: false},
		{name: "zero", header: "0", wantOK: false},
		{name: "float", header: "4.2", wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testContext(t, tt.header)

			id, ok := TelegramIDFromHeader(c)
			if ok != tt.wantOK || id != tt.wantID {
				t.Fatalf("TelegramIDFromHeader() = (%d, %v), want (%d, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestRequireTelegramIDAbortsWithUniform401(t *testing.T) {
	c, recorder := testContext(t, "abc")

	if _, ok := RequireTelegramID(c); ok {
		t.Fatalf("expected malformed header to be rejected")
	}

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] != "Unauthorized. Please log in via Telegram." {
		t.Fatalf("unexpected rejection body: %v", body)
	}
	if !c.IsAborted() {
		t.Fatalf("expected request to be aborted")
	}
}

func TestRequireTelegramIDPassesValidHeader(t *testing.T) {
	c, recorder := testContext(t, "42")

	id, ok := RequireTelegramID(c)
	if !ok || id != 42 {
		t.Fatalf("expected id 42, got (%d, %v)", id, ok)
	}
	if recorder.Code == http.StatusUnauthorized {
		t.Fatalf("expected no 401 for valid header")
	}
}

func TestOptionalInternalIDSkipsLookupWithoutHeader(t *testing.T) {
	c, _ := testContext(t, "")
	lookup := &fakeLookup{}

	if _, ok := OptionalInternalID(c, lookup); ok {
		t.Fatalf("expected miss without header")
	}
	if lookup.calls != 0 {
		t.Fatalf("expected no storage lookup without header, got %d calls", lookup.calls)
	}
}

func TestOptionalInternalIDReportsMissQuietly(t *testing.T) {
	c, recorder := testContext(t, "42")
	lookup := &fakeLookup{found: false}

	if _, ok := OptionalInternalID(c, lookup); ok {
		t.Fatalf("expected unknown telegram id to miss")
	}
	if recorder.Code == http.StatusUnauthorized {
		t.Fatalf("optional gate must not write a response")
	}
}

func TestOptionalInternalIDTreatsStorageErrorAsMiss(t *testing.T) {
	c, _ := testContext(t, "42")
	lookup := &fakeLookup{err: errors.New("connection reset")}

	if id, ok := OptionalInternalID(c, lookup); ok || id != "" {
		t.Fatalf("expected storage failure to resolve to miss, got (%q, %v)", id, ok)
	}
}

func TestOptionalInternalIDResolves(t *testing.T) {
	c, _ := testContext(t, "42")
	lookup := &fakeLookup{id: "uid-1", found: true}

	id, ok := OptionalInternalID(c, lookup)
	if !ok || id != "uid-1" {
		t.Fatalf("expected uid-1, got (%q, %v)", id, ok)
	}
}

func TestRequireInternalIDAbortsOnMiss(t *testing.T) {
	c, recorder := testContext(t, "42")
	lookup := &fakeLookup{found: false}

	if _, ok := RequireInternalID(c, lookup); ok {
		t.Fatalf("expected unknown telegram id to be rejected")
	}
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestRequireInternalIDResolves(t *testing.T) {
	c, recorder := testContext(t, "42")
	lookup := &fakeLookup{id: "uid-1", found: true}

	id, ok := RequireInternalID(c, lookup)
	if !ok || id != "uid-1" {
		t.Fatalf("expected uid-1, got (%q, %v)", id, ok)
	}
	if recorder.Code == http.StatusUnauthorized {
		t.Fatalf("expected no 401 for resolved identity")
	}
}
