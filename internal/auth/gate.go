package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// InternalIDLookup is the read-only resolution capability the gate needs; it
// is satisfied by *Resolver.
type InternalIDLookup interface {
	LookupInternalID(ctx context.Context, telegramID int64) (string, bool, error)
}

// HeaderTelegramUserID is the continuing-session header the Web App sends on
// every request after a successful init-data login. It is an unsigned
// assertion: the deployment trusts it because the client only learns its own
// id through the verified login exchange over the TLS channel.
const HeaderTelegramUserID = "X-Telegram-User-Id"

// unauthorizedBody is the uniform rejection payload. It deliberately does not
// distinguish between missing, malformed, stale, or forged credentials.
var unauthorizedBody = gin.H{"error": "Unauthorized. Please log in via Telegram."}

// TelegramIDFromHeader extracts the caller's Telegram id from the
// continuing-session header. Absent or malformed values report false, never
// an error.
func TelegramIDFromHeader(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.GetHeader(HeaderTelegramUserID))
	if raw == "" {
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return id, true
}

// RequireTelegramID enforces the presence of a well-formed continuing-session
// header and returns the raw Telegram id. It never consults storage: it is
// the entry point for operations keyed directly by telegram_id. On failure
// the request is aborted with the uniform 401 body and false is returned.
func RequireTelegramID(c *gin.Context) (int64, bool) {
	id, ok := TelegramIDFromHeader(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody)
		return 0, false
	}

	return id, true
}

// OptionalInternalID resolves the continuing-session header to an internal
// user id via the resolver's lookup path. Any miss (no header, malformed
// header, unknown Telegram id) reports false without writing a response.
// Storage failures also resolve to false; no identity is ever invented.
func OptionalInternalID(c *gin.Context, resolver InternalIDLookup) (string, bool) {
	telegramID, ok := TelegramIDFromHeader(c)
	if !ok {
		return "", false
	}

	internalID, found, err := resolver.LookupInternalID(c.Request.Context(), telegramID)
	if err != nil || !found {
		return "", false
	}

	return internalID, true
}

// RequireInternalID is the internal-id counterpart of RequireTelegramID: it
// resolves the header through storage and aborts with the uniform 401 body
// when no registered user matches. Operations whose data is keyed by the
// internal user id use this entry point.
func RequireInternalID(c *gin.Context, resolver InternalIDLookup) (string, bool) {
	internalID, ok := OptionalInternalID(c, resolver)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody)
		return "", false
	}

	return internalID, true
}
