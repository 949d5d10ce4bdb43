// Package auth implements Telegram Web App authentication: init-data
// signature verification, identity extraction, and the resolution of Telegram
// ids to internal user records.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxInitDataAge is how old an init-data auth_date may be and still be
// accepted. Seven days is intentionally longer than Telegram's own default:
// the Web App reuses the same init-data across page reloads for the life of a
// session, and a shorter window breaks reload-after-a-day flows.
const MaxInitDataAge = 7 * 24 * time.Hour

// initDataSecretSeed is the fixed HMAC key Telegram specifies for deriving
// the per-bot secret from the bot token.
const initDataSecretSeed = "WebAppData"

// WebAppUser is the user object embedded in Telegram Web App init data. It is
// transient: only selected fields are copied into storage.
type WebAppUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// now is overridable for tests.
var now = time.Now

// ValidateInitData reports whether initData carries a valid signature from
// Telegram for the bot identified by botToken and a sufficiently fresh
// auth_date. Malformed input of any kind fails verification rather than
// returning an error; an empty botToken always fails.
func ValidateInitData(initData, botToken string) bool {
	if botToken == "" {
		return false
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return false
	}

	receivedHash := values.Get("hash")
	if receivedHash == "" {
		return false
	}
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	checkString := strings.Join(pairs, "\n")

	seed := hmac.New(sha256.New, []byte(initDataSecretSeed))
	seed.Write([]byte(botToken))
	secretKey := seed.Sum(nil)

	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(checkString))
	calculatedHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(calculatedHash), []byte(receivedHash)) {
		return false
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return false
	}

	return now().Unix()-authDate <= int64(MaxInitDataAge/time.Second)
}

// ParseInitData extracts the embedded user object from initData. It performs
// no signature checking; callers must only trust the result for authorization
// after ValidateInitData has accepted the same payload. Absent or malformed
// user data yields nil.
func ParseInitData(initData string) *WebAppUser {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil
	}

	raw := values.Get("user")
	if raw == "" {
		return nil
	}

	var user WebAppUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}

	return &user
}
