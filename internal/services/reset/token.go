// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package reset

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/mauricehans/moto/internal/models"
)

const tokenSalt = "moto.reset.token"

// TokenGenerator makes stateless password-reset tokens. A token binds the
// user's ID, password hash and last login to a timestamp, so it stops
// working once the password changes or the user logs in.
type TokenGenerator struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenGenerator(secret string, ttl time.Duration) *TokenGenerator {
	mac := hmac.New(sha256.New, []byte(tokenSalt))
	mac.Write([]byte(secret))
	return &TokenGenerator{key: mac.Sum(nil), ttl: ttl, now: time.Now}
}

// Make returns a token of the form <base36 unix seconds>-<hex hmac>.
func (g *TokenGenerator) Make(user *models.User) string {
	ts := g.now().Unix()
	return strconv.FormatInt(ts, 36) + "-" + g.sign(user, ts)
}

// Check reports whether token was made for user and has not expired.
func (g *TokenGenerator) Check(user *models.User, token string) bool {
	tsPart, sig, ok := strings.Cut(token, "-")
	if !ok || tsPart == "" || sig == "" {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}
	if !hmac.Equal([]byte(sig), []byte(g.sign(user, ts))) {
		return false
	}
	issued := time.Unix(ts, 0)
	now := g.now()
	return !issued.After(now) && now.Sub(issued) <= g.ttl
}

func (g *TokenGenerator) sign(user *models.User, ts int64) string {
	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(strconv.FormatInt(user.ID, 10)))
	mac.Write([]byte{0})
	mac.Write([]byte(user.PasswordHash))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(user.LastLoginUnix(), 10)))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	return hex.EncodeToString(mac.Sum(nil))[:40]
}

// EncodeUID encodes a user ID for use in reset links.
func EncodeUID(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (int64, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(uid, "="))
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
