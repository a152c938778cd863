package server

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const (
	sessionCookieName = "session"
	sessionMaxAge     = 14 * 24 * time.Hour
)

type userIDKey struct{}

// UserID returns the session's user id set by the session middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// sessionCodec signs user ids into a timestamped cookie value that expires
// after the cookie max age.
type sessionCodec struct {
	sc *securecookie.SecureCookie
}

func newSessionCodec(secret string, maxAge time.Duration) sessionCodec {
	hashKey := sha256.Sum256([]byte(secret))
	sc := securecookie.New(hashKey[:], nil).MaxAge(int(maxAge.Seconds()))
	sc.SetSerializer(securecookie.JSONEncoder{})
	return sessionCodec{sc: sc}
}

func (c sessionCodec) encode(userID string) (string, error) {
	return c.sc.Encode(sessionCookieName, userID)
}

func (c sessionCodec) decode(value string) (string, bool) {
	var userID string
	if err := c.sc.Decode(sessionCookieName, value, &userID); err != nil || userID == "" {
		return "", false
	}
	return userID, true
}

// sessionMiddleware assigns a user id on first contact and keeps it in a
// signed cookie.
func sessionMiddleware(codec sessionCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID string
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				if id, ok := codec.decode(cookie.Value); ok {
					userID = id
				}
			}
			if userID == "" {
				userID = uuid.NewString()
				value, err := codec.encode(userID)
				if err != nil {
					slog.Error("failed to encode session cookie", "error", err.Error())
				} else {
					http.SetCookie(w, &http.Cookie{
						Name:     sessionCookieName,
						Value:    value,
						Path:     "/",
						MaxAge:   int(sessionMaxAge.Seconds()),
						HttpOnly: true,
						SameSite: http.SameSiteLaxMode,
					})
				}
				slog.Info("assigned new user id", "user_id", userID)
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
		})
	}
}
