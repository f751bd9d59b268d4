package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type ctxKey string

const (
	sessionCookieName = "session"
	userIDCtxKey      = ctxKey("userID")
	sessionTTL        = 14 * 24 * time.Hour
)

// UserVerifier validates that a session's user still exists. If nil, no
// extra verification is performed.
type UserVerifier func(ctx context.Context, uid uint) bool

// Sessions signs and verifies the session cookie. The secret is injected at
// construction rather than read from ambient process state.
type Sessions struct {
	secret   []byte
	verifier UserVerifier
}

func New(secret string) *Sessions {
	if secret == "" {
		secret = "devsessionsecret"
	}
	return &Sessions{secret: []byte(secret)}
}

// SetUserVerifier configures the verifier used by Require.
func (s *Sessions) SetUserVerifier(v UserVerifier) { s.verifier = v }

func (s *Sessions) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Create sets a signed cookie with the user id.
func (s *Sessions) Create(w http.ResponseWriter, userID uint) {
	uidStr := strconv.FormatUint(uint64(userID), 10)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    uidStr + "." + s.sign(uidStr),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionTTL),
	})
}

// Clear deletes the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// Parse validates the cookie signature and returns the user id.
func (s *Sessions) Parse(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	uidStr, sig, found := strings.Cut(c.Value, ".")
	if !found {
		return 0, false
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(uidStr))) {
		return 0, false
	}
	id64, err := strconv.ParseUint(uidStr, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id64), true
}

// WithUserID stores the user id in context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts the user id; (0, false) when signed out.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	v := ctx.Value(userIDCtxKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// Middleware attaches the user id to the request context if a valid session
// cookie is present.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := s.Parse(r); ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// Require rejects unauthenticated requests with a 401. A session whose user
// no longer exists is cleared and treated the same way.
func (s *Sessions) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok || uid == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"unauthorized"}`)
			return
		}
		if s.verifier != nil && !s.verifier(r.Context(), uid) {
			s.Clear(w)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"unauthorized"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}
