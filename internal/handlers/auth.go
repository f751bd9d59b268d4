package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/merchpos/merchpos/internal/auth"
	"github.com/merchpos/merchpos/internal/httpx"
	"github.com/merchpos/merchpos/internal/models"
	"github.com/merchpos/merchpos/internal/pos"
	"github.com/merchpos/merchpos/internal/validation"
)

// AuthHandler implements the session gate: signup, login, logout. Only
// mounted when auth is enabled.
type AuthHandler struct {
	DB       *gorm.DB
	Sessions *auth.Sessions
	Svc      *pos.Service
}

func NewAuthHandler(db *gorm.DB, sessions *auth.Sessions, svc *pos.Service) *AuthHandler {
	return &AuthHandler{DB: db, Sessions: sessions, Svc: svc}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) readCredentials(r *http.Request) (credentials, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var c credentials
		err := httpx.Decode(r, &c)
		c.Email = strings.TrimSpace(c.Email)
		return c, err
	}
	if err := r.ParseForm(); err != nil {
		return credentials{}, err
	}
	return credentials{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}, nil
}

// Signup creates the account but does not sign it in: the client is told
// confirmation is pending and to log in explicitly.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	c, err := h.readCredentials(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("email", c.Email, v)
	validation.Required("password", c.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "signup_failed", nil)
		return
	}
	user := models.User{Email: c.Email, Password: string(hash)}
	if err := h.DB.Create(&user).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") ||
			strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			httpx.JSONError(w, http.StatusConflict, "email_already_registered", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "signup_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":   "Account created. Confirmation pending; please sign in.",
		"signed_in": false,
	})
}

// Login verifies the credentials, establishes the session, and triggers the
// first inventory load scoped to that user.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	c, err := h.readCredentials(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	if c.Email == "" || c.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "email_and_password_required", nil)
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", c.Email).First(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(c.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	h.Sessions.Create(w, user.ID)
	// A failed first load is logged inside the service; the session is
	// still valid and the next inventory fetch retries it.
	_ = h.Svc.Load(r.Context(), user.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout clears the session cookie and drops the user's transient state.
// Remote data is untouched.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok && uid != 0 {
		h.Svc.Reset(uid)
	}
	h.Sessions.Clear(w)
	httpx.JSON(w, http.StatusOK, map[string]any{"signed_in": false})
}
