package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/merchpos/merchpos/internal/auth"
	"github.com/merchpos/merchpos/internal/models"
	"github.com/merchpos/merchpos/internal/pos"
	"github.com/merchpos/merchpos/internal/store"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.InventoryItem{}, &models.SaleRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func do(t *testing.T, h http.Handler, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	svc := pos.New(store.NewMemoryStore())
	h := New(nil, svc, auth.New(""), false)

	for _, path := range []string{"/health", "/healthz"} {
		w := do(t, h, http.MethodGet, path, "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
	}
}

// The no-auth variant: every route is open and runs as the shared owner.
func TestRouterNoAuth(t *testing.T) {
	db := setupTestDB(t)
	svc := pos.New(store.NewGormStore(db))
	h := New(db, svc, auth.New(""), false)

	w := do(t, h, http.MethodPost, "/inventory", `{"name":"Mug","price":"10","quantity":"5"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodGet, "/inventory", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Mug") {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	// No session gate means no auth routes either.
	w = do(t, h, http.MethodPost, "/login", `{"email":"a@b","password":"x"}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("login should not exist: got %d", w.Code)
	}
}

// The authenticated variant: signup does not sign in, login scopes state to
// the user, logout drops the session.
func TestRouterAuthFlow(t *testing.T) {
	db := setupTestDB(t)
	svc := pos.New(store.NewGormStore(db))
	h := New(db, svc, auth.New("test-secret"), true)

	// Gated before login.
	w := do(t, h, http.MethodGet, "/inventory", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}

	// Signup creates the account but sets no cookie.
	w = do(t, h, http.MethodPost, "/signup", `{"email":"op@shop.test","password":"hunter2"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("signup must not establish a session")
	}

	// Duplicate signup conflicts.
	w = do(t, h, http.MethodPost, "/signup", `{"email":"op@shop.test","password":"other"}`, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", w.Code)
	}

	// Wrong password rejected.
	w = do(t, h, http.MethodPost, "/login", `{"email":"op@shop.test","password":"wrong"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}

	w = do(t, h, http.MethodPost, "/login", `{"email":"op@shop.test","password":"hunter2"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login must set the session cookie")
	}

	// Authenticated CRUD + checkout, scoped to this user.
	w = do(t, h, http.MethodPost, "/inventory", `{"name":"Mug","price":"10","quantity":"5"}`, cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodPost, "/cart", `{"item":"Mug","qty":"2"}`, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("cart: expected 200 got %d", w.Code)
	}
	w = do(t, h, http.MethodPost, "/sale", "{}", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("sale: expected 200 got %d: %s", w.Code, w.Body.String())
	}
	var sale struct {
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sale); err != nil || sale.Total != 20 {
		t.Fatalf("unexpected sale payload: %s", w.Body.String())
	}

	// A second user sees none of it.
	do(t, h, http.MethodPost, "/signup", `{"email":"other@shop.test","password":"pass"}`, nil)
	w = do(t, h, http.MethodPost, "/login", `{"email":"other@shop.test","password":"pass"}`, nil)
	otherCookies := w.Result().Cookies()
	w = do(t, h, http.MethodGet, "/inventory", "", otherCookies)
	if strings.Contains(w.Body.String(), "Mug") {
		t.Fatalf("inventory leaked across owners: %s", w.Body.String())
	}

	// Logout clears the cookie; the gate closes again.
	w = do(t, h, http.MethodPost, "/logout", "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200 got %d", w.Code)
	}
	cleared := w.Result().Cookies()
	if len(cleared) == 0 || cleared[0].Value != "" {
		t.Fatal("logout must clear the session cookie")
	}
}

func TestRouterExportCSV(t *testing.T) {
	db := setupTestDB(t)
	svc := pos.New(store.NewGormStore(db))
	h := New(db, svc, auth.New(""), false)

	do(t, h, http.MethodPost, "/inventory", `{"name":"Mug","price":"10","quantity":"5"}`, nil)
	do(t, h, http.MethodPost, "/cart", `{"item":"Mug","qty":"2"}`, nil)
	do(t, h, http.MethodPost, "/sale", "{}", nil)

	w := do(t, h, http.MethodGet, "/history/export.csv", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	lines := strings.Split(w.Body.String(), "\n")
	if len(lines) != 2 || lines[0] != "Item,Quantity,Price,Total,Timestamp" {
		t.Fatalf("unexpected export: %q", w.Body.String())
	}
}
