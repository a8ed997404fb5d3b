package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"taskline-service/internal/domain/user"
	"taskline-service/internal/federation/google"
	"taskline-service/internal/middleware"
	xerrors "taskline-service/internal/pkg/errors"
	"taskline-service/internal/pkg/jwt"
	"taskline-service/internal/pkg/session"
	authUsecase "taskline-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------- in-memory collaborators ----------

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]*user.User)}
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, xerrors.ErrNotFound
}

func (r *memUserRepo) FindByGoogleID(_ context.Context, googleID string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.GoogleID.Valid && u.GoogleID.String == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return xerrors.ErrConflict
		}
	}
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) RecordLogin(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LoginsCount++
		return nil
	}
	return xerrors.ErrNotFound
}

type memStore struct {
	mu      sync.Mutex
	markers map[int64]string
}

func newMemStore() *memStore {
	return &memStore{markers: make(map[int64]string)}
}

func (s *memStore) Put(_ context.Context, userID int64, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[userID] = sessionID
	return nil
}

func (s *memStore) Get(_ context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sid, ok := s.markers[userID]
	if !ok {
		return "", session.ErrNoSession
	}
	return sid, nil
}

func (s *memStore) CompareAndPut(_ context.Context, userID int64, expected, newSessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markers[userID] != expected {
		return false, nil
	}
	s.markers[userID] = newSessionID
	return true, nil
}

func (s *memStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, userID)
	return nil
}

type memGoogleVerifier struct{}

func (memGoogleVerifier) VerifyIDToken(_ context.Context, _ string) (*google.Identity, error) {
	return nil, xerrors.ErrUnauthorized
}

// ---------- harness ----------

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager, err := jwt.Build(jwt.Config{
		Secret:     "test-secret-at-least-32-bytes-long!!",
		Issuer:     "taskline",
		Audience:   "taskline",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	require.NoError(t, err)

	svc := authUsecase.NewAuthService(newMemUserRepo(), manager, newMemStore(), memGoogleVerifier{}, zap.NewNop())

	handler := NewAuthHandler(svc, CookieConfig{
		Path:   "/api/v1/auth",
		MaxAge: 3600,
	}, zap.NewNop())
	authMw := middleware.NewAuthMiddleware(svc)

	r := gin.New()
	api := r.Group("/api/v1")
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/sign-up", handler.SignUp)
		authPublic.POST("/sign-in", handler.SignIn)
		authPublic.POST("/google", handler.GoogleSignIn)
		authPublic.POST("/refresh", handler.Refresh)
	}
	authProtected := api.Group("/auth")
	authProtected.Use(authMw.Auth())
	{
		authProtected.POST("/logout", handler.Logout)
		authProtected.GET("/me", handler.Me)
	}

	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}, mutate func(*http.Request)) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == RefreshCookieName {
			return c
		}
	}
	t.Fatalf("no %q cookie in response", RefreshCookieName)
	return nil
}

func accessTokenOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.AccessToken)
	return body.Data.AccessToken
}

// ---------- scenarios ----------

func TestSignUpRefreshLogoutFlow(t *testing.T) {
	r := newTestRouter(t)

	// Sign-up returns an access token and sets the refresh cookie.
	w := doJSON(r, http.MethodPost, "/api/v1/auth/sign-up",
		gin.H{"email": "a@x.com", "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	firstAccess := accessTokenOf(t, w)
	firstCookie := refreshCookie(t, w)
	require.True(t, firstCookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, firstCookie.SameSite)
	require.Equal(t, "/api/v1/auth", firstCookie.Path)

	// Rotation with the cookie yields a new pair.
	w = doJSON(r, http.MethodPost, "/api/v1/auth/refresh", nil, func(req *http.Request) {
		req.AddCookie(firstCookie)
	})
	require.Equal(t, http.StatusOK, w.Code)
	secondAccess := accessTokenOf(t, w)
	secondCookie := refreshCookie(t, w)
	require.NotEqual(t, firstCookie.Value, secondCookie.Value)
	require.NotEqual(t, firstAccess, secondAccess)

	// The old cookie is now rejected.
	w = doJSON(r, http.MethodPost, "/api/v1/auth/refresh", nil, func(req *http.Request) {
		req.AddCookie(firstCookie)
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Sign back in: the replayed first cookie tripped the defensive
	// invalidation, so the second cookie is dead too.
	w = doJSON(r, http.MethodPost, "/api/v1/auth/sign-in",
		gin.H{"email": "a@x.com", "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	access := accessTokenOf(t, w)
	cookie := refreshCookie(t, w)

	// Logout clears the cookie and revokes the marker in one request.
	w = doJSON(r, http.MethodPost, "/api/v1/auth/logout", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	})
	require.Equal(t, http.StatusOK, w.Code)
	cleared := refreshCookie(t, w)
	require.Empty(t, cleared.Value)
	require.Less(t, cleared.MaxAge, 0)

	// Rotation with the newest cookie now fails.
	w = doJSON(r, http.MethodPost, "/api/v1/auth/refresh", nil, func(req *http.Request) {
		req.AddCookie(cookie)
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignInFailures(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/sign-up",
		gin.H{"email": "a@x.com", "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	wrongPwd := doJSON(r, http.MethodPost, "/api/v1/auth/sign-in",
		gin.H{"email": "a@x.com", "password": "wrong-password"}, nil)
	unknown := doJSON(r, http.MethodPost, "/api/v1/auth/sign-in",
		gin.H{"email": "nobody@x.com", "password": "password123"}, nil)

	require.Equal(t, http.StatusUnauthorized, wrongPwd.Code)
	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	// Identical error shape for both failure causes.
	require.JSONEq(t, wrongPwd.Body.String(), unknown.Body.String())
}

func TestSignUpDuplicateEmailReturnsConflict(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/sign-up",
		gin.H{"email": "a@x.com", "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/auth/sign-up",
		gin.H{"email": "a@x.com", "password": "password456"}, nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRefreshWithoutCookieRejected(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/refresh", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGoogleSignInRejectedTokenReturns401(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/google",
		gin.H{"token": "not-a-real-id-token"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeRequiresAuth(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/auth/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	signUp := doJSON(r, http.MethodPost, "/api/v1/auth/sign-up",
		gin.H{"email": "a@x.com", "password": "password123"}, nil)
	access := accessTokenOf(t, signUp)

	w = doJSON(r, http.MethodGet, "/api/v1/auth/me", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "a@x.com")
}
