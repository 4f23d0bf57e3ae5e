package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-hrms/internal/auth"
	autherrors "go-hrms/internal/auth/errors"
	"go-hrms/internal/shared/apperror"
)

type fakeAuthService struct {
	loginFn    func(ctx context.Context, req auth.LoginRequest, meta auth.ClientMeta) (auth.TokenResponse, error)
	refreshFn  func(ctx context.Context, token string) (auth.TokenResponse, error)
	getMeFn    func(ctx context.Context, userID string) (auth.AuthResponse, error)
	registerFn func(ctx context.Context, req auth.RegisterRequest) (auth.AuthResponse, error)
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest, meta auth.ClientMeta) (auth.TokenResponse, error) {
	return f.loginFn(ctx, req, meta)
}

func (f *fakeAuthService) RefreshToken(ctx context.Context, token string) (auth.TokenResponse, error) {
	return f.refreshFn(ctx, token)
}

func (f *fakeAuthService) GetMe(ctx context.Context, userID string) (auth.AuthResponse, error) {
	return f.getMeFn(ctx, userID)
}

func (f *fakeAuthService) Register(ctx context.Context, req auth.RegisterRequest) (auth.AuthResponse, error) {
	return f.registerFn(ctx, req)
}

func (f *fakeAuthService) CreateAdmin(context.Context, string, string, string) (auth.AuthResponse, error) {
	return auth.AuthResponse{}, nil
}

func setupRouter(svc auth.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	apperror.Init()

	h := auth.NewHandler(svc)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.RefreshToken)
	r.GET("/auth/me", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Next()
	}, h.Me)
	r.POST("/auth/register", h.Register)
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotMeta auth.ClientMeta
		svc := &fakeAuthService{loginFn: func(_ context.Context, req auth.LoginRequest, meta auth.ClientMeta) (auth.TokenResponse, error) {
			assert.Equal(t, "EMP-000001", req.Identifier)
			gotMeta = meta
			return auth.TokenResponse{AccessToken: "a", RefreshToken: "r"}, nil
		}}

		w := postJSON(setupRouter(svc), "/auth/login", auth.LoginRequest{Identifier: "EMP-000001", Password: "pw"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "test-agent", gotMeta.UserAgent)

		var res map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		data := res["data"].(map[string]any)
		assert.Equal(t, "a", data["access_token"])
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &fakeAuthService{loginFn: func(context.Context, auth.LoginRequest, auth.ClientMeta) (auth.TokenResponse, error) {
			return auth.TokenResponse{}, autherrors.ErrInvalidCredentials
		}}

		w := postJSON(setupRouter(svc), "/auth/login", auth.LoginRequest{Identifier: "x", Password: "pw"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := postJSON(setupRouter(&fakeAuthService{}), "/auth/login", map[string]string{"identifier": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_RefreshToken(t *testing.T) {
	svc := &fakeAuthService{refreshFn: func(_ context.Context, token string) (auth.TokenResponse, error) {
		if token == "good" {
			return auth.TokenResponse{AccessToken: "a2"}, nil
		}
		return auth.TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}}
	r := setupRouter(svc)

	assert.Equal(t, http.StatusOK, postJSON(r, "/auth/refresh", auth.RefreshRequest{RefreshToken: "good"}).Code)
	assert.Equal(t, http.StatusUnauthorized, postJSON(r, "/auth/refresh", auth.RefreshRequest{RefreshToken: "bad"}).Code)
}

func TestHandler_Me(t *testing.T) {
	svc := &fakeAuthService{getMeFn: func(_ context.Context, userID string) (auth.AuthResponse, error) {
		assert.Equal(t, "user-1", userID)
		return auth.AuthResponse{ID: userID, Username: "alice"}, nil
	}}

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeAuthService{registerFn: func(context.Context, auth.RegisterRequest) (auth.AuthResponse, error) {
			return auth.AuthResponse{ID: "u"}, nil
		}}
		w := postJSON(setupRouter(svc), "/auth/register", auth.RegisterRequest{
			EmployeeID: "0b7e8a3c-1d2f-4e5a-9b6c-7d8e9f0a1b2c",
			Username:   "bob",
			Password:   "password1",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("username with @ rejected by binding", func(t *testing.T) {
		w := postJSON(setupRouter(&fakeAuthService{}), "/auth/register", auth.RegisterRequest{
			EmployeeID: "0b7e8a3c-1d2f-4e5a-9b6c-7d8e9f0a1b2c",
			Username:   "bob@x.com",
			Password:   "password1",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
