package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/apiserver/internal/auth"
	"github.com/taskdesk/apiserver/internal/db"
	"github.com/taskdesk/apiserver/internal/services"
	"github.com/taskdesk/apiserver/internal/store/gormstore"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "handlers-test-secret"

type testEnv struct {
	client *resty.Client
	tokens *auth.TokenIssuer
	gdb    *gorm.DB
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.OpenGorm(":memory:")
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	tokens := auth.NewTokenIssuer([]byte(testSecret), auth.DefaultTokenTTL)
	userService := services.NewUserService(gormstore.NewUserRepository(gdb), &auth.BcryptHasher{Cost: bcrypt.MinCost})
	taskService := services.NewTaskService(gormstore.NewTaskRepository(gdb), nil, nil)

	authHandler := NewAuthHandler(userService, tokens, nil)
	taskHandler := NewTaskHandler(taskService, nil)

	r := chi.NewRouter()
	r.Get("/healthz", Healthz)
	r.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, authHandler)
	})
	r.Route("/api/tasks", func(r chi.Router) {
		TaskRouter(r, taskHandler, authHandler.RequireAuth)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{
		client: resty.New().SetBaseURL(srv.URL),
		tokens: tokens,
		gdb:    gdb,
	}
}

// register creates a user and returns its token.
func (e *testEnv) register(t *testing.T, name, email string) string {
	t.Helper()

	var out AuthResponse
	resp, err := e.client.R().
		SetBody(map[string]string{"name": name, "email": email, "password": "password123"}).
		SetResult(&out).
		Post("/api/auth/register")
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode(), resp.String())
	require.NotEmpty(t, out.Token)
	return out.Token
}
