package cmd

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/apiserver/config"
	"github.com/taskdesk/apiserver/internal/server"
	"go.uber.org/zap/zaptest"
)

func TestServeReleasesResourcesWhenListenFails(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := config.Config{
		ServerPort: busy.Addr().(*net.TCPAddr).Port,
		JWTSecret:  "cmd-test-secret",
		Database:   config.DatabaseConfig{Driver: config.DriverSQLite, URL: ":memory:"},
		MQ:         config.MQConfig{Backend: config.MQBackendNone},
	}
	log := zaptest.NewLogger(t)

	srv, err := server.New(context.Background(), cfg, log)
	require.NoError(t, err)

	err = serve(srv, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")

	// The store was closed on the way out, so requests that need it fail.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"Ada","email":"a@x.com","password":"password123"}`))
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
