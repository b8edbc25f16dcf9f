package entrypoint

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Database: config.Database{
			Driver:       config.DriverSQLite,
			Path:         filepath.Join(t.TempDir(), "library.db"),
			MaxOpenConns: 1,
			CreateSchema: true,
			LogLevel:     "silent",
		},
		Audit: config.Audit{
			RetentionDays:   30,
			CleanupSchedule: "0 3 * * *",
		},
	}
}

func TestBuild(t *testing.T) {
	app, err := Build(testConfig(t), "test")
	require.NoError(t, err)
	t.Cleanup(app.Close)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gorilla.csrf.Token")

	// Sessions live in the same SQLite file.
	var count int
	require.NoError(t, app.DB.DB.Raw(`SELECT COUNT(*) FROM sessions`).Scan(&count).Error)
}

func TestBuild_DemoMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Demo.Enabled = true
	cfg.Session.Secret = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

	app, err := Build(cfg, "test")
	require.NoError(t, err)
	t.Cleanup(app.Close)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, w.Body.String(), "Demo mode: changes are disabled.")

	// Tokenless posts are refused before reaching any handler.
	req := httptest.NewRequest(http.MethodPost, "/books", nil)
	req.Header.Set("Accept", "application/json")
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBuild_InvalidDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "oracle"

	_, err := Build(cfg, "test")
	assert.Error(t, err)
}

func TestBuild_InvalidTemplatesPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.UI.TemplatesPath = filepath.Join(t.TempDir(), "missing")

	_, err := Build(cfg, "test")
	assert.Error(t, err)
}
