package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"obrolan/internal/handlers"
	"obrolan/internal/middleware"
	"obrolan/internal/models"
	"obrolan/internal/repositories"
	"obrolan/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testBootstrapSecret = "test_bootstrap_secret"

// newApp assembles the full route surface over the given repositories, the
// same way main does for either backend.
func newApp(userRepo repositories.UserRepository, settingRepo repositories.SettingRepository) *fiber.App {
	jwtSecret := viper.GetString("JWT_SECRET")

	authService := services.NewAuthService(userRepo, jwtSecret)
	directoryService := services.NewDirectoryService(userRepo)
	adminService := services.NewAdminService(userRepo, settingRepo, nil, services.AdminConfig{
		BootstrapSecret: testBootstrapSecret,
		BootstrapAdmin:  "alice",
	})

	authHandler := handlers.NewAuthHandler(authService)
	publicHandler := handlers.NewPublicHandler(directoryService)
	adminHandler := handlers.NewAdminHandler(adminService)

	app := fiber.New()
	app.Use(logger.New())

	publicHandler.RegisterRoutes(app)
	authHandler.RegisterRoutes(app)
	adminHandler.RegisterRoutes(app, middleware.IdentityRequired(authService))
	app.Use(handlers.NotFoundHandler)

	return app
}

// setupApp builds an app over an in-memory SQLite database, the persistent
// backend's shape under test. The shared-cache name is derived from the test
// so connections within one pool see the same database while tests stay
// isolated from each other.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Setting{}); err != nil {
		t.Fatalf("failed to auto-migrate database: %v", err)
	}

	return newApp(repositories.NewGORMUserRepository(db), repositories.NewGORMSettingRepository(db))
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// doJSON posts body (when non-nil) and decodes the envelope.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func signup(t *testing.T, app *fiber.App, username, password string) map[string]interface{} {
	t.Helper()
	status, envelope := doJSON(t, app, http.MethodPost, "/auth/signup", map[string]interface{}{
		"username":     username,
		"password":     password,
		"ageConfirmed": true,
	}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, envelope["success"])
	return envelope
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	status, envelope := doJSON(t, app, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, "healthy", envelope["message"])
	assert.NotEmpty(t, envelope["timestamp"])
}

func TestSignupAndLogin(t *testing.T) {
	app := setupApp(t)

	// Signup
	envelope := signup(t, app, "alice", "pw123")
	user := envelope["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	userID := user["userId"].(string)
	assert.NotEmpty(t, userID)

	// Duplicate signup with a case variant fails with 400
	status, envelope := doJSON(t, app, http.MethodPost, "/auth/signup", map[string]interface{}{
		"username":     "ALICE",
		"password":     "other",
		"ageConfirmed": true,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, envelope["success"])
	assert.NotEmpty(t, envelope["error"])

	// Missing fields and unconfirmed age fail with 400
	for _, body := range []map[string]interface{}{
		{"password": "pw123", "ageConfirmed": true},
		{"username": "bob", "ageConfirmed": true},
		{"username": "bob", "password": "pw123"},
	} {
		status, envelope = doJSON(t, app, http.MethodPost, "/auth/signup", body, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, false, envelope["success"])
	}

	// Login round trip returns the same userId
	status, envelope = doJSON(t, app, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "alice",
		"password": "pw123",
	}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, envelope["success"])
	loggedIn := envelope["user"].(map[string]interface{})
	assert.Equal(t, userID, loggedIn["userId"])
	assert.Equal(t, "alice", loggedIn["username"])
	assert.Equal(t, false, loggedIn["banned"])
	assert.Equal(t, float64(0), loggedIn["rank"])
	assert.NotEmpty(t, envelope["token"])

	// Wrong password is a 401 with the generic message
	status, envelope = doJSON(t, app, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "alice",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "invalid username or password", envelope["error"])

	// Unknown user gets the identical 401, no enumeration
	status, envelope = doJSON(t, app, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "nobody",
		"password": "pw123",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid username or password", envelope["error"])

	// Missing fields are a 400, not a 401
	status, _ = doJSON(t, app, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "alice",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPublicUsersAndProfile(t *testing.T) {
	app := setupApp(t)

	signup(t, app, "alice", "pw123")
	signup(t, app, "Bob", "pw456")

	status, envelope := doJSON(t, app, http.MethodGet, "/public/users", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, envelope["success"])
	users := envelope["users"].([]interface{})
	assert.ElementsMatch(t, []interface{}{"alice", "Bob"}, users)

	status, envelope = doJSON(t, app, http.MethodGet, "/profile/alice", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	profile := envelope["profile"].(map[string]interface{})
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, float64(0), profile["rank"])
	assert.Equal(t, "online", profile["status"])

	status, envelope = doJSON(t, app, http.MethodGet, "/profile/nobody", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, envelope["success"])
}

func TestAdminFlow(t *testing.T) {
	app := setupApp(t)

	signup(t, app, "alice", "pw123")
	signup(t, app, "bob", "pw456")

	// Bad secret
	status, envelope := doJSON(t, app, http.MethodPost, "/admin/init-rank5", map[string]interface{}{
		"secret": "wrong",
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, false, envelope["success"])

	// Bootstrap alice to rank 5
	status, envelope = doJSON(t, app, http.MethodPost, "/admin/init-rank5", map[string]interface{}{
		"secret": testBootstrapSecret,
	}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, envelope["success"])
	assert.Contains(t, envelope["message"], "alice")

	// Bootstrap is consumed: the same secret is refused from now on
	status, _ = doJSON(t, app, http.MethodPost, "/admin/init-rank5", map[string]interface{}{
		"secret": testBootstrapSecret,
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Out-of-range rank is a 400
	for _, rank := range []int{-1, 6} {
		status, _ = doJSON(t, app, http.MethodPost, "/admin/set-rank", map[string]interface{}{
			"adminUsername":  "alice",
			"targetUsername": "bob",
			"rank":           rank,
		}, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	}

	// A rank-0 caller may not set ranks
	status, _ = doJSON(t, app, http.MethodPost, "/admin/set-rank", map[string]interface{}{
		"adminUsername":  "bob",
		"targetUsername": "alice",
		"rank":           0,
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Missing adminUsername is a 403
	status, _ = doJSON(t, app, http.MethodPost, "/admin/set-rank", map[string]interface{}{
		"targetUsername": "bob",
		"rank":           2,
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Unknown target is a 404
	status, _ = doJSON(t, app, http.MethodPost, "/admin/set-rank", map[string]interface{}{
		"adminUsername":  "alice",
		"targetUsername": "nobody",
		"rank":           2,
	}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// The bootstrapped admin promotes bob; the mutation shows on his profile
	status, envelope = doJSON(t, app, http.MethodPost, "/admin/set-rank", map[string]interface{}{
		"adminUsername":  "alice",
		"targetUsername": "bob",
		"rank":           3,
	}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, envelope["message"], "bob rank changed from 0 to 3 by alice")

	status, envelope = doJSON(t, app, http.MethodGet, "/profile/bob", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	profile := envelope["profile"].(map[string]interface{})
	assert.Equal(t, float64(3), profile["rank"])

	// Publish update requires an adminUsername
	status, _ = doJSON(t, app, http.MethodPost, "/admin/publish-update", map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, envelope = doJSON(t, app, http.MethodPost, "/admin/publish-update", map[string]interface{}{
		"adminUsername": "alice",
	}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, envelope["message"], "all")
}

func TestSourceDisclosure(t *testing.T) {
	app := setupApp(t)

	signup(t, app, "alice", "pw123")
	signup(t, app, "bob", "pw456")

	status, _ := doJSON(t, app, http.MethodPost, "/admin/init-rank5", map[string]interface{}{
		"secret": testBootstrapSecret,
	}, nil)
	assert.Equal(t, http.StatusOK, status)

	// Rank-5 caller via the legacy header
	status, envelope := doJSON(t, app, http.MethodGet, "/code", nil, map[string]string{
		"X-Username": "alice",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, envelope["success"])
	assert.NotEmpty(t, envelope["sourceCode"])

	// Rank-5 caller via the login token
	status, envelope = doJSON(t, app, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "alice",
		"password": "pw123",
	}, nil)
	assert.Equal(t, http.StatusOK, status)
	token := envelope["token"].(string)

	status, envelope = doJSON(t, app, http.MethodGet, "/code", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, envelope["success"])

	// Insufficient rank and anonymous callers get a 403
	status, _ = doJSON(t, app, http.MethodGet, "/code", nil, map[string]string{
		"X-Username": "bob",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, app, http.MethodGet, "/code", nil, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestUnknownRoute(t *testing.T) {
	app := setupApp(t)

	status, envelope := doJSON(t, app, http.MethodGet, "/no/such/route", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "Not found", envelope["error"])
}

func TestMemoryBackendServesTheSameRoutes(t *testing.T) {
	app := newApp(repositories.NewMemoryUserRepository(), repositories.NewMemorySettingRepository())

	signup(t, app, "alice", "pw123")

	status, envelope := doJSON(t, app, http.MethodGet, "/public/users", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"alice"}, envelope["users"])

	status, _ = doJSON(t, app, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "alice",
		"password": "pw123",
	}, nil)
	assert.Equal(t, http.StatusOK, status)
}

// Sanity check: two distinct simulation apps do not share storage, unlike two
// replicas of the persistent backend sharing one database. This divergence is
// inherent to the simulation and conformance runs are single-client only.
func TestMemoryBackendIsProcessPrivate(t *testing.T) {
	appA := newApp(repositories.NewMemoryUserRepository(), repositories.NewMemorySettingRepository())
	appB := newApp(repositories.NewMemoryUserRepository(), repositories.NewMemorySettingRepository())

	signup(t, appA, "alice", "pw123")

	status, _ := doJSON(t, appB, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "alice",
		"password": "pw123",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
