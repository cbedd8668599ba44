package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/techtimeoff/leave-service/internal/api/http"
	"github.com/techtimeoff/leave-service/internal/api/http/handlers"
	"github.com/techtimeoff/leave-service/internal/auth"
	"github.com/techtimeoff/leave-service/internal/config"
	"github.com/techtimeoff/leave-service/internal/domain"
	"github.com/techtimeoff/leave-service/internal/events"
	"github.com/techtimeoff/leave-service/internal/oauth"
	"github.com/techtimeoff/leave-service/internal/observability"
	"github.com/techtimeoff/leave-service/internal/persistence"
	"github.com/techtimeoff/leave-service/internal/repository"
	"github.com/techtimeoff/leave-service/internal/service"
	"github.com/techtimeoff/leave-service/internal/worker"
)

type stubProvider struct{}

func (stubProvider) Name() domain.AuthProvider { return domain.AuthProviderGoogle }

func (stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.test/authorize?state=" + url.QueryEscape(state)
}

func (stubProvider) Exchange(_ context.Context, code string) (*oauth.Profile, error) {
	return &oauth.Profile{ProviderID: "g-" + code, Email: code + "@gmail.com", DisplayName: "Guest " + code}, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()

	db, err := persistence.NewSQLite(config.SQLiteConfig{Path: persistence.MemoryPath}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	userRepo, err := repository.NewGormUserRepository(db.DB)
	require.NoError(t, err)
	leaveRepo, err := repository.NewGormLeaveRepository(db.DB)
	require.NoError(t, err)
	historyRepo, err := repository.NewGormLeaveHistoryRepository(db.DB)
	require.NoError(t, err)

	cfg := config.Config{
		App:   config.AppConfig{Name: "leave-service", Version: "test"},
		Auth:  config.AuthConfig{BcryptCost: bcrypt.MinCost},
		OAuth: config.OAuthConfig{FrontendURL: "http://front.test"},
	}
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager("router-test-secret", 60)

	identity := service.NewIdentityService(cfg, service.IdentityDependencies{UserRepo: userRepo, Logger: logger})
	authService := service.NewAuthService(identity, tokens)
	registry := oauth.Registry{}
	registry.Register(stubProvider{})
	oauthService := service.NewOAuthService(cfg, service.OAuthDependencies{
		Providers: registry,
		States:    oauth.NewMemoryStateStore(cfg.OAuth.StateTTL()),
		Identity:  identity,
		Tokens:    tokens,
		Logger:    logger,
	})
	leaveService := service.NewLeaveService(cfg, service.LeaveDependencies{
		LeaveRepo:   leaveRepo,
		HistoryRepo: historyRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	worker.StartEventSubscribers(dispatcher, service.NewActivityService(dispatcher, logger, metrics), nil)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		AllowedOrigins: []string{"http://front.test"},
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, map[string]handlers.Pinger{"sqlite": db}),
		Auth:           handlers.NewAuthHandler(authService, identity),
		OAuth:          handlers.NewOAuthHandler(oauthService),
		Users:          handlers.NewUsersHandler(identity),
		Leaves:         handlers.NewLeavesHandler(leaveService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		OAuthProviders: []domain.AuthProvider{domain.AuthProviderGoogle},
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(encoded)
		}
		reader = strings.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(bytes.TrimSpace(payload)) > 0 {
		require.NoError(t, json.Unmarshal(payload, &out), string(payload))
	}
	return res.StatusCode, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

type account struct {
	ID    string
	Token string
}

func signUp(t *testing.T, app *fiber.App, name, email string, role domain.Role) account {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"name": name, "email": email, "password": "secret123", "role": role,
	})
	require.Equal(t, http.StatusCreated, status, body)
	user := body["user"].(map[string]any)
	return account{ID: user["id"].(string), Token: body["token"].(string)}
}

func leaveBody() map[string]any {
	return map[string]any{
		"leaveType":    "Casual Leave",
		"startDate":    "2024-06-03",
		"endDate":      "2024-06-04",
		"numberOfDays": 2,
		"reason":       "family event",
	}
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = call(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["dependencies"].(map[string]any)["sqlite"])

	status, body = call(t, app, http.MethodGet, "/health/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["requests"])
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Ana", "email": "  Ana@Example.com ", "password": "secret123", "role": "faculty",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User registered successfully", body["message"])
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.NotContains(t, user, "passwordHash")
	assert.Equal(t, float64(10), user["leaveBalance"].(map[string]any)["casual"])

	status, body = call(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Ana 2", "email": "ANA@example.com", "password": "secret123", "role": "faculty",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "DUPLICATE_EMAIL", errorCode(body))

	status, body = call(t, app, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "ana@example.com", "password": "secret123", "role": "faculty",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Login successful", body["message"])

	status, body = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "ana@example.com", "password": "secret123", "role": "principal",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ROLE_MISMATCH", errorCode(body))
	assert.Equal(t, "This account is registered as faculty, not principal", body["message"])

	status, body = call(t, app, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "ana@example.com", "password": "wrong-one", "role": "faculty",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(body))

	status, body = call(t, app, http.MethodPost, "/auth/register", "", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestAccessGate(t *testing.T) {
	app := newTestApp(t)
	ana := signUp(t, app, "Ana", "ana@example.com", domain.RoleFaculty)

	status, body := call(t, app, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, auth.MsgNoToken, body["message"])

	status, body = call(t, app, http.MethodGet, "/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, auth.MsgInvalidToken, body["message"])

	status, body = call(t, app, http.MethodGet, "/api/auth/me", ana.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, ana.ID, body["user"].(map[string]any)["id"])
}

func TestLeaveWorkflowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	ana := signUp(t, app, "Ana", "ana@example.com", domain.RoleFaculty)
	ben := signUp(t, app, "Ben", "ben@example.com", domain.RoleFaculty)
	cora := signUp(t, app, "Cora", "cora@example.com", domain.RoleCoordinator)

	status, body := call(t, app, http.MethodPost, "/leaves", ana.Token, leaveBody())
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "Leave request submitted successfully", body["message"])
	leave := body["leave"].(map[string]any)
	id := leave["id"].(string)
	assert.Equal(t, "Pending", leave["status"])
	assert.Equal(t, "Ana", leave["user"].(map[string]any)["name"])

	status, body = call(t, app, http.MethodGet, "/leaves", ben.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])

	status, body = call(t, app, http.MethodGet, "/leaves", cora.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	status, _ = call(t, app, http.MethodGet, "/leaves/"+id, ben.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodPut, "/leaves/"+id+"/approve", ben.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = call(t, app, http.MethodPut, "/leaves/"+id+"/approve", cora.Token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Leave request approved successfully", body["message"])
	leave = body["leave"].(map[string]any)
	assert.Equal(t, "Approved", leave["status"])
	assert.Equal(t, "Cora", leave["approverName"])
	assert.Equal(t, cora.ID, leave["approvedBy"].(map[string]any)["id"])
	assert.NotNil(t, leave["actionDate"])

	status, body = call(t, app, http.MethodPut, "/leaves/"+id+"/reject", cora.Token, map[string]any{"rejectionReason": "late"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(body))

	status, body = call(t, app, http.MethodDelete, "/leaves/"+id, ana.Token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(body))

	status, body = call(t, app, http.MethodGet, "/leaves/"+id+"/history", ana.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	_, body = call(t, app, http.MethodGet, "/health/metrics", "", nil)
	counted := body["events"].(map[string]any)
	assert.Equal(t, float64(1), counted["leave.requested"])
	assert.Equal(t, float64(1), counted["leave.approved"])

	status, body = call(t, app, http.MethodPut, "/leaves/"+uuidLike+"/approve", cora.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

const uuidLike = "00000000-0000-4000-8000-000000000000"

func TestRejectDefaultsReasonAndCancel(t *testing.T) {
	app := newTestApp(t)
	ana := signUp(t, app, "Ana", "ana@example.com", domain.RoleFaculty)
	pia := signUp(t, app, "Pia", "pia@example.com", domain.RolePrincipal)

	_, body := call(t, app, http.MethodPost, "/leaves", ana.Token, leaveBody())
	first := body["leave"].(map[string]any)["id"].(string)
	_, body = call(t, app, http.MethodPost, "/leaves", ana.Token, leaveBody())
	second := body["leave"].(map[string]any)["id"].(string)

	status, body := call(t, app, http.MethodPut, "/leaves/"+first+"/reject", pia.Token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Leave request rejected", body["message"])
	assert.Equal(t, domain.DefaultRejectionReason, body["leave"].(map[string]any)["rejectionReason"])

	status, _ = call(t, app, http.MethodDelete, "/leaves/"+second, pia.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodDelete, "/leaves/"+second, ana.Token, nil)
	require.Equal(t, http.StatusOK, status, body)
	leave := body["leave"].(map[string]any)
	assert.Equal(t, "Cancelled", leave["status"])
	assert.Nil(t, leave["approvedBy"])
}

func TestLeaveValidationAndUpdate(t *testing.T) {
	app := newTestApp(t)
	ana := signUp(t, app, "Ana", "ana@example.com", domain.RoleFaculty)

	bad := leaveBody()
	bad["leaveType"] = "Vacation"
	bad["reason"] = "  "
	status, body := call(t, app, http.MethodPost, "/leaves", ana.Token, bad)
	assert.Equal(t, http.StatusBadRequest, status)
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Contains(t, details, "leaveType")
	assert.Contains(t, details, "reason")

	bad = leaveBody()
	bad["startDate"] = "next week"
	status, body = call(t, app, http.MethodPost, "/leaves", ana.Token, bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"].(map[string]any)["details"], "startDate")

	_, body = call(t, app, http.MethodPost, "/leaves", ana.Token, leaveBody())
	id := body["leave"].(map[string]any)["id"].(string)

	edit := leaveBody()
	edit["numberOfDays"] = 0.5
	edit["endDate"] = "2024-06-03"
	status, body = call(t, app, http.MethodPut, "/leaves/"+id, ana.Token, edit)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, 0.5, body["leave"].(map[string]any)["numberOfDays"])
}

func TestUserProfileEndpoints(t *testing.T) {
	app := newTestApp(t)
	ana := signUp(t, app, "Ana", "ana@example.com", domain.RoleFaculty)
	ben := signUp(t, app, "Ben", "ben@example.com", domain.RoleFaculty)
	pia := signUp(t, app, "Pia", "pia@example.com", domain.RolePrincipal)

	status, body := call(t, app, http.MethodGet, "/users", ana.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), body["count"])

	status, body = call(t, app, http.MethodPut, "/users/"+ana.ID, ana.Token, map[string]any{"department": "Physics"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "User updated successfully", body["message"])
	assert.Equal(t, "Physics", body["user"].(map[string]any)["department"])

	status, body = call(t, app, http.MethodPut, "/users/"+ana.ID, ana.Token, map[string]any{"role": "principal"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = call(t, app, http.MethodPut, "/users/"+ana.ID, ben.Token, map[string]any{"name": "Hacked"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodPut, "/users/"+ana.ID, pia.Token, map[string]any{"name": "Ana Maria"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodDelete, "/users/"+ben.ID, ana.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodDelete, "/users/"+ben.ID, pia.Token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, false, body["user"].(map[string]any)["isActive"])

	status, body = call(t, app, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "ben@example.com", "password": "secret123", "role": "faculty",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", errorCode(body))
}

func TestChangePassword(t *testing.T) {
	app := newTestApp(t)
	ana := signUp(t, app, "Ana", "ana@example.com", domain.RoleFaculty)

	status, _ := call(t, app, http.MethodPost, "/auth/change-password", ana.Token, map[string]any{
		"currentPassword": "nope-nope", "newPassword": "another1",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodPost, "/auth/change-password", ana.Token, map[string]any{
		"currentPassword": "secret123", "newPassword": "another1",
	})
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "ana@example.com", "password": "another1", "role": "faculty",
	})
	assert.Equal(t, http.StatusOK, status)
}

func redirect(t *testing.T, app *fiber.App, path string) *url.URL {
	t.Helper()
	res, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusFound, res.StatusCode)
	loc, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	return loc
}

func TestOAuthRoutes(t *testing.T) {
	app := newTestApp(t)

	status, _ := call(t, app, http.MethodGet, "/auth/github", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	loc := redirect(t, app, "/auth/google")
	assert.Equal(t, "accounts.test", loc.Host)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	loc = redirect(t, app, "/auth/google/callback?code=zoe&state="+url.QueryEscape(state))
	assert.Equal(t, "/auth/callback", loc.Path)
	assert.Equal(t, "google", loc.Query().Get("provider"))
	token := loc.Query().Get("token")
	require.NotEmpty(t, token)

	status, body := call(t, app, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	user := body["user"].(map[string]any)
	assert.Equal(t, "zoe@gmail.com", user["email"])
	assert.Equal(t, "google", user["authProvider"])
	assert.Equal(t, false, user["hasPassword"])

	loc = redirect(t, app, "/api/auth/google/callback?code=zoe&state="+url.QueryEscape(state))
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "google_auth_failed", loc.Query().Get("error"))
}

func TestOverlongPasswordIsRejected(t *testing.T) {
	app := newTestApp(t)
	long := strings.Repeat("p", 80)

	status, body := call(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Ana", "email": "ana@example.com", "password": long, "role": "faculty",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	assert.Contains(t, body["error"].(map[string]any)["details"], "password")

	ana := signUp(t, app, "Ana", "ana@example.com", domain.RoleFaculty)
	status, body = call(t, app, http.MethodPost, "/auth/change-password", ana.Token, map[string]any{
		"currentPassword": "secret123", "newPassword": long,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"].(map[string]any)["details"], "newPassword")
}

func TestEmployeeIDEdit(t *testing.T) {
	app := newTestApp(t)
	ana := signUp(t, app, "Ana", "ana@example.com", domain.RoleFaculty)
	ben := signUp(t, app, "Ben", "ben@example.com", domain.RoleFaculty)

	status, body := call(t, app, http.MethodPut, "/users/"+ana.ID, ana.Token, map[string]any{"employeeId": "FAC-1"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "FAC-1", body["user"].(map[string]any)["employeeId"])

	status, body = call(t, app, http.MethodPut, "/users/"+ben.ID, ben.Token, map[string]any{"employeeId": "FAC-1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_IDENTIFIER", errorCode(body))
}
