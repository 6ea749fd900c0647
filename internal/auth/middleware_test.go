package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/tyagiab3/user-service/internal/api/http"
	"github.com/tyagiab3/user-service/internal/auth"
	"github.com/tyagiab3/user-service/internal/domain"
	"github.com/tyagiab3/user-service/internal/observability"
	"github.com/tyagiab3/user-service/internal/repository"
)

type fakeUserRepo struct {
	users map[string]*domain.User
	err   error
}

func (f *fakeUserRepo) Create(_ context.Context, _ *domain.User) error { return errors.New("unused") }

func (f *fakeUserRepo) GetByID(_ context.Context, _ int64) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, _ int64, _ time.Time) error { return nil }

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) ListLastLogins(_ context.Context) ([]repository.LastLoginEntry, error) {
	return nil, nil
}

type fakeRoleRepo struct {
	byEmail map[string][]string
	err     error
}

func (f *fakeRoleRepo) Create(_ context.Context, _ *domain.Role) error { return errors.New("unused") }

func (f *fakeRoleRepo) GetByName(_ context.Context, _ string) (*domain.Role, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeRoleRepo) ListByUserID(_ context.Context, _ int64) ([]domain.Role, error) {
	return nil, nil
}

func (f *fakeRoleRepo) ListNamesByEmail(_ context.Context, email string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byEmail[email], nil
}

func (f *fakeRoleRepo) Assign(_ context.Context, _, _ int64) (bool, error) { return false, nil }
func (f *fakeRoleRepo) Remove(_ context.Context, _, _ int64) (bool, error) { return false, nil }

type envelope struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

type testApp struct {
	app        *fiber.App
	codec      *auth.TokenCodec
	handlerRan bool
	seenCtx    *auth.SecurityContext
}

func newTestApp(t *testing.T, users *fakeUserRepo, roles *fakeRoleRepo) *testApp {
	t.Helper()

	ta := &testApp{codec: auth.NewTokenCodec(testSecret, time.Hour)}
	logger := zap.NewNop()
	mw := auth.NewMiddleware(ta.codec, users, roles, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	app.Use(mw.Handle)

	record := func(c *fiber.Ctx) error {
		ta.handlerRan = true
		ta.seenCtx, _ = auth.ContextFromRequest(c)
		return c.SendStatus(http.StatusOK)
	}
	app.Get("/public", record)
	app.Get("/admin", auth.RequireRole(domain.RoleAdmin), record)

	ta.app = app
	return ta
}

func (ta *testApp) request(t *testing.T, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestMiddlewareAnonymousPassThrough(t *testing.T) {
	ta := newTestApp(t, &fakeUserRepo{}, &fakeRoleRepo{})

	resp := ta.request(t, "/public", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, ta.handlerRan)
	assert.Nil(t, ta.seenCtx)
}

func TestMiddlewareOtherSchemeIsAnonymous(t *testing.T) {
	ta := newTestApp(t, &fakeUserRepo{}, &fakeRoleRepo{})

	resp := ta.request(t, "/public", "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, ta.handlerRan)
	assert.Nil(t, ta.seenCtx)
}

func TestMiddlewareExpiredToken(t *testing.T) {
	ta := newTestApp(t, &fakeUserRepo{}, &fakeRoleRepo{})

	resp := ta.request(t, "/public", "Bearer "+expiredToken(t, "a@x.com", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, ta.handlerRan)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "failure", env.Status)
	assert.Equal(t, "Unauthorized: Token has expired", env.Message)
	assert.Equal(t, "null", string(env.Data))
	assert.False(t, env.Timestamp.IsZero())
}

func TestMiddlewareTamperedToken(t *testing.T) {
	ta := newTestApp(t, &fakeUserRepo{}, &fakeRoleRepo{})

	token, _, err := ta.codec.Issue("a@x.com", []string{"USER"})
	require.NoError(t, err)

	resp := ta.request(t, "/public", "Bearer "+tamperSegment(t, token, 2))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, ta.handlerRan)
	assert.Equal(t, "Unauthorized: Invalid token signature", decodeEnvelope(t, resp).Message)
}

func TestMiddlewareMalformedToken(t *testing.T) {
	ta := newTestApp(t, &fakeUserRepo{}, &fakeRoleRepo{})

	resp := ta.request(t, "/public", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, ta.handlerRan)
	assert.Equal(t, "Unauthorized: Malformed token", decodeEnvelope(t, resp).Message)
}

func TestMiddlewarePopulatesFreshRoles(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"a@x.com": {ID: 1, Username: "alice", Email: "a@x.com"},
	}}
	// Store roles differ from the token snapshot; the store wins.
	roles := &fakeRoleRepo{byEmail: map[string][]string{
		"a@x.com": {"ADMIN", "USER"},
	}}
	ta := newTestApp(t, users, roles)

	token, _, err := ta.codec.Issue("a@x.com", []string{"USER"})
	require.NoError(t, err)

	resp := ta.request(t, "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, ta.handlerRan)
	require.NotNil(t, ta.seenCtx)
	assert.Equal(t, "a@x.com", ta.seenCtx.Subject)
	assert.True(t, ta.seenCtx.HasRole("ADMIN"))
}

func TestMiddlewareUnknownSubject(t *testing.T) {
	ta := newTestApp(t, &fakeUserRepo{}, &fakeRoleRepo{})

	token, _, err := ta.codec.Issue("ghost@x.com", []string{"USER"})
	require.NoError(t, err)

	resp := ta.request(t, "/public", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, ta.handlerRan)
	assert.Equal(t, "Unauthorized: Invalid or unsupported token", decodeEnvelope(t, resp).Message)
}

func TestMiddlewareStoreFailure(t *testing.T) {
	users := &fakeUserRepo{err: errors.New("connection refused")}
	ta := newTestApp(t, users, &fakeRoleRepo{})

	token, _, err := ta.codec.Issue("a@x.com", []string{"USER"})
	require.NoError(t, err)

	resp := ta.request(t, "/public", "Bearer "+token)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.False(t, ta.handlerRan)
	assert.Equal(t, "failure", decodeEnvelope(t, resp).Status)
}

func TestGateRejectsUnauthenticated(t *testing.T) {
	ta := newTestApp(t, &fakeUserRepo{}, &fakeRoleRepo{})

	resp := ta.request(t, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, ta.handlerRan)
}

func TestGateRejectsMissingRole(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"b@x.com": {ID: 2, Username: "bob", Email: "b@x.com"},
	}}
	roles := &fakeRoleRepo{byEmail: map[string][]string{
		"b@x.com": {"USER"},
	}}
	ta := newTestApp(t, users, roles)

	token, _, err := ta.codec.Issue("b@x.com", []string{"USER"})
	require.NoError(t, err)

	resp := ta.request(t, "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, ta.handlerRan)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "failure", env.Status)
	assert.Equal(t, "Access denied", env.Message)
}
