package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tyagiab3/user-service/internal/auth"
	"github.com/tyagiab3/user-service/internal/config"
	"github.com/tyagiab3/user-service/internal/domain"
	"github.com/tyagiab3/user-service/internal/events"
	"github.com/tyagiab3/user-service/internal/repository"
	"github.com/tyagiab3/user-service/internal/service"
	"github.com/tyagiab3/user-service/pkg/util"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	m.users[user.Email] = &clone
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (m *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[email]
	return ok, nil
}

func (m *memUserRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			user.LastLogin = &at
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memUserRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memUserRepo) ListLastLogins(_ context.Context) ([]repository.LastLoginEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]repository.LastLoginEntry, 0, len(m.users))
	for _, user := range m.users {
		entries = append(entries, repository.LastLoginEntry{
			Username:  user.Username,
			LastLogin: user.LastLogin,
		})
	}
	return entries, nil
}

type memRoleRepo struct {
	mu       sync.Mutex
	nextID   int64
	roles    map[string]*domain.Role
	grants   map[int64]map[int64]bool
	emailIDs map[string]int64
}

func newMemRoleRepo(names ...string) *memRoleRepo {
	repo := &memRoleRepo{
		roles:    make(map[string]*domain.Role),
		grants:   make(map[int64]map[int64]bool),
		emailIDs: make(map[string]int64),
	}
	for _, name := range names {
		_ = repo.Create(context.Background(), &domain.Role{Name: name})
	}
	return repo
}

// grantByEmail assigns an existing role and records the email → user ID
// mapping that ListNamesByEmail resolves through.
func (m *memRoleRepo) grantByEmail(t *testing.T, email string, userID int64, roleName string) {
	t.Helper()
	role, err := m.GetByName(context.Background(), roleName)
	require.NoError(t, err)
	m.mu.Lock()
	m.emailIDs[email] = userID
	m.mu.Unlock()
	_, err = m.Assign(context.Background(), userID, role.ID)
	require.NoError(t, err)
}

func (m *memRoleRepo) Create(_ context.Context, role *domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	role.ID = m.nextID
	clone := *role
	m.roles[role.Name] = &clone
	return nil
}

func (m *memRoleRepo) GetByName(_ context.Context, name string) (*domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[name]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *role
	return &clone, nil
}

func (m *memRoleRepo) ListByUserID(_ context.Context, userID int64) ([]domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Role
	for _, role := range m.roles {
		if m.grants[userID][role.ID] {
			out = append(out, *role)
		}
	}
	return out, nil
}

func (m *memRoleRepo) ListNamesByEmail(_ context.Context, email string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.emailIDs[email]
	if !ok {
		return nil, nil
	}
	var names []string
	for _, role := range m.roles {
		if m.grants[id][role.ID] {
			names = append(names, role.Name)
		}
	}
	return names, nil
}

func (m *memRoleRepo) Assign(_ context.Context, userID, roleID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.grants[userID] == nil {
		m.grants[userID] = make(map[int64]bool)
	}
	if m.grants[userID][roleID] {
		return false, nil
	}
	m.grants[userID][roleID] = true
	return true, nil
}

func (m *memRoleRepo) Remove(_ context.Context, userID, roleID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.grants[userID][roleID] {
		return false, nil
	}
	delete(m.grants[userID], roleID)
	return true, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.UserEvent
}

func (p *recordingPublisher) PublishRegistration(_ context.Context, event events.UserEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) PublishLogin(_ context.Context, event events.UserEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) byType(eventType string) []events.UserEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.UserEvent
	for _, event := range p.events {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{
		SigningKey:            "test-signing-key",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}}
}

func newUserService(users *memUserRepo, roles *memRoleRepo, publisher events.Publisher) *service.UserService {
	logger := zap.NewNop()
	return service.NewUserService(testConfig(), service.UserDependencies{
		UserRepo:  users,
		RoleRepo:  roles,
		Publisher: publisher,
		Audit:     service.NewAuditService(nil, logger),
	}, logger)
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc := newUserService(newMemUserRepo(), newMemRoleRepo(), publisher)

	user, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, auth.MatchPassword(user.PasswordHash, "secret1"))

	require.Eventually(t, func() bool {
		return len(publisher.byType(events.EventUserRegistered)) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc := newUserService(newMemUserRepo(), newMemRoleRepo(), publisher)

	_, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice2", "a@x.com", "secret2")
	assert.Equal(t, util.CodeDuplicateIdentity, errCode(t, err))

	require.Eventually(t, func() bool {
		return len(publisher.byType(events.EventRegistrationFailure)) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRegisterMissingFields(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(newMemUserRepo(), newMemRoleRepo(), &recordingPublisher{})

	for _, tc := range []struct{ username, email, password string }{
		{"", "a@x.com", "secret1"},
		{"alice", "", "secret1"},
		{"alice", "a@x.com", ""},
	} {
		_, err := svc.Register(ctx, tc.username, tc.email, tc.password)
		assert.Equal(t, util.CodeMissingField, errCode(t, err))
	}
}

func TestLoginIssuesTokenWithCurrentRoles(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	roles := newMemRoleRepo("ADMIN", "USER")
	publisher := &recordingPublisher{}
	svc := newUserService(users, roles, publisher)

	user, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)
	roles.grantByEmail(t, user.Email, user.ID, "ADMIN")

	token, expiresAt, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.TokenCodec().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, []string{"ADMIN"}, claims.Roles)

	stored, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	require.Eventually(t, func() bool {
		return len(publisher.byType(events.EventUserLoggedIn)) == 1
	}, time.Second, 10*time.Millisecond)
}

// Unknown subject and wrong password must be indistinguishable to the caller.
func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc := newUserService(newMemUserRepo(), newMemRoleRepo(), publisher)

	_, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)

	_, _, badPassword := svc.Login(ctx, "a@x.com", "wrong")
	_, _, unknownUser := svc.Login(ctx, "ghost@x.com", "anything")

	assert.Equal(t, util.CodeInvalidCredentials, errCode(t, badPassword))
	assert.Equal(t, util.CodeInvalidCredentials, errCode(t, unknownUser))
	assert.Equal(t, badPassword.Error(), unknownUser.Error())

	require.Eventually(t, func() bool {
		return len(publisher.byType(events.EventLoginFailure)) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestProfileUnknownUser(t *testing.T) {
	svc := newUserService(newMemUserRepo(), newMemRoleRepo(), &recordingPublisher{})

	_, _, err := svc.Profile(context.Background(), "ghost@x.com")
	assert.Equal(t, util.CodeNotFound, errCode(t, err))
}

func TestProfileReturnsRoles(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	roles := newMemRoleRepo("USER")
	svc := newUserService(users, roles, &recordingPublisher{})

	user, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)
	roles.grantByEmail(t, user.Email, user.ID, "USER")

	got, names, err := svc.Profile(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, []string{"USER"}, names)
}
