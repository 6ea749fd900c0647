package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tyagiab3/user-service/internal/auth"
	"github.com/tyagiab3/user-service/internal/config"
	"github.com/tyagiab3/user-service/internal/domain"
	"github.com/tyagiab3/user-service/internal/events"
	"github.com/tyagiab3/user-service/internal/repository"
	"github.com/tyagiab3/user-service/pkg/util"
)

// UserService coordinates registration, login, and profile flows.
type UserService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	cache      repository.UserCache
	codec      *auth.TokenCodec
	publisher  events.Publisher
	audit      *AuditService
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies encapsulates collaborator requirements for the service.
type UserDependencies struct {
	UserRepo  repository.UserRepository
	RoleRepo  repository.RoleRepository
	Cache     repository.UserCache
	Publisher events.Publisher
	Audit     *AuditService
}

// NewUserService builds the service. The token codec owns the process-wide
// signing key from the config.
func NewUserService(cfg config.Config, deps UserDependencies, logger *zap.Logger) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		roles:      deps.RoleRepo,
		cache:      deps.Cache,
		codec:      auth.NewTokenCodec(cfg.Auth.SigningKey, cfg.Auth.AccessTokenTTL()),
		publisher:  deps.Publisher,
		audit:      deps.Audit,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// Register creates a new account with an empty role set.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	s.logger.Info("registering user", zap.String("email", email))

	if username == "" || email == "" || password == "" {
		const message = "Username, email and password are required."
		s.emitRegistration(events.UserEvent{
			EventType: events.EventRegistrationFailure,
			Status:    events.StatusFailure,
			Email:     email,
			Message:   message,
		})
		return nil, util.NewMissingField(message)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	if exists {
		const message = "Email already exists."
		s.logger.Warn("duplicate registration", zap.String("email", email))
		s.emitRegistration(events.UserEvent{
			EventType: events.EventRegistrationFailure,
			Status:    events.StatusFailure,
			Email:     email,
			Message:   message,
		})
		return nil, util.NewDuplicateIdentity(message)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, util.NewInternalError(err)
	}

	s.logger.Info("user registered", zap.String("email", user.Email))
	s.emitRegistration(events.UserEvent{
		EventType: events.EventUserRegistered,
		Status:    events.StatusSuccess,
		Email:     user.Email,
	})
	return user, nil
}

// Login authenticates an account and issues a token carrying its current
// role set. Unknown subject and wrong password surface as the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	s.logger.Info("login request", zap.String("email", email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("login failed: unknown user", zap.String("email", email))
			s.emitLogin(events.UserEvent{
				EventType: events.EventLoginFailure,
				Status:    events.StatusFailure,
				Email:     email,
				Message:   "Invalid email or password.",
			})
			return "", time.Time{}, util.NewInvalidCredentials()
		}
		return "", time.Time{}, util.NewInternalError(err)
	}

	if !auth.MatchPassword(user.PasswordHash, password) {
		s.logger.Warn("login failed: bad password", zap.String("email", email))
		s.emitLogin(events.UserEvent{
			EventType: events.EventLoginFailure,
			Status:    events.StatusFailure,
			Email:     email,
			Message:   "Invalid email or password.",
		})
		return "", time.Time{}, util.NewInvalidCredentials()
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return "", time.Time{}, util.NewInternalError(err)
	}
	user.LastLogin = &now
	s.refreshCache(ctx, user)

	roleNames, err := s.roles.ListNamesByEmail(ctx, user.Email)
	if err != nil {
		return "", time.Time{}, util.NewInternalError(err)
	}

	token, expiresAt, err := s.codec.Issue(user.Email, roleNames)
	if err != nil {
		return "", time.Time{}, util.NewInternalError(err)
	}

	s.logger.Info("token issued", zap.String("email", user.Email))
	s.emitLogin(events.UserEvent{
		EventType: events.EventUserLoggedIn,
		Status:    events.StatusSuccess,
		Email:     user.Email,
	})
	return token, expiresAt, nil
}

// Profile returns the account and its current role set, consulting the
// cache before the store.
func (s *UserService) Profile(ctx context.Context, email string) (*domain.User, []string, error) {
	user := s.cachedUser(ctx, email)
	if user == nil {
		var err error
		user, err = s.users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				s.audit.Record(ctx, "USER_DATA_FETCH", events.StatusFailure, email, "User data not found for "+email)
				return nil, nil, util.NewNotFound("user")
			}
			return nil, nil, util.NewInternalError(err)
		}
		s.refreshCache(ctx, user)
		s.audit.Record(ctx, "USER_DATA_FETCH", events.StatusSuccess, user.Email, "Fetched user data for "+email)
	}

	roleNames, err := s.roles.ListNamesByEmail(ctx, user.Email)
	if err != nil {
		return nil, nil, util.NewInternalError(err)
	}
	return user, roleNames, nil
}

// TokenCodec exposes the codec for middleware wiring.
func (s *UserService) TokenCodec() *auth.TokenCodec {
	return s.codec
}

func (s *UserService) cachedUser(ctx context.Context, email string) *domain.User {
	if s.cache == nil {
		return nil
	}
	user, err := s.cache.Get(ctx, email)
	if err != nil {
		return nil
	}
	s.logger.Debug("cache hit", zap.String("email", email))
	return user
}

func (s *UserService) refreshCache(ctx context.Context, user *domain.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, user); err != nil {
		s.logger.Debug("cache refresh failed", zap.String("email", user.Email), zap.Error(err))
	}
}

// Events are emitted off the request path with a fresh context so a slow
// or absent broker cannot fail the primary flow.
func (s *UserService) emitRegistration(event events.UserEvent) {
	if s.publisher == nil {
		return
	}
	go s.publisher.PublishRegistration(context.Background(), stamp(event))
}

func (s *UserService) emitLogin(event events.UserEvent) {
	if s.publisher == nil {
		return
	}
	go s.publisher.PublishLogin(context.Background(), stamp(event))
}

func stamp(event events.UserEvent) events.UserEvent {
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	return event
}
