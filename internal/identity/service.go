// Package identity provides user registration, login and bearer-token authentication.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/identity/jwt"
	"github.com/taarez/taarez-backend/internal/identity/password"
	"github.com/taarez/taarez-backend/internal/pkg/ctxlog"
	"github.com/taarez/taarez-backend/internal/pkg/metrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TokenTypeBearer is the OAuth2 token type returned at login.
const TokenTypeBearer = "bearer"

// MinPasswordLength is the shortest password accepted for any account.
const MinPasswordLength = 8

// dummyPassword is hashed once so that logins for unknown emails cost the
// same bcrypt work as logins with a wrong password.
const dummyPassword = "taarez-timing-equaliser"

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// TokenIssuer issues and verifies access tokens.
type TokenIssuer interface {
	IssueAccessToken(subject string) (string, error)
	Verify(token string) (jwt.Claims, error)
}

// Service implements identity business logic.
type Service struct {
	repo        Repository
	hasher      PasswordHasher
	tokens      TokenIssuer
	dummyDigest string
}

// NewService creates a new identity service.
func NewService(repo Repository, hasher PasswordHasher, tokens TokenIssuer) (*Service, error) {
	dummyDigest, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy digest: %w", err)
	}

	return &Service{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		dummyDigest: dummyDigest,
	}, nil
}

// RegisterInput holds data for self-registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// CreateUserInput holds data for creating a user with an explicit role.
type CreateUserInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Role        domain.Role
	IsSuperuser bool
}

// LoginInput holds login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UpdateUserInput holds admin changes to a user. Nil fields are left as is.
type UpdateUserInput struct {
	Role        *domain.Role
	IsActive    *bool
	IsSuperuser *bool
}

// Register creates an active customer account.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.CreateUser(ctx, CreateUserInput{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      domain.RoleCustomer,
	})
}

// CreateUser creates an active user with the given role.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := CheckPassword(input.Password); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)

	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:          email,
		HashedPassword: digest,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		IsActive:       true,
		IsSuperuser:    input.IsSuperuser,
		Role:           input.Role,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Info("user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login verifies credentials and issues an access token.
// Unknown emails, wrong passwords and inactive accounts all return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, input LoginInput) (*Token, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("get user by email: %w", err)
		}
		s.hasher.Verify(input.Password, s.dummyDigest)
		metrics.RecordLogin("unknown_email")
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(input.Password, user.HashedPassword) {
		metrics.RecordLogin("wrong_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		metrics.RecordLogin("inactive")
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokens.IssueAccessToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	metrics.RecordLogin("success")
	return &Token{AccessToken: accessToken, TokenType: TokenTypeBearer}, nil
}

// Authenticate resolves a bearer token to an active user.
// Every authentication failure returns domain.ErrUnauthenticated; only
// persistence failures are returned as other errors.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	logger := ctxlog.FromContext(ctx)

	claims, err := s.tokens.Verify(token)
	if err != nil {
		logger.Debug("authentication failed", "reason", "invalid_token")
		metrics.RecordAccessDenied("invalid_token")
		return nil, domain.ErrUnauthenticated
	}

	email := claims.Subject()
	if email == "" {
		logger.Debug("authentication failed", "reason", "missing_subject")
		metrics.RecordAccessDenied("invalid_token")
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.Debug("authentication failed", "reason", "unknown_subject")
			metrics.RecordAccessDenied("unknown_user")
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if !user.IsActive {
		logger.Debug("authentication failed", "reason", "inactive_user", "user_id", user.ID)
		metrics.RecordAccessDenied("inactive_user")
		return nil, domain.ErrUnauthenticated
	}

	return user, nil
}

// GetUserByID returns a user by ID.
func (s *Service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateUser applies admin changes to a user.
func (s *Service) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	if input.Role != nil && !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.IsSuperuser != nil {
		user.IsSuperuser = *input.IsSuperuser
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Info("user updated",
		"user_id", user.ID,
		"role", user.Role,
		"is_active", user.IsActive,
		"is_superuser", user.IsSuperuser,
	)
	return user, nil
}

// CheckPassword applies the password policy shared by every account creation path.
func CheckPassword(secret string) error {
	if utf8.RuneCountInString(secret) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(secret) > password.MaxLength {
		return password.ErrTooLong
	}
	return nil
}

// normalizeEmail trims and lower-cases an email. Casers are stateful, so one is built per call.
func normalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}
