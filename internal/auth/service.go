package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/patrimonio-app/patrimonio/internal/platform/httpx"
	"github.com/patrimonio-app/patrimonio/internal/rbac"
	"github.com/patrimonio-app/patrimonio/internal/shared"
)

const minPasswordLength = 8

// ErrUsernameTaken is returned when provisioning an existing username.
var ErrUsernameTaken = fmt.Errorf("auth: username taken: %w", httpx.ErrDuplicate)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
	cost int
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, httpx.NormalizeText(username))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// CreateUser provisions an active account with the given role.
func (s *Service) CreateUser(ctx context.Context, username, password, role string) (*User, error) {
	username = httpx.NormalizeText(username)
	fields := httpx.FieldErrors{}
	if username == "" {
		fields.Add("username", httpx.MsgBlank)
	}
	if len(password) < minPasswordLength {
		fields.Add("password", fmt.Sprintf("Ensure this field has at least %d characters.", minPasswordLength))
	}
	parsed, err := rbac.ParseRole(role)
	if err != nil {
		fields.Add("role", invalidRole(role))
	}
	if len(fields) > 0 {
		return nil, &httpx.ValidationError{Fields: fields}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         parsed,
		IsActive:     true,
	})
}

// SetRole changes the role of an existing account. Callers holding a role
// cache must invalidate the user afterwards.
func (s *Service) SetRole(ctx context.Context, username, role string) (*User, error) {
	parsed, err := rbac.ParseRole(role)
	if err != nil {
		return nil, httpx.NewValidationError("role", invalidRole(role))
	}
	user, err := s.repo.FindByUsername(ctx, httpx.NormalizeText(username))
	if err != nil {
		return nil, err
	}
	if user.Role == parsed {
		return user, nil
	}
	if err := s.repo.UpdateRole(ctx, user.ID, parsed); err != nil {
		return nil, fmt.Errorf("auth: update role: %w", err)
	}
	updated := *user
	updated.Role = parsed
	return &updated, nil
}

func invalidRole(role string) string {
	names := make([]string, 0, len(rbac.Roles()))
	for _, r := range rbac.Roles() {
		names = append(names, r.String())
	}
	return fmt.Sprintf("%q is not a valid choice. Must be one of: %s.", role, strings.Join(names, ", "))
}
