package auth

import (
	"time"

	"github.com/patrimonio-app/patrimonio/internal/rbac"
)

// User represents an account able to authenticate.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         rbac.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
