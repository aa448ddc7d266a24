package assets

import (
	"errors"
	"fmt"

	"github.com/patrimonio-app/patrimonio/internal/platform/httpx"
	"github.com/patrimonio-app/patrimonio/internal/shared"
)

var (
	// ErrUnauthenticated is returned when no caller identity is present.
	ErrUnauthenticated = fmt.Errorf("assets: %w", httpx.ErrUnauthorized)
	// ErrForbidden is returned when the caller's role lacks the capability.
	ErrForbidden = fmt.Errorf("assets: %w", httpx.ErrForbidden)
	// ErrNotFound is returned for unknown asset ids.
	ErrNotFound = fmt.Errorf("assets: %w", shared.ErrNotFound)

	// ErrPatrimonioTaken signals a unique violation on patrimonio.
	ErrPatrimonioTaken = errors.New("assets: patrimonio already exists")
	// ErrCategoryMissing signals a foreign key violation on category.
	ErrCategoryMissing = errors.New("assets: category does not exist")
)

// Validation messages.
const (
	MsgPatrimonioTaken = "Asset with this patrimonio already exists."
)

func invalidPK(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}
