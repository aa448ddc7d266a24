package testing

import (
	"os"
	stdtesting "testing"

	"github.com/patrimonio-app/patrimonio/internal/testing/guard"
)

func init() {
	guard.Enable()
	if os.Getenv("JWT_SECRET") == "" {
		_ = os.Setenv("JWT_SECRET", "test-secret-please-change-0123456789")
	}
}

func TestMain(m *stdtesting.M) {
	guard.Enable()
	os.Exit(m.Run())
}
