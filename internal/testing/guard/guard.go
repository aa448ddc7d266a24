// Package guard flags the process as running under go test.
package guard

import (
	"os"
	"sync"
)

// EnvTestMode is read by the binaries to skip side effects during tests.
const EnvTestMode = "PATRIMONIO_TEST_MODE"

var once sync.Once

// Enable sets EnvTestMode unless it is already set.
func Enable() {
	once.Do(func() {
		if os.Getenv(EnvTestMode) == "" {
			_ = os.Setenv(EnvTestMode, "1")
		}
	})
}

func init() {
	Enable()
}
