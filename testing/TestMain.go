package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

// ensureTestMode keeps binaries from starting servers and points storage at a throwaway database.
func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("CATALOG_TEST_MODE", "1")
		if os.Getenv("CATALOG_SQLITE_PATH") == "" {
			_ = os.Setenv("CATALOG_SQLITE_PATH", ":memory:")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
