package testing

import (
	"os"
	stdtesting "testing"
)

func TestEnsureTestModeSetsFlag(t *stdtesting.T) {
	if os.Getenv("CATALOG_TEST_MODE") != "1" {
		t.Fatalf("expected CATALOG_TEST_MODE=1, got %q", os.Getenv("CATALOG_TEST_MODE"))
	}
	if os.Getenv("CATALOG_SQLITE_PATH") == "" {
		t.Fatal("expected CATALOG_SQLITE_PATH to be set")
	}
}
