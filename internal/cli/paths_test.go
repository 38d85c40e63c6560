package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/libman/pkg/settings"
)

func TestCacheDirDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir(nil)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir(nil)
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(xdg, appName) {
		t.Errorf("cacheDir() = %q", dir)
	}
}

func TestCacheDirSetting(t *testing.T) {
	custom := t.TempDir()
	t.Setenv(settings.CacheDir, custom)
	store, err := settings.Load(filepath.Join(t.TempDir(), "settings.toml"))
	if err != nil {
		t.Fatal(err)
	}

	dir, err := cacheDir(store)
	if err != nil {
		t.Fatal(err)
	}
	if dir != custom {
		t.Errorf("cacheDir() = %q, want %q", dir, custom)
	}
	if strings.Contains(dir, ".cache") {
		t.Error("setting ignored")
	}
}
