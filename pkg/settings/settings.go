// Package settings is libman's user-wide key/value store.
//
// Values live in a TOML file, by default $XDG_CONFIG_HOME/libman/settings.toml.
// An environment variable named exactly like a setting overrides the stored
// value, so CI can configure libman without touching the file:
//
//	LIBMAN_CDNJS_API=https://mirror.example/cdnjs libman restore
package settings

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// Known setting names.
const (
	CacheDir    = "LIBMAN_CACHE_DIR"
	CdnjsAPI    = "LIBMAN_CDNJS_API"
	CdnjsCDN    = "LIBMAN_CDNJS_CDN"
	NpmRegistry = "LIBMAN_NPM_REGISTRY"
	UnpkgURL    = "LIBMAN_UNPKG_URL"
	JsDelivrAPI = "LIBMAN_JSDELIVR_API"
	JsDelivrCDN = "LIBMAN_JSDELIVR_CDN"
	RedisURL    = "LIBMAN_REDIS_URL"
	HTTPSProxy  = "LIBMAN_HTTPS_PROXY"
	MetadataTTL = "LIBMAN_METADATA_TTL"
	HTTPRetries = "LIBMAN_HTTP_RETRIES"
)

// Known lists every setting libman reads, for `libman config` help.
var Known = []string{CacheDir, CdnjsAPI, CdnjsCDN, NpmRegistry, UnpkgURL, JsDelivrAPI, JsDelivrCDN, RedisURL, HTTPSProxy, MetadataTTL, HTTPRetries}

// Store is a TOML-backed settings file.
type Store struct {
	path   string
	lookup func(string) (string, bool)

	mu     sync.Mutex
	values map[string]string
}

// DefaultPath returns $XDG_CONFIG_HOME/libman/settings.toml, falling back
// to ~/.config/libman/settings.toml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "libman", "settings.toml")
}

// Load reads the settings file at path. A missing file is an empty store.
func Load(path string) (*Store, error) {
	s := &Store{path: path, lookup: os.LookupEnv, values: map[string]string{}}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := toml.Decode(string(data), &s.values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// TryGetValue returns the environment override for name, or else the
// stored value.
func (s *Store) TryGetValue(name string) (string, bool) {
	if v, ok := s.lookup(name); ok {
		return v, true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok
}

// Stored returns the value in the file, ignoring the environment.
func (s *Store) Stored(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok
}

// SetValue stores name and rewrites the file.
func (s *Store) SetValue(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return s.save()
}

// RemoveValue deletes name and rewrites the file. Removing an unknown name
// is not an error.
func (s *Store) RemoveValue(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[name]; !ok {
		return nil
	}
	delete(s.values, name)
	return s.save()
}

// Names returns the stored setting names in sorted order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.values))
}

func (s *Store) save() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s.values); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, ".settings-"+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
