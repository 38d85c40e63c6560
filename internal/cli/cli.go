// Package cli implements the libman command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/libman/pkg/buildinfo"
	"github.com/matzehuels/libman/pkg/cache"
	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/host"
	"github.com/matzehuels/libman/pkg/httputil"
	"github.com/matzehuels/libman/pkg/integrations"
	cdnjsapi "github.com/matzehuels/libman/pkg/integrations/cdnjs"
	npmapi "github.com/matzehuels/libman/pkg/integrations/npm"
	"github.com/matzehuels/libman/pkg/manifest"
	"github.com/matzehuels/libman/pkg/observability"
	"github.com/matzehuels/libman/pkg/providers"
	"github.com/matzehuels/libman/pkg/providers/cdnjs"
	"github.com/matzehuels/libman/pkg/providers/filesystem"
	"github.com/matzehuels/libman/pkg/providers/npm"
	"github.com/matzehuels/libman/pkg/settings"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "libman"

	// defaultMetadataTTL is how long search responses stay in the key/value cache.
	defaultMetadataTTL = 24 * time.Hour

	// kvDirName holds the key/value cache below the cache directory. The
	// leading underscore keeps it apart from provider directories.
	kvDirName = "_kv"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// root overrides the working directory (--root).
	root string
	// settingsPath overrides the settings file (tests).
	settingsPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetVerbose switches debug logging and the log-backed restore, cache and
// HTTP hooks on or off.
func (c *CLI) SetVerbose(verbose bool) {
	if !verbose {
		c.SetLogLevel(LogInfo)
		observability.Reset()
		return
	}
	c.SetLogLevel(LogDebug)
	registerLogHooks(c.Logger)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Libman acquires client-side libraries from CDNs and the file system",
		Long:         `Libman restores the client-side libraries declared in libman.json from cdnjs, unpkg, jsDelivr or the file system into your project.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.root, "root", "", "project directory containing libman.json (default: current directory)")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.restoreCommand())
	root.AddCommand(c.cleanCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.uninstallCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.completeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Environment Factory
// =============================================================================

// env is everything a command needs to talk to providers for one project.
type env struct {
	settings *settings.Store
	host     *host.Host
	deps     *providers.Dependencies
	kv       cache.Cache
}

// close releases the key/value cache.
func (e *env) close() {
	if e.kv != nil {
		e.kv.Close()
	}
}

// manifestPath is libman.json in the project directory.
func (e *env) manifestPath() string {
	return filepath.Join(e.host.WorkingDirectory(), manifest.FileName)
}

// loadManifest reads the project's libman.json.
func (e *env) loadManifest() (*manifest.Manifest, error) {
	m, err := manifest.FromFile(e.manifestPath(), e.deps)
	if manifest.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found in %s; run `libman init` first", manifest.FileName, e.host.WorkingDirectory())
	}
	return m, err
}

// workDir resolves the project directory from --root.
func (c *CLI) workDir() (string, error) {
	if c.root != "" {
		return filepath.Abs(c.root)
	}
	return os.Getwd()
}

// loadSettings opens the user settings file.
func (c *CLI) loadSettings() (*settings.Store, error) {
	path := c.settingsPath
	if path == "" {
		path = settings.DefaultPath()
	}
	return settings.Load(path)
}

// endpointSettings hold http(s) URLs of catalogs, CDNs and the proxy.
var endpointSettings = []string{
	settings.CdnjsAPI, settings.CdnjsCDN, settings.NpmRegistry, settings.UnpkgURL,
	settings.JsDelivrAPI, settings.JsDelivrCDN, settings.HTTPSProxy,
}

// validateSetting rejects endpoint values that are not http(s) URLs and
// retry counts that are not positive numbers.
func validateSetting(name, value string) error {
	if value == "" {
		return nil
	}
	if name == settings.HTTPRetries {
		_, err := retryAttempts(value)
		return err
	}
	if !slices.Contains(endpointSettings, name) {
		return nil
	}
	if err := liberrors.ValidateURL(value); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// newEnv wires settings, caches, host and providers for the project at dir.
func (c *CLI) newEnv(ctx context.Context, dir string) (*env, error) {
	store, err := c.loadSettings()
	if err != nil {
		return nil, err
	}
	for _, name := range endpointSettings {
		v, _ := store.TryGetValue(name)
		if err := validateSetting(name, v); err != nil {
			return nil, err
		}
	}
	cacheRoot, err := cacheDir(store)
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	h, err := host.New(dir, cacheRoot, c.Logger, store)
	if err != nil {
		return nil, err
	}

	ttl := defaultMetadataTTL
	if v, ok := store.TryGetValue(settings.MetadataTTL); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", settings.MetadataTTL, err)
		}
		ttl = d
	}
	retry, err := retryPolicy(store)
	if err != nil {
		return nil, err
	}
	kv, err := c.newKV(ctx, store, cacheRoot)
	if err != nil {
		return nil, err
	}

	proxy, _ := store.TryGetValue(settings.HTTPSProxy)
	httpClient := integrations.NewHTTPClient(proxy)
	get := func(name string) string {
		v, _ := store.TryGetValue(name)
		return v
	}

	downloads := integrations.NewClient(nil, "", 0, nil).WithHTTPClient(httpClient).WithRetry(retry)
	service := cache.NewService(downloads)

	cdnjsClient := cdnjsapi.NewClient(endpointCache(kv, get(settings.CdnjsAPI)), ttl, get(settings.CdnjsAPI), get(settings.CdnjsCDN))
	cdnjsClient.WithHTTPClient(httpClient).WithRetry(retry)
	registry := npmapi.NewClient(endpointCache(kv, get(settings.NpmRegistry)), ttl, get(settings.NpmRegistry))
	registry.WithHTTPClient(httpClient).WithRetry(retry)

	deps := providers.NewDependencies(h,
		cdnjs.New(h, service, cdnjsClient),
		filesystem.New(h, service),
		npm.NewJsDelivr(h, service, registry, npmapi.NewJsDelivr(get(settings.JsDelivrAPI), get(settings.JsDelivrCDN))),
		npm.NewUnpkg(h, service, registry, npmapi.NewUnpkg(get(settings.UnpkgURL))),
	)
	return &env{settings: store, host: h, deps: deps, kv: kv}, nil
}

// retryPolicy reads LIBMAN_HTTP_RETRIES, the number of tries per catalog
// request or file download.
func retryPolicy(store *settings.Store) (httputil.Policy, error) {
	v, ok := store.TryGetValue(settings.HTTPRetries)
	if !ok || v == "" {
		return httputil.DefaultPolicy, nil
	}
	n, err := retryAttempts(v)
	if err != nil {
		return httputil.Policy{}, err
	}
	return httputil.DefaultPolicy.WithAttempts(n), nil
}

func retryAttempts(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s: want a positive number of attempts, got %q", settings.HTTPRetries, v)
	}
	return n, nil
}

// newKV picks the search-response cache: Redis when configured, otherwise
// files below the cache directory.
func (c *CLI) newKV(ctx context.Context, store *settings.Store, cacheRoot string) (cache.Cache, error) {
	if url, ok := store.TryGetValue(settings.RedisURL); ok && url != "" {
		rc, err := cache.NewRedisCache(ctx, url)
		if err != nil {
			c.Logger.Warn("redis unavailable, using file cache", "err", err)
		} else {
			return rc, nil
		}
	}
	fc, err := cache.NewFileCache(filepath.Join(cacheRoot, kvDirName))
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// endpointCache gives a mirror configured through settings its own key
// space, so switching mirrors never serves the other endpoint's responses.
func endpointCache(kv cache.Cache, endpoint string) cache.Cache {
	if endpoint == "" {
		return kv
	}
	return cache.Namespaced(kv, cache.Hash([]byte(endpoint))[:12]+":")
}

// projectEnv is newEnv for the --root directory.
func (c *CLI) projectEnv(ctx context.Context) (*env, error) {
	dir, err := c.workDir()
	if err != nil {
		return nil, err
	}
	return c.newEnv(ctx, dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the library cache: the LIBMAN_CACHE_DIR setting, else
// the XDG cache directory (~/.cache/libman/).
func cacheDir(store *settings.Store) (string, error) {
	if store != nil {
		if dir, ok := store.TryGetValue(settings.CacheDir); ok && dir != "" {
			return filepath.Abs(dir)
		}
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
