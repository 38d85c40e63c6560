package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/libman/pkg/httputil"
	"github.com/matzehuels/libman/pkg/observability"
	"github.com/matzehuels/libman/pkg/settings"
)

// project is a temporary project with vendored sources for the filesystem
// provider and an isolated cache and settings file.
type project struct {
	cli  *CLI
	root string
}

func newProject(t *testing.T) *project {
	t.Helper()
	tmp := t.TempDir()
	root := filepath.Join(tmp, "project")
	for rel, body := range map[string]string{
		"vendor/widget/widget.js":  "widget();",
		"vendor/widget/widget.css": ".w{}",
	} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv(settings.CacheDir, filepath.Join(tmp, "cache"))
	t.Setenv(settings.RedisURL, "")
	return &project{
		cli:  &CLI{Logger: log.New(io.Discard), settingsPath: filepath.Join(tmp, "settings.toml")},
		root: root,
	}
}

// run executes one libman invocation against the project and returns
// everything it printed.
func (p *project) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	stdout = &buf
	t.Cleanup(func() { stdout = os.Stdout })

	cmd := p.cli.RootCommand()
	cmd.SetArgs(append([]string{"--root", p.root}, args...))
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func (p *project) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(p.root, filepath.FromSlash(rel)))
	return err == nil
}

func (p *project) manifest(t *testing.T) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.root, "libman.json"))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestProjectLifecycle(t *testing.T) {
	p := newProject(t)

	if _, err := p.run(t, "init", "-p", "filesystem", "-d", "wwwroot/lib"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := p.run(t, "init"); err == nil {
		t.Error("second init succeeded without --force")
	}

	out, err := p.run(t, "install", "vendor/widget", "--files", "widget.js")
	if err != nil {
		t.Fatalf("install: %v\n%s", err, out)
	}
	if !p.exists("wwwroot/lib/widget/widget.js") || p.exists("wwwroot/lib/widget/widget.css") {
		t.Error("install did not honour --files")
	}
	libs := p.manifest(t)["libraries"].([]any)
	if len(libs) != 1 || libs[0].(map[string]any)["library"] != "vendor/widget" {
		t.Errorf("libraries = %v", libs)
	}

	out, err = p.run(t, "restore")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !strings.Contains(out, "up to date") {
		t.Errorf("restore output = %q, want up to date", out)
	}

	out, err = p.run(t, "clean", "--dry-run")
	if err != nil {
		t.Fatalf("clean --dry-run: %v", err)
	}
	if !strings.Contains(out, "wwwroot/lib/widget/widget.js") || !p.exists("wwwroot/lib/widget/widget.js") {
		t.Errorf("dry run output = %q", out)
	}

	if _, err := p.run(t, "clean"); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if p.exists("wwwroot") {
		t.Error("clean left the destination behind")
	}

	if _, err := p.run(t, "restore"); err != nil {
		t.Fatalf("restore after clean: %v", err)
	}
	if !p.exists("wwwroot/lib/widget/widget.js") {
		t.Error("restore did not bring files back")
	}

	if _, err := p.run(t, "uninstall", "vendor/widget"); err != nil {
		t.Fatalf("uninstall: %v", err)
	}
	if p.exists("wwwroot/lib/widget/widget.js") {
		t.Error("uninstall left files")
	}
	if libs := p.manifest(t)["libraries"].([]any); len(libs) != 0 {
		t.Errorf("libraries after uninstall = %v", libs)
	}
}

func TestRestoreWithoutManifest(t *testing.T) {
	p := newProject(t)
	if _, err := p.run(t, "restore"); err == nil || !strings.Contains(err.Error(), "libman init") {
		t.Errorf("err = %v, want hint to run init", err)
	}
}

func TestRestoreReportsFailures(t *testing.T) {
	p := newProject(t)
	if err := os.WriteFile(filepath.Join(p.root, "libman.json"), []byte(`{
		"version": "1.0",
		"libraries": [
			{"library": "vendor/widget", "provider": "filesystem", "destination": "lib/widget"},
			{"library": "vendor/none", "provider": "filesystem", "destination": "lib/none"}
		]
	}`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := p.run(t, "restore")
	if err == nil || err.Error() != "1 library failed" {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(out, "LIB002") {
		t.Errorf("output lacks error code: %q", out)
	}
	if !p.exists("lib/widget/widget.js") {
		t.Error("failure of one entry blocked the other")
	}
}

func TestRestoreSeveralManifests(t *testing.T) {
	p := newProject(t)
	if err := os.WriteFile(filepath.Join(p.root, "libman.json"), []byte(`{
		"version": "1.0",
		"libraries": [
			{"library": "vendor/widget", "provider": "filesystem", "destination": "lib/widget"}
		]
	}`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := p.run(t, "restore", ".", "nowhere/libman.json")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 manifests") {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(out, "nowhere") {
		t.Errorf("output does not name the missing manifest: %q", out)
	}
	if !p.exists("lib/widget/widget.js") {
		t.Error("readable manifest not restored")
	}

	if _, err := p.run(t, "restore", "--watch", "."); err == nil {
		t.Error("--watch accepted manifest arguments")
	}
}

func TestVerboseLogsEachWrittenFileOnce(t *testing.T) {
	p := newProject(t)
	var logs bytes.Buffer
	p.cli.Logger = log.New(&logs)
	p.cli.SetVerbose(true)
	t.Cleanup(observability.Reset)
	if err := os.WriteFile(filepath.Join(p.root, "libman.json"), []byte(`{
		"version": "1.0",
		"libraries": [
			{"library": "vendor/widget", "provider": "filesystem", "destination": "lib/widget"}
		]
	}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.run(t, "restore"); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(logs.String(), "wrote file"); n != 2 {
		t.Errorf("logged %d file writes for 2 files:\n%s", n, logs.String())
	}
}

func TestSearchAndComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/libraries":
			w.Write([]byte(`{"results":[
				{"name":"jquery","version":"3.7.1","description":"JavaScript library"},
				{"name":"jquery-ui","version":"1.13.2","description":"widgets"}]}`))
		case "/libraries/jquery":
			w.Write([]byte(`{"name":"jquery","version":"3.7.1","versions":["3.6.0","3.7.1"]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p := newProject(t)
	t.Setenv(settings.CdnjsAPI, server.URL)

	out, err := p.run(t, "search", "jquery", "-p", "cdnjs")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "jquery-ui") || !strings.Contains(out, "3.7.1") {
		t.Errorf("search output = %q", out)
	}

	out, err = p.run(t, "complete", "jquery@", "-p", "cdnjs")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "7 0 version" {
		t.Errorf("span line = %q", lines[0])
	}
	if last := lines[len(lines)-1]; !strings.HasPrefix(last, "latest\t") {
		t.Errorf("last line = %q, want latest", last)
	}
}

func TestConfig(t *testing.T) {
	p := newProject(t)
	if _, err := p.run(t, "config", "set", settings.MetadataTTL, "1h"); err != nil {
		t.Fatal(err)
	}
	out, err := p.run(t, "config", "get", settings.MetadataTTL)
	if err != nil || strings.TrimSpace(out) != "1h" {
		t.Errorf("get = %q, %v", out, err)
	}
	if _, err := p.run(t, "config", "unset", settings.MetadataTTL); err != nil {
		t.Fatal(err)
	}
	if _, err := p.run(t, "config", "get", settings.MetadataTTL); err == nil {
		t.Error("unset value still readable")
	}
	if _, err := p.run(t, "config", "set", settings.CdnjsAPI, "ftp://mirror.example"); err == nil {
		t.Error("non-http endpoint stored")
	}
	for _, v := range []string{"0", "many"} {
		if _, err := p.run(t, "config", "set", settings.HTTPRetries, v); err == nil {
			t.Errorf("retry count %q stored", v)
		}
	}
	if _, err := p.run(t, "config", "set", settings.HTTPRetries, "5"); err != nil {
		t.Errorf("retry count 5 rejected: %v", err)
	}
}

func TestRetryPolicy(t *testing.T) {
	tests := []struct {
		value   string
		set     bool
		want    int
		wantErr bool
	}{
		{"", false, httputil.DefaultPolicy.Attempts, false},
		{"1", true, 1, false},
		{"6", true, 6, false},
		{"0", true, 0, true},
		{"three", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			store, err := settings.Load(filepath.Join(t.TempDir(), "settings.toml"))
			if err != nil {
				t.Fatal(err)
			}
			if tt.set {
				t.Setenv(settings.HTTPRetries, tt.value)
			}
			p, err := retryPolicy(store)
			if (err != nil) != tt.wantErr {
				t.Fatalf("retryPolicy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && p.Attempts != tt.want {
				t.Errorf("Attempts = %d, want %d", p.Attempts, tt.want)
			}
		})
	}
}

func TestInvalidEndpointFromEnvironment(t *testing.T) {
	p := newProject(t)
	t.Setenv(settings.NpmRegistry, "file:///srv/registry")
	_, err := p.run(t, "search", "jquery", "-p", "unpkg")
	if err == nil || !strings.Contains(err.Error(), settings.NpmRegistry) {
		t.Errorf("err = %v, want the offending setting named", err)
	}
}
