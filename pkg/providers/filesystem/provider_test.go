package filesystem

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/libman/pkg/cache"
	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/host"
	"github.com/matzehuels/libman/pkg/integrations"
	"github.com/matzehuels/libman/pkg/library"
)

func setup(t *testing.T, client *http.Client) (*Provider, *host.Host) {
	t.Helper()
	root := t.TempDir()
	h, err := host.New(filepath.Join(root, "project"), filepath.Join(root, "cache"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"vendor/widget/widget.js":      "widget();",
		"vendor/widget/widget.css":     ".w{}",
		"vendor/widget/sub/extra.js":   "extra();",
		"vendor/single/library.min.js": "single();",
	}
	for rel, body := range files {
		p := filepath.Join(h.WorkingDirectory(), filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	dl := integrations.NewClient(nil, "", 0, nil)
	if client != nil {
		dl.WithHTTPClient(client)
	}
	return New(h, cache.NewService(dl)), h
}

func read(t *testing.T, h *host.Host, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.WorkingDirectory(), filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestInstallDirectory(t *testing.T) {
	p, h := setup(t, nil)
	state := library.InstallationState{
		Name: "vendor/widget", ProviderID: ID, DestinationPath: "wwwroot/widget",
		Files: []string{"**/*.js"},
	}
	res := p.Install(context.Background(), state)
	if !res.Success() {
		t.Fatalf("install: %v", res.Errors)
	}
	if got := read(t, h, "wwwroot/widget/sub/extra.js"); got != "extra();" {
		t.Errorf("extra.js = %q", got)
	}
	if _, err := os.Stat(filepath.Join(h.WorkingDirectory(), "wwwroot", "widget", "widget.css")); !os.IsNotExist(err) {
		t.Error("css installed despite filter")
	}

	res = p.Install(context.Background(), state)
	if !res.UpToDate {
		t.Errorf("second install not up to date: %+v", res)
	}
}

func TestInstallSourceOutsideProject(t *testing.T) {
	p, h := setup(t, nil)
	shared := filepath.Join(filepath.Dir(h.WorkingDirectory()), "shared")
	if err := os.MkdirAll(shared, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(shared, "lib.js"), []byte("shared();"), 0o644); err != nil {
		t.Fatal(err)
	}
	res := p.Install(context.Background(), library.InstallationState{
		Name: "../shared", ProviderID: ID, DestinationPath: "wwwroot/shared",
	})
	if !res.Success() {
		t.Fatalf("install: %v", res.Errors)
	}
	if got := read(t, h, "wwwroot/shared/lib.js"); got != "shared();" {
		t.Errorf("lib.js = %q", got)
	}
}

func TestInstallSingleFileRename(t *testing.T) {
	p, h := setup(t, nil)
	res := p.Install(context.Background(), library.InstallationState{
		Name: "vendor/single/library.min.js", ProviderID: ID, DestinationPath: "wwwroot/js",
		Files: []string{"renamed.js"},
	})
	if !res.Success() {
		t.Fatalf("install: %v", res.Errors)
	}
	if got := read(t, h, "wwwroot/js/renamed.js"); got != "single();" {
		t.Errorf("renamed.js = %q", got)
	}
}

func TestInstallURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote();"))
	}))
	defer server.Close()

	p, h := setup(t, server.Client())
	state := library.InstallationState{
		Name: server.URL + "/dist/remote.js", ProviderID: ID, DestinationPath: "wwwroot/remote",
	}
	res := p.Install(context.Background(), state)
	if !res.Success() {
		t.Fatalf("install: %v", res.Errors)
	}
	if got := read(t, h, "wwwroot/remote/remote.js"); got != "remote();" {
		t.Errorf("remote.js = %q", got)
	}
	if res = p.Install(context.Background(), state); !res.UpToDate {
		t.Errorf("second install not up to date: %+v", res)
	}
}

func TestInstallMissingSource(t *testing.T) {
	p, _ := setup(t, nil)
	res := p.Install(context.Background(), library.InstallationState{
		Name: "vendor/nope", ProviderID: ID, DestinationPath: "lib",
	})
	if len(res.Errors) != 1 || res.Errors[0].Code != liberrors.CodeUnableToResolveSource {
		t.Fatalf("errors = %v, want LIB002", res.Errors)
	}
}

func TestInstallRenameEscape(t *testing.T) {
	p, _ := setup(t, nil)
	res := p.Install(context.Background(), library.InstallationState{
		Name: "vendor/single/library.min.js", ProviderID: ID, DestinationPath: "lib",
		Files: []string{"../../escape.js"},
	})
	if len(res.Errors) != 1 || res.Errors[0].Code != liberrors.CodePathOutsideWorkingDirectory {
		t.Fatalf("errors = %v, want LIB006", res.Errors)
	}
}

func TestSuggestedDestination(t *testing.T) {
	p, _ := setup(t, nil)
	tests := []struct{ name, want string }{
		{"vendor/single/library.min.js", "library.min"},
		{"vendor/widget", "widget"},
		{"vendor/widget/", "widget"},
		{"https://example.com/dist/app.js", "app"},
	}
	for _, tt := range tests {
		if got := p.SuggestedDestination(&library.Library{Name: tt.name}); got != tt.want {
			t.Errorf("SuggestedDestination(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCompletionSet(t *testing.T) {
	p, _ := setup(t, nil)
	set, err := p.Catalog().CompletionSet(context.Background(), "vendor/w", 8)
	if err != nil {
		t.Fatal(err)
	}
	if set.Type != library.CompletionFolder || set.Start != 7 || set.Length != 1 {
		t.Errorf("span = %+v", set)
	}
	var got []string
	for _, c := range set.Completions {
		got = append(got, c.InsertionText)
	}
	if want := []string{"widget/"}; !reflect.DeepEqual(got, want) {
		t.Errorf("completions = %v, want %v", got, want)
	}
}

func TestSearchEchoesTerm(t *testing.T) {
	p, _ := setup(t, nil)
	groups, err := p.Catalog().Search(context.Background(), "vendor/widget", 10)
	if err != nil || len(groups) != 1 || groups[0].DisplayName != "vendor/widget" {
		t.Errorf("Search = %v, %v", groups, err)
	}
}
