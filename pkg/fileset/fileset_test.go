package fileset

import (
	"reflect"
	"testing"
)

var jquery = []string{
	"dist/core.js",
	"dist/jquery.js",
	"dist/jquery.min.js",
	"dist/jquery.min.map",
	"dist/jquery.slim.js",
	"dist/jquery.slim.min.js",
	"src/ajax.js",
	"LICENSE.txt",
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		want     []string
		invalid  []string
	}{
		{
			name: "no patterns selects all",
			want: []string{
				"LICENSE.txt", "dist/core.js", "dist/jquery.js", "dist/jquery.min.js",
				"dist/jquery.min.map", "dist/jquery.slim.js", "dist/jquery.slim.min.js", "src/ajax.js",
			},
		},
		{
			name:     "include then exclude",
			patterns: []string{"dist/*.js", "!dist/*min*"},
			want:     []string{"dist/core.js", "dist/jquery.js", "dist/jquery.slim.js"},
		},
		{
			name:     "exclude before include has no effect",
			patterns: []string{"!dist/*min*", "dist/*.js"},
			want: []string{
				"dist/core.js", "dist/jquery.js", "dist/jquery.min.js",
				"dist/jquery.slim.js", "dist/jquery.slim.min.js",
			},
		},
		{
			name:     "literal files",
			patterns: []string{"dist/jquery.js", "LICENSE.txt"},
			want:     []string{"LICENSE.txt", "dist/jquery.js"},
		},
		{
			name:     "missing literal reported",
			patterns: []string{"dist/jquery.js", "dist/nope.js"},
			want:     []string{"dist/jquery.js"},
			invalid:  []string{"dist/nope.js"},
		},
		{
			name:     "doublestar",
			patterns: []string{"**/*.js", "!**/*.min.js"},
			want:     []string{"dist/core.js", "dist/jquery.js", "dist/jquery.slim.js", "src/ajax.js"},
		},
		{
			name:     "glob with no match is not invalid",
			patterns: []string{"lib/*.css"},
			want:     []string{},
		},
		{
			name:     "leading dot slash",
			patterns: []string{"./dist/core.js"},
			want:     []string{"dist/core.js"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(jquery, tt.patterns)
			if !reflect.DeepEqual(got.Files, tt.want) {
				t.Errorf("Files = %v, want %v", got.Files, tt.want)
			}
			if !reflect.DeepEqual(got.Invalid, tt.invalid) {
				t.Errorf("Invalid = %v, want %v", got.Invalid, tt.invalid)
			}
		})
	}
}

func TestExpandDeterministic(t *testing.T) {
	first := Expand(jquery, []string{"dist/*.js", "!dist/*min*"})
	for range 20 {
		again := Expand(jquery, []string{"dist/*.js", "!dist/*min*"})
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("expansion changed between runs: %v vs %v", first, again)
		}
	}
}

func TestUnderRoot(t *testing.T) {
	got := UnderRoot([]string{"dist/a.js", "dist/sub/b.js", "src/c.js", "dist"}, "dist/")
	want := []string{"a.js", "sub/b.js"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UnderRoot = %v, want %v", got, want)
	}
	if got := UnderRoot([]string{"x"}, ""); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("UnderRoot empty root = %v", got)
	}
}

func TestNormalize(t *testing.T) {
	for in, want := range map[string]string{
		`dist\a.js`: "dist/a.js",
		"./dist/a":  "dist/a",
		"/abs/x":    "abs/x",
		"plain.js":  "plain.js",
	} {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
