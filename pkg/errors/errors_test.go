package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeUnableToResolveSource, "test message: %s", "value")

	if err.Code != CodeUnableToResolveSource {
		t.Errorf("Code = %v, want %v", err.Code, CodeUnableToResolveSource)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "LIB002: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(CodeFailedToDownloadResource, cause, "failed to fetch")

	if err.Code != CodeFailedToDownloadResource {
		t.Errorf("Code = %v, want %v", err.Code, CodeFailedToDownloadResource)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      InvalidFilesInLibrary("jquery@3.3.1", []string{"x.js"}, nil),
			code:     CodeInvalidFilesInLibrary,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      DestinationNotSpecified("jquery@3.3.1"),
			code:     CodeUnableToResolveSource,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(CodeCouldNotWriteFile, New(CodeUnknownException, "inner"), "outer"),
			code:     CodeCouldNotWriteFile,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     CodeUnknownException,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     CodeUnknownException,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", ProviderUnknown("nope"), CodeProviderUnknown},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(CodeUnknownException, "friendly message")); got != "friendly message" {
		t.Errorf("UserMessage() = %q, want %q", got, "friendly message")
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain error")
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}

	coded := ManifestMalformed(errors.New("bad json"))
	if got := From(coded); got != coded {
		t.Errorf("From() should return coded errors unchanged, got %v", got)
	}

	plain := errors.New("boom")
	got := From(plain)
	if got.Code != CodeUnknownException {
		t.Errorf("From(plain).Code = %v, want %v", got.Code, CodeUnknownException)
	}
	if !errors.Is(got, plain) {
		t.Error("From(plain) should wrap the original error")
	}
}

// Codes are consumed by the CLI and editor integrations; pin the values.
func TestCodesAreStable(t *testing.T) {
	codes := map[Code]string{
		CodeUnknownException:        "LIB000",
		CodeUnableToResolveSource:   "LIB002",
		CodeInvalidFilesInLibrary:   "LIB018",
		CodeDestinationNotSpecified: "LIB021",
	}
	for code, want := range codes {
		if string(code) != want {
			t.Errorf("code %q, want %q", code, want)
		}
	}
}

func TestInvalidFilesInLibraryMessage(t *testing.T) {
	err := InvalidFilesInLibrary("jquery@3.3.1", []string{"nope.js"}, []string{"jquery.js", "jquery.min.js"})
	if !strings.Contains(err.Message, "nope.js") {
		t.Errorf("message should name invalid file: %s", err.Message)
	}
	if !strings.Contains(err.Message, "jquery.min.js") {
		t.Errorf("message should list valid files: %s", err.Message)
	}
}
