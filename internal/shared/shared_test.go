package shared

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestAPIError(t *testing.T) {
	tc := []struct {
		name     string
		status   int
		base     error
		wantIs   error
		wantAuth bool
	}{
		{name: "401 is token expired", status: http.StatusUnauthorized, base: ErrAPIRequest, wantIs: ErrTokenExpired, wantAuth: true},
		{name: "500 keeps base", status: http.StatusInternalServerError, base: ErrAPIRequest, wantIs: ErrAPIRequest},
		{name: "400 on token endpoint", status: http.StatusBadRequest, base: ErrAuthFailed, wantIs: ErrAuthFailed},
		{name: "nil base defaults", status: http.StatusForbidden, base: nil, wantIs: ErrAPIRequest},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewAPIError(tt.status, ` {"error":"x"} `, tt.base))

			if !errors.Is(err, tt.wantIs) {
				t.Errorf("expected errors.Is(%v), got %v", tt.wantIs, err)
			}
			if IsUnauthorized(err) != tt.wantAuth {
				t.Errorf("IsUnauthorized() = %v, want %v", IsUnauthorized(err), tt.wantAuth)
			}
			if StatusCode(err) != tt.status {
				t.Errorf("StatusCode() = %d, want %d", StatusCode(err), tt.status)
			}
			if !strings.Contains(err.Error(), `{"error":"x"}`) {
				t.Errorf("expected body in message, got %q", err.Error())
			}
		})
	}

	t.Run("plain errors have no status", func(t *testing.T) {
		if StatusCode(errors.New("boom")) != 0 {
			t.Error("expected 0 for non-API error")
		}
	})
}

func TestLogger(t *testing.T) {
	t.Run("SetLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		SetLogLevel(logger, "debug")
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", logger.GetLevel())
		}

		SetLogLevel(logger, "nonsense")
		if logger.GetLevel() != log.InfoLevel {
			t.Errorf("expected fallback to info, got %v", logger.GetLevel())
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "listener")
		logger.Info("ready")

		if !strings.Contains(buf.String(), "component=listener") {
			t.Errorf("expected component field, got %q", buf.String())
		}
	})

	t.Run("OpenLogFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "epx.log")
		f, err := OpenLogFile(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		NewLogger(f).Info("hello")
		f.Close()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "hello") {
			t.Errorf("expected log line in file, got %q", string(data))
		}
	})
}

func TestGenerateState(t *testing.T) {
	a, b := GenerateState(), GenerateState()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty states, got %q and %q", a, b)
	}
}

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCommand
	t.Cleanup(func() {
		getRuntime, startCommand = origRuntime, origStart
	})

	t.Run("launches platform command", func(t *testing.T) {
		var gotName string
		var gotArgs []string
		getRuntime = func() string { return "linux" }
		startCommand = func(name string, args ...string) error {
			gotName, gotArgs = name, args
			return nil
		}

		if err := OpenBrowser("https://example.com"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotName != "xdg-open" || len(gotArgs) != 1 || gotArgs[0] != "https://example.com" {
			t.Errorf("unexpected command %s %v", gotName, gotArgs)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})

	t.Run("start failure is wrapped", func(t *testing.T) {
		getRuntime = func() string { return "darwin" }
		startCommand = func(string, ...string) error { return errors.New("no such file") }

		err := OpenBrowser("https://example.com")
		if err == nil || !strings.Contains(err.Error(), "failed to open browser") {
			t.Errorf("expected wrapped error, got %v", err)
		}
	})
}
