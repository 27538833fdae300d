package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nhle/simpletasks/internal/flow"
	"github.com/nhle/simpletasks/internal/model"
	"github.com/nhle/simpletasks/internal/testutil"
)

func TestWriteDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	var out bytes.Buffer

	if err := writeDefaultConfig(&out, path, "http://localhost:9000/api", false); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("expected path in output, got %q", out.String())
	}

	cfg, err := model.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:9000/api" {
		t.Errorf("expected base URL override written, got %q", cfg.API.BaseURL)
	}
	if cfg.Tasks.DefaultDueHours != 24 {
		t.Errorf("expected default due hours 24, got %d", cfg.Tasks.DefaultDueHours)
	}

	err = writeDefaultConfig(&out, path, "", false)
	if err == nil || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("expected refusal to overwrite, got %v", err)
	}

	if err := writeDefaultConfig(&out, path, "", true); err != nil {
		t.Fatalf("writeDefaultConfig with force: %v", err)
	}
	cfg, err = model.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != model.DefaultBaseURL {
		t.Errorf("expected defaults after forced overwrite, got %q", cfg.API.BaseURL)
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()

	session := testutil.NewMemorySession("abc123")
	var out bytes.Buffer

	if err := logout(&out, session); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if session.Token() != "" {
		t.Error("expected token cleared")
	}
	if !strings.Contains(out.String(), "Signed out.") {
		t.Errorf("unexpected output %q", out.String())
	}

	out.Reset()
	if err := logout(&out, session); err != nil {
		t.Fatalf("logout without session: %v", err)
	}
	if !strings.Contains(out.String(), "Not signed in.") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestLogoutReadError(t *testing.T) {
	t.Parallel()

	session := testutil.NewMemorySession("abc123")
	session.GetErr = errors.New("keychain locked")

	err := logout(&bytes.Buffer{}, session)
	if err == nil || !strings.Contains(err.Error(), "keychain locked") {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}

func TestPrintStatus(t *testing.T) {
	t.Parallel()

	cfg := model.DefaultConfig()
	cfg.Journal.Enabled = true
	cfg.Journal.Path = "/tmp/journal.db"

	tests := []struct {
		name    string
		session *testutil.MemorySession
		getErr  error
		want    string
	}{
		{"signed in", testutil.NewMemorySession("abc123"), nil, "Session:  signed in"},
		{"signed out", testutil.NewMemorySession(""), nil, "Session:  signed out"},
		{"unavailable", testutil.NewMemorySession(""), errors.New("no keyring"), "unavailable (no keyring)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.session.GetErr = tt.getErr
			var out bytes.Buffer
			if err := printStatus(&out, cfg, "/etc/simpletasks.yaml", tt.session); err != nil {
				t.Fatalf("printStatus: %v", err)
			}
			got := out.String()
			for _, want := range []string{tt.want, model.DefaultBaseURL, "/etc/simpletasks.yaml", "/tmp/journal.db"} {
				if !strings.Contains(got, want) {
					t.Errorf("expected %q in output:\n%s", want, got)
				}
			}
			if strings.Contains(got, "abc123") {
				t.Error("expected the token never to be printed")
			}
		})
	}
}

func TestPrintHistory(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()
	var out bytes.Buffer

	if err := printHistory(ctx, &out, s, 10); err != nil {
		t.Fatalf("printHistory: %v", err)
	}
	if !strings.Contains(out.String(), "No actions recorded.") {
		t.Errorf("unexpected output for empty journal %q", out.String())
	}

	base := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	for i, a := range []string{"tasklist.ViewAppearedMsg", "tasklist.RefreshMsg", "tasklist.AddMsg"} {
		rec := model.ActionRecord{Flow: "tasks", Action: a, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.RecordAction(ctx, rec); err != nil {
			t.Fatalf("RecordAction: %v", err)
		}
	}

	out.Reset()
	if err := printHistory(ctx, &out, s, 2); err != nil {
		t.Fatalf("printHistory: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Recent actions (2)") {
		t.Errorf("expected two entries, got:\n%s", got)
	}
	if strings.Contains(got, "ViewAppearedMsg") {
		t.Error("expected the oldest action to be cut by the limit")
	}
	if strings.Index(got, "AddMsg") > strings.Index(got, "RefreshMsg") {
		t.Error("expected newest first")
	}
}

func TestAppOptionsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := model.DefaultConfig()
	cfg.Tasks.DefaultDueHours = 48
	cfg.Session.LogoutOnUnauthorized = false
	obs := flow.ObserverFunc(func(flow.Event) {})

	opts := appOptions(cfg, nil, obs)
	if opts.Tasks.DefaultDue != 48*time.Hour {
		t.Errorf("expected 48h default due, got %v", opts.Tasks.DefaultDue)
	}
	if opts.Tasks.LogoutOnUnauthorized {
		t.Error("expected stale-token policy off")
	}
	if opts.BaseURL != model.DefaultBaseURL {
		t.Errorf("unexpected base URL %q", opts.BaseURL)
	}
	if opts.Observer == nil {
		t.Error("expected observer passed through")
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	cfg := model.DefaultConfig()
	applyOverrides(cfg, "")
	if cfg.API.BaseURL != model.DefaultBaseURL {
		t.Errorf("expected empty flag to keep config, got %q", cfg.API.BaseURL)
	}
	applyOverrides(cfg, "http://other/api")
	if cfg.API.BaseURL != "http://other/api" {
		t.Errorf("expected flag override, got %q", cfg.API.BaseURL)
	}
}
