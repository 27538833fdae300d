package auth

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/simpletasks/internal/api"
	"github.com/nhle/simpletasks/internal/keys"
	"github.com/nhle/simpletasks/internal/testutil"
)

func newFilled(t *testing.T, fake *testutil.FakeAPI) Model {
	t.Helper()
	m := New(fake, keys.DefaultKeyMap())
	m, _ = m.Update(EmailChangedMsg{Value: "me@example.com"})
	m, _ = m.Update(PasswordChangedMsg{Value: "secret"})
	return m
}

func TestSubmitGating(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{"both empty", "", "", false},
		{"email only", "me@example.com", "", false},
		{"password only", "", "secret", false},
		{"both filled", "me@example.com", "secret", true},
		{"no format check", "not-an-email", "x", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := testutil.NewFakeAPI("abc123")
			m := New(fake, keys.DefaultKeyMap())
			m, _ = m.Update(EmailChangedMsg{Value: tc.email})
			m, _ = m.Update(PasswordChangedMsg{Value: tc.password})

			if got := m.CanSubmit(); got != tc.want {
				t.Fatalf("CanSubmit() = %v, want %v", got, tc.want)
			}

			m, cmd := m.Update(SubmitMsg{Kind: KindLogin})
			if !tc.want {
				if cmd != nil || m.State() != StateIdle {
					t.Error("expected gated submit to do nothing")
				}
				if len(fake.Calls()) != 0 {
					t.Errorf("expected no API calls, got %v", fake.Calls())
				}
				return
			}
			if m.State() != StateSubmitting {
				t.Errorf("expected submitting, got %v", m.State())
			}
		})
	}
}

func TestLoginSuccessEmitsToken(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeAPI("abc123")
	m := newFilled(t, fake)

	m, cmd := m.Update(SubmitMsg{Kind: KindLogin})
	msgs := testutil.RunCmd(cmd)
	resp, ok := testutil.FindMsg[authResponseMsg](msgs)
	if !ok {
		t.Fatalf("expected auth response, got %v", msgs)
	}

	m, cmd = m.Update(resp)
	if m.State() != StateIdle {
		t.Errorf("expected idle after success, got %v", m.State())
	}
	done, ok := testutil.FindMsg[AuthenticatedMsg](testutil.RunCmd(cmd))
	if !ok {
		t.Fatal("expected AuthenticatedMsg")
	}
	if done.Token != "abc123" {
		t.Errorf("expected token abc123, got %q", done.Token)
	}
	if calls := fake.Calls(); len(calls) != 1 || calls[0] != "login" {
		t.Errorf("unexpected calls %v", calls)
	}
}

func TestRegisterUsesRegisterEndpoint(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeAPI("fresh")
	m := newFilled(t, fake)

	_, cmd := m.Update(SubmitMsg{Kind: KindRegister})
	testutil.RunCmd(cmd)

	if calls := fake.Calls(); len(calls) != 1 || calls[0] != "register" {
		t.Errorf("unexpected calls %v", calls)
	}
}

func TestFailureShowsAlertAndDismissKeepsValues(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeAPI("")
	fake.LoginErr = &api.Failure{Message: "Invalid credentials", StatusCode: 422}
	m := newFilled(t, fake)

	m, cmd := m.Update(SubmitMsg{Kind: KindLogin})
	resp, _ := testutil.FindMsg[authResponseMsg](testutil.RunCmd(cmd))
	m, cmd = m.Update(resp)

	if cmd != nil {
		t.Error("expected no upward event on failure")
	}
	if m.State() != StateError || m.Alert() != "Invalid credentials" {
		t.Fatalf("expected error state with message, got %v %q", m.State(), m.Alert())
	}

	m, _ = m.Update(AlertDismissedMsg{})
	if m.State() != StateIdle {
		t.Errorf("expected idle after dismissal, got %v", m.State())
	}
	if m.Email() != "me@example.com" || m.Password() != "secret" {
		t.Errorf("expected entered values preserved, got %q/%q", m.Email(), m.Password())
	}
}

func TestNonFailureErrorUsesGenericMessage(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeAPI("")
	fake.LoginErr = errors.New("dial tcp: connection refused")
	m := newFilled(t, fake)

	m, cmd := m.Update(SubmitMsg{Kind: KindLogin})
	resp, _ := testutil.FindMsg[authResponseMsg](testutil.RunCmd(cmd))
	m, _ = m.Update(resp)

	if m.Alert() != api.UnknownErrorMessage {
		t.Errorf("expected %q, got %q", api.UnknownErrorMessage, m.Alert())
	}
}

func TestResubmitSupersedesInFlightSubmission(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeAPI("abc123")
	m := newFilled(t, fake)

	m, first := m.Update(SubmitMsg{Kind: KindLogin})
	m, second := m.Update(SubmitMsg{Kind: KindLogin})

	// The first call's context was cancelled, so it delivers nothing.
	if msgs := testutil.RunCmd(first); len(msgs) != 0 {
		t.Errorf("expected superseded submission to deliver nothing, got %v", msgs)
	}

	resp, ok := testutil.FindMsg[authResponseMsg](testutil.RunCmd(second))
	if !ok {
		t.Fatal("expected response from second submission")
	}
	m, cmd := m.Update(resp)
	if _, ok := testutil.FindMsg[AuthenticatedMsg](testutil.RunCmd(cmd)); !ok {
		t.Error("expected current response applied")
	}
	if m.State() != StateIdle {
		t.Errorf("expected idle, got %v", m.State())
	}
}

func TestLateCompletionOfSupersededSubmissionIsIgnored(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeAPI("abc123")
	m := newFilled(t, fake)

	// The first call completes before being superseded, but its result is
	// only reduced afterwards.
	m, first := m.Update(SubmitMsg{Kind: KindLogin})
	late, ok := testutil.FindMsg[authResponseMsg](testutil.RunCmd(first))
	if !ok {
		t.Fatal("expected first response")
	}
	m, _ = m.Update(SubmitMsg{Kind: KindRegister})

	m, cmd := m.Update(late)
	if cmd != nil {
		t.Error("expected stale completion to emit nothing")
	}
	if m.State() != StateSubmitting {
		t.Errorf("expected second submission still in flight, got %v", m.State())
	}
}

func TestCancelDropsInFlightSubmission(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeAPI("abc123")
	m := newFilled(t, fake)

	m, cmd := m.Update(SubmitMsg{Kind: KindLogin})
	m.Cancel()

	if msgs := testutil.RunCmd(cmd); len(msgs) != 0 {
		t.Errorf("expected cancelled submission to deliver nothing, got %v", msgs)
	}
}

func TestKeysDriveSubmitAndDismiss(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeAPI("abc123")
	m := newFilled(t, fake)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if sub, ok := testutil.FindMsg[SubmitMsg](testutil.RunCmd(cmd)); !ok || sub.Kind != KindLogin {
		t.Errorf("expected enter to submit login, got %v", sub)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if sub, ok := testutil.FindMsg[SubmitMsg](testutil.RunCmd(cmd)); !ok || sub.Kind != KindRegister {
		t.Errorf("expected ctrl+r to submit register, got %v", sub)
	}

	m = m.WithAlert("boom")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := testutil.FindMsg[AlertDismissedMsg](testutil.RunCmd(cmd)); !ok {
		t.Error("expected esc to dismiss the alert")
	}
}

func TestTypingFillsFocusedField(t *testing.T) {
	t.Parallel()

	m := New(testutil.NewFakeAPI(""), keys.DefaultKeyMap())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a@b")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("pw")})

	if m.Email() != "a@b" || m.Password() != "pw" {
		t.Errorf("expected a@b/pw, got %q/%q", m.Email(), m.Password())
	}
	if !m.CanSubmit() {
		t.Error("expected submit enabled")
	}
}
