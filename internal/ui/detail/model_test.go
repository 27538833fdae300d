package detail

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/simpletasks/internal/keys"
	"github.com/nhle/simpletasks/internal/model"
	"github.com/nhle/simpletasks/internal/testutil"
)

func TestDueText(t *testing.T) {
	t.Parallel()

	if got := DueText(model.Task{ID: 1}); got != "Unspecified" {
		t.Errorf("expected Unspecified, got %q", got)
	}

	due := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.Local)
	secs := due.Unix()
	if got := DueText(model.Task{ID: 1, DueBy: &secs}); got != "Mar 4, 2026" {
		t.Errorf("expected Mar 4, 2026, got %q", got)
	}
}

func TestViewShowsTask(t *testing.T) {
	t.Parallel()

	m := New(model.Task{ID: 3, Title: "Water plants", Priority: model.PriorityHigh}, keys.DefaultKeyMap(), 80, 20)
	view := m.View()

	for _, want := range []string{"Water plants", "High", "Unspecified"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()

	task := model.Task{ID: 9, Title: "Edit me", Priority: model.PriorityLow}
	m := New(task, keys.DefaultKeyMap(), 80, 20)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	edit, ok := testutil.FindMsg[EditMsg](testutil.RunCmd(cmd))
	if !ok || edit.Task.ID != 9 {
		t.Errorf("expected EditMsg for task 9, got %+v", edit)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := testutil.FindMsg[BackMsg](testutil.RunCmd(cmd)); !ok {
		t.Error("expected BackMsg on esc")
	}
}

func TestSetTaskReplacesContent(t *testing.T) {
	t.Parallel()

	m := New(model.Task{ID: 1, Title: "Before"}, keys.DefaultKeyMap(), 80, 20)
	m.SetTask(model.Task{ID: 1, Title: "After", Priority: model.PriorityNormal})

	if m.Task().Title != "After" {
		t.Errorf("expected updated task, got %q", m.Task().Title)
	}
	if !strings.Contains(m.View(), "After") {
		t.Error("expected view to show updated title")
	}
}
