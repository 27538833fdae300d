package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nhle/simpletasks/internal/flow"
	"github.com/nhle/simpletasks/internal/model"
	"github.com/nhle/simpletasks/internal/store"
	"github.com/nhle/simpletasks/internal/testutil"
)

func TestRecordAndRecentActions(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.February, 1, 10, 0, 0, 0, time.UTC)

	for i, action := range []string{"auth.SubmitMsg", "auth.AuthenticatedMsg", "tasklist.RefreshMsg"} {
		err := s.RecordAction(ctx, model.ActionRecord{
			Flow:      "auth",
			Action:    action,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("RecordAction: %v", err)
		}
	}

	recs, err := s.RecentActions(ctx, 2)
	if err != nil {
		t.Fatalf("RecentActions: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Action != "tasklist.RefreshMsg" || recs[1].Action != "auth.AuthenticatedMsg" {
		t.Errorf("expected newest first, got %s, %s", recs[0].Action, recs[1].Action)
	}
	if recs[0].ID == "" {
		t.Error("expected generated ID")
	}
	if !recs[0].CreatedAt.Equal(base.Add(2 * time.Second)) {
		t.Errorf("unexpected timestamp %v", recs[0].CreatedAt)
	}
}

func TestRecentActionsDefaultLimit(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	recs, err := s.RecentActions(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentActions: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty journal, got %d", len(recs))
	}
}

func TestReopenKeepsSchemaAndRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "journal.db")

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.RecordAction(context.Background(), model.ActionRecord{Flow: "root", Action: "app.TasksMsg"}); err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	recs, err := s.RecentActions(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentActions: %v", err)
	}
	if len(recs) != 1 || recs[0].Flow != "root" {
		t.Errorf("expected the record to survive reopening, got %+v", recs)
	}
}

func TestJournalWritesObservedActions(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestStore(t)
	j := store.NewJournal(s, nil)

	j.Observe(flow.Event{Flow: "tasks.create", Action: "taskform.SaveMsg", Owned: true})
	j.Observe(flow.Event{Flow: "tasks", Action: "tasklist.RefreshMsg", Owned: true})
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	recs, err := s.RecentActions(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentActions: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %+v", recs)
	}

	seen := map[string]string{}
	for _, r := range recs {
		seen[r.Action] = r.Flow
	}
	if seen["taskform.SaveMsg"] != "tasks.create" || seen["tasklist.RefreshMsg"] != "tasks" {
		t.Errorf("unexpected records %+v", recs)
	}
}
