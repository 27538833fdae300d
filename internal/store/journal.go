package store

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/simpletasks/internal/flow"
	"github.com/nhle/simpletasks/internal/model"
)

// journalBuffer bounds how many actions may wait for the writer before
// new ones are dropped.
const journalBuffer = 256

// Journal is a flow.Observer that writes every observed action to a Store
// from a background goroutine, so the update loop never waits on disk.
type Journal struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
	recs   chan model.ActionRecord
	done   chan struct{}
}

var _ flow.Observer = (*Journal)(nil)

// NewJournal starts a journal writing to s. Close must be called to flush
// pending records. A nil logger discards write errors.
func NewJournal(s Store, logger *log.Logger) *Journal {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	j := &Journal{
		store:  s,
		logger: logger,
		now:    time.Now,
		recs:   make(chan model.ActionRecord, journalBuffer),
		done:   make(chan struct{}),
	}
	go j.run()
	return j
}

// Observe queues e for writing. It never blocks; when the queue is full the
// action is dropped and a warning is logged.
func (j *Journal) Observe(e flow.Event) {
	rec := model.ActionRecord{Flow: e.Flow, Action: e.Action, CreatedAt: j.now()}
	select {
	case j.recs <- rec:
	default:
		j.logger.Warn("journal queue full, dropping action", "action", e.Action)
	}
}

// Close stops accepting actions and waits until queued ones are written.
// Observe must not be called after Close.
func (j *Journal) Close() error {
	close(j.recs)
	<-j.done
	return nil
}

func (j *Journal) run() {
	defer close(j.done)
	for rec := range j.recs {
		if err := j.store.RecordAction(context.Background(), rec); err != nil {
			j.logger.Error("writing journal", "err", err)
		}
	}
}
