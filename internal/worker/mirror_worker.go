// Package worker applies snapshot sync messages to the server-side mirror.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tally/internal/amqp"
	"tally/internal/log"
	"tally/internal/store"
)

// MirrorWorker replaces the mirror's collection with each snapshot it
// receives. Snapshots older than the last one applied are skipped, so
// redelivered or reordered messages cannot roll the mirror back.
type MirrorWorker struct {
	mirror store.Saver
	logger *log.Logger

	mu          sync.Mutex
	lastApplied time.Time
	applied     int
}

func NewMirrorWorker(mirror store.Saver, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{mirror: mirror, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleSnapshot is the consumer callback for amqp.Client.ConsumeSnapshots.
func (w *MirrorWorker) HandleSnapshot(ctx context.Context, msg *amqp.SnapshotSavedMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.lastApplied.IsZero() && msg.Timestamp.Before(w.lastApplied) {
		w.logger.InfoContext(ctx, "Skipping stale snapshot",
			"id", msg.ID,
			log.FieldVersion, msg.Version,
			"timestamp", msg.Timestamp)
		return nil
	}

	if err := w.mirror.Save(ctx, msg.Expenses); err != nil {
		return fmt.Errorf("apply snapshot %s: %w", msg.ID, err)
	}

	w.lastApplied = msg.Timestamp
	w.applied++
	w.logger.InfoContext(ctx, "Snapshot mirrored",
		"id", msg.ID,
		log.FieldVersion, msg.Version,
		log.FieldCount, len(msg.Expenses),
		log.FieldOperation, log.OpSync)
	return nil
}

// Applied returns how many snapshots were written to the mirror.
func (w *MirrorWorker) Applied() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.applied
}
