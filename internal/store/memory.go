package store

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/BRMReports/internal/core"
)

// MemoryHistory keeps the most recent runs in a fixed-size ring.
type MemoryHistory struct {
	mu   sync.Mutex
	runs []core.RunRecord // ring storage
	next int              // slot for the next record
	full bool
}

// NewMemoryHistory creates a history holding up to size runs.
func NewMemoryHistory(size int) *MemoryHistory {
	if size <= 0 {
		size = 100
	}
	return &MemoryHistory{runs: make([]core.RunRecord, size)}
}

// RecordRun stores rec, evicting the oldest run when full.
func (h *MemoryHistory) RecordRun(_ context.Context, rec core.RunRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs[h.next] = rec
	h.next = (h.next + 1) % len(h.runs)
	if h.next == 0 {
		h.full = true
	}
	return nil
}

// ListRuns returns up to limit runs, newest first.
func (h *MemoryHistory) ListRuns(_ context.Context, limit int) ([]core.RunRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.lenLocked()
	limit = min(clampLimit(limit), n)

	out := make([]core.RunRecord, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (h.next - i + len(h.runs)) % len(h.runs)
		out = append(out, h.runs[idx])
	}
	return out, nil
}

// PruneRuns drops runs created before the cutoff.
func (h *MemoryHistory) PruneRuns(_ context.Context, before time.Time) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.lenLocked()
	kept := make([]core.RunRecord, 0, n)
	for i := n; i >= 1; i-- {
		rec := h.runs[(h.next-i+len(h.runs))%len(h.runs)]
		if !rec.CreatedAt.Before(before) {
			kept = append(kept, rec)
		}
	}

	pruned := int64(n - len(kept))
	if pruned == 0 {
		return 0, nil
	}

	size := len(h.runs)
	h.runs = make([]core.RunRecord, size)
	copy(h.runs, kept)
	h.next = len(kept) % size
	h.full = len(kept) == size
	return pruned, nil
}

func (h *MemoryHistory) lenLocked() int {
	if h.full {
		return len(h.runs)
	}
	return h.next
}
