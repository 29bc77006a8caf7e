package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

// mockRemover records each batch and fails the batch numbers in failOn (1-based).
type mockRemover struct {
	mu      sync.Mutex
	batches [][]string
	failOn  map[int]bool
	onCall  func(call int)
}

func (m *mockRemover) RemoveEpisodes(ctx context.Context, accessToken string, ids []string) bool {
	m.mu.Lock()
	m.batches = append(m.batches, append([]string(nil), ids...))
	call := len(m.batches)
	m.mu.Unlock()

	if m.onCall != nil {
		m.onCall(call)
	}
	return !m.failOn[call]
}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("ep%03d", i)
	}
	return ids
}

func quietEngine(remover *mockRemover, size int) *PurgeEngine {
	return NewPurgeEngine(remover, PurgeOptions{BatchSize: size, Logger: log.New(io.Discard)})
}

func TestChunk(t *testing.T) {
	tc := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{name: "empty", n: 0, size: 50, sizes: []int{}},
		{name: "exact", n: 100, size: 50, sizes: []int{50, 50}},
		{name: "remainder", n: 120, size: 50, sizes: []int{50, 50, 20}},
		{name: "single", n: 1, size: 50, sizes: []int{1}},
		{name: "zero size uses max", n: 51, size: 0, sizes: []int{50, 1}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			ids := makeIDs(tt.n)
			chunks := Chunk(ids, tt.size)

			if len(chunks) != len(tt.sizes) {
				t.Fatalf("expected %d chunks, got %d", len(tt.sizes), len(chunks))
			}

			seen := map[string]bool{}
			var flat []string
			for i, chunk := range chunks {
				if len(chunk) != tt.sizes[i] {
					t.Errorf("chunk %d: expected size %d, got %d", i, tt.sizes[i], len(chunk))
				}
				for _, id := range chunk {
					if seen[id] {
						t.Errorf("duplicate id %s", id)
					}
					seen[id] = true
					flat = append(flat, id)
				}
			}

			if fmt.Sprint(flat) != fmt.Sprint(ids[:len(flat)]) || len(flat) != len(ids) {
				t.Errorf("union of chunks does not equal input")
			}
		})
	}
}

func TestPurgeEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("continues past a failed batch", func(t *testing.T) {
		remover := &mockRemover{failOn: map[int]bool{2: true}}
		ids := makeIDs(120)

		result, err := quietEngine(remover, 50).Purge(ctx, "token", ids, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(remover.batches) != 3 {
			t.Fatalf("expected 3 batches attempted, got %d", len(remover.batches))
		}
		if result.Batches != 3 || result.Total != 120 || result.Removed != 70 {
			t.Errorf("unexpected result %+v", result)
		}
		if len(result.Failed) != 1 || result.Failed[0].Index != 2 || len(result.Failed[0].IDs) != 50 {
			t.Errorf("expected batch 2 to fail, got %+v", result.Failed)
		}
		if result.Succeeded() {
			t.Error("expected Succeeded() to be false")
		}
		if got := result.FailedIDs(); got[0] != "ep050" || got[49] != "ep099" {
			t.Errorf("unexpected failed ids %v", got)
		}
	})

	t.Run("empty input sends nothing", func(t *testing.T) {
		remover := &mockRemover{}

		result, err := quietEngine(remover, 50).Purge(ctx, "token", nil, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(remover.batches) != 0 || result.Batches != 0 || !result.Succeeded() {
			t.Errorf("expected no batches, got %+v", result)
		}
	})

	t.Run("batch size is capped at 50", func(t *testing.T) {
		engine := quietEngine(&mockRemover{}, 500)
		if engine.BatchSize() != 50 {
			t.Errorf("expected batch size 50, got %d", engine.BatchSize())
		}
		if len(engine.Plan(makeIDs(101))) != 3 {
			t.Error("expected 3 planned chunks for 101 ids")
		}
	})

	t.Run("reports progress without blocking", func(t *testing.T) {
		remover := &mockRemover{failOn: map[int]bool{1: true}}
		progress := make(chan ProgressUpdate, 10)

		_, err := quietEngine(remover, 2).Purge(ctx, "token", makeIDs(3), progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		var phases []Phase
		for update := range progress {
			phases = append(phases, update.Phase)
		}

		want := []Phase{DeleteBatch, BatchFailed, DeleteBatch, PurgeComplete}
		if fmt.Sprint(phases) != fmt.Sprint(want) {
			t.Errorf("expected phases %v, got %v", want, phases)
		}
	})

	t.Run("unbuffered progress channel never blocks", func(t *testing.T) {
		progress := make(chan ProgressUpdate)

		if _, err := quietEngine(&mockRemover{}, 50).Purge(ctx, "token", makeIDs(60), progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("cancellation stops before the next batch", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		remover := &mockRemover{onCall: func(call int) {
			if call == 1 {
				cancel()
			}
		}}

		result, err := quietEngine(remover, 50).Purge(cctx, "token", makeIDs(150), nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(remover.batches) != 1 || result.Batches != 1 || result.Removed != 50 {
			t.Errorf("expected one batch before cancellation, got %+v", result)
		}
	})

	t.Run("nil remover", func(t *testing.T) {
		engine := NewPurgeEngine(nil, PurgeOptions{Logger: log.New(io.Discard)})
		if _, err := engine.Purge(ctx, "token", makeIDs(1), nil); err == nil {
			t.Error("expected error for nil remover")
		}
	})
}

func TestPhase(t *testing.T) {
	for _, p := range []Phase{DeleteBatch, BatchFailed, PurgeComplete} {
		if p.String() == "" {
			t.Errorf("phase %d has no name", p)
		}
	}
	if Phase(99).String() != "" {
		t.Error("unknown phase should have an empty name")
	}
}
