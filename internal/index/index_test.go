package index

import (
	"math"
	"testing"

	"github.com/printerdocs/manualchat/internal/domain"
)

func testPassages() []domain.Passage {
	return []domain.Passage{
		{ID: 1, Manual: "M1", Section: "2.1", Text: "Nozzle temp 200C", Embedding: []float64{1, 0}},
		{ID: 2, Manual: "M1", Section: "2.2", Text: "Bed temp 60C", Embedding: []float64{0, 1}},
		{ID: 3, Manual: "M2", Section: "1.0", Text: "Filament loading", Embedding: []float64{0.5, 0.5}},
	}
}

func TestNewRejectsRaggedDimensions(t *testing.T) {
	t.Parallel()

	passages := testPassages()
	passages[1].Embedding = []float64{0, 1, 0}

	if _, err := New(passages); err == nil {
		t.Fatal("expected error for mismatched dimensions, got nil")
	}
}

func TestRankTopPassage(t *testing.T) {
	t.Parallel()

	ix, err := New([]domain.Passage{
		{ID: 1, Manual: "M1", Text: "Nozzle temp 200C", Embedding: []float64{1, 0}},
		{ID: 2, Manual: "M1", Text: "Bed temp 60C", Embedding: []float64{0, 1}},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := ix.Rank([]float64{0.9, 0.1}, 1)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].ID != 1 {
		t.Errorf("expected passage 1, got %d", got[0].ID)
	}
	if math.Abs(got[0].Score-0.9938) > 1e-3 {
		t.Errorf("expected score ~0.9938, got %f", got[0].Score)
	}
}

func TestRankOrderingAndTruncation(t *testing.T) {
	t.Parallel()

	ix, err := New(testPassages())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := ix.Rank([]float64{1, 0}, 2)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %f > %f", i, got[i].Score, got[i-1].Score)
		}
	}
	if got[0].ID != 1 {
		t.Errorf("expected passage 1 first, got %d", got[0].ID)
	}
}

func TestRankKLargerThanCorpus(t *testing.T) {
	t.Parallel()

	ix, err := New(testPassages())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := ix.Rank([]float64{1, 1}, 10)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected all 3 passages, got %d", len(got))
	}
}

func TestRankStableTieBreak(t *testing.T) {
	t.Parallel()

	// Passages 1 and 2 have identical vectors and therefore identical
	// scores; they must keep corpus order.
	ix, err := New([]domain.Passage{
		{ID: 1, Embedding: []float64{1, 1}},
		{ID: 2, Embedding: []float64{1, 1}},
		{ID: 3, Embedding: []float64{-1, -1}},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := ix.Rank([]float64{1, 1}, 3)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if got[0].ID != 1 || got[1].ID != 2 || got[2].ID != 3 {
		t.Errorf("unexpected order: %d, %d, %d", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestRankZeroVectorSortsLast(t *testing.T) {
	t.Parallel()

	ix, err := New([]domain.Passage{
		{ID: 1, Embedding: []float64{0, 0}},
		{ID: 2, Embedding: []float64{0, 1}},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := ix.Rank([]float64{0, 1}, 2)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if got[0].ID != 2 {
		t.Errorf("expected passage 2 first, got %d", got[0].ID)
	}
	if !math.IsInf(got[1].Score, -1) {
		t.Errorf("expected -Inf score for zero vector, got %f", got[1].Score)
	}
	if math.IsNaN(got[0].Score) || math.IsNaN(got[1].Score) {
		t.Error("scores must never be NaN")
	}
}

func TestRankDeterministic(t *testing.T) {
	t.Parallel()

	ix, err := New(testPassages())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first, err := ix.Rank([]float64{0.3, 0.7}, 3)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	second, err := ix.Rank([]float64{0.3, 0.7}, 3)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Score != second[i].Score {
			t.Errorf("re-run differs at %d: (%d, %f) vs (%d, %f)",
				i, first[i].ID, first[i].Score, second[i].ID, second[i].Score)
		}
	}
}

func TestRankDimensionMismatch(t *testing.T) {
	t.Parallel()

	ix, err := New(testPassages())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := ix.Rank([]float64{1, 0, 0}, 1); err == nil {
		t.Fatal("expected error for query dimension mismatch, got nil")
	}
}
