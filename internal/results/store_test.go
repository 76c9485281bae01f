package results

import (
	"math"
	"testing"
	"time"

	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/oracle"
)

// #region helpers

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTrajectory() oracle.Trajectory {
	return oracle.Trajectory{
		TargetID:  "B",
		Objects:   3,
		PriorBits: math.Log2(3),
		Steps: []oracle.Step{
			{Attribute: "color", Answer: "red", Candidates: 2, EntropyBits: 1},
			{Attribute: "size", Answer: "large", Candidates: 1, EntropyBits: 0},
		},
		Resolved: true,
	}
}

// #endregion helpers

// #region test-run-roundtrip

func TestRunRoundtrip(t *testing.T) {
	store := setupTestStore(t)

	rec := NewRunRecord("animals100", 100, 12, 10, 4.7)
	if rec.RunID == "" {
		t.Fatal("run record must carry an ID")
	}
	if err := store.RecordRun(rec); err != nil {
		t.Fatalf("record run: %v", err)
	}

	got, err := store.Run(rec.RunID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.DatasetName != "animals100" || got.ObjectCount != 100 || got.AttributeCount != 12 {
		t.Errorf("unexpected run row: %+v", got)
	}
	if math.Abs(got.ExpectedQuestions-4.7) > 1e-9 {
		t.Errorf("expected questions %.4f, expected 4.7", got.ExpectedQuestions)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not round-tripped")
	}
}

func TestListRunsOrder(t *testing.T) {
	store := setupTestStore(t)

	first := NewRunRecord("a", 1, 1, 10, 0)
	first.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := NewRunRecord("b", 1, 1, 10, 0)
	second.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	if err := store.RecordRun(first); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if err := store.RecordRun(second); err != nil {
		t.Fatalf("record second: %v", err)
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].DatasetName != "b" {
		t.Errorf("expected most recent run first, got %q", runs[0].DatasetName)
	}
}

// #endregion test-run-roundtrip

// #region test-trajectory-points

func TestTrajectoryPoints(t *testing.T) {
	store := setupTestStore(t)

	rec := NewRunRecord("scenario", 3, 2, 10, 5.0/3.0)
	if err := store.RecordRun(rec); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := store.RecordTrajectory(rec.RunID, sampleTrajectory()); err != nil {
		t.Fatalf("record trajectory: %v", err)
	}

	points, err := store.TrajectoryPoints(rec.RunID, "B")
	if err != nil {
		t.Fatalf("trajectory points: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	// Step 0 is the prior: no attribute, full candidate set.
	if points[0].Step != 0 || points[0].Attribute != "" || points[0].Candidates != 3 {
		t.Errorf("unexpected prior row: %+v", points[0])
	}
	if math.Abs(points[0].EntropyBits-math.Log2(3)) > 1e-9 {
		t.Errorf("prior entropy %.6f, expected log2(3)", points[0].EntropyBits)
	}
	if points[1].Step != 1 || points[1].Attribute != "color" || math.Abs(points[1].EntropyBits-1) > 1e-9 {
		t.Errorf("unexpected step 1: %+v", points[1])
	}
	if points[2].Step != 2 || points[2].Attribute != "size" || math.Abs(points[2].EntropyBits) > 1e-9 {
		t.Errorf("unexpected step 2: %+v", points[2])
	}

	targets, err := store.RunTargets(rec.RunID)
	if err != nil {
		t.Fatalf("run targets: %v", err)
	}
	if len(targets) != 1 || targets[0] != "B" {
		t.Errorf("unexpected targets: %v", targets)
	}
}

// #endregion test-trajectory-points
