package runner

import (
	"errors"
	"math"
	"testing"

	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/dataset"
	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/oracle"
	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/results"
)

// #region helpers

func scenarioTable() dataset.Table {
	return dataset.Table{
		"A": {"color": dataset.String("red"), "size": dataset.String("small")},
		"B": {"color": dataset.String("red"), "size": dataset.String("large")},
		"C": {"color": dataset.String("blue"), "size": dataset.String("small")},
	}
}

// #endregion helpers

// #region test-run

func TestRunAllTargets(t *testing.T) {
	res, err := Run(scenarioTable(), Options{AllTargets: true, MaxSteps: 5, Workers: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Resolved != 3 || res.Unresolved != 0 || res.Failed != 0 {
		t.Errorf("counts: %d resolved, %d unresolved, %d failed", res.Resolved, res.Unresolved, res.Failed)
	}
	// AllTargets expands in sorted ID order.
	want := []string{"A", "B", "C"}
	for i, tr := range res.Targets {
		if tr.TargetID != want[i] {
			t.Errorf("target %d is %q, expected %q", i, tr.TargetID, want[i])
		}
	}
	if math.Abs(res.ExpectedQuestions-5.0/3.0) > 1e-9 {
		t.Errorf("expected questions %.6f, expected 5/3", res.ExpectedQuestions)
	}
}

func TestRunUnknownTargetFailsAlone(t *testing.T) {
	res, err := Run(scenarioTable(), Options{
		Targets:  []string{"A", "nope", "C"},
		MaxSteps: 5,
		Workers:  1,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Failed != 1 || res.Resolved != 2 {
		t.Fatalf("counts: %d resolved, %d failed", res.Resolved, res.Failed)
	}
	if !errors.Is(res.Targets[1].Err, oracle.ErrUnknownTarget) {
		t.Errorf("expected ErrUnknownTarget at slot 1, got %v", res.Targets[1].Err)
	}
	if res.Targets[0].Err != nil || res.Targets[2].Err != nil {
		t.Error("valid targets must still complete")
	}
}

func TestRunEmptyTable(t *testing.T) {
	_, err := Run(dataset.Table{}, Options{AllTargets: true, MaxSteps: 5})
	if !errors.Is(err, dataset.ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
}

// #endregion test-run

// #region test-concurrency

func TestRunParallelMatchesSequential(t *testing.T) {
	table := scenarioTable()

	seq, err := Run(table, Options{AllTargets: true, MaxSteps: 5, Workers: 1})
	if err != nil {
		t.Fatalf("sequential run: %v", err)
	}
	par, err := Run(table, Options{AllTargets: true, MaxSteps: 5, Workers: 4})
	if err != nil {
		t.Fatalf("parallel run: %v", err)
	}

	if len(seq.Targets) != len(par.Targets) {
		t.Fatalf("target counts differ: %d vs %d", len(seq.Targets), len(par.Targets))
	}
	for i := range seq.Targets {
		st, pt := seq.Targets[i], par.Targets[i]
		if st.TargetID != pt.TargetID {
			t.Fatalf("order differs at %d: %q vs %q", i, st.TargetID, pt.TargetID)
		}
		if len(st.Trajectory.Steps) != len(pt.Trajectory.Steps) {
			t.Fatalf("%s: step counts differ", st.TargetID)
		}
		for j := range st.Trajectory.Steps {
			if st.Trajectory.Steps[j] != pt.Trajectory.Steps[j] {
				t.Errorf("%s step %d differs: %+v vs %+v",
					st.TargetID, j, st.Trajectory.Steps[j], pt.Trajectory.Steps[j])
			}
		}
	}
}

// #endregion test-concurrency

// #region test-persistence

func TestRunPersistsToStore(t *testing.T) {
	store, err := results.NewStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	res, err := Run(scenarioTable(), Options{
		DatasetName: "scenario",
		Targets:     []string{"B", "missing"},
		MaxSteps:    5,
		Workers:     1,
		Store:       store,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("persisted run must carry a run ID")
	}

	rec, err := store.Run(res.RunID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if rec.DatasetName != "scenario" || rec.ObjectCount != 3 || rec.AttributeCount != 2 {
		t.Errorf("unexpected run row: %+v", rec)
	}

	// Only the valid target produced rows.
	targets, err := store.RunTargets(res.RunID)
	if err != nil {
		t.Fatalf("run targets: %v", err)
	}
	if len(targets) != 1 || targets[0] != "B" {
		t.Errorf("unexpected persisted targets: %v", targets)
	}

	points, err := store.TrajectoryPoints(res.RunID, "B")
	if err != nil {
		t.Fatalf("trajectory points: %v", err)
	}
	if len(points) != 3 {
		t.Errorf("expected prior + 2 steps, got %d points", len(points))
	}
}

// #endregion test-persistence

// #region test-mean

func TestMeanEntropies(t *testing.T) {
	res, err := Run(scenarioTable(), Options{Targets: []string{"B", "C"}, MaxSteps: 2, Workers: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	mean := MeanEntropies(res, 2)
	want := []float64{math.Log2(3), 0.5, 0}
	if len(mean) != len(want) {
		t.Fatalf("length %d, expected %d", len(mean), len(want))
	}
	for i := range want {
		if math.Abs(mean[i]-want[i]) > 1e-9 {
			t.Errorf("mean[%d] = %.6f, expected %.6f", i, mean[i], want[i])
		}
	}
}

func TestMeanEntropiesAllFailed(t *testing.T) {
	res, err := Run(scenarioTable(), Options{Targets: []string{"x", "y"}, MaxSteps: 2, Workers: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if mean := MeanEntropies(res, 2); mean != nil {
		t.Errorf("expected nil mean, got %v", mean)
	}
}

// #endregion test-mean
