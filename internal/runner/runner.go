package runner

// #region imports
import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/dataset"
	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/oracle"
	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/results"
)

// #endregion

// #region options

// Options configures one oracle run over a loaded table.
type Options struct {
	// DatasetName labels persisted rows.
	DatasetName string
	// Targets lists object IDs to compute trajectories for. Ignored when
	// AllTargets is set.
	Targets []string
	// AllTargets computes a trajectory for every object, in sorted ID order.
	AllTargets bool
	// MaxSteps is the padded trajectory length used for persistence.
	MaxSteps int
	// Workers bounds concurrent trajectory computation; 1 runs synchronously.
	Workers int
	// Store, when non-nil, receives the run row and all trajectory rows.
	Store *results.Store
}

// #endregion

// #region result-types

// TargetResult is the outcome for a single requested target. Exactly one of
// Trajectory and Err is meaningful.
type TargetResult struct {
	TargetID   string
	Trajectory oracle.Trajectory
	Err        error
}

// RunResult summarizes one oracle run.
type RunResult struct {
	// RunID is set when the run was persisted to a results store.
	RunID string
	// Targets holds per-target outcomes in request order.
	Targets []TargetResult
	// Resolved counts targets narrowed to entropy zero; Unresolved counts
	// targets stuck on a duplicate-vector floor; Failed counts bad requests.
	Resolved   int
	Unresolved int
	Failed     int
	// ExpectedQuestions is the Bellman-optimal cost from the root.
	ExpectedQuestions float64
	Elapsed           time.Duration
}

// #endregion

// #region run

// Run builds an oracle over the table and computes trajectories for the
// requested targets, fanning out across a bounded worker pool. Workers share
// the oracle's decision cache; an unknown target fails only its own slot and
// the remaining targets still complete.
func Run(table dataset.Table, opts Options) (RunResult, error) {
	start := time.Now()

	orc, err := oracle.New(table)
	if err != nil {
		return RunResult{}, fmt.Errorf("build oracle: %w", err)
	}

	targets := opts.Targets
	if opts.AllTargets {
		targets = orc.ObjectIDs()
	}
	if len(targets) == 0 {
		return RunResult{}, fmt.Errorf("no targets requested")
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(targets) {
		workers = len(targets)
	}

	out := make([]TargetResult, len(targets))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				traj, err := orc.TrajectoryForTarget(targets[i])
				out[i] = TargetResult{TargetID: targets[i], Trajectory: traj, Err: err}
			}
		}()
	}
	for i := range targets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	res := RunResult{
		Targets:           out,
		ExpectedQuestions: orc.ExpectedQuestions(),
	}
	for _, tr := range out {
		switch {
		case tr.Err != nil:
			res.Failed++
		case tr.Trajectory.Resolved:
			res.Resolved++
		default:
			res.Unresolved++
		}
	}

	if opts.Store != nil {
		runID, err := persist(orc, opts, out)
		if err != nil {
			return RunResult{}, err
		}
		res.RunID = runID
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

// #endregion run

// #region persist

func persist(orc *oracle.Oracle, opts Options, out []TargetResult) (string, error) {
	rec := results.NewRunRecord(
		opts.DatasetName,
		len(orc.ObjectIDs()),
		len(orc.Attributes()),
		opts.MaxSteps,
		orc.ExpectedQuestions(),
	)
	if err := opts.Store.RecordRun(rec); err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	for _, tr := range out {
		if tr.Err != nil {
			continue
		}
		if err := opts.Store.RecordTrajectory(rec.RunID, tr.Trajectory); err != nil {
			return "", fmt.Errorf("record trajectory for %s: %w", tr.TargetID, err)
		}
	}
	return rec.RunID, nil
}

// #endregion persist

// #region mean

// MeanEntropies averages padded entropies over the successful targets of a
// run result, step-major, with steps+1 entries. Returns nil when no target
// succeeded.
func MeanEntropies(res RunResult, steps int) []float64 {
	var ok int
	sums := make([]float64, steps+1)
	for _, tr := range res.Targets {
		if tr.Err != nil {
			continue
		}
		ok++
		for i, h := range tr.Trajectory.EntropiesPadded(steps) {
			sums[i] += h
		}
	}
	if ok == 0 {
		return nil
	}
	for i := range sums {
		sums[i] /= float64(ok)
	}
	return sums
}

// #endregion mean

// #region sorted-targets

// SortedTargets returns the table's object IDs in sorted order without
// building an oracle, for callers expanding an "all" target selection.
func SortedTargets(table dataset.Table) []string {
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// #endregion sorted-targets
