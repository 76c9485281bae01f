package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/config"
	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/dataset"
	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/results"
	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/runner"
)

// #endregion

// #region main

func main() {
	configPath := flag.String("config", "", "path to run manifest YAML (overrides other flags)")
	dataPath := flag.String("data", "", "path to dataset JSON")
	targets := flag.String("targets", "", "comma-separated target IDs, or 'all'")
	steps := flag.Int("steps", 10, "padded trajectory length in questions")
	workers := flag.Int("workers", 1, "concurrent trajectory workers")
	dbPath := flag.String("db", "", "optional SQLite results database")
	datasetName := flag.String("dataset-name", "", "label for result rows (default: dataset file name)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of a table")
	flag.Parse()

	manifest, err := resolveManifest(*configPath, *dataPath, *targets, *steps, *workers, *dbPath, *datasetName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintln(os.Stderr, "usage: oracle-run --config manifest.yaml")
		fmt.Fprintln(os.Stderr, "       oracle-run --data table.json --targets a,b,c|all [--steps N] [--workers N] [--db path] [--json]")
		os.Exit(2)
	}

	if err := run(manifest, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region manifest

func resolveManifest(configPath, dataPath, targets string, steps, workers int, dbPath, datasetName string) (config.Manifest, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	m := config.Manifest{
		Dataset:     dataPath,
		DatasetName: datasetName,
		DB:          dbPath,
		MaxSteps:    steps,
		Workers:     workers,
	}
	if targets == "all" {
		m.AllTargets = true
	} else if targets != "" {
		m.Targets = strings.Split(targets, ",")
	}
	config.Normalize(&m)
	if err := config.Validate(&m); err != nil {
		return config.Manifest{}, err
	}
	return m, nil
}

// #endregion manifest

// #region run

func run(m config.Manifest, jsonOut bool) error {
	table, err := dataset.Load(m.Dataset)
	if err != nil {
		return err
	}
	report, err := dataset.Validate(table)
	if err != nil {
		return err
	}
	if report.Degenerate() {
		fmt.Fprintf(os.Stderr, "warning: %d indistinguishable object groups; affected trajectories floor above zero\n",
			len(report.DuplicateGroups))
	}

	opts := runner.Options{
		DatasetName: m.DatasetName,
		Targets:     m.Targets,
		AllTargets:  m.AllTargets,
		MaxSteps:    m.MaxSteps,
		Workers:     m.Workers,
	}
	if m.DB != "" {
		store, err := results.NewStore(m.DB)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Store = store
	}

	res, err := runner.Run(table, opts)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(res, m.MaxSteps)
	}
	printTable(res, m.MaxSteps)
	return nil
}

// #endregion run

// #region output

// jsonTarget is the JSON shape for one target's outcome.
type jsonTarget struct {
	TargetID   string    `json:"target_id"`
	Entropies  []float64 `json:"entropies,omitempty"`
	Attributes []string  `json:"attributes,omitempty"`
	Resolved   bool      `json:"resolved"`
	Error      string    `json:"error,omitempty"`
}

func printJSON(res runner.RunResult, steps int) error {
	out := struct {
		RunID             string       `json:"run_id,omitempty"`
		ExpectedQuestions float64      `json:"expected_questions"`
		Targets           []jsonTarget `json:"targets"`
		MeanEntropies     []float64    `json:"mean_entropies,omitempty"`
	}{
		RunID:             res.RunID,
		ExpectedQuestions: res.ExpectedQuestions,
		MeanEntropies:     runner.MeanEntropies(res, steps),
	}
	for _, tr := range res.Targets {
		jt := jsonTarget{TargetID: tr.TargetID}
		if tr.Err != nil {
			jt.Error = tr.Err.Error()
		} else {
			jt.Entropies = tr.Trajectory.EntropiesPadded(steps)
			jt.Resolved = tr.Trajectory.Resolved
			for _, s := range tr.Trajectory.Steps {
				jt.Attributes = append(jt.Attributes, s.Attribute)
			}
		}
		out.Targets = append(out.Targets, jt)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printTable(res runner.RunResult, steps int) {
	fmt.Printf("expected questions from root: %.4f\n", res.ExpectedQuestions)
	fmt.Printf("targets: %d resolved, %d unresolved, %d failed (%.0f ms)\n\n",
		res.Resolved, res.Unresolved, res.Failed, float64(res.Elapsed.Milliseconds()))

	fmt.Printf("%-12s %-10s %s\n", "TARGET", "STATUS", "ENTROPY (bits) per step")
	for _, tr := range res.Targets {
		if tr.Err != nil {
			fmt.Printf("%-12s %-10s %v\n", tr.TargetID, "error", tr.Err)
			continue
		}
		status := "resolved"
		if !tr.Trajectory.Resolved {
			status = "floored"
		}
		var cells []string
		for _, h := range tr.Trajectory.EntropiesPadded(steps) {
			cells = append(cells, fmt.Sprintf("%.3f", h))
		}
		fmt.Printf("%-12s %-10s %s\n", tr.TargetID, status, strings.Join(cells, " "))
	}

	if mean := runner.MeanEntropies(res, steps); mean != nil {
		var cells []string
		for _, h := range mean {
			cells = append(cells, fmt.Sprintf("%.3f", h))
		}
		fmt.Printf("\n%-12s %-10s %s\n", "mean", "", strings.Join(cells, " "))
	}

	if res.RunID != "" {
		fmt.Printf("\nrecorded run %s\n", res.RunID)
	}
}

// #endregion output
