package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/dataset"
	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/oracle"
)

// #endregion

// #region main

func main() {
	dataPath := flag.String("data", "", "path to dataset JSON")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	if *dataPath == "" {
		fmt.Fprintln(os.Stderr, "usage: dataset-inspect --data table.json [--json]")
		os.Exit(2)
	}

	if err := run(*dataPath, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(dataPath string, jsonOut bool) error {
	table, err := dataset.Load(dataPath)
	if err != nil {
		return err
	}
	report, err := dataset.Validate(table)
	if err != nil {
		return err
	}

	orc, err := oracle.New(table)
	if err != nil {
		return err
	}
	expected := orc.ExpectedQuestions()

	if jsonOut {
		out := struct {
			dataset.Report
			ExpectedQuestions float64 `json:"expected_questions"`
		}{Report: report, ExpectedQuestions: expected}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("objects:           %d\n", report.ObjectCount)
	fmt.Printf("attributes:        %d\n", len(report.Attributes))
	fmt.Printf("prior entropy:     %.4f bits\n", report.PriorEntropyBits)
	fmt.Printf("expected questions: %.4f\n\n", expected)

	fmt.Printf("%-24s %s\n", "ATTRIBUTE", "DISTINCT VALUES")
	for _, attr := range report.Attributes {
		fmt.Printf("%-24s %d\n", attr, report.DistinctValues[attr])
	}

	if report.Degenerate() {
		fmt.Printf("\nindistinguishable groups (%d):\n", len(report.DuplicateGroups))
		for _, group := range report.DuplicateGroups {
			fmt.Printf("  %s\n", strings.Join(group, ", "))
		}
	} else {
		fmt.Println("\nall attribute vectors are pairwise distinct")
	}
	return nil
}

// #endregion run
