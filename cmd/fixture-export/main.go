package main

// #region imports
import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/dataset"
	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/fixture"
	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/runner"
)

// #endregion

// #region main

func main() {
	dataPath := flag.String("data", "", "path to dataset JSON")
	targets := flag.String("targets", "", "comma-separated target IDs, or 'all'")
	desc := flag.String("desc", "", "fixture description")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dataPath == "" || *targets == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --data table.json --targets a,b,c|all --out fixture.json [--desc text]")
		os.Exit(2)
	}

	if err := run(*dataPath, *targets, *desc, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(dataPath, targets, desc, outPath string) error {
	table, err := dataset.Load(dataPath)
	if err != nil {
		return err
	}
	if _, err := dataset.Validate(table); err != nil {
		return err
	}

	var targetIDs []string
	if targets == "all" {
		targetIDs = runner.SortedTargets(table)
	} else {
		targetIDs = strings.Split(targets, ",")
	}

	f, err := fixture.Build(desc, table, targetIDs)
	if err != nil {
		return err
	}
	if err := fixture.Write(outPath, f); err != nil {
		return err
	}

	fmt.Printf("wrote fixture with %d trajectories to %s\n", len(f.Trajectories), outPath)
	return nil
}

// #endregion run
