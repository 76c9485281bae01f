package fixture

// #region imports
import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/dataset"
	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/oracle"
)

// #endregion

// #region fixture-types

// Fixture is the top-level JSON structure for an oracle regression fixture:
// a table inline plus the trajectories the oracle is expected to produce.
type Fixture struct {
	Description string        `json:"description"`
	Table       dataset.Table `json:"table"`
	// ExpectedRootCost is the Bellman-optimal expected question count from
	// the full candidate set.
	ExpectedRootCost float64              `json:"expected_root_cost"`
	Trajectories     []ExpectedTrajectory `json:"expected_trajectories"`
}

// ExpectedTrajectory pins one target's entropy path and question sequence.
type ExpectedTrajectory struct {
	TargetID string `json:"target_id"`
	// Entropies follows the output convention: index 0 is the prior.
	Entropies []float64 `json:"entropies"`
	// Attributes is the sequence of questions asked, one per step.
	Attributes []string `json:"attributes"`
	Resolved   bool     `json:"resolved"`
}

// Mismatch describes one divergence between a fixture and a fresh run.
type Mismatch struct {
	TargetID string
	Detail   string
}

// #endregion fixture-types

// #region load

// Parse decodes a fixture JSON document.
func Parse(data []byte) (Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

// Load reads and parses a fixture file.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// #endregion load

// #region build

// Build computes a fixture from a table by running the oracle for each
// target, so the current behavior can be pinned for regression checks.
func Build(description string, table dataset.Table, targetIDs []string) (Fixture, error) {
	orc, err := oracle.New(table)
	if err != nil {
		return Fixture{}, fmt.Errorf("build oracle: %w", err)
	}

	f := Fixture{
		Description:      description,
		Table:            table,
		ExpectedRootCost: orc.ExpectedQuestions(),
	}
	for _, id := range targetIDs {
		traj, err := orc.TrajectoryForTarget(id)
		if err != nil {
			return Fixture{}, fmt.Errorf("trajectory for %s: %w", id, err)
		}
		exp := ExpectedTrajectory{
			TargetID:  id,
			Entropies: traj.Entropies(),
			Resolved:  traj.Resolved,
		}
		for _, s := range traj.Steps {
			exp.Attributes = append(exp.Attributes, s.Attribute)
		}
		f.Trajectories = append(f.Trajectories, exp)
	}
	return f, nil
}

// Write marshals a fixture to an indented JSON file.
func Write(path string, f Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// #endregion build

// #region check

const tolerance = 1e-9

// Check re-runs the oracle over the fixture's table and reports every
// divergence from the pinned expectations. An empty slice means the fixture
// still holds.
func Check(f Fixture) ([]Mismatch, error) {
	orc, err := oracle.New(f.Table)
	if err != nil {
		return nil, fmt.Errorf("build oracle: %w", err)
	}

	var mismatches []Mismatch
	if math.Abs(orc.ExpectedQuestions()-f.ExpectedRootCost) > tolerance {
		mismatches = append(mismatches, Mismatch{
			Detail: fmt.Sprintf("root cost %.9f, fixture expects %.9f", orc.ExpectedQuestions(), f.ExpectedRootCost),
		})
	}

	for _, exp := range f.Trajectories {
		traj, err := orc.TrajectoryForTarget(exp.TargetID)
		if err != nil {
			mismatches = append(mismatches, Mismatch{TargetID: exp.TargetID, Detail: err.Error()})
			continue
		}
		mismatches = append(mismatches, compare(exp, traj)...)
	}
	return mismatches, nil
}

func compare(exp ExpectedTrajectory, traj oracle.Trajectory) []Mismatch {
	var out []Mismatch

	got := traj.Entropies()
	if len(got) != len(exp.Entropies) {
		out = append(out, Mismatch{
			TargetID: exp.TargetID,
			Detail:   fmt.Sprintf("trajectory length %d, fixture expects %d", len(got), len(exp.Entropies)),
		})
	} else {
		for i := range got {
			if math.Abs(got[i]-exp.Entropies[i]) > tolerance {
				out = append(out, Mismatch{
					TargetID: exp.TargetID,
					Detail:   fmt.Sprintf("entropy at step %d is %.9f, fixture expects %.9f", i, got[i], exp.Entropies[i]),
				})
			}
		}
	}

	if len(traj.Steps) == len(exp.Attributes) {
		for i, s := range traj.Steps {
			if s.Attribute != exp.Attributes[i] {
				out = append(out, Mismatch{
					TargetID: exp.TargetID,
					Detail:   fmt.Sprintf("question %d is %q, fixture expects %q", i+1, s.Attribute, exp.Attributes[i]),
				})
			}
		}
	} else {
		out = append(out, Mismatch{
			TargetID: exp.TargetID,
			Detail:   fmt.Sprintf("%d questions asked, fixture expects %d", len(traj.Steps), len(exp.Attributes)),
		})
	}

	if traj.Resolved != exp.Resolved {
		out = append(out, Mismatch{
			TargetID: exp.TargetID,
			Detail:   fmt.Sprintf("resolved=%v, fixture expects %v", traj.Resolved, exp.Resolved),
		})
	}
	return out
}

// #endregion check
