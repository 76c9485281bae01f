package results

// #region imports
import (
	"time"

	"github.com/google/uuid"
)

// #endregion

// #region run-record

// RunRecord is a single row in oracle_runs: one oracle invocation over one
// dataset, covering some set of targets.
type RunRecord struct {
	RunID             string
	DatasetName       string
	ObjectCount       int
	AttributeCount    int
	MaxSteps          int
	ExpectedQuestions float64
	CreatedAt         time.Time
}

// NewRunRecord creates a RunRecord with a fresh run ID and timestamp.
func NewRunRecord(datasetName string, objects, attributes, maxSteps int, expectedQuestions float64) RunRecord {
	return RunRecord{
		RunID:             uuid.New().String(),
		DatasetName:       datasetName,
		ObjectCount:       objects,
		AttributeCount:    attributes,
		MaxSteps:          maxSteps,
		ExpectedQuestions: expectedQuestions,
		CreatedAt:         time.Now().UTC(),
	}
}

// #endregion

// #region trajectory-point

// TrajectoryPoint is a single row in trajectory_points. Step 0 carries the
// prior entropy and an empty attribute; step t >= 1 is the entropy after the
// t-th question.
type TrajectoryPoint struct {
	RunID       string
	TargetID    string
	Step        int
	EntropyBits float64
	Attribute   string
	Candidates  int
}

// #endregion
