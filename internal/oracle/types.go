package oracle

// #region imports
import "math"

// #endregion

// #region log2

// log2 is candidate-count entropy in bits; log2(1) == 0.
func log2(n int) float64 {
	return math.Log2(float64(n))
}

// #endregion

// #region step

// Step records one asked question during a trajectory simulation.
type Step struct {
	// Attribute is the question asked at this step.
	Attribute string
	// Answer is the target's canonical value for the attribute.
	Answer string
	// Candidates is the candidate-set size after the answer.
	Candidates int
	// EntropyBits is log2(Candidates).
	EntropyBits float64
}

// #endregion

// #region trajectory

// Trajectory is the posterior-entropy path for one target under the optimal
// questioning policy.
type Trajectory struct {
	TargetID string
	// Objects is the table size N the trajectory started from.
	Objects int
	// PriorBits is log2(N) before any question is asked.
	PriorBits float64
	Steps     []Step
	// Resolved is false when the table contains objects indistinguishable
	// from the target, leaving the terminal entropy above zero.
	Resolved bool
}

// TerminalBits returns the entropy after the last question, or the prior when
// no question could be asked.
func (t Trajectory) TerminalBits() float64 {
	if len(t.Steps) == 0 {
		return t.PriorBits
	}
	return t.Steps[len(t.Steps)-1].EntropyBits
}

// Entropies flattens the trajectory to the downstream convention: index 0 is
// the prior entropy, index t (t >= 1) is the entropy after question t.
func (t Trajectory) Entropies() []float64 {
	out := make([]float64, 0, len(t.Steps)+1)
	out = append(out, t.PriorBits)
	for _, s := range t.Steps {
		out = append(out, s.EntropyBits)
	}
	return out
}

// EntropiesPadded returns exactly steps+1 entries, padding past the end of
// the trajectory with the terminal entropy so fixed-width step files line up
// across targets. Entries beyond steps questions are dropped.
func (t Trajectory) EntropiesPadded(steps int) []float64 {
	out := make([]float64, steps+1)
	full := t.Entropies()
	terminal := t.TerminalBits()
	for i := range out {
		if i < len(full) {
			out[i] = full[i]
		} else {
			out[i] = terminal
		}
	}
	return out
}

// #endregion
