package oracle

// #region imports
import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/dataset"
)

// #endregion

// #region errors

// ErrUnknownTarget reports a trajectory request for an object ID not present
// in the table.
var ErrUnknownTarget = errors.New("unknown target object")

// #endregion

// #region oracle-struct

// Oracle computes optimal k-ary question trees over a fixed attribute table.
// The table is read-only after construction; the decision cache is shared
// across targets and safe for concurrent trajectory computation.
type Oracle struct {
	table      dataset.Table
	objectIDs  []string // sorted, stable ordering
	attributes []string // sorted, doubles as the tie-break order

	mu    sync.Mutex
	cache map[string]decision
}

// decision is the memoized DP entry for one candidate set: the attribute to
// ask next and the Bellman-optimal expected number of remaining questions.
// Attribute is empty when no attribute splits the set.
type decision struct {
	attribute string
	cost      float64
}

// #endregion

// #region constructor

// New builds an Oracle over the given table. The table must be non-empty;
// every object is assumed to carry the same attribute keys.
func New(table dataset.Table) (*Oracle, error) {
	if len(table) == 0 {
		return nil, dataset.ErrEmptyTable
	}

	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var attrs []string
	for name := range table[ids[0]] {
		attrs = append(attrs, name)
	}
	sort.Strings(attrs)

	return &Oracle{
		table:      table,
		objectIDs:  ids,
		attributes: attrs,
		cache:      make(map[string]decision),
	}, nil
}

// ObjectIDs returns all object IDs in sorted order.
func (o *Oracle) ObjectIDs() []string {
	out := make([]string, len(o.objectIDs))
	copy(out, o.objectIDs)
	return out
}

// Attributes returns the attribute schema in sorted (tie-break) order.
func (o *Oracle) Attributes() []string {
	out := make([]string, len(o.attributes))
	copy(out, o.attributes)
	return out
}

// ExpectedQuestions returns the Bellman-optimal expected number of questions
// needed to identify a uniformly drawn target from the full table.
func (o *Oracle) ExpectedQuestions() float64 {
	return o.decide(o.objectIDs).cost
}

// #endregion constructor

// #region dp

// decide returns the memoized decision for a candidate set. Candidate slices
// must be sorted; the cache key is the canonical joined ID list. First writer
// wins on a cache race; decisions are deterministic, so racing recomputation
// is idempotent.
func (o *Oracle) decide(ids []string) decision {
	if len(ids) <= 1 {
		return decision{}
	}
	key := strings.Join(ids, "\x1f")

	o.mu.Lock()
	if d, ok := o.cache[key]; ok {
		o.mu.Unlock()
		return d
	}
	o.mu.Unlock()

	d := o.computeDecision(ids)

	o.mu.Lock()
	if prev, ok := o.cache[key]; ok {
		d = prev
	} else {
		o.cache[key] = d
	}
	o.mu.Unlock()
	return d
}

// computeDecision evaluates every attribute as the next question and keeps
// the one minimizing expected remaining questions:
//
//	C_a(S) = 1 + sum_v (|S_v| / |S|) * C(S_v)
//
// Attributes that produce a single partition carry no information at this
// node and are skipped; ties resolve to the first attribute in sorted order.
func (o *Oracle) computeDecision(ids []string) decision {
	n := float64(len(ids))
	best := decision{cost: -1}

	for _, attr := range o.attributes {
		groups := o.partition(ids, attr)
		if len(groups) <= 1 {
			continue
		}

		expected := 1.0
		for _, group := range groups {
			expected += float64(len(group)) / n * o.decide(group).cost
		}

		if best.cost < 0 || expected < best.cost {
			best = decision{attribute: attr, cost: expected}
		}
	}

	if best.cost < 0 {
		// No attribute splits this set; querying cannot shrink it further.
		return decision{}
	}
	return best
}

// partition groups a sorted candidate slice by the attribute's canonical
// values. Groups preserve sorted order, keeping sub-state keys canonical.
func (o *Oracle) partition(ids []string, attr string) map[string][]string {
	groups := make(map[string][]string)
	for _, id := range ids {
		val := o.table[id][attr].String()
		groups[val] = append(groups[val], id)
	}
	return groups
}

// #endregion dp

// #region trajectory

// TrajectoryForTarget simulates optimal questioning against a noiseless
// answerer for the given target and returns the resulting entropy path.
// The target check runs before any computation; an unknown target never
// touches the shared cache.
func (o *Oracle) TrajectoryForTarget(targetID string) (Trajectory, error) {
	if _, ok := o.table[targetID]; !ok {
		return Trajectory{}, fmt.Errorf("%w: %q", ErrUnknownTarget, targetID)
	}

	current := o.ObjectIDs()
	traj := Trajectory{
		TargetID:  targetID,
		Objects:   len(current),
		PriorBits: log2(len(current)),
	}

	for {
		d := o.decide(current)
		if d.attribute == "" {
			break
		}

		answer := o.table[targetID][d.attribute].String()
		current = o.partition(current, d.attribute)[answer]

		traj.Steps = append(traj.Steps, Step{
			Attribute:   d.attribute,
			Answer:      answer,
			Candidates:  len(current),
			EntropyBits: log2(len(current)),
		})
	}

	traj.Resolved = len(current) == 1
	return traj, nil
}

// MeanTrajectory averages padded entropy trajectories over the given targets.
// The result has steps+1 entries, index 0 being the shared prior entropy.
func (o *Oracle) MeanTrajectory(targetIDs []string, steps int) ([]float64, error) {
	if len(targetIDs) == 0 {
		return nil, errors.New("mean trajectory requires at least one target")
	}

	sums := make([]float64, steps+1)
	for _, id := range targetIDs {
		traj, err := o.TrajectoryForTarget(id)
		if err != nil {
			return nil, err
		}
		for i, h := range traj.EntropiesPadded(steps) {
			sums[i] += h
		}
	}
	for i := range sums {
		sums[i] /= float64(len(targetIDs))
	}
	return sums, nil
}

// #endregion trajectory
