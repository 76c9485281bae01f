package dataset

// #region imports
import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// #endregion

// #region errors

var (
	// ErrEmptyTable reports a dataset with zero objects.
	ErrEmptyTable = errors.New("dataset is empty")
	// ErrSchemaMismatch reports an object whose attribute keys differ from
	// the table's shared schema.
	ErrSchemaMismatch = errors.New("attribute schema mismatch")
)

// #endregion

// #region report

// Report summarizes a validated table for callers and inspection tooling.
type Report struct {
	ObjectCount int `json:"object_count"`
	// Attributes is the shared attribute schema in sorted order.
	Attributes []string `json:"attributes"`
	// DistinctValues counts distinct values per attribute across the table.
	DistinctValues map[string]int `json:"distinct_values"`
	// DuplicateGroups lists groups of objects sharing an identical attribute
	// vector. Such groups can never be separated by questioning, so their
	// trajectories floor above zero entropy.
	DuplicateGroups [][]string `json:"duplicate_groups,omitempty"`
	// PriorEntropyBits is log2 of the object count.
	PriorEntropyBits float64 `json:"prior_entropy_bits"`
}

// Degenerate reports whether any objects are pairwise indistinguishable.
func (r Report) Degenerate() bool {
	return len(r.DuplicateGroups) > 0
}

// #endregion report

// #region validate

// Validate checks the table's structural invariants and returns a Report.
// Duplicate attribute vectors are not an error; they are surfaced in the
// report so callers can anticipate non-zero trajectory floors.
func Validate(table Table) (Report, error) {
	if len(table) == 0 {
		return Report{}, ErrEmptyTable
	}

	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	schema := attributeNames(table[ids[0]])
	if len(schema) == 0 {
		return Report{}, fmt.Errorf("object %q has no attributes: %w", ids[0], ErrSchemaMismatch)
	}

	distinct := make(map[string]map[string]struct{}, len(schema))
	for _, attr := range schema {
		distinct[attr] = make(map[string]struct{})
	}

	// Group objects by full attribute signature to find duplicates.
	sigGroups := make(map[string][]string)

	for _, id := range ids {
		vec := table[id]
		names := attributeNames(vec)
		if !equalStrings(names, schema) {
			return Report{}, fmt.Errorf("object %q has attributes [%s], schema is [%s]: %w",
				id, strings.Join(names, " "), strings.Join(schema, " "), ErrSchemaMismatch)
		}

		var sig strings.Builder
		for _, attr := range schema {
			val := vec[attr].String()
			distinct[attr][val] = struct{}{}
			sig.WriteString(val)
			sig.WriteByte(0x1f)
		}
		key := sig.String()
		sigGroups[key] = append(sigGroups[key], id)
	}

	report := Report{
		ObjectCount:      len(ids),
		Attributes:       schema,
		DistinctValues:   make(map[string]int, len(schema)),
		PriorEntropyBits: math.Log2(float64(len(ids))),
	}
	for attr, vals := range distinct {
		report.DistinctValues[attr] = len(vals)
	}
	for _, group := range sigGroups {
		if len(group) > 1 {
			report.DuplicateGroups = append(report.DuplicateGroups, group)
		}
	}
	sort.Slice(report.DuplicateGroups, func(i, j int) bool {
		return report.DuplicateGroups[i][0] < report.DuplicateGroups[j][0]
	})

	return report, nil
}

// #endregion validate

// #region helpers

func attributeNames(vec AttributeVector) []string {
	names := make([]string, 0, len(vec))
	for name := range vec {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// #endregion helpers
