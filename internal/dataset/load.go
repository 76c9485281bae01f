package dataset

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"
)

// #endregion

// #region parse

// Parse decodes a released dataset JSON document: an object whose keys are
// object IDs and whose values are attribute-name → scalar maps.
func Parse(data []byte) (Table, error) {
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return table, nil
}

// #endregion parse

// #region load

// Load reads and parses a dataset JSON file.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data)
}

// #endregion load
