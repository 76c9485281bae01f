package config

// #region imports
import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// #endregion

// #region manifest

// Manifest describes one oracle run: which dataset to load, which targets to
// compute trajectories for, and where to put the results.
type Manifest struct {
	// Dataset is the path to the attribute table JSON file.
	Dataset string `yaml:"dataset"`
	// DatasetName labels result rows; defaults to the dataset file name.
	DatasetName string `yaml:"dataset_name"`
	// DB is an optional SQLite results database path.
	DB string `yaml:"db"`
	// Targets lists object IDs to compute trajectories for.
	Targets []string `yaml:"targets"`
	// AllTargets computes a trajectory for every object in the table.
	AllTargets bool `yaml:"all_targets"`
	// MaxSteps is the padded trajectory length; defaults to 10.
	MaxSteps int `yaml:"max_steps"`
	// Workers bounds concurrent trajectory computation; defaults to 1.
	Workers int `yaml:"workers"`
}

// #endregion

// #region parse

// Parse decodes a manifest, rejecting unknown fields and multi-document input.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Manifest{}, errors.New("parse manifest: multiple YAML documents are not supported")
		}
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// #endregion parse

// #region load

// Load reads, parses, normalizes, and validates a manifest file.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return Manifest{}, err
	}
	Normalize(&m)
	if err := Validate(&m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// #endregion load

// #region normalize

// Normalize fills in defaults for omitted fields.
func Normalize(m *Manifest) {
	if m.MaxSteps == 0 {
		m.MaxSteps = 10
	}
	if m.Workers == 0 {
		m.Workers = 1
	}
	if m.DatasetName == "" && m.Dataset != "" {
		m.DatasetName = strings.TrimSuffix(filepath.Base(m.Dataset), filepath.Ext(m.Dataset))
	}
}

// #endregion normalize

// #region validate

// Validate checks manifest consistency after normalization.
func Validate(m *Manifest) error {
	if m.Dataset == "" {
		return errors.New("manifest: dataset is required")
	}
	if len(m.Targets) == 0 && !m.AllTargets {
		return errors.New("manifest: targets or all_targets is required")
	}
	if len(m.Targets) > 0 && m.AllTargets {
		return errors.New("manifest: targets and all_targets are mutually exclusive")
	}
	if m.MaxSteps < 1 {
		return fmt.Errorf("manifest: max_steps must be positive, got %d", m.MaxSteps)
	}
	if m.Workers < 1 {
		return fmt.Errorf("manifest: workers must be positive, got %d", m.Workers)
	}
	return nil
}

// #endregion validate
