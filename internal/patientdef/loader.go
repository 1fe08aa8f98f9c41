package patientdef

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PochariChun/OSCEVP/internal/interview"
	"github.com/PochariChun/OSCEVP/internal/scoring"
)

// A patient bundle is one file describing a simulated-patient case:
// name, description, the scripted dialog, and the grading rubric.
// JSON bundles may use the localized rubric keys of the original
// grading sheets; YAML bundles use the canonical naming.

type bundle struct {
	ID          string                  `json:"id" yaml:"id"`
	Name        string                  `json:"name" yaml:"name"`
	Description string                  `json:"description" yaml:"description"`
	Dialog      []interview.DialogEntry `json:"dialog" yaml:"dialog"`
	Rubric      scoring.Rubric          `json:"-" yaml:"rubric"`
	RubricRaw   json.RawMessage         `json:"rubric" yaml:"-"`
}

// Load reads and validates one bundle file. The rubric is validated
// here so a bad grading sheet is rejected at load time, long before any
// trainee sits an interview against it.
func Load(path string) (interview.Patient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return interview.Patient{}, err
	}

	var b bundle
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &b); err != nil {
			return interview.Patient{}, fmt.Errorf("%s: %w", path, err)
		}
		if len(b.RubricRaw) == 0 {
			return interview.Patient{}, fmt.Errorf("%s: missing rubric", path)
		}
		r, err := scoring.DecodeRubric(b.RubricRaw)
		if err != nil {
			return interview.Patient{}, fmt.Errorf("%s: %w", path, err)
		}
		b.Rubric = r
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &b); err != nil {
			return interview.Patient{}, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return interview.Patient{}, fmt.Errorf("%s: unsupported bundle format", path)
	}

	if b.Name == "" {
		return interview.Patient{}, fmt.Errorf("%s: missing patient name", path)
	}
	if err := scoring.Validate(b.Rubric); err != nil {
		return interview.Patient{}, fmt.Errorf("%s: %w", path, err)
	}

	// Stable ID so re-loading the same bundle upserts instead of
	// duplicating.
	id := b.ID
	if id == "" {
		id = b.Name
	}
	return interview.Patient{
		ID:          id,
		Name:        b.Name,
		Description: b.Description,
		Dialog:      b.Dialog,
		Rubric:      b.Rubric,
	}, nil
}

// LoadDir loads every bundle file in a directory, in name order.
func LoadDir(dir string) ([]interview.Patient, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	out := make([]interview.Patient, 0, len(paths))
	for _, p := range paths {
		pt, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, nil
}
