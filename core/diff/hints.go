package diff

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// hintsFile is the on-disk form of a rename hints file.
type hintsFile struct {
	Hints []RenameHint `yaml:"hints"`
}

// LoadHints reads a YAML rename hints file. Hints are the only way a rename
// enters a diff; nothing is inferred.
func LoadHints(path string) ([]RenameHint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hints file: %w", err)
	}

	var f hintsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing hints file %s: %w", path, err)
	}

	for i, h := range f.Hints {
		if h.Module == "" || h.OldName == "" || h.NewName == "" {
			return nil, fmt.Errorf("hint %d in %s must set module, old_name, and new_name", i, path)
		}
	}
	return f.Hints, nil
}
