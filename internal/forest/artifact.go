package forest

import (
	"encoding/json"
	"fmt"
	"os"

	"flarecast/internal/store"
)

// Model artifacts are persisted as a versioned, self-describing JSON tree
// ensemble. Each artifact is written and replaced as a whole; there is no
// partial-update path.
const (
	artifactVersion = 1

	kindClassifier = "classifier"
	kindRegressor  = "regressor"
)

type artifact struct {
	Version int     `json:"version"`
	Kind    string  `json:"kind"`
	Trees   []*Node `json:"trees"`
}

func (c *Classifier) Save(path string) error {
	return saveArtifact(path, kindClassifier, c.trees)
}

func (r *Regressor) Save(path string) error {
	return saveArtifact(path, kindRegressor, r.trees)
}

func LoadClassifier(path string) (*Classifier, error) {
	trees, err := loadArtifact(path, kindClassifier)
	if err != nil {
		return nil, err
	}
	return &Classifier{trees: trees}, nil
}

func LoadRegressor(path string) (*Regressor, error) {
	trees, err := loadArtifact(path, kindRegressor)
	if err != nil {
		return nil, err
	}
	return &Regressor{trees: trees}, nil
}

func saveArtifact(path, kind string, trees []*Node) error {
	data, err := json.Marshal(artifact{Version: artifactVersion, Kind: kind, Trees: trees})
	if err != nil {
		return fmt.Errorf("failed to encode %s artifact: %w", kind, err)
	}
	if err := store.WriteFile(path, data); err != nil {
		return &store.StorageError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// loadArtifact reads a persisted ensemble. A missing file propagates the
// raw os error so callers can trigger retraining; corrupt or mismatched
// artifacts surface as *store.StorageError.
func loadArtifact(path, kind string) ([]*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, &store.StorageError{Op: "read", Path: path, Err: err}
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, &store.StorageError{Op: "decode", Path: path, Err: err}
	}
	if a.Version != artifactVersion {
		return nil, &store.StorageError{Op: "decode", Path: path,
			Err: fmt.Errorf("unsupported artifact version %d", a.Version)}
	}
	if a.Kind != kind {
		return nil, &store.StorageError{Op: "decode", Path: path,
			Err: fmt.Errorf("artifact kind %q, expected %q", a.Kind, kind)}
	}
	if len(a.Trees) == 0 {
		return nil, &store.StorageError{Op: "decode", Path: path,
			Err: fmt.Errorf("artifact contains no trees")}
	}

	return a.Trees, nil
}
