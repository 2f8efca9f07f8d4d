package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/caselens/entity-cli/internal/model"
)

// WriteOutput writes the result file atomically: the JSON is staged in a
// temp file in the destination directory and renamed into place, so a
// failed run can never leave a partial or corrupt output behind.
func WriteOutput(path string, out *model.Output) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return eris.Wrap(err, "pipeline: marshal output")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".classifications-*.json")
	if err != nil {
		return eris.Wrapf(err, "pipeline: create temp output in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return eris.Wrap(err, "pipeline: write temp output")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "pipeline: close temp output")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "pipeline: rename output to %s", path)
	}

	zap.L().Info("pipeline: output written",
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// ReadOutput loads a previously written result file, for the stats
// command and for downstream tooling.
func ReadOutput(path string) (*model.Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read output %s", path)
	}
	var out model.Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse output %s", path)
	}
	return &out, nil
}
