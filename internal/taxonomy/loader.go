// Package taxonomy loads the label catalog and its parallel keyword rule
// set, and exposes the read-only lookup structures the classifiers run
// against. Both structures are built once before any classification work
// begins and are never mutated afterward.
package taxonomy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/caselens/entity-cli/internal/model"
)

// taxonomyFile is the on-disk taxonomy shape: category name to the
// classification entries grouped under it.
type taxonomyFile struct {
	Categories map[string][]model.TaxonomyEntry `json:"categories" yaml:"categories"`
}

// Load reads the taxonomy and rule files and builds a Registry. A rule
// referencing a label absent from the taxonomy is fatal; a taxonomy label
// without a rule is tolerated (it can never be derived, only counted).
func Load(taxonomyPath, rulesPath string) (*Registry, error) {
	var tf taxonomyFile
	if err := decodeFile(taxonomyPath, &tf); err != nil {
		return nil, eris.Wrapf(err, "taxonomy: load taxonomy %s", taxonomyPath)
	}

	rules := make(map[string]model.Rule)
	if err := decodeFile(rulesPath, &rules); err != nil {
		return nil, eris.Wrapf(err, "taxonomy: load rules %s", rulesPath)
	}

	reg, err := NewRegistry(tf.Categories, rules)
	if err != nil {
		return nil, err
	}

	zap.L().Info("taxonomy: loaded",
		zap.Int("labels", len(reg.labels)),
		zap.Int("rules", len(reg.rules)),
		zap.Int("unruled_labels", reg.unruled),
	)
	return reg, nil
}

// decodeFile unmarshals a JSON or YAML file into v, chosen by extension.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "read file")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return eris.Wrap(err, "parse yaml")
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return eris.Wrap(err, "parse json")
		}
	}
	return nil
}
