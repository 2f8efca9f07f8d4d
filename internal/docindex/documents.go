// Package docindex builds the read-only document lookups the classifiers
// consult: the document-id to type-tag index and the entity to document
// membership relation with its name-variant resolver.
package docindex

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/caselens/entity-cli/internal/model"
)

// documentsFile is the on-disk document classification shape.
type documentsFile struct {
	Documents []model.Document `json:"documents"`
}

// TypeIndex maps document ids to their coarse type tag. Documents without
// a resolvable type are absent; downstream code treats a miss as "no
// signal", not an error.
type TypeIndex struct {
	types map[string]string
}

// LoadTypeIndex reads the document classification file and builds the
// index. A malformed file is fatal.
func LoadTypeIndex(path string) (*TypeIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "docindex: read documents %s", path)
	}
	var df documentsFile
	if err := json.Unmarshal(data, &df); err != nil {
		return nil, eris.Wrapf(err, "docindex: parse documents %s", path)
	}
	idx := NewTypeIndex(df.Documents)

	zap.L().Info("docindex: type index built",
		zap.Int("documents", len(df.Documents)),
		zap.Int("typed", idx.Len()),
	)
	return idx, nil
}

// NewTypeIndex builds a TypeIndex from document records, skipping entries
// with no id or no type.
func NewTypeIndex(docs []model.Document) *TypeIndex {
	types := make(map[string]string, len(docs))
	for _, d := range docs {
		if d.DocumentID == "" || d.DocumentType == "" {
			continue
		}
		types[d.DocumentID] = d.DocumentType
	}
	return &TypeIndex{types: types}
}

// TypeOf returns the type tag for a document id.
func (ti *TypeIndex) TypeOf(documentID string) (string, bool) {
	t, ok := ti.types[documentID]
	return t, ok
}

// Len returns the number of documents with a resolvable type.
func (ti *TypeIndex) Len() int {
	return len(ti.types)
}
