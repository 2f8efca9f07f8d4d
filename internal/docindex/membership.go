package docindex

import (
	"encoding/json"
	"os"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/caselens/entity-cli/internal/model"
)

// Membership is the entity-to-document relation, keyed by a name string.
// The index was built independently of the entity records and may key on
// a different normalization, so resolving an entity requires trying
// several name variants.
type Membership struct {
	docs map[string][]string
}

// LoadMembership reads the name-to-documents file. A malformed file is
// fatal.
func LoadMembership(path string) (*Membership, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "docindex: read membership %s", path)
	}
	docs := make(map[string][]string)
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, eris.Wrapf(err, "docindex: parse membership %s", path)
	}
	zap.L().Info("docindex: membership loaded", zap.Int("names", len(docs)))
	return NewMembership(docs), nil
}

// NewMembership wraps an in-memory name-to-documents map.
func NewMembership(docs map[string][]string) *Membership {
	return &Membership{docs: docs}
}

// Len reports the number of name keys in the index.
func (m *Membership) Len() int {
	return len(m.docs)
}

// Lookup returns the documents for an exact name key.
func (m *Membership) Lookup(name string) ([]string, bool) {
	ids, ok := m.docs[name]
	return ids, ok && len(ids) > 0
}

// Resolve returns the document set for an entity by trying name variants
// in order and stopping at the first hit. A nil result means the entity
// has no resolvable membership, which is common and not an error.
func (m *Membership) Resolve(e model.Entity) []string {
	for _, variant := range NameVariants(e) {
		if ids, ok := m.Lookup(variant); ok {
			return ids
		}
	}
	return nil
}

// separatorReplacer rewrites the separator characters that differ between
// the entity records and the membership index keys.
var separatorReplacer = strings.NewReplacer("_", " ", "-", " ", ".", " ")

// NameVariants returns the ordered lookup keys for an entity: the
// normalized name verbatim, the separator-to-space form, lower-cased
// variants of both, then the same ladder for each alias, and finally
// diacritic-folded forms as a last resort.
func NameVariants(e model.Entity) []string {
	seen := make(map[string]bool)
	var variants []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		variants = append(variants, v)
	}

	names := make([]string, 0, 2+len(e.Aliases))
	if e.NormalizedName != "" {
		names = append(names, e.NormalizedName)
	}
	if e.CanonicalName != "" {
		names = append(names, e.CanonicalName)
	}
	names = append(names, e.Aliases...)

	for _, n := range names {
		spaced := collapseSpaces(separatorReplacer.Replace(n))
		add(n)
		add(spaced)
		add(strings.ToLower(n))
		add(strings.ToLower(spaced))
	}
	for _, n := range names {
		add(foldName(n))
	}
	return variants
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName strips diacritics and lower-cases, for membership keys built
// from ASCII-folded source text.
func foldName(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(collapseSpaces(separatorReplacer.Replace(folded)))
}
