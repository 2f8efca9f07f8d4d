package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/caselens/entity-cli/internal/model"
)

// entityRecord is the on-disk per-entity shape; the entity id is the map
// key and the kind is implied by the file.
type entityRecord struct {
	CanonicalName  string   `json:"canonical_name"`
	NormalizedName string   `json:"normalized_name"`
	Aliases        []string `json:"aliases,omitempty"`
	Biography      string   `json:"biography,omitempty"`
}

// kindFiles maps each entity kind to its population file name.
var kindFiles = map[model.EntityKind]string{
	model.KindPerson:       "people.json",
	model.KindLocation:     "locations.json",
	model.KindOrganization: "organizations.json",
}

// LoadPopulation reads the three per-kind population files from dir.
// An unreadable or malformed file is fatal; a missing biography is not.
func LoadPopulation(dir string) (*model.Population, error) {
	pop := &model.Population{}
	for _, kind := range model.AllKinds() {
		path := filepath.Join(dir, kindFiles[kind])
		entities, err := loadKind(path, kind)
		if err != nil {
			return nil, err
		}
		switch kind {
		case model.KindPerson:
			pop.People = entities
		case model.KindLocation:
			pop.Locations = entities
		case model.KindOrganization:
			pop.Organizations = entities
		}
	}

	zap.L().Info("pipeline: population loaded",
		zap.Int("people", len(pop.People)),
		zap.Int("locations", len(pop.Locations)),
		zap.Int("organizations", len(pop.Organizations)),
	)
	return pop, nil
}

func loadKind(path string, kind model.EntityKind) ([]model.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read population %s", path)
	}
	records := make(map[string]entityRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse population %s", path)
	}

	entities := make([]model.Entity, 0, len(records))
	for id, rec := range records {
		entities = append(entities, model.Entity{
			EntityID:       id,
			Kind:           kind,
			CanonicalName:  rec.CanonicalName,
			NormalizedName: rec.NormalizedName,
			Aliases:        rec.Aliases,
			Biography:      rec.Biography,
		})
	}
	// Deterministic processing order regardless of map iteration.
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].EntityID < entities[j].EntityID
	})
	return entities, nil
}
