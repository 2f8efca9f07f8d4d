package model

// Entity is one named entity from the archive population. Entities are
// read-only inputs here; they are created and deduplicated upstream.
type Entity struct {
	EntityID       string     `json:"entity_id"`
	Kind           EntityKind `json:"entity_type"`
	CanonicalName  string     `json:"canonical_name"`
	NormalizedName string     `json:"normalized_name"`
	Aliases        []string   `json:"aliases,omitempty"`
	Biography      string     `json:"biography,omitempty"`
}

// Document is one archive document with its coarse type tag.
type Document struct {
	DocumentID   string `json:"id"`
	DocumentType string `json:"new_classification"`
}

// Population holds every entity grouped by kind.
type Population struct {
	People        []Entity
	Locations     []Entity
	Organizations []Entity
}

// ByKind returns the entities of one kind.
func (p *Population) ByKind(k EntityKind) []Entity {
	switch k {
	case KindPerson:
		return p.People
	case KindLocation:
		return p.Locations
	case KindOrganization:
		return p.Organizations
	}
	return nil
}

// Total returns the population size across all kinds.
func (p *Population) Total() int {
	return len(p.People) + len(p.Locations) + len(p.Organizations)
}
