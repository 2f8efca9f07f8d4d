package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholds_Bucket(t *testing.T) {
	th := Thresholds{High: 0.8, Medium: 0.5, Low: 0.3}

	tests := []struct {
		name       string
		confidence float64
		bucket     ConfidenceBucket
		ok         bool
	}{
		{"above high", 0.95, BucketHigh, true},
		{"exactly high", 0.8, BucketHigh, true},
		{"medium range", 0.6, BucketMedium, true},
		{"exactly medium", 0.5, BucketMedium, true},
		{"low range", 0.35, BucketLow, true},
		{"exactly low", 0.3, BucketLow, true},
		{"below low discarded", 0.29, "", false},
		{"zero discarded", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, ok := th.Bucket(tt.confidence)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.bucket, bucket)
		})
	}
}

func TestTaxonomyEntry_Applies(t *testing.T) {
	entry := TaxonomyEntry{
		LabelID:   "witness",
		AppliesTo: []EntityKind{KindPerson},
	}
	assert.True(t, entry.Applies(KindPerson))
	assert.False(t, entry.Applies(KindOrganization))
	assert.False(t, entry.Applies(KindLocation))
}

func TestPopulation_ByKind(t *testing.T) {
	pop := Population{
		People:        []Entity{{EntityID: "p1"}},
		Locations:     []Entity{{EntityID: "l1"}, {EntityID: "l2"}},
		Organizations: []Entity{{EntityID: "o1"}},
	}
	assert.Len(t, pop.ByKind(KindPerson), 1)
	assert.Len(t, pop.ByKind(KindLocation), 2)
	assert.Len(t, pop.ByKind(KindOrganization), 1)
	assert.Nil(t, pop.ByKind(EntityKind("unknown")))
	assert.Equal(t, 4, pop.Total())
}
