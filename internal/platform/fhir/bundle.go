package fhir

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type Bundle struct {
	ResourceType string        `json:"resourceType"`
	Type         string        `json:"type"`
	Timestamp    *time.Time    `json:"timestamp,omitempty"`
	Total        *int          `json:"total,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

type BundleEntry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
}

// NewCollectionBundle wraps resources in a "collection" Bundle. Entries are
// addressed by urn:uuid full URLs taken from ids, which must match resources
// one to one.
func NewCollectionBundle(ts time.Time, ids []string, resources []interface{}) (*Bundle, error) {
	if len(ids) != len(resources) {
		return nil, fmt.Errorf("bundle: %d ids for %d resources", len(ids), len(resources))
	}

	entries := make([]BundleEntry, 0, len(resources))
	for i, r := range resources {
		raw, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("bundle: marshal entry %d: %w", i, err)
		}
		entries = append(entries, BundleEntry{FullURL: "urn:uuid:" + ids[i], Resource: raw})
	}

	total := len(entries)
	return &Bundle{
		ResourceType: "Bundle",
		Type:         "collection",
		Timestamp:    &ts,
		Total:        &total,
		Entry:        entries,
	}, nil
}
