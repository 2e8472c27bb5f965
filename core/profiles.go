package core

import (
	"fmt"
	"maps"

	"github.com/huangsam/pokestats/internal/contract"
)

// ProfileMap maps cluster ids to profile labels. It is static configuration.
type ProfileMap map[int]string

// NewProfileMap copies the configured labels.
func NewProfileMap(labels map[int]string) ProfileMap {
	pm := make(ProfileMap, len(labels))
	maps.Copy(pm, labels)
	return pm
}

// Label returns the profile for a cluster id or an UnmappedClusterError.
func (pm ProfileMap) Label(id int) (string, error) {
	label, ok := pm[id]
	if !ok {
		return "", &contract.UnmappedClusterError{Cluster: id}
	}
	return label, nil
}

// LabelOrPlaceholder never fails. Unknown ids render as "Cluster <id>".
func (pm ProfileMap) LabelOrPlaceholder(id int) (string, bool) {
	if label, ok := pm[id]; ok {
		return label, false
	}
	return placeholder(id), true
}

// LabelAll labels every id strictly and stops at the first unmapped one.
func (pm ProfileMap) LabelAll(ids []int) ([]string, error) {
	out := make([]string, len(ids))
	for i, id := range ids {
		label, err := pm.Label(id)
		if err != nil {
			return nil, err
		}
		out[i] = label
	}
	return out, nil
}

// Missing returns the ids in 0..k-1 that have no label.
func (pm ProfileMap) Missing(k int) []int {
	var missing []int
	for id := range k {
		if _, ok := pm[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func placeholder(id int) string {
	return fmt.Sprintf("Cluster %d", id)
}
