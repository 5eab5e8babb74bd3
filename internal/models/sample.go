package models

import "time"

// Sample is one raw timestamped sensor reading for an entity, as stored
// in the recorder. Immutable once written.
type Sample struct {
	EntityID string    `json:"entity_id"`
	Ts       time.Time `json:"ts"`
	Value    float64   `json:"value"`
}
