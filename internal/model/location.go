package model

import "time"

// Location is a place that can hold inventory.
type Location struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Location types.
const (
	LocationTypeWarehouse = "warehouse"
	LocationTypeStore     = "store"
	LocationTypeTransit   = "transit"
)

// ValidLocationType reports whether t is a known location type.
func ValidLocationType(t string) bool {
	switch t {
	case LocationTypeWarehouse, LocationTypeStore, LocationTypeTransit:
		return true
	}
	return false
}
