package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project is the catalog entry for a group of tasks. Like Task, this is a
// read model: project writes belong to the CRUD surface.
type Project struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
