package domain

import "time"

// Space is the bookable resource. The engine only reads its identity, its
// filterable attributes and the promotion timestamp; everything else lives in
// the opaque attribute bag owned by the listing side.
type Space struct {
	ID            int64
	PostalCode    string
	Category      string
	Active        bool
	PromotedUntil time.Time
	Attributes    map[string]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Promoted reports whether the space has an active promotion on the given day.
func (s *Space) Promoted(today time.Time) bool {
	return !s.PromotedUntil.Before(today.Truncate(24 * time.Hour))
}

// SpaceMatch is a single search result row.
type SpaceMatch struct {
	SpaceID    int64   `json:"space_id"`
	Price      float64 `json:"price"`
	IsPromoted bool    `json:"is_promoted"`
}
