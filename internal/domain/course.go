package domain

import "time"

// Course is a sellable catalog entry. Price is in minor currency units.
type Course struct {
	ID          string
	Title       string
	Description string
	Price       int64
	ImageURL    string
	CreatedAt   time.Time
}
