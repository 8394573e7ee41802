package domain

import "time"

// User is a registered account. Buyers and admins share the table; the Admin
// flag gates the catalog-management endpoints.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Admin        bool
	CreatedAt    time.Time
}
