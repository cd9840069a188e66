package pkguid

import "github.com/google/uuid"

// UUID generates time-ordered UUID strings.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a UUIDv7. If the clock or entropy source fails it falls
// back to a random UUIDv4 instead of panicking mid-request.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
