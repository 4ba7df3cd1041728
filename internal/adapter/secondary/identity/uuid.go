package identity

import (
	"github.com/google/uuid"

	"fasttrack/internal/domain"
)

// UUIDGenerator implements domain.IDGenerator with random (v4) UUIDs.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new session id generator.
func NewUUIDGenerator() domain.IDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
