package core

import "github.com/google/uuid"

// IDGenerator produces unique string ids for new entities.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

// NewID calls f.
func (f IDGeneratorFunc) NewID() string {
	return f()
}

// UUIDGenerator generates random (version 4) UUID strings.
type UUIDGenerator struct{}

// NewID returns a new random UUID.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
