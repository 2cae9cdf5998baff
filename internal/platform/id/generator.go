package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates IDs for entities, correlation keys and messages.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random (v4) UUIDs in canonical string form.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return v.String(), nil
}

// Valid reports whether raw parses as a UUID.
func Valid(raw string) bool {
	_, err := uuid.Parse(raw)
	return err == nil
}

// Derive returns the name-based (v5) UUID of key within scope. The same
// scope and key always yield the same id.
func Derive(scope, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("dotmatchlens:"+scope+":"+key)).String()
}
