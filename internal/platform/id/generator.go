package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// TimeOrderedGenerator issues UUIDv7 values so IDs sort by creation time.
type TimeOrderedGenerator struct {
	prefix string
}

func NewTimeOrderedGenerator(prefix string) *TimeOrderedGenerator {
	return &TimeOrderedGenerator{prefix: prefix}
}

func (g *TimeOrderedGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid v7: %w", err)
	}

	return g.prefix + v.String(), nil
}
