package screening

import (
	"math/rand"
	"sync"
)

const InterventionGuidance = "Early intervention is strongly recommended. " +
	"Speech therapy, occupational therapy, behavioral therapy " +
	"and professional consultation can improve outcomes."

var AffirmingGuidance = [3]string{
	"Different, not less.",
	"Neurodiversity is a strength.",
	"Awareness creates acceptance.",
}

// GuidanceSelector picks the guidance message for a label.
type GuidanceSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGuidanceSelector draws negative-label messages from src.
func NewGuidanceSelector(src rand.Source) *GuidanceSelector {
	return &GuidanceSelector{rng: rand.New(src)}
}

// Select returns the fixed intervention text for a positive label and one of
// AffirmingGuidance, uniformly, otherwise.
func (g *GuidanceSelector) Select(label bool) string {
	if label {
		return InterventionGuidance
	}
	g.mu.Lock()
	i := g.rng.Intn(len(AffirmingGuidance))
	g.mu.Unlock()
	return AffirmingGuidance[i]
}
