package domain

import "strings"

// ConceptParams are the narrative ingredients every action-movie concept is
// built from.
type ConceptParams struct {
	FormerProfession string `json:"formerProfession"`
	Setting          string `json:"setting"`
	Villain          string `json:"villain"`
	PlotTrigger      string `json:"plotTrigger"`
}

// Complete reports whether every ingredient is present.
func (p ConceptParams) Complete() bool {
	return strings.TrimSpace(p.FormerProfession) != "" &&
		strings.TrimSpace(p.Setting) != "" &&
		strings.TrimSpace(p.Villain) != "" &&
		strings.TrimSpace(p.PlotTrigger) != ""
}

// Plot is a generated long-form narrative with its title.
type Plot struct {
	Title string `json:"title"`
	Body  string `json:"plot"`
}

// Concept is a short movie concept summary as returned by batch generation.
type Concept struct {
	Title string `json:"title"`
	Plot  string `json:"plot"`
}

// Audio is an opaque synthesized speech payload.
type Audio struct {
	Data []byte
	MIME string
}
