// Package templates assembles canned action-movie fragments from word lists.
// It is the locally-computable fallback used when the gateway reports a
// terminal failure: cheap, deterministic under a fixed seed, and never
// touching the network.
package templates

import (
	"fmt"
	"math/rand"

	"moviegen/internal/domain"
)

var (
	formerProfessions = []string{
		"Navy SEAL", "archaeologist", "getaway driver", "demolitions expert",
		"sushi chef", "ballet instructor", "bomb-disposal robot technician",
		"librarian", "stunt pilot", "forensic accountant",
	}
	settings = []string{
		"Tokyo", "a decommissioned oil rig", "the Alaskan wilderness",
		"Monte Carlo", "an abandoned theme park", "the Moscow subway",
		"a container ship in a typhoon", "Las Vegas", "the Andes",
	}
	villains = []string{
		"drug lord", "rogue AI tycoon", "arms dealer", "corrupt senator",
		"crime syndicate matriarch", "disgraced special-forces colonel",
		"international art thief",
	}
	plotTriggers = []string{
		"revenge", "a double-cross", "the kidnapping of their only friend",
		"a heist gone wrong", "witnessing something they shouldn't have",
		"one last job", "a case of mistaken identity",
	}
	titleAdjectives = []string{
		"Steel", "Midnight", "Maximum", "Rogue", "Terminal", "Iron", "Savage", "Final",
	}
	titleNouns = []string{
		"Vengeance", "Protocol", "Justice", "Reckoning", "Strike", "Fury", "Extraction", "Gambit",
	}
	taglines = []string{
		"This time, it's not just business.",
		"They took everything. He wants it back.",
		"Payback has a new name.",
		"No rules. No backup. No mercy.",
	}
)

// Generator produces template concepts from a seeded source, so tests and
// retries under the same seed yield the same text.
type Generator struct {
	rng *rand.Rand
}

// New constructs a generator with the given seed.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) pick(list []string) string {
	return list[g.rng.Intn(len(list))]
}

// ConceptParams rolls a fresh set of narrative ingredients.
func (g *Generator) ConceptParams() domain.ConceptParams {
	return domain.ConceptParams{
		FormerProfession: g.pick(formerProfessions),
		Setting:          g.pick(settings),
		Villain:          g.pick(villains),
		PlotTrigger:      g.pick(plotTriggers),
	}
}

// Title composes a two-word blockbuster title.
func (g *Generator) Title() string {
	return g.pick(titleAdjectives) + " " + g.pick(titleNouns)
}

// Plot composes a canned plot summary from the given ingredients.
func (g *Generator) Plot(p domain.ConceptParams) string {
	return fmt.Sprintf(
		"They thought a former %s would stay retired. But when %s drags them back into the shadows of %s, retirement is over. Now, armed with nothing but old instincts and older grudges, one hero must bring down a ruthless %s before the city pays the price.",
		p.FormerProfession, p.PlotTrigger, p.Setting, p.Villain)
}

// TrailerScript composes a canned trailer voiceover for a title.
func (g *Generator) TrailerScript(title string) string {
	return fmt.Sprintf(
		"In a world without rules... one person stands alone.\n\"I didn't start this fight. But I'm going to finish it.\"\nThis season... justice gets a new name.\n%s.",
		title)
}

// PosterDescription composes a canned poster description for a title.
func (g *Generator) PosterDescription(title string) string {
	return fmt.Sprintf(
		"%s A lone figure walks away from an explosion at dusk, silhouetted against burning wreckage, the title %s in cracked steel lettering across the sky.",
		g.pick(taglines), title)
}

// Concept rolls a complete concept summary.
func (g *Generator) Concept() domain.Concept {
	p := g.ConceptParams()
	return domain.Concept{
		Title: g.Title(),
		Plot:  g.Plot(p),
	}
}

// Concepts rolls n complete concept summaries.
func (g *Generator) Concepts(n int) []domain.Concept {
	if n < 1 {
		n = 1
	}
	concepts := make([]domain.Concept, n)
	for i := range concepts {
		concepts[i] = g.Concept()
	}
	return concepts
}
