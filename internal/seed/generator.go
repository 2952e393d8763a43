package seed

import (
	"math/rand/v2"
	"strconv"
	"strings"

	service "github.com/okian/ideaboard/internal/app"
)

var (
	prefixes = []string{"Cloud", "Pocket", "Green", "Quantum", "Hyper", "Open", "Smart", "Tiny", "Urban", "Deep"}
	nouns    = []string{"Garden", "Ledger", "Pantry", "Pilot", "Forge", "Harbor", "Canvas", "Compass", "Beacon", "Loop"}
	verbs    = []string{"Track", "Share", "Rent", "Plan", "Swap", "Repair", "Learn", "Grow", "Split", "Find"}
	objects  = []string{"groceries", "bikes", "tools", "recipes", "study notes", "parking spots", "plants", "chores", "receipts", "playlists"}
	audience = []string{"students", "neighbors", "small shops", "remote teams", "new parents", "pet owners", "runners", "landlords"}
)

// generator produces submission text from word lists.
type generator struct {
	rng *rand.Rand
}

func newGenerator(seed uint64) *generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))} //nolint:gosec // fixture text only
}

func (g *generator) pick(words []string) string {
	return words[g.rng.IntN(len(words))]
}

// submission returns generated form fields. index keeps names distinct.
func (g *generator) submission(index int) service.Submission {
	name := g.pick(prefixes) + g.pick(nouns)
	verb := g.pick(verbs)
	obj := g.pick(objects)
	who := g.pick(audience)

	var desc strings.Builder
	desc.WriteString("An app that helps ")
	desc.WriteString(who)
	desc.WriteString(" ")
	desc.WriteString(strings.ToLower(verb))
	desc.WriteString(" ")
	desc.WriteString(obj)
	desc.WriteString(" without the spreadsheet.")

	return service.Submission{
		StartupName: name + " " + strconv.Itoa(index+1),
		Tagline:     verb + " " + obj + " with " + who,
		Description: desc.String(),
	}
}

// voteTargets picks up to n distinct entries of ids.
func (g *generator) voteTargets(ids []string, n int) []string {
	n = min(n, len(ids))
	out := make([]string, 0, n)
	for _, i := range g.rng.Perm(len(ids))[:n] {
		out = append(out, ids[i])
	}
	return out
}
