package words

import (
	"math/rand"
	"sync"
)

// maxRecent caps the recently-used list.
const maxRecent = 10

// Picker selects round words while avoiding recent repeats. A picked word
// goes to the front of the recent list, which is trimmed to at most ten
// entries and never more than half of the words available at the current
// difficulty. When every candidate is recent the filter is dropped rather
// than failing the pick.
type Picker struct {
	mu     sync.Mutex
	rng    *rand.Rand
	recent []string
}

// NewPicker creates a picker drawing from the given random source.
func NewPicker(rng *rand.Rand) *Picker {
	return &Picker{rng: rng}
}

// Pick returns a word for the given floor.
func (p *Picker) Pick(floor int) Word {
	p.mu.Lock()
	defer p.mu.Unlock()

	available := AtOrBelow(DifficultyForFloor(floor))
	candidates := available[:0:0]
	for _, w := range available {
		if !p.isRecent(w.Word) {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		candidates = available
	}

	selected := candidates[p.rng.Intn(len(candidates))]
	p.remember(selected.Word, len(available))
	return selected
}

// Reset clears the recently-used list for a new game.
func (p *Picker) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recent = nil
}

func (p *Picker) isRecent(word string) bool {
	for _, r := range p.recent {
		if r == word {
			return true
		}
	}
	return false
}

func (p *Picker) remember(word string, available int) {
	updated := make([]string, 0, len(p.recent)+1)
	updated = append(updated, word)
	for _, r := range p.recent {
		if r != word {
			updated = append(updated, r)
		}
	}

	limit := available / 2
	if limit > maxRecent {
		limit = maxRecent
	}
	if len(updated) > limit {
		updated = updated[:limit]
	}
	p.recent = updated
}
