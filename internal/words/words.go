// Package words holds the pronunciation word table and the selection logic
// that picks a target word for each round.
package words

// WordType classifies a word grammatically. Display only.
type WordType string

const (
	Noun      WordType = "n"
	Verb      WordType = "v"
	Adjective WordType = "adj"
)

// Word is one entry in the pronunciation table. Difficulty runs 1 to 10.
type Word struct {
	Word       string   `json:"word"`
	Difficulty int      `json:"diff"`
	Syllables  int      `json:"syllables"`
	Type       WordType `json:"type"`
}

// DifficultyForFloor maps a tower floor to the highest word difficulty
// allowed on it. Floors 1-2 allow difficulty 1, the cap rises by one every
// two floors and tops out at 10.
func DifficultyForFloor(floor int) int {
	d := floor/2 + 1
	if d > 10 {
		d = 10
	}
	return d
}

// AtOrBelow returns all words with difficulty at or below the given cap.
func AtOrBelow(difficulty int) []Word {
	out := make([]Word, 0, len(table))
	for _, w := range table {
		if w.Difficulty <= difficulty {
			out = append(out, w)
		}
	}
	return out
}

// All returns the full word table.
func All() []Word {
	out := make([]Word, len(table))
	copy(out, table)
	return out
}

var table = []Word{
	// Difficulty 1: short common nouns
	{"CAT", 1, 1, Noun},
	{"DOG", 1, 1, Noun},
	{"BOOK", 1, 1, Noun},
	{"DOOR", 1, 1, Noun},
	{"TREE", 1, 1, Noun},
	{"FISH", 1, 1, Noun},
	{"BIRD", 1, 1, Noun},
	{"HOUSE", 1, 1, Noun},

	// Difficulty 2: two-syllable everyday words
	{"APPLE", 2, 2, Noun},
	{"WATER", 2, 2, Noun},
	{"HAPPY", 2, 2, Adjective},
	{"MONEY", 2, 2, Noun},
	{"PAPER", 2, 2, Noun},
	{"FLOWER", 2, 2, Noun},
	{"WINDOW", 2, 2, Noun},
	{"MOTHER", 2, 2, Noun},

	// Difficulty 3: action words
	{"RUN", 3, 1, Verb},
	{"JUMP", 3, 1, Verb},
	{"WALK", 3, 1, Verb},
	{"SLEEP", 3, 1, Verb},
	{"STUDY", 3, 2, Verb},
	{"LISTEN", 3, 2, Verb},
	{"TRAVEL", 3, 2, Verb},
	{"ANSWER", 3, 2, Verb},

	// Difficulty 4: longer common nouns
	{"TOWER", 4, 2, Noun},
	{"GARDEN", 4, 2, Noun},
	{"KITCHEN", 4, 2, Noun},
	{"PICTURE", 4, 2, Noun},
	{"COMPUTER", 4, 3, Noun},
	{"ELEPHANT", 4, 3, Noun},
	{"HOSPITAL", 4, 3, Noun},
	{"UMBRELLA", 4, 3, Noun},

	// Difficulty 5: less common words
	{"BEAM", 5, 1, Noun},
	{"MAGIC", 5, 2, Noun},
	{"CASTLE", 5, 2, Noun},
	{"DRAGON", 5, 2, Noun},
	{"FOREST", 5, 2, Noun},
	{"CRYSTAL", 5, 2, Noun},
	{"ADVENTURE", 5, 3, Noun},
	{"MYSTERY", 5, 3, Noun},

	// Difficulty 6: fantasy vocabulary
	{"WIZARD", 6, 2, Noun},
	{"KNIGHT", 6, 1, Noun},
	{"POTION", 6, 2, Noun},
	{"TREASURE", 6, 2, Noun},
	{"KINGDOM", 6, 2, Noun},
	{"WARRIOR", 6, 3, Noun},
	{"ENCHANTED", 6, 3, Adjective},
	{"POWERFUL", 6, 3, Adjective},

	// Difficulty 7: three-plus syllables
	{"PHANTOM", 7, 2, Noun},
	{"SORCERER", 7, 3, Noun},
	{"LEGENDARY", 7, 4, Adjective},
	{"DANGEROUS", 7, 3, Adjective},
	{"INVISIBLE", 7, 4, Adjective},
	{"MYSTERIOUS", 7, 4, Adjective},
	{"ADVENTURE", 7, 3, Noun},
	{"CHAMPION", 7, 3, Noun},

	// Difficulty 8: advanced
	{"BEAUTIFUL", 8, 3, Adjective},
	{"INCREDIBLE", 8, 4, Adjective},
	{"MAGNIFICENT", 8, 4, Adjective},
	{"SPECTACULAR", 8, 4, Adjective},
	{"FASCINATING", 8, 4, Adjective},
	{"IMAGINATION", 8, 5, Noun},
	{"CELEBRATION", 8, 4, Noun},
	{"TRANSFORMATION", 8, 4, Noun},

	// Difficulty 9: very advanced
	{"EXTRAORDINARY", 9, 5, Adjective},
	{"UNBELIEVABLE", 9, 5, Adjective},
	{"REVOLUTIONARY", 9, 6, Adjective},
	{"INCOMPREHENSIBLE", 9, 6, Adjective},
	{"RESPONSIBILITY", 9, 6, Noun},
	{"COMMUNICATION", 9, 5, Noun},
	{"PRONUNCIATION", 9, 5, Noun},
	{"DETERMINATION", 9, 5, Noun},

	// Difficulty 10: extremely challenging
	{"COMPLICATED", 10, 4, Adjective},
	{"SOPHISTICATED", 10, 5, Adjective},
	{"INCOMPARABLE", 10, 5, Adjective},
	{"INDESCRIBABLE", 10, 5, Adjective},
	{"CHARACTERIZATION", 10, 6, Noun},
	{"INTERNATIONALIZATION", 10, 8, Noun},
	{"INCOMPREHENSIBILITY", 10, 8, Noun},
	{"ANTIDISESTABLISHMENTARIANISM", 10, 12, Noun},
}
