// Package scorer defines the pronunciation scoring boundary. The remote
// service receives one utterance as WAV audio plus the target word, and
// returns a per-letter breakdown with an overall score in [0,1]. Responses
// are validated and normalized on receipt so the rest of the program only
// ever sees a well-formed Score.
package scorer

import (
	"context"
	"fmt"
	"strings"

	"github.com/hacknao/echotower/internal/types"
)

// LetterScore is the score for a single letter of the target word.
type LetterScore struct {
	Letter string  `json:"letter"`
	Score  float64 `json:"score"`
}

// WordScore is the per-word breakdown inside a scorer response.
type WordScore struct {
	Word    string        `json:"word"`
	Letters []LetterScore `json:"letters"`
}

// Score is a validated pronunciation result. TotalScore is in [0,1].
// MatchedWord is the word the scorer believes it heard, used to detect
// stale responses. Immutable once returned.
type Score struct {
	TotalScore  float64     `json:"total_score"`
	MatchedWord string      `json:"text_refs"`
	Result      []WordScore `json:"result"`
}

// Accuracy returns the total score as a percentage in [0,100].
func (s Score) Accuracy() float64 {
	return s.TotalScore * 100
}

// Matches reports whether the response refers to the given target word.
// The comparison is case-insensitive. An empty MatchedWord is accepted,
// matching scorers that do not echo the word back.
func (s Score) Matches(word string) bool {
	if s.MatchedWord == "" {
		return true
	}
	return strings.EqualFold(s.MatchedWord, word)
}

// ZeroScore builds the fail-safe result for a word: total score 0 with a
// zero entry per letter. Used when no speech was captured or the remote
// scorer failed.
func ZeroScore(word string) Score {
	letters := make([]LetterScore, 0, len(word))
	for _, r := range word {
		letters = append(letters, LetterScore{
			Letter: strings.ToLower(string(r)),
			Score:  0,
		})
	}
	return Score{
		TotalScore:  0,
		MatchedWord: word,
		Result:      []WordScore{{Word: word, Letters: letters}},
	}
}

// normalize validates a decoded response and clamps it into range.
// Malformed responses are rejected as ErrScorerUnavailable so callers can
// fall back to a zero score.
func normalize(s Score) (Score, error) {
	if s.TotalScore < 0 || s.TotalScore > 1 {
		return Score{}, fmt.Errorf("%w: total_score %v out of range", types.ErrScorerUnavailable, s.TotalScore)
	}
	for i := range s.Result {
		for j, l := range s.Result[i].Letters {
			if l.Score < 0 {
				s.Result[i].Letters[j].Score = 0
			} else if l.Score > 1 {
				s.Result[i].Letters[j].Score = 1
			}
		}
	}
	return s, nil
}

// Scorer scores one utterance against a target word. wav is a complete WAV
// file; implementations must respect ctx for cancellation and deadlines.
type Scorer interface {
	Score(ctx context.Context, word string, wav []byte) (Score, error)
}

// Func adapts an ordinary function to the Scorer interface.
type Func func(ctx context.Context, word string, wav []byte) (Score, error)

// Score calls f.
func (f Func) Score(ctx context.Context, word string, wav []byte) (Score, error) {
	return f(ctx, word, wav)
}
