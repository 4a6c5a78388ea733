package scorer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacknao/echotower/internal/types"
)

func newScorer(t *testing.T, url string) *HTTPScorer {
	t.Helper()
	s, err := NewHTTPScorer(Config{URL: url})
	require.NoError(t, err)
	return s
}

func TestNewHTTPScorerRequiresURL(t *testing.T) {
	_, err := NewHTTPScorer(Config{})
	assert.Error(t, err)
}

func TestScorePostsMultipartAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "CASTLE", r.FormValue("text_refs"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "utterance.wav", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total_score": 0.91,
			"text_refs": "CASTLE",
			"result": [{"word": "CASTLE", "letters": [{"letter": "c", "score": 0.9}]}]
		}`))
	}))
	defer srv.Close()

	sc, err := newScorer(t, srv.URL).Score(context.Background(), "CASTLE", []byte("RIFFdata"))
	require.NoError(t, err)

	assert.Equal(t, 0.91, sc.TotalScore)
	assert.Equal(t, "CASTLE", sc.MatchedWord)
	require.Len(t, sc.Result, 1)
}

func TestScoreEmptyAudio(t *testing.T) {
	s := newScorer(t, "http://localhost:1/score")
	_, err := s.Score(context.Background(), "CASTLE", nil)
	assert.ErrorIs(t, err, types.ErrNoAudioCaptured)
}

func TestScoreServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newScorer(t, srv.URL).Score(context.Background(), "CASTLE", []byte("x"))
	assert.ErrorIs(t, err, types.ErrScorerUnavailable)
}

func TestScoreConnectionRefused(t *testing.T) {
	_, err := newScorer(t, "http://127.0.0.1:1/score").Score(context.Background(), "CASTLE", []byte("x"))
	assert.ErrorIs(t, err, types.ErrScorerUnavailable)
}

func TestScoreTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newScorer(t, srv.URL).Score(ctx, "CASTLE", []byte("x"))
	assert.ErrorIs(t, err, types.ErrScorerTimeout)
}

func TestScoreMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := newScorer(t, srv.URL).Score(context.Background(), "CASTLE", []byte("x"))
	assert.ErrorIs(t, err, types.ErrScorerUnavailable)
}

func TestScoreOutOfRangeTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"total_score": 3.5}`))
	}))
	defer srv.Close()

	_, err := newScorer(t, srv.URL).Score(context.Background(), "CASTLE", []byte("x"))
	assert.ErrorIs(t, err, types.ErrScorerUnavailable)
}
