package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvMap(t *testing.T, ch chan any) map[string]any {
	t.Helper()
	select {
	case msg := <-ch:
		m, ok := msg.(map[string]any)
		require.True(t, ok, "expected map response, got %T", msg)
		return m
	default:
		t.Fatal("no message on channel")
		return nil
	}
}

func TestDecodeAndValidateAcceptsValidRequest(t *testing.T) {
	send := make(chan any, 4)
	cmd := WSCommand{
		Type: "round/submit-score",
		Data: json.RawMessage(`{"total_score": 0.75, "text_refs": "CASTLE"}`),
	}

	var req SubmitScoreRequest
	require.True(t, DecodeAndValidate(cmd, send, &req))
	assert.Equal(t, 0.75, req.TotalScore)
	assert.Equal(t, "CASTLE", req.TextRefs)
	assert.Empty(t, send)
}

func TestDecodeAndValidateRejectsInvalidJSON(t *testing.T) {
	send := make(chan any, 4)
	cmd := WSCommand{Type: "round/submit-score", Data: json.RawMessage(`{broken`)}

	var req SubmitScoreRequest
	require.False(t, DecodeAndValidate(cmd, send, &req))

	resp := recvMap(t, send)
	assert.Equal(t, "round/submit-score_result", resp["type"])
	assert.Equal(t, false, resp["success"])
}

func TestDecodeAndValidateRejectsOutOfRangeScore(t *testing.T) {
	send := make(chan any, 4)
	cmd := WSCommand{
		Type: "round/submit-score",
		Data: json.RawMessage(`{"total_score": 1.5}`),
	}

	var req SubmitScoreRequest
	require.False(t, DecodeAndValidate(cmd, send, &req))

	resp := recvMap(t, send)
	assert.Equal(t, false, resp["success"])
	assert.NotNil(t, resp["error"])
}

func TestValidationUsesJSONFieldNames(t *testing.T) {
	send := make(chan any, 4)
	cmd := WSCommand{
		Type: "vad/update",
		Data: json.RawMessage(`{"margin_db": 99}`),
	}

	var req VADUpdateRequest
	require.False(t, DecodeAndValidate(cmd, send, &req))

	resp := recvMap(t, send)
	raw, err := json.Marshal(resp["error"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "margin_db")
}

func TestRoundUpdateValidatesTimeBounds(t *testing.T) {
	send := make(chan any, 4)
	cmd := WSCommand{
		Type: "round/update",
		Data: json.RawMessage(`{"round_time_ms": 500}`),
	}

	var req RoundUpdateRequest
	require.False(t, DecodeAndValidate(cmd, send, &req))

	resp := recvMap(t, send)
	assert.Equal(t, false, resp["success"])
	raw, err := json.Marshal(resp["error"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "round_time_ms")
}

func TestRoundUpdateAcceptsPartialBody(t *testing.T) {
	send := make(chan any, 4)
	cmd := WSCommand{
		Type: "round/update",
		Data: json.RawMessage(`{"auto_start": false}`),
	}

	var req RoundUpdateRequest
	require.True(t, DecodeAndValidate(cmd, send, &req))
	assert.Nil(t, req.RoundTimeMs)
	require.NotNil(t, req.AutoStart)
	assert.False(t, *req.AutoStart)
}

func TestHandleCommandSuccessAndFailure(t *testing.T) {
	send := make(chan any, 4)
	cmd := WSCommand{Type: "audio/update", Data: json.RawMessage(`{"input": "hw:1,0"}`)}

	HandleCommand(nil, cmd, send, func(req *AudioUpdateRequest) error {
		assert.Equal(t, "hw:1,0", req.Input)
		return nil
	})
	resp := recvMap(t, send)
	assert.Equal(t, true, resp["success"])

	HandleCommand(nil, cmd, send, func(*AudioUpdateRequest) error {
		return assert.AnError
	})
	resp = recvMap(t, send)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, assert.AnError.Error(), resp["error"])
}

func TestSendSuccessIncludesData(t *testing.T) {
	send := make(chan any, 1)
	SendSuccess(send, "words/list", map[string]int{"count": 3})

	resp := recvMap(t, send)
	assert.Equal(t, "words/list_result", resp["type"])
	assert.Equal(t, true, resp["success"])
	assert.NotNil(t, resp["data"])
}

func TestTrySendDropsWhenFull(t *testing.T) {
	send := make(chan any, 1)
	send <- "occupied"

	// Must not block.
	SendError(send, "game/start", assert.AnError)
	assert.Len(t, send, 1)
}

func TestFormatValidationMessages(t *testing.T) {
	send := make(chan any, 4)
	cmd := WSCommand{
		Type: "scorer/update",
		Data: json.RawMessage(`{"url": "not a url"}`),
	}

	var req ScorerUpdateRequest
	require.False(t, DecodeAndValidate(cmd, send, &req))

	resp := recvMap(t, send)
	raw, err := json.Marshal(resp["error"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "must be a valid URL")
}
