package util

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffDoubling(t *testing.T) {
	b := NewBackoff(time.Second, 10*time.Second)

	assert.Equal(t, time.Second, b.Next())
	assert.Equal(t, 2*time.Second, b.Next())
	assert.Equal(t, 4*time.Second, b.Next())
	assert.Equal(t, 8*time.Second, b.Next())
	assert.Equal(t, 10*time.Second, b.Next(), "capped at max")
	assert.Equal(t, 10*time.Second, b.Next(), "stays at max")
}

func TestBackoffReset(t *testing.T) {
	b := NewBackoff(time.Second, time.Minute)
	b.Next()
	b.Next()
	require.Equal(t, 4*time.Second, b.Current())

	b.Reset()
	assert.Equal(t, time.Second, b.Current())
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, IsConfigured("a"))
	assert.True(t, IsConfigured("a", "b", "c"))
	assert.True(t, IsConfigured())
	assert.False(t, IsConfigured(""))
	assert.False(t, IsConfigured("a", "", "c"))
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath("log path", "/var/log/echotower/events.log"))
	assert.NoError(t, ValidatePath("log path", "events.log"))

	assert.Error(t, ValidatePath("log path", ""))
	assert.Error(t, ValidatePath("log path", "../events.log"))
	assert.Error(t, ValidatePath("log path", "/var/log/../../etc/passwd"))
	assert.Error(t, ValidatePath("log path", "logs/..hidden/../x"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0s"},
		{45000, "45s"},
		{60000, "1m 0s"},
		{154000, "2m 34s"},
		{3599000, "59m 59s"},
		{4980000, "1h 23m"},
		{7200000, "2h 0m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.ms), "ms=%d", tt.ms)
	}
}

func TestFormatHumanTime(t *testing.T) {
	assert.Equal(t, "unknown", FormatHumanTime(""))
	assert.Equal(t, "unknown", FormatHumanTime("unknown"))
	assert.Equal(t, "garbage", FormatHumanTime("garbage"))

	out := FormatHumanTime("2026-03-01T12:30:00Z")
	assert.Contains(t, out, "2026")
	assert.NotContains(t, out, "T12:30")
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError("read config", nil))

	base := errors.New("permission denied")
	wrapped := WrapError("read config", base)
	require.Error(t, wrapped)
	assert.ErrorIs(t, wrapped, base)
	assert.Contains(t, wrapped.Error(), "failed to read config")
}

func TestExtractLastError(t *testing.T) {
	stderr := "info: starting\nwarn: something\nerror: device busy\n\n"
	assert.Equal(t, "error: device busy", ExtractLastError(stderr))

	assert.Equal(t, "", ExtractLastError("   \n  \n"))

	long := strings.Repeat("x", 250)
	got := ExtractLastError(long)
	assert.Len(t, got, 203)
	assert.True(t, strings.HasSuffix(got, "..."))
}
