package recording

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configuredS3() S3Config {
	return S3Config{
		Endpoint:        "http://127.0.0.1:1",
		Bucket:          "utterances",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	}
}

func TestS3ConfigIsConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want bool
	}{
		{"complete", configuredS3(), true},
		{"complete without endpoint", S3Config{Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s"}, true},
		{"empty", S3Config{}, false},
		{"missing bucket", S3Config{AccessKeyID: "k", SecretAccessKey: "s"}, false},
		{"missing secret", S3Config{Bucket: "b", AccessKeyID: "k"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.IsConfigured())
		})
	}
}

func TestArchiverDisabledByDefault(t *testing.T) {
	a := NewArchiver(S3Config{})
	assert.False(t, a.Enabled())

	// No worker must start for a disabled archiver.
	a.Archive("session-1", "CASTLE", []byte("wav data"))
	assert.Empty(t, a.queue)
	a.Stop()
}

func TestArchiverIgnoresEmptyUtterance(t *testing.T) {
	a := NewArchiver(configuredS3())
	defer a.Stop()

	a.Archive("session-1", "CASTLE", nil)

	a.mu.RLock()
	running := a.running
	a.mu.RUnlock()
	assert.False(t, running)
}

func TestArchiverQueuesUtterance(t *testing.T) {
	a := NewArchiver(configuredS3())
	// Keep the worker from draining the queue so the entry is observable.
	a.mu.Lock()
	a.running = true
	a.stopCh = make(chan struct{})
	a.mu.Unlock()
	defer close(a.stopCh)

	a.Archive("session-1", "CASTLE", []byte("wav data"))

	require.Len(t, a.queue, 1)
	req := <-a.queue
	assert.True(t, strings.HasPrefix(req.key, "utterances/session-1/CASTLE-"), "key %q", req.key)
	assert.True(t, strings.HasSuffix(req.key, ".wav"))
	assert.Equal(t, []byte("wav data"), req.data)
}

func TestArchiverDropsWhenQueueFull(t *testing.T) {
	a := NewArchiver(configuredS3())
	a.mu.Lock()
	a.running = true
	a.stopCh = make(chan struct{})
	a.mu.Unlock()
	defer close(a.stopCh)

	for i := 0; i < uploadQueueSize+5; i++ {
		a.Archive("session-1", "CASTLE", []byte("wav"))
	}
	assert.Len(t, a.queue, uploadQueueSize)
}

func TestUpdateConfigTogglesEnabled(t *testing.T) {
	a := NewArchiver(S3Config{})
	assert.False(t, a.Enabled())

	a.UpdateConfig(configuredS3())
	assert.True(t, a.Enabled())

	a.UpdateConfig(S3Config{})
	assert.False(t, a.Enabled())
}

func TestStatusReflectsState(t *testing.T) {
	a := NewArchiver(configuredS3())
	uploaded, lastErr := a.Status()
	assert.Zero(t, uploaded)
	assert.Empty(t, lastErr)
}

func TestStopWithoutWorker(t *testing.T) {
	a := NewArchiver(configuredS3())
	a.Stop()
	a.Stop()
}

func TestS3ConnectionRequiresConfig(t *testing.T) {
	err := TestS3Connection(&S3Config{})
	assert.ErrorContains(t, err, "not configured")
}
