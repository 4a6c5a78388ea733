package recording

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	apptypes "github.com/hacknao/echotower/internal/types"
	"github.com/hacknao/echotower/internal/util"
)

// uploadQueueSize bounds how many finished utterances may wait for upload.
const uploadQueueSize = 100

// uploadRequest represents one utterance WAV ready for S3 upload.
type uploadRequest struct {
	key  string
	data []byte
}

// Archiver uploads finished utterance recordings to S3-compatible storage
// for later review. Uploads are fire-and-forget with bounded retry: a failed
// upload never affects the round that produced it.
type Archiver struct {
	mu sync.RWMutex

	config   S3Config
	client   *s3.Client
	queue    chan uploadRequest
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	lastErr  string
	uploaded int
}

// NewArchiver creates an archiver with the given storage configuration.
// The upload worker starts lazily on the first Archive call.
func NewArchiver(cfg S3Config) *Archiver {
	return &Archiver{
		config: cfg,
		queue:  make(chan uploadRequest, uploadQueueSize),
	}
}

// UpdateConfig replaces the storage configuration. The cached client is
// recreated on the next upload.
func (a *Archiver) UpdateConfig(cfg S3Config) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.config = cfg
	a.client = nil
}

// Enabled reports whether archival is configured.
func (a *Archiver) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config.IsConfigured()
}

// Status returns upload statistics for the UI.
func (a *Archiver) Status() (uploaded int, lastErr string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.uploaded, a.lastErr
}

// Archive queues one utterance WAV for upload. sessionID and word become part
// of the object key. A full queue drops the utterance with a warning rather
// than blocking the round pipeline.
func (a *Archiver) Archive(sessionID, word string, wav []byte) {
	if !a.Enabled() || len(wav) == 0 {
		return
	}
	a.ensureWorker()

	key := fmt.Sprintf("utterances/%s/%s-%d.wav", sessionID, word, time.Now().UnixMilli())
	select {
	case a.queue <- uploadRequest{key: key, data: wav}:
		slog.Debug("queued utterance for archive", "key", key, "bytes", len(wav))
	default:
		slog.Warn("archive queue full, dropping utterance", "key", key)
	}
}

// Stop drains the worker. Safe to call without a running worker.
func (a *Archiver) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.stopCh)
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *Archiver) ensureWorker() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}
	a.running = true
	a.stopCh = make(chan struct{})
	a.wg.Add(1)
	go a.uploadWorker(a.stopCh)
}

// uploadWorker uploads queued utterances, retrying with exponential backoff.
func (a *Archiver) uploadWorker(stop <-chan struct{}) {
	defer a.wg.Done()

	backoff := util.NewBackoff(apptypes.InitialRetryDelay, apptypes.MaxRetryDelay)

	for {
		select {
		case <-stop:
			return
		case req := <-a.queue:
			for {
				err := a.upload(req)
				if err == nil {
					backoff.Reset()
					a.mu.Lock()
					a.uploaded++
					a.lastErr = ""
					a.mu.Unlock()
					break
				}

				a.mu.Lock()
				a.lastErr = err.Error()
				a.mu.Unlock()
				slog.Warn("utterance upload failed, will retry", "key", req.key, "error", err)

				select {
				case <-stop:
					return
				case <-time.After(backoff.Next()):
				}
			}
		}
	}
}

// upload performs one S3 PutObject attempt.
func (a *Archiver) upload(req uploadRequest) error {
	client, bucket, err := a.getClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30000*time.Millisecond)
	defer cancel()

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(req.key),
		Body:          bytes.NewReader(req.data),
		ContentLength: aws.Int64(int64(len(req.data))),
		ContentType:   aws.String("audio/wav"),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", req.key, err)
	}

	slog.Info("utterance archived", "key", req.key, "bytes", len(req.data))
	return nil
}

// getClient returns the cached S3 client, creating it if needed.
func (a *Archiver) getClient() (*s3.Client, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.config.IsConfigured() {
		return nil, "", fmt.Errorf("S3 is not configured")
	}
	if a.client == nil {
		client, err := createS3Client(&a.config)
		if err != nil {
			return nil, "", fmt.Errorf("create S3 client: %w", err)
		}
		a.client = client
	}
	return a.client, a.config.Bucket, nil
}
