package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/authenticare/location-agent/pkg/file"
	"github.com/authenticare/location-agent/pkg/identity"
	"github.com/authenticare/location-agent/pkg/location"
	"github.com/authenticare/location-agent/pkg/objectstore"
)

// ArchiveService journals accepted samples to a local JSONL file and uploads
// rotated segments to object storage for offline-tolerant history backfill.
type ArchiveService struct {
	JournalFile    string
	RotateInterval time.Duration
	Bucket         string
	Identity       identity.IdentityInterface
	FileClient     file.FileOperations
	Store          objectstore.ObjectStorageClient
	Logger         zerolog.Logger

	samples chan location.Sample
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewArchiveService initializes a new ArchiveService.
func NewArchiveService(journalFile string, rotateInterval time.Duration, bucket string,
	identity identity.IdentityInterface, fileClient file.FileOperations,
	store objectstore.ObjectStorageClient, logger zerolog.Logger) *ArchiveService {
	return &ArchiveService{
		JournalFile:    journalFile,
		RotateInterval: rotateInterval,
		Bucket:         bucket,
		Identity:       identity,
		FileClient:     fileClient,
		Store:          store,
		Logger:         logger,
		samples:        make(chan location.Sample, 64),
	}
}

// Record enqueues an accepted sample for journaling. It never blocks the
// sampling path; the sample is dropped if the queue is full.
func (a *ArchiveService) Record(sample location.Sample) {
	select {
	case a.samples <- sample:
	default:
		a.Logger.Warn().Msg("Journal queue full, dropping sample")
	}
}

// Start verifies the archive bucket and launches the journaling loop.
func (a *ArchiveService) Start() error {
	if a.running {
		a.Logger.Warn().Msg("ArchiveService is already running")
		return errors.New("archive service is already running")
	}

	bucketCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Store.EnsureBucket(bucketCtx, a.Bucket); err != nil {
		return fmt.Errorf("failed to prepare archive bucket: %w", err)
	}

	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.running = true

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.runJournalLoop()
	}()

	a.Logger.Info().
		Str("journal", a.JournalFile).
		Str("bucket", a.Bucket).
		Msg("ArchiveService started")
	return nil
}

// Stop drains the journaling loop and rotates the open segment.
func (a *ArchiveService) Stop() error {
	if !a.running {
		a.Logger.Warn().Msg("ArchiveService is not running")
		return errors.New("archive service is not running")
	}

	a.cancel()
	a.wg.Wait()

	// Drain queued samples, then close out the open segment so a restart
	// does not re-upload old entries.
	for {
		select {
		case sample := <-a.samples:
			a.append(sample)
		default:
			a.rotate()
			a.running = false
			a.Logger.Info().Msg("ArchiveService stopped")
			return nil
		}
	}
}

// runJournalLoop appends queued samples and rotates on a fixed interval.
func (a *ArchiveService) runJournalLoop() {
	ticker := time.NewTicker(a.RotateInterval)
	defer ticker.Stop()

	for {
		select {
		case sample := <-a.samples:
			a.append(sample)
		case <-ticker.C:
			a.rotate()
		case <-a.ctx.Done():
			return
		}
	}
}

// append writes one sample as a JSONL line.
func (a *ArchiveService) append(sample location.Sample) {
	line, err := json.Marshal(sample)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Failed to serialize journal entry")
		return
	}

	if err := a.FileClient.AppendFile(a.JournalFile, append(line, '\n')); err != nil {
		a.Logger.Error().Err(err).Msg("Failed to append journal entry")
	}
}

// rotate closes the current segment and uploads it. A failed upload keeps
// the segment on disk for manual recovery.
func (a *ArchiveService) rotate() {
	exists, err := a.FileClient.IsFileExists(a.JournalFile)
	if err != nil || !exists {
		return
	}

	stamp := time.Now().UTC().Format("20060102T150405Z")
	segmentPath := a.JournalFile + "." + stamp
	if err := os.Rename(a.JournalFile, segmentPath); err != nil {
		a.Logger.Error().Err(err).Msg("Failed to rotate journal")
		return
	}

	hash, err := a.FileClient.GetFileHash(segmentPath)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Failed to hash journal segment")
		return
	}

	objectName := fmt.Sprintf("%s/%s.jsonl", a.Identity.GetUserID(), stamp)
	uploadCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := a.Store.UploadFile(uploadCtx, a.Bucket, objectName, segmentPath, map[string]string{"sha256": hash}); err != nil {
		a.Logger.Error().Err(err).Str("segment", segmentPath).Msg("Failed to upload journal segment")
		return
	}

	if err := os.Remove(segmentPath); err != nil {
		a.Logger.Warn().Err(err).Str("segment", segmentPath).Msg("Failed to remove uploaded segment")
		return
	}

	a.Logger.Info().Str("object", objectName).Msg("Journal segment archived")
}
