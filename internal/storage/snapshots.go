// Package storage provides S3 storage integration.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// SnapshotPrefix is the key prefix of board snapshots.
const SnapshotPrefix = "snapshots/"

var (
	// ErrInvalidSnapshot is returned for data that is not a PNG image.
	ErrInvalidSnapshot = errors.New("snapshot is not a png image")
	// ErrInvalidSnapshotID is returned for IDs that are not UUIDs.
	ErrInvalidSnapshotID = errors.New("invalid snapshot id")
)

// S3ClientInterface defines the interface for S3 operations.
type S3ClientInterface interface {
	GetObject(key string) ([]byte, error)
	PutObject(key string, data []byte) error
	ListObjects(prefix string) ([]string, error)
}

// Snapshot is a stored board image.
type Snapshot struct {
	ID  string `json:"id"`
	Key string `json:"key"`
	URL string `json:"url"`
}

// SnapshotStore stores rendered board snapshots.
type SnapshotStore struct {
	client        S3ClientInterface
	cloudfrontURL string
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(client S3ClientInterface, cloudfrontURL string) *SnapshotStore {
	return &SnapshotStore{
		client:        client,
		cloudfrontURL: strings.TrimSuffix(cloudfrontURL, "/"),
	}
}

// UploadSnapshot stores a PNG image and returns where it is served from.
func (s *SnapshotStore) UploadSnapshot(data []byte) (Snapshot, error) {
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		return Snapshot{}, ErrInvalidSnapshot
	}

	snap := s.snapshot(uuid.New().String())
	if err := s.client.PutObject(snap.Key, data); err != nil {
		return Snapshot{}, fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return snap, nil
}

// GetSnapshot returns the PNG bytes of a stored snapshot.
func (s *SnapshotStore) GetSnapshot(id string) ([]byte, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w %q", ErrInvalidSnapshotID, id)
	}

	data, err := s.client.GetObject(s.snapshot(id).Key)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return data, nil
}

// ListSnapshots returns every stored snapshot ordered by key.
func (s *SnapshotStore) ListSnapshots() ([]Snapshot, error) {
	keys, err := s.client.ListObjects(SnapshotPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	sort.Strings(keys)

	snaps := make([]Snapshot, 0, len(keys))
	for _, key := range keys {
		// "snapshots/<id>.png" -> "<id>"
		id := strings.TrimSuffix(strings.TrimPrefix(key, SnapshotPrefix), ".png")
		snaps = append(snaps, s.snapshot(id))
	}
	return snaps, nil
}

func (s *SnapshotStore) snapshot(id string) Snapshot {
	key := SnapshotPrefix + id + ".png"
	return Snapshot{
		ID:  id,
		Key: key,
		URL: fmt.Sprintf("%s/%s", s.cloudfrontURL, key),
	}
}
