package storage

import (
	"context"
	"errors"
	"net/url"
	"time"

	appreturns "github.com/erp/returns/internal/application/returns"
)

var _ appreturns.EvidenceStorage = (*StubEvidenceStorage)(nil)

// StubEvidenceStorage hands out local URLs without talking to any backend.
// It is used when no bucket is configured.
type StubEvidenceStorage struct {
	BaseURL string
	now     func() time.Time
}

func NewStubEvidenceStorage(baseURL string) *StubEvidenceStorage {
	if baseURL == "" {
		baseURL = "http://localhost:9000/evidence"
	}
	return &StubEvidenceStorage{BaseURL: baseURL, now: time.Now}
}

func (s *StubEvidenceStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	return s.url("upload", storageKey, expiresIn)
}

func (s *StubEvidenceStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return s.url("download", storageKey, expiresIn)
}

func (s *StubEvidenceStorage) url(op, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}
	expiresAt := s.now().Add(expiresIn).UTC().Truncate(time.Second)
	return s.BaseURL + "/" + op + "/" + storageKey + "?expires=" + url.QueryEscape(expiresAt.Format(time.RFC3339)), expiresAt, nil
}
