package maildrop

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"automailer/internal"
	"automailer/internal/storage"
)

// StoreService writes each fetched drop to disk content-addressed by its
// sha256 and records it in the drops table. Refetching the same message is
// a no-op on disk and an update in the database.
type StoreService struct {
	db         *storage.DB
	dropRawDir string
}

func NewStoreService(db *storage.DB, dropRawDir string) *StoreService {
	return &StoreService{db: db, dropRawDir: dropRawDir}
}

func (s *StoreService) Store(msg internal.FetchedMailMessage) (internal.DropRow, error) {
	hashBytes := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.dropRawDir, 0o755); err != nil {
		return internal.DropRow{}, err
	}

	rawPath := filepath.Join(s.dropRawDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.DropRow{}, err
		}
	}

	return s.db.UpsertDrop(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, "fetched")
}

type FetchService struct {
	db        *storage.DB
	connector Connector
	store     *StoreService
}

type FetchResult struct {
	Fetched int
	Stored  int
}

func NewFetchService(db *storage.DB, dropRawDir string, connector Connector) *FetchService {
	return &FetchService{
		db:        db,
		connector: connector,
		store:     NewStoreService(db, dropRawDir),
	}
}

func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	stored := 0
	for _, msg := range messages {
		if _, err := s.store.Store(msg); err != nil {
			return FetchResult{}, err
		}
		stored++
	}

	return FetchResult{Fetched: len(messages), Stored: stored}, nil
}
