package roster

import (
	"context"
	"time"

	"automailer/internal/config"
	"automailer/internal/storage"
)

type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

func (s *SyncService) FullSync(ctx context.Context) (int, error) {
	clients, err := s.client.GetClientsScrollAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.db.UpsertClients(clients); err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata("roster.last_full_sync", time.Now().UTC().Format(time.RFC3339))
	return len(clients), nil
}

func (s *SyncService) IncrementalSync(ctx context.Context, days int) (int, error) {
	clients, err := s.client.GetClientsUpdatedSince(ctx, days)
	if err != nil {
		return 0, err
	}
	if len(clients) > 0 {
		if err := s.db.UpsertClients(clients); err != nil {
			return 0, err
		}
	}
	_ = s.db.SetMetadata("roster.last_incremental_sync", time.Now().UTC().Format(time.RFC3339))
	return len(clients), nil
}
