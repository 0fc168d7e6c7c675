package listener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"automailer/internal"
	"automailer/internal/config"
	"automailer/internal/docgen"
	"automailer/internal/maildrop"
	gmailconnector "automailer/internal/maildrop/gmail"
	imapconnector "automailer/internal/maildrop/imap"
	"automailer/internal/pipeline"
	"automailer/internal/storage"
)

// Service polls the drop mailbox on an interval: fetch new drops, run
// campaigns over the pending ones, and optionally render the print
// artifacts for each completed campaign.
type Service struct {
	db  *storage.DB
	cfg config.Config
	log zerolog.Logger
}

func NewService(db *storage.DB, cfg config.Config, log zerolog.Logger) *Service {
	return &Service{db: db, cfg: cfg, log: log}
}

// RunOnce performs a single fetch/process/export pass. The poll loop in Run
// calls it between sleeps; the CLI exposes it for cron-driven deployments.
func (s *Service) RunOnce(ctx context.Context) error {
	return s.runCycle(ctx)
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			s.log.Error().Err(err).Msg("listener cycle error")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.DropListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.DropListenerProvider))
	connector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := maildrop.NewFetchService(s.db, s.cfg.DropRawDir, connector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.DropListenerLabel, s.cfg.DropListenerFetchMax)
	if err != nil {
		return err
	}

	mode, err := internal.ParseMode(s.cfg.DropListenerMode)
	if err != nil {
		return err
	}

	campaigns := pipeline.NewCampaignService(s.db, s.cfg, s.log)
	processedDrops, processedRows, err := campaigns.ProcessPending(s.cfg.DropListenerProcessBatch, provider, mode)
	if err != nil {
		return err
	}

	if s.cfg.DropListenerAutoExport {
		if err := s.exportCompleted(); err != nil {
			return err
		}
	}

	s.log.Info().
		Str("provider", provider).
		Int("fetched", fetchResult.Fetched).
		Int("stored", fetchResult.Stored).
		Int("drops", processedDrops).
		Int("rows", processedRows).
		Msg("listener cycle done")
	_ = ctx
	return nil
}

func (s *Service) exportCompleted() error {
	campaigns, err := s.db.ListCampaignsByStatus("completed", 200)
	if err != nil {
		return err
	}

	generator := docgen.NewGenerator(s.cfg)
	for _, campaign := range campaigns {
		if campaign.DropID == nil {
			continue
		}
		contacts, err := s.db.GetContacts(int64(campaign.ID))
		if err != nil {
			return err
		}
		if len(contacts) == 0 {
			_ = s.db.UpdateCampaignStatus(int64(campaign.ID), "exported")
			continue
		}

		mode, err := internal.ParseMode(campaign.Mode)
		if err != nil {
			return err
		}
		outputDir := docgen.CampaignOutputDir(s.cfg.OutputDir, mode, time.Now())
		docs, err := generator.WriteCampaignDocs(contacts, mode, campaign.Subject, "", outputDir)
		if err != nil {
			return err
		}
		if err := s.db.UpdateCampaignStatus(int64(campaign.ID), "exported"); err != nil {
			return err
		}
		s.log.Info().Int("campaignId", campaign.ID).Str("letters", docs.LettersPath).Msg("campaign exported")
	}
	return nil
}

func (s *Service) makeConnector(provider string) (maildrop.Connector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
