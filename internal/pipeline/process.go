package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"automailer/internal"
	"automailer/internal/config"
	"automailer/internal/geo"
	"automailer/internal/storage"
)

type CampaignService struct {
	db  *storage.DB
	cfg config.Config
	log zerolog.Logger
}

func NewCampaignService(db *storage.DB, cfg config.Config, log zerolog.Logger) *CampaignService {
	return &CampaignService{db: db, cfg: cfg, log: log}
}

type RunResult struct {
	CampaignID int64
	Stats      RunStats
}

// RunFromFile ingests a sales export directly from disk and records the
// campaign under sourceRef "file:<path>".
func (s *CampaignService) RunFromFile(inputType, path string, mode internal.Mode, subject string) (RunResult, error) {
	records, err := ExtractRecordsFromInput(inputType, path)
	if err != nil {
		return RunResult{}, err
	}
	return s.runCampaign(records, mode, subject, "file:"+path, nil)
}

func (s *CampaignService) runCampaign(records []internal.RawRecord, mode internal.Mode, subject, sourceRef string, dropID *int) (RunResult, error) {
	start := time.Now()

	assembler, err := s.newAssembler(mode)
	if err != nil {
		return RunResult{}, err
	}

	campaignID, err := s.db.InsertCampaign(mode, subject, sourceRef, dropID)
	if err != nil {
		return RunResult{}, err
	}

	outcomes, stats := assembler.Run(records)
	if err := s.db.SaveOutcomes(campaignID, outcomes); err != nil {
		_ = s.db.UpdateCampaignStatus(campaignID, "failed")
		return RunResult{}, err
	}
	if err := s.db.UpdateCampaignStatus(campaignID, "completed"); err != nil {
		return RunResult{}, err
	}

	counts := map[string]int{"total": stats.Total, "accepted": stats.Accepted}
	for reason, n := range stats.Skipped {
		counts["skipped:"+string(reason)] = n
	}
	_ = s.db.InsertRun(traceID(), campaignID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, counts)

	s.log.Info().
		Int64("campaignId", campaignID).
		Str("mode", string(mode)).
		Int("total", stats.Total).
		Int("accepted", stats.Accepted).
		Msg("campaign completed")

	return RunResult{CampaignID: campaignID, Stats: stats}, nil
}

func (s *CampaignService) newAssembler(mode internal.Mode) (*Assembler, error) {
	clients, err := s.db.ListClients()
	if err != nil {
		return nil, err
	}

	zips, err := s.loadZipTable()
	if err != nil {
		return nil, err
	}

	composer := NewAddressComposer(zips)
	filter := NewFilter(clients, s.cfg.ClientMatchThreshold, s.cfg.OwnerMatchThreshold)
	return NewAssembler(mode, composer, filter, s.cfg.MinNameWords, s.log), nil
}

// loadZipTable prefers imported entries from the database; the CSV file is
// the bootstrap path when zip:import has not run yet.
func (s *CampaignService) loadZipTable() (*geo.ZipTable, error) {
	entries, err := s.db.ListZipEntries()
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return geo.NewZipTable(entries), nil
	}
	if s.cfg.ZipLookupFile != "" {
		if _, statErr := os.Stat(s.cfg.ZipLookupFile); statErr == nil {
			return geo.LoadCSV(s.cfg.ZipLookupFile)
		}
	}
	return geo.NewZipTable(nil), nil
}

type ProcessResult struct {
	DropID     int
	CampaignID int64
	Processed  int
}

func (s *CampaignService) ProcessByProviderMessageID(provider, messageID string, mode internal.Mode) (ProcessResult, error) {
	drop, err := s.db.MustDropByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessDrop(drop, mode)
}

func (s *CampaignService) ProcessPending(limit int, provider string, mode internal.Mode) (int, int, error) {
	pending, err := s.db.ListDropsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processedDrops := 0
	processedRows := 0
	for _, drop := range pending {
		if provider != "" && drop.Provider != provider {
			continue
		}
		res, err := s.ProcessDrop(drop, mode)
		if err != nil {
			return processedDrops, processedRows, err
		}
		processedDrops++
		processedRows += res.Processed
	}
	return processedDrops, processedRows, nil
}

// ProcessDrop parses a stored drop email, decides whether it carries sales
// data, and runs a campaign over the extracted rows.
func (s *CampaignService) ProcessDrop(drop internal.DropRow, mode internal.Mode) (ProcessResult, error) {
	raw, err := os.ReadFile(drop.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	content, err := ExtractRecordsFromDropRaw(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	detect := DetectSalesData(firstNonEmpty(content.Subject, drop.Subject), content.Text, content.HTML, content.AttachmentNames)
	if !detect.IsSalesData || len(content.Records) == 0 {
		_ = s.db.UpdateDropStatus(drop.ID, "skipped")
		s.log.Info().Int("dropId", drop.ID).Str("reason", detect.Reason).Msg("drop skipped")
		return ProcessResult{DropID: drop.ID, Processed: 0}, nil
	}

	// the letter subject line stays empty here so exports fall back to the
	// mode default; the drop email's own subject lives on the drops row
	dropID := drop.ID
	res, err := s.runCampaign(content.Records, mode, "",
		fmt.Sprintf("drop:%s:%s", drop.Provider, drop.MessageID), &dropID)
	if err != nil {
		_ = s.db.UpdateDropStatus(drop.ID, "failed")
		return ProcessResult{}, err
	}

	if err := s.db.UpdateDropStatus(drop.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	return ProcessResult{DropID: drop.ID, CampaignID: res.CampaignID, Processed: res.Stats.Total}, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
