package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"automailer/internal"
	"automailer/internal/config"
	"automailer/internal/docgen"
	"automailer/internal/geo"
	"automailer/internal/listener"
	"automailer/internal/logging"
	"automailer/internal/maildrop"
	gmailconnector "automailer/internal/maildrop/gmail"
	imapconnector "automailer/internal/maildrop/imap"
	"automailer/internal/pipeline"
	"automailer/internal/roster"
	"automailer/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log := logging.New()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "campaign:run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "sales data file path")
		inType := fs.String("type", "xlsx", "xlsx|csv|html|pdf")
		mode := fs.String("mode", "personal", "personal|commercial")
		subject := fs.String("subject", "", "letter subject line (default per mode)")
		body := fs.String("body", "", "letter body (default per mode)")
		noDocs := fs.Bool("no-docs", false, "skip rendering letters/envelopes/labels")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		parsedMode, err := internal.ParseMode(*mode)
		must(err)

		svc := pipeline.NewCampaignService(db, cfg, log)
		result, err := svc.RunFromFile(*inType, *input, parsedMode, *subject)
		must(err)
		fmt.Printf("campaign complete id=%d total=%d accepted=%d\n",
			result.CampaignID, result.Stats.Total, result.Stats.Accepted)
		for reason, n := range result.Stats.Skipped {
			fmt.Printf("  skipped %s: %d\n", reason, n)
		}

		if !*noDocs {
			contacts, err := db.GetContacts(result.CampaignID)
			must(err)
			outputDir := docgen.CampaignOutputDir(cfg.OutputDir, parsedMode, time.Now())
			docs, err := docgen.NewGenerator(cfg).WriteCampaignDocs(contacts, parsedMode, *subject, *body, outputDir)
			must(err)
			must(db.UpdateCampaignStatus(result.CampaignID, "exported"))
			fmt.Printf("letters:   %s\n", docs.LettersPath)
			fmt.Printf("envelopes: %s\n", docs.EnvelopesPath)
			fmt.Printf("labels:    %s\n", docs.LabelsPath)
			fmt.Printf("crm:       %s\n", docs.CRMPath)
		}
	case "campaign:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		campaignID := fs.Int64("campaignId", 0, "campaign id")
		out := fs.String("out", "", "output directory (default per-campaign folder)")
		subject := fs.String("subject", "", "letter subject line (default per mode)")
		body := fs.String("body", "", "letter body (default per mode)")
		report := fs.String("report", "", "also write a full row report xlsx to this path")
		_ = fs.Parse(os.Args[2:])
		if *campaignID == 0 {
			must(fmt.Errorf("--campaignId is required"))
		}
		campaign, err := db.GetCampaignByID(*campaignID)
		must(err)
		if campaign == nil {
			must(fmt.Errorf("campaign not found: %d", *campaignID))
		}
		parsedMode, err := internal.ParseMode(campaign.Mode)
		must(err)
		contacts, err := db.GetContacts(*campaignID)
		must(err)
		if len(contacts) == 0 {
			must(fmt.Errorf("no contacts for campaignId=%d", *campaignID))
		}

		outputDir := strings.TrimSpace(*out)
		if outputDir == "" {
			outputDir = docgen.CampaignOutputDir(cfg.OutputDir, parsedMode, time.Now())
		}
		letterSubject := firstNonEmpty(*subject, campaign.Subject)
		docs, err := docgen.NewGenerator(cfg).WriteCampaignDocs(contacts, parsedMode, letterSubject, *body, outputDir)
		must(err)
		must(db.UpdateCampaignStatus(*campaignID, "exported"))
		fmt.Printf("exported %d contacts\n", len(contacts))
		fmt.Printf("letters:   %s\n", docs.LettersPath)
		fmt.Printf("envelopes: %s\n", docs.EnvelopesPath)
		fmt.Printf("labels:    %s\n", docs.LabelsPath)
		fmt.Printf("crm:       %s\n", docs.CRMPath)

		if strings.TrimSpace(*report) != "" {
			rows, err := db.GetReportRows(*campaignID)
			must(err)
			must(pipeline.WriteCampaignReportXLSX(rows, *report))
			fmt.Printf("report written to %s\n", *report)
		}
	case "roster:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", cfg.MasterClientList, "master client list xlsx/csv")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		clients, err := roster.LoadFile(*file)
		must(err)
		must(db.ReplaceClients(clients))
		fmt.Printf("roster import complete: %d clients\n", len(clients))
	case "roster:sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		days := fs.Int("days", 0, "only contacts updated in the last N days (0 = full sync)")
		_ = fs.Parse(os.Args[2:])
		svc := roster.NewSyncService(db, cfg)
		var count int
		if *days > 0 {
			count, err = svc.IncrementalSync(context.Background(), *days)
		} else {
			count, err = svc.FullSync(context.Background())
		}
		must(err)
		fmt.Printf("roster sync complete: %d clients\n", count)
	case "zip:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", cfg.ZipLookupFile, "zip lookup csv (zip,city,state)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		table, err := geo.LoadCSV(*file)
		must(err)
		must(db.ReplaceZipEntries(table.Entries()))
		fmt.Printf("zip import complete: %d entries\n", table.Len())
	case "drop:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := maildrop.NewFetchService(db, cfg.DropRawDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("drop fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "drop:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		mode := fs.String("mode", "personal", "personal|commercial")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		parsedMode, err := internal.ParseMode(*mode)
		must(err)
		svc := pipeline.NewCampaignService(db, cfg, log)
		if strings.TrimSpace(*messageID) != "" {
			res, err := svc.ProcessByProviderMessageID(*provider, *messageID, parsedMode)
			must(err)
			fmt.Printf("processed drop id=%d campaign=%d rows=%d\n", res.DropID, res.CampaignID, res.Processed)
			return
		}
		processedDrops, processedRows, err := svc.ProcessPending(*batch, *provider, parsedMode)
		must(err)
		fmt.Printf("processed pending drops=%d rows=%d\n", processedDrops, processedRows)
	case "drop:listen":
		s := listener.NewService(db, cfg, log)
		must(s.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func makeConnector(cfg config.Config, provider string) (maildrop.Connector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func usage() {
	fmt.Println("usage: automailer <command>")
	fmt.Println("commands:")
	fmt.Println("  campaign:run --input=sales.xlsx [--type=xlsx|csv|html|pdf] [--mode=personal|commercial] [--subject=...] [--body=...] [--no-docs]")
	fmt.Println("  campaign:export --campaignId=1 [--out=dir] [--subject=...] [--body=...] [--report=report.xlsx]")
	fmt.Println("  roster:import [--file=clients.xlsx]")
	fmt.Println("  roster:sync [--days=7]")
	fmt.Println("  zip:import [--file=ziplookup.csv]")
	fmt.Println("  drop:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  drop:process --provider=gmail|imap [--messageId=...] [--mode=personal|commercial] [--batch=20]")
	fmt.Println("  drop:listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
