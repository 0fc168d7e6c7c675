package docgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"automailer/internal"
	"automailer/internal/config"
)

func testContact() internal.ContactRow {
	return internal.ContactRow{
		Name:         "John & Jane Smith",
		Address:      "123 Main St",
		MailingLines: "123 Main St",
		Zip:          "32960",
		CityStateZip: "Vero Beach, FL 32960",
		SaleDate:     "January 15, 2024",
		SalePrice:    450000,
		Mode:         "personal",
	}
}

func TestRenderLetter(t *testing.T) {
	cfg, _ := config.Load()
	g := NewGenerator(cfg)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	letter := g.RenderLetter(testContact(), DefaultSubject(internal.ModePersonal), "Hello [Name], greetings from [County] County.", now)

	if !strings.Contains(letter, "September 01, 2026") {
		t.Fatalf("missing dateline:\n%s", letter)
	}
	if !strings.Contains(letter, "Dear John & Jane Smith,") {
		t.Fatalf("missing greeting:\n%s", letter)
	}
	if !strings.Contains(letter, "Hello John & Jane Smith, greetings from Indian River County.") {
		t.Fatalf("placeholders not substituted:\n%s", letter)
	}
	if !strings.Contains(letter, cfg.SignerName) || !strings.Contains(letter, cfg.AgencyPhone) {
		t.Fatalf("missing signature block:\n%s", letter)
	}
}

func TestRenderEnvelope(t *testing.T) {
	cfg, _ := config.Load()
	g := NewGenerator(cfg)

	envelope := g.RenderEnvelope(testContact())
	if !strings.Contains(envelope, cfg.SignerName) {
		t.Fatalf("missing return address:\n%s", envelope)
	}
	if !strings.Contains(envelope, "John & Jane Smith") ||
		!strings.Contains(envelope, "123 Main St") ||
		!strings.Contains(envelope, "Vero Beach, FL 32960") {
		t.Fatalf("missing recipient block:\n%s", envelope)
	}
}

func TestEnvelopeAndLabelsUsePropertyAddress(t *testing.T) {
	cfg, _ := config.Load()
	g := NewGenerator(cfg)

	// absentee-owned commercial property: owner mail goes to a PO box, the
	// campaign piece goes to the insured property
	c := internal.ContactRow{
		Name:         "Main Street Deli",
		Address:      "500 Commerce Way",
		MailingLines: "PO Box 4521",
		Zip:          "32960",
		CityStateZip: "Vero Beach, FL 32960",
		Mode:         "commercial",
	}

	envelope := g.RenderEnvelope(c)
	if !strings.Contains(envelope, "500 Commerce Way") {
		t.Fatalf("envelope missing property street:\n%s", envelope)
	}
	if strings.Contains(envelope, "PO Box 4521") {
		t.Fatalf("envelope addressed to the owner mailing box:\n%s", envelope)
	}

	sheet := g.RenderLabels([]internal.ContactRow{c})
	if !strings.Contains(sheet, "500 Commerce Way") || strings.Contains(sheet, "PO Box 4521") {
		t.Fatalf("labels not addressed to the property:\n%s", sheet)
	}
}

func TestRenderLabelsLayout(t *testing.T) {
	cfg, _ := config.Load()
	g := NewGenerator(cfg)

	contacts := make([]internal.ContactRow, 0, 5)
	for i := 0; i < 5; i++ {
		contacts = append(contacts, testContact())
	}
	sheet := g.RenderLabels(contacts)

	lines := strings.Split(sheet, "\n")
	// first line holds the first row of three names side by side
	if strings.Count(lines[0], "John & Jane Smith") != 3 {
		t.Fatalf("expected 3 labels across, got: %q", lines[0])
	}
	if strings.Count(sheet, "John & Jane Smith") != 5 {
		t.Fatalf("expected 5 labels total:\n%s", sheet)
	}
}

func TestWriteCampaignDocs(t *testing.T) {
	cfg, _ := config.Load()
	g := NewGenerator(cfg)

	outputDir := filepath.Join(t.TempDir(), "campaign")
	docs, err := g.WriteCampaignDocs([]internal.ContactRow{testContact()}, internal.ModePersonal, "", "", outputDir)
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{docs.LettersPath, docs.EnvelopesPath, docs.LabelsPath, docs.CRMPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing artifact %s: %v", path, err)
		}
	}

	blob, err := os.ReadFile(docs.LettersPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(blob), DefaultSubject(internal.ModePersonal)) {
		t.Fatal("default subject not applied")
	}
}

func TestCampaignOutputDir(t *testing.T) {
	now := time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)
	got := CampaignOutputDir("out", internal.ModeCommercial, now)
	want := filepath.Join("out", "090126_143000_Commercial_Mailing_Campaign")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
