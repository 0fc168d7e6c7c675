// Package docgen renders the print artifacts of a campaign: one letter per
// contact, matching envelopes, and 3-across label sheets. Output is plain
// text with form feeds between pages so any word processor or print driver
// can consume it.
package docgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"automailer/internal"
	"automailer/internal/config"
	"automailer/internal/pipeline"
)

const pageBreak = "\f"

const (
	labelsPerRow  = 3
	labelColWidth = 34
	labelRowsPage = 10
)

type Generator struct {
	cfg config.Config
}

func NewGenerator(cfg config.Config) *Generator {
	return &Generator{cfg: cfg}
}

func DefaultSubject(mode internal.Mode) string {
	if mode == internal.ModeCommercial {
		return "Protect Your Business with Tailored Insurance Solutions!"
	}
	return "Homeowners Insurance Rates Are Finally on the Decline – Don’t Miss Out!"
}

func DefaultBody(mode internal.Mode) string {
	if mode == internal.ModeCommercial {
		return "Protecting your business is our priority at Jones Insurance Advisors.\n\n" +
			"As an Indian River County business, you need insurance solutions tailored to your unique needs. " +
			"Our experienced team specializes in crafting comprehensive coverage plans for businesses like yours, " +
			"ensuring protection against risks while keeping costs competitive.\n\n" +
			"Jones Insurance Advisors, a family-owned agency in Vero Beach, is here to help. " +
			"Contact us for a free consultation to discuss how we can safeguard your business.\n\n" +
			"We look forward to partnering with you!\n\n" +
			"Best Regards,"
	}
	return "For the first time in years, homeowners rates are coming down — and the savings could be significant.\n\n" +
		"Recent legislative changes have boosted competition in Florida’s property insurance market, " +
		"and many Indian River County homeowners are already benefiting.\n\n" +
		"Jones Insurance Advisors is a two-generation, family-owned independent agency located right here in Vero Beach. " +
		"Our team of dedicated agents possess extensive knowledge of the intricacies of the local insurance market, " +
		"and are excited to assist you in finding the most comprehensive and competitively priced insurance solutions.\n\n" +
		"Call us today for a free, no-obligation quote, or visit our website below and complete a quote request, " +
		"and one of our dedicated agents will reach out to you!\n\n" +
		"We look forward to earning your business and providing you the personal, dedicated service you have come to " +
		"expect by doing business locally.\n\n" +
		"Warm Regards,"
}

// CampaignOutputDir names the per-run folder, e.g.
// "090126_143000_Personal_Mailing_Campaign".
func CampaignOutputDir(root string, mode internal.Mode, now time.Time) string {
	label := "Personal"
	if mode == internal.ModeCommercial {
		label = "Commercial"
	}
	return filepath.Join(root, fmt.Sprintf("%s_%s_Mailing_Campaign", now.Format("010206_150405"), label))
}

type CampaignDocs struct {
	LettersPath   string
	EnvelopesPath string
	LabelsPath    string
	CRMPath       string
}

// WriteCampaignDocs renders every print artifact plus the CRM import file
// into outputDir.
func (g *Generator) WriteCampaignDocs(contacts []internal.ContactRow, mode internal.Mode, subject, body, outputDir string) (CampaignDocs, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return CampaignDocs{}, err
	}

	if subject == "" {
		subject = DefaultSubject(mode)
	}
	if body == "" {
		body = DefaultBody(mode)
	}

	docs := CampaignDocs{
		LettersPath:   filepath.Join(outputDir, "all_letters.txt"),
		EnvelopesPath: filepath.Join(outputDir, "all_envelopes.txt"),
		LabelsPath:    filepath.Join(outputDir, "mailing_labels.txt"),
		CRMPath:       filepath.Join(outputDir, fmt.Sprintf("crm_%s_occupied.csv", mode)),
	}

	now := time.Now()

	var letters []string
	var envelopes []string
	for _, c := range contacts {
		letters = append(letters, g.RenderLetter(c, subject, body, now))
		envelopes = append(envelopes, g.RenderEnvelope(c))
	}

	if err := os.WriteFile(docs.LettersPath, []byte(strings.Join(letters, pageBreak)), 0o644); err != nil {
		return CampaignDocs{}, err
	}
	if err := os.WriteFile(docs.EnvelopesPath, []byte(strings.Join(envelopes, pageBreak)), 0o644); err != nil {
		return CampaignDocs{}, err
	}
	if err := os.WriteFile(docs.LabelsPath, []byte(g.RenderLabels(contacts)), 0o644); err != nil {
		return CampaignDocs{}, err
	}
	if err := pipeline.WriteCRMCSV(contacts, mode, docs.CRMPath); err != nil {
		return CampaignDocs{}, err
	}

	return docs, nil
}

// RenderLetter produces one dated letter. [Name] and [County] in the body
// are replaced per contact; the county falls back to Indian River when the
// city line carries no county name.
func (g *Generator) RenderLetter(c internal.ContactRow, subject, body string, now time.Time) string {
	county := pipeline.County(c.CityStateZip)
	personalized := strings.NewReplacer("[Name]", c.Name, "[County]", county).Replace(body)

	var b strings.Builder
	b.WriteString("\n\n\n\n")
	b.WriteString(now.Format("January 02, 2006"))
	b.WriteString("\n\n\n")
	fmt.Fprintf(&b, "Dear %s,\n\n", c.Name)
	b.WriteString(subject)
	b.WriteString("\n\n")
	b.WriteString(personalized)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s\n%s\n%s\n%s\n%s\n",
		g.cfg.SignerName, g.cfg.SignerTitle, g.cfg.SignerEmail, g.cfg.AgencyPhone, g.cfg.AgencyWebsite)
	return b.String()
}

func (g *Generator) RenderEnvelope(c internal.ContactRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", g.cfg.SignerName, g.cfg.AgencyAddress)
	b.WriteString("\n\n\n")

	indent := strings.Repeat(" ", 20)
	for _, line := range addressBlock(c) {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderLabels lays contacts out three across on letter-sized sheets, ten
// rows per page, for standard 1" x 2 5/8" label stock.
func (g *Generator) RenderLabels(contacts []internal.ContactRow) string {
	var pages []string
	var page strings.Builder
	rowsOnPage := 0

	for start := 0; start < len(contacts); start += labelsPerRow {
		end := start + labelsPerRow
		if end > len(contacts) {
			end = len(contacts)
		}

		blocks := make([][]string, 0, labelsPerRow)
		height := 0
		for _, c := range contacts[start:end] {
			block := addressBlock(c)
			if len(block) > height {
				height = len(block)
			}
			blocks = append(blocks, block)
		}

		for line := 0; line < height; line++ {
			for _, block := range blocks {
				cell := ""
				if line < len(block) {
					cell = block[line]
				}
				if len(cell) > labelColWidth-2 {
					cell = cell[:labelColWidth-2]
				}
				page.WriteString(fmt.Sprintf("%-*s", labelColWidth, cell))
			}
			page.WriteString("\n")
		}
		page.WriteString("\n")

		rowsOnPage++
		if rowsOnPage == labelRowsPage {
			pages = append(pages, page.String())
			page.Reset()
			rowsOnPage = 0
		}
	}

	if page.Len() > 0 {
		pages = append(pages, page.String())
	}
	return strings.Join(pages, pageBreak)
}

// addressBlock is the recipient block shared by envelopes and labels: owner
// name, property street, city/state/zip. Campaign mail goes to the insured
// property, never to the owner's mailing address.
func addressBlock(c internal.ContactRow) []string {
	lines := []string{c.Name}
	if strings.TrimSpace(c.Address) != "" {
		lines = append(lines, c.Address)
	}
	if strings.TrimSpace(c.CityStateZip) != "" {
		lines = append(lines, c.CityStateZip)
	}
	return lines
}
