package internal

import "fmt"

type Mode string

const (
	ModePersonal   Mode = "personal"
	ModeCommercial Mode = "commercial"
)

func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModePersonal, ModeCommercial:
		return Mode(value), nil
	default:
		return "", fmt.Errorf("mode must be 'personal' or 'commercial', got %q", value)
	}
}

type RecordSource string

const (
	SourceXLSX      RecordSource = "xlsx"
	SourceCSV       RecordSource = "csv"
	SourceHTMLTable RecordSource = "html_table"
	SourcePDF       RecordSource = "pdf"
)

// RawRecord is one input row as delivered by a vendor: header-keyed values
// with no schema guarantees. Column names drift between vendors and vintages.
type RawRecord struct {
	RowNo  int
	Source RecordSource
	Fields map[string]string
	Meta   map[string]any
}

// OwnerName is one party on a record after cleaning. Surname may be empty
// for a lone given name.
type OwnerName struct {
	Surname string
	Given   string
}

type PersonName struct {
	Owners  []OwnerName
	Display string
}

// CanonicalAddress carries the structured mailing address. Lines holds the
// street components in order; CityStateZip is the composed display line.
// Downstream consumers never re-split strings, they read the parts.
type CanonicalAddress struct {
	Lines        []string
	City         string
	State        string
	Zip          string
	ZipRaw       string
	CityStateZip string
}

// Parts returns every component the owner-occupied check compares against.
func (a CanonicalAddress) Parts() []string {
	out := make([]string, 0, len(a.Lines)+1)
	out = append(out, a.Lines...)
	if a.CityStateZip != "" {
		out = append(out, a.CityStateZip)
	}
	return out
}

// Display joins the components for persistence and roster comparison.
func (a CanonicalAddress) Display() string {
	parts := a.Parts()
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += " | " + p
	}
	return out
}

type SkipReason string

const (
	SkipMissingName      SkipReason = "missing-name"
	SkipInsufficientName SkipReason = "insufficient-name"
	SkipExistingClient   SkipReason = "existing-client"
	SkipNotOwnerOccupied SkipReason = "non-owner-occupied"
	SkipBusinessType     SkipReason = "invalid-business-type"
	SkipRowError         SkipReason = "row-error"
)

// NormalizedRecord is the pipeline's output unit for one accepted row.
type NormalizedRecord struct {
	DisplayName     string
	PropertyAddress string
	Address         CanonicalAddress
	Zip             string
	CityStateZip    string
	County          string
	SaleDate        string
	SalePrice       float64
	Mode            Mode
}

// RowOutcome is the explicit per-row result: an accepted record or a skip
// with its reason. Rows never abort the batch.
type RowOutcome struct {
	RowNo    int
	Accepted bool
	Reason   SkipReason
	Detail   string
	Record   *NormalizedRecord
}

type ClientRecord struct {
	ID             int
	ExternalID     *string
	Name           string
	MailingAddress string
	UpdatedAt      *string
}

type DropRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type CampaignRow struct {
	ID        int
	Mode      string
	Subject   string
	SourceRef string
	Status    string
	DropID    *int
	CreatedAt string
}

type ContactRow struct {
	ID           int
	CampaignID   int
	RowNo        int
	Name         string
	Address      string
	MailingLines string
	Zip          string
	CityStateZip string
	SaleDate     string
	SalePrice    float64
	Mode         string
}

type SkipRow struct {
	ID         int
	CampaignID int
	RowNo      int
	Reason     string
	Detail     string
}

type CRMExportRow struct {
	Name      string
	Address   string
	Zip       string
	SaleDate  string
	SalePrice float64
	Email     string
	Phone     string
	Source    string
}

type ReportRow struct {
	RowNo        int
	Outcome      string
	Reason       string
	Name         string
	Address      string
	Zip          string
	CityStateZip string
	SaleDate     string
	SalePrice    float64
}
