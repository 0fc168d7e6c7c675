package pipeline

import (
	"testing"

	"github.com/rs/zerolog"

	"automailer/internal"
	"automailer/internal/geo"
)

func testAssembler(mode internal.Mode, clients []internal.ClientRecord) *Assembler {
	composer := NewAddressComposer(geo.NewZipTable(map[string]string{"32960": "Vero Beach, FL"}))
	filter := NewFilter(clients, 85, 85)
	return NewAssembler(mode, composer, filter, 2, zerolog.Nop())
}

func personalRow(rowNo int, fields map[string]string) internal.RawRecord {
	return internal.RawRecord{RowNo: rowNo, Source: internal.SourceXLSX, Fields: fields}
}

func TestAssemblePersonalAccepted(t *testing.T) {
	a := testAssembler(internal.ModePersonal, nil)
	rec := personalRow(1, map[string]string{
		"Owner Name":      "SMITH JOHN || SMITH JANE",
		"Address":         "123 MAIN ST",
		"Mailing Address": "123 Main St",
		"Mailing City":    "Vero Beach",
		"Mailing State":   "FL",
		"Mailing Zip":     "32960",
		"Site Zip Code":   "32960",
		"Sale Date":       "01/15/2024",
		"Sale Price":      "$450,000",
	})

	outcome := a.AssembleRow(rec)
	if !outcome.Accepted {
		t.Fatalf("expected accepted, got %+v", outcome)
	}
	r := outcome.Record
	if r.DisplayName != "John & Jane Smith" {
		t.Fatalf("unexpected name: %q", r.DisplayName)
	}
	if r.PropertyAddress != "123 Main St" {
		t.Fatalf("unexpected property: %q", r.PropertyAddress)
	}
	if r.Zip != "32960" {
		t.Fatalf("unexpected zip: %q", r.Zip)
	}
	if r.CityStateZip != "Vero Beach, FL 32960" {
		t.Fatalf("unexpected city/state/zip: %q", r.CityStateZip)
	}
	if r.SaleDate != "January 15, 2024" {
		t.Fatalf("unexpected sale date: %q", r.SaleDate)
	}
	if r.SalePrice != 450000 {
		t.Fatalf("unexpected sale price: %f", r.SalePrice)
	}
	if r.County != "Indian River" {
		t.Fatalf("unexpected county: %q", r.County)
	}
}

func TestAssembleSkipsNonOwnerOccupied(t *testing.T) {
	a := testAssembler(internal.ModePersonal, nil)
	rec := personalRow(2, map[string]string{
		"Owner Name":      "SMITH JOHN",
		"Address":         "123 MAIN ST",
		"Mailing Address": "PO Box 4521",
		"Mailing City":    "Atlanta",
		"Mailing State":   "GA",
		"Mailing Zip":     "30301",
		"Site Zip Code":   "32960",
	})

	outcome := a.AssembleRow(rec)
	if outcome.Accepted || outcome.Reason != internal.SkipNotOwnerOccupied {
		t.Fatalf("expected non-owner-occupied skip, got %+v", outcome)
	}
}

func TestAssembleSkipsExistingClient(t *testing.T) {
	clients := []internal.ClientRecord{
		{Name: "John Smith", MailingAddress: "123 Main St | Vero Beach, FL 32960"},
	}
	a := testAssembler(internal.ModePersonal, clients)
	rec := personalRow(3, map[string]string{
		"Owner Name":      "SMITH JOHN",
		"Address":         "123 MAIN ST",
		"Mailing Address": "123 Main St",
		"Mailing City":    "Vero Beach",
		"Mailing State":   "FL",
		"Mailing Zip":     "32960",
		"Site Zip Code":   "32960",
	})

	outcome := a.AssembleRow(rec)
	if outcome.Accepted || outcome.Reason != internal.SkipExistingClient {
		t.Fatalf("expected existing-client skip, got %+v", outcome)
	}
	if outcome.Detail != "John Smith" {
		t.Fatalf("expected matched client in detail, got %q", outcome.Detail)
	}
}

func TestAssembleSkipsInsufficientName(t *testing.T) {
	a := testAssembler(internal.ModePersonal, nil)
	rec := personalRow(4, map[string]string{
		"Owner Name":      "SMITH",
		"Address":         "123 MAIN ST",
		"Mailing Address": "123 Main St",
		"Site Zip Code":   "32960",
	})

	outcome := a.AssembleRow(rec)
	if outcome.Accepted || outcome.Reason != internal.SkipInsufficientName {
		t.Fatalf("expected insufficient-name skip, got %+v", outcome)
	}
}

func TestAssembleCommercialLegacy(t *testing.T) {
	a := testAssembler(internal.ModeCommercial, nil)

	church := personalRow(1, map[string]string{
		"Company Name":  "FIRST BAPTIST CHURCH",
		"Address":       "500 COMMERCE WAY",
		"Business Type": "Church",
		"Site Zip Code": "32960",
		"Sale Date":     "03/01/2024",
		"Sale Price":    "$1,200,000",
	})
	outcome := a.AssembleRow(church)
	if outcome.Accepted || outcome.Reason != internal.SkipBusinessType {
		t.Fatalf("expected business-type skip, got %+v", outcome)
	}

	deli := personalRow(2, map[string]string{
		"Company Name":  "MAIN STREET DELI",
		"Address":       "500 COMMERCE WAY",
		"Business Type": "Restaurant",
		"Site Zip Code": "32960",
		"Sale Date":     "03/01/2024",
		"Sale Price":    "$1,200,000",
	})
	outcome = a.AssembleRow(deli)
	if !outcome.Accepted {
		t.Fatalf("expected accepted, got %+v", outcome)
	}
	if outcome.Record.DisplayName != "Main Street Deli" {
		t.Fatalf("unexpected name: %q", outcome.Record.DisplayName)
	}
	// single-digit days render zero-padded
	if outcome.Record.SaleDate != "March 01, 2024" {
		t.Fatalf("unexpected sale date: %q", outcome.Record.SaleDate)
	}
}

func TestAssembleCommercialNewFormat(t *testing.T) {
	a := testAssembler(internal.ModeCommercial, nil)

	// new-format files carry executive columns and no business type; they
	// arrive pre-filtered so the row qualifies as-is
	rec := personalRow(1, map[string]string{
		"Executive First Name": "JOHN",
		"Executive Last Name":  "DOE",
		"Company Name":         "ACME HOLDINGS LLC",
		"Address":              "500 COMMERCE WAY",
		"Site Zip Code":        "32960",
	})
	outcome := a.AssembleRow(rec)
	if !outcome.Accepted {
		t.Fatalf("expected accepted, got %+v", outcome)
	}
	if outcome.Record.DisplayName != "John Doe" {
		t.Fatalf("unexpected name: %q", outcome.Record.DisplayName)
	}
	if outcome.Record.SaleDate != "Unknown" || outcome.Record.SalePrice != 0 {
		t.Fatalf("new format rows carry no sale info, got %q %f",
			outcome.Record.SaleDate, outcome.Record.SalePrice)
	}
}

func TestRunStats(t *testing.T) {
	a := testAssembler(internal.ModePersonal, nil)
	records := []internal.RawRecord{
		personalRow(1, map[string]string{
			"Owner Name":      "SMITH JOHN",
			"Address":         "123 MAIN ST",
			"Mailing Address": "123 Main St",
			"Site Zip Code":   "32960",
		}),
		personalRow(2, map[string]string{
			"Owner Name":      "DOE JANE",
			"Address":         "77 OCEAN DR",
			"Mailing Address": "PO Box 4521",
			"Site Zip Code":   "32960",
		}),
	}

	outcomes, stats := a.Run(records)
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if stats.Total != 2 || stats.Accepted != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Skipped[internal.SkipNotOwnerOccupied] != 1 {
		t.Fatalf("unexpected skip counts: %+v", stats.Skipped)
	}
}
