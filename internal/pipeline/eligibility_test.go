package pipeline

import (
	"testing"

	"automailer/internal"
)

func testRoster() []internal.ClientRecord {
	return []internal.ClientRecord{
		{Name: "John Smith", MailingAddress: "123 Main St | Vero Beach, FL 32960"},
		{Name: "Acme Holdings Llc", MailingAddress: "500 Commerce Way"},
	}
}

func TestExistingClientRequiresBothDimensions(t *testing.T) {
	f := NewFilter(testRoster(), 85, 85)

	match := internal.CanonicalAddress{Lines: []string{"123 Main St"}, CityStateZip: "Vero Beach, FL 32960"}
	if _, found := f.ExistingClient("John Smith", match); !found {
		t.Fatal("name and address both match, should be excluded")
	}

	// same name, different address: not excluded
	other := internal.CanonicalAddress{Lines: []string{"987 Orchid Blvd"}, CityStateZip: "Miami, FL 33101"}
	if _, found := f.ExistingClient("John Smith", other); found {
		t.Fatal("name-only match must not exclude")
	}

	// same address, different name: not excluded
	if _, found := f.ExistingClient("Robert Wilson", match); found {
		t.Fatal("address-only match must not exclude")
	}
}

func TestExistingClientFuzzyName(t *testing.T) {
	f := NewFilter(testRoster(), 85, 85)
	match := internal.CanonicalAddress{Lines: []string{"123 Main St"}, CityStateZip: "Vero Beach, FL 32960"}

	// minor variation still clears the threshold
	if _, found := f.ExistingClient("John Smithe", match); !found {
		t.Fatal("near-identical name should still match")
	}
}

func TestOwnerOccupied(t *testing.T) {
	f := NewFilter(nil, 85, 85)

	mailing := internal.CanonicalAddress{Lines: []string{"123 Main St"}, CityStateZip: "Vero Beach, FL 32960"}
	if !f.OwnerOccupied("123 MAIN ST", mailing) {
		t.Fatal("matching property should be owner-occupied")
	}

	absentee := internal.CanonicalAddress{Lines: []string{"PO Box 999"}, CityStateZip: "Atlanta, GA 30301"}
	if f.OwnerOccupied("123 Main St", absentee) {
		t.Fatal("absentee owner should not be owner-occupied")
	}

	if f.OwnerOccupied("", mailing) {
		t.Fatal("blank property address should never pass")
	}
	if f.OwnerOccupied("123 Main St", internal.CanonicalAddress{}) {
		t.Fatal("empty mailing address should never pass")
	}
}

func TestQualifiesBusiness(t *testing.T) {
	qualifying := []string{"Restaurant", "Auto Repair", "Retail Store"}
	for _, b := range qualifying {
		if !QualifiesBusiness(b) {
			t.Fatalf("%q should qualify", b)
		}
	}

	disqualifying := []string{
		"Baptist Church", "CHURCH", "Elementary School", "County Government",
		"Homeowners Association", "Vacant Land", "Condominium", "",
	}
	for _, b := range disqualifying {
		if QualifiesBusiness(b) {
			t.Fatalf("%q should not qualify", b)
		}
	}
}

func TestNewFormatCommercial(t *testing.T) {
	rec := internal.RawRecord{Fields: map[string]string{
		"Executive First Name": "JOHN",
		"Executive Last Name":  "",
		"Address":              "500 Commerce Way",
	}}
	if !NewFormatCommercial(rec) {
		t.Fatal("both executive columns present, even blank, should detect new format")
	}

	legacy := internal.RawRecord{Fields: map[string]string{
		"Company Name": "MAIN STREET DELI",
		"Address":      "500 Commerce Way",
	}}
	if NewFormatCommercial(legacy) {
		t.Fatal("legacy record should not detect new format")
	}
}
