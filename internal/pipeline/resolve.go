package pipeline

import (
	"strings"

	"automailer/internal"
)

// Column aliases per logical field, most-preferred first. Vendors rename
// columns between vintages; every lookup goes through Resolve so the
// fallback policy lives in one place.
var (
	aliasOwnerName       = []string{"Owner Name", "Owner"}
	aliasPropertyAddress = []string{"Address", "Situs"}
	aliasMailingLine1    = []string{"Mailing Address", "Mailing Address 1", "Owner Address"}
	aliasMailingLine2    = []string{"Mailing Address 2", "Mailing Address Line 2"}
	aliasMailingCity     = []string{"Mailing City", "City"}
	aliasMailingState    = []string{"Mailing State", "State"}
	aliasMailingZip      = []string{"Mailing Zip", "Mailing ZIP", "Mailing Zip Code", "Zip Code", "Zip"}
	aliasSiteZip         = []string{"Site Zip Code", "Property Zip", "Zip Code", "Zip"}
	aliasSaleDate        = []string{"Sale Date"}
	aliasSalePrice       = []string{"Sale Price"}
	aliasBusinessType    = []string{"Business Type"}
	aliasExecFirstName   = []string{"Executive First Name"}
	aliasExecLastName    = []string{"Executive Last Name"}
	aliasLegalName       = []string{"Legal Name"}
	aliasCompanyName     = []string{"Company Name", "Business Name"}
)

// Resolve returns the first alias value that is present, non-blank after
// trimming, and not a literal "nan". Missing columns are expected, never an
// error.
func Resolve(rec internal.RawRecord, aliases []string, fallback string) string {
	for _, alias := range aliases {
		value, ok := fieldValue(rec, alias)
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, "nan") {
			continue
		}
		return value
	}
	return fallback
}

// HasColumn reports whether the record carries the column at all, regardless
// of its value. Used for format detection, not field extraction.
func HasColumn(rec internal.RawRecord, name string) bool {
	_, ok := fieldValue(rec, name)
	return ok
}

func fieldValue(rec internal.RawRecord, name string) (string, bool) {
	if v, ok := rec.Fields[name]; ok {
		return v, true
	}
	for k, v := range rec.Fields {
		if strings.EqualFold(strings.TrimSpace(k), name) {
			return v, true
		}
	}
	return "", false
}
