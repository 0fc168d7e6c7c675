// Package geo holds the ZIP to city/state lookup used when a record does not
// carry its own city and state.
package geo

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"automailer/internal/util"
)

// DefaultCityState is the regional fallback for ZIPs missing from the table.
const DefaultCityState = "Indian River County, FL"

// ZipTable maps 5-digit ZIP strings to a "City, ST" display string. It is
// built once per run and read-only afterwards.
type ZipTable struct {
	entries  map[string]string
	fallback string
}

func NewZipTable(entries map[string]string) *ZipTable {
	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[Normalize(k)] = v
	}
	return &ZipTable{entries: copied, fallback: DefaultCityState}
}

// LoadCSV reads a zip,city,state file. A header row is detected and skipped.
func LoadCSV(path string) (*ZipTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read zip lookup %s: %w", path, err)
	}

	entries := map[string]string{}
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}
		zip := strings.TrimSpace(row[0])
		if i == 0 && strings.EqualFold(zip, "zip") {
			continue
		}
		norm := Normalize(zip)
		if norm == "" {
			continue
		}
		entries[norm] = util.TitleCase(strings.TrimSpace(row[1])) + ", " + strings.ToUpper(strings.TrimSpace(row[2]))
	}

	return &ZipTable{entries: entries, fallback: DefaultCityState}, nil
}

func (t *ZipTable) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the zip-to-city mapping for persistence.
func (t *ZipTable) Entries() map[string]string {
	out := make(map[string]string, len(t.entries))
	for zip, cityState := range t.entries {
		out[zip] = cityState
	}
	return out
}

// Lookup returns the "City, ST" string for a ZIP, falling back to the fixed
// regional default when the ZIP has no entry.
func (t *ZipTable) Lookup(zip string) (string, bool) {
	if cityState, ok := t.entries[Normalize(zip)]; ok {
		return cityState, true
	}
	return t.fallback, false
}

// CityStateZip renders the full display line, e.g. "Vero Beach, FL 32960".
// The raw value is appended verbatim when no 5-digit ZIP can be derived.
func (t *ZipTable) CityStateZip(zip string) string {
	cityState, _ := t.Lookup(zip)
	display := Normalize(zip)
	if display == "" {
		display = strings.TrimSpace(zip)
	}
	return strings.TrimSpace(cityState + " " + display)
}

// Normalize reduces a raw ZIP value to exactly 5 digits: the first five when
// at least five digits are present, left-padded with zeros when fewer, empty
// when the value has no digits at all.
func Normalize(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	switch {
	case len(s) >= 5:
		return s[:5]
	case len(s) > 0:
		return strings.Repeat("0", 5-len(s)) + s
	default:
		return ""
	}
}
