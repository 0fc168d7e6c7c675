package geo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"32960":      "32960",
		"32960-1234": "32960",
		"329601234":  "32960",
		"960":        "00960",
		"32960.0":    "32960",
		"abc":        "",
		"":           "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLookupFallback(t *testing.T) {
	table := NewZipTable(map[string]string{"32960": "Vero Beach, FL"})

	cityState, ok := table.Lookup("32960")
	if !ok || cityState != "Vero Beach, FL" {
		t.Fatalf("unexpected lookup: %q %v", cityState, ok)
	}

	cityState, ok = table.Lookup("99999")
	if ok || cityState != DefaultCityState {
		t.Fatalf("miss should fall back to %q, got %q %v", DefaultCityState, cityState, ok)
	}
}

func TestCityStateZip(t *testing.T) {
	table := NewZipTable(map[string]string{"32960": "Vero Beach, FL"})

	if got := table.CityStateZip("32960-1234"); got != "Vero Beach, FL 32960" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := table.CityStateZip("99999"); got != DefaultCityState+" 99999" {
		t.Fatalf("unexpected: %q", got)
	}

	empty := NewZipTable(nil)
	if got := empty.CityStateZip("32960"); got != DefaultCityState+" 32960" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestLoadCSV(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "ziplookup.csv")
	blob := "zip,city,state\n32960,vero beach,fl\n960,sebastian,FL\n"
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", table.Len())
	}

	cityState, ok := table.Lookup("32960")
	if !ok || cityState != "Vero Beach, FL" {
		t.Fatalf("unexpected lookup: %q %v", cityState, ok)
	}

	// ZIPs normalize at load, so a short value is found zero-padded
	cityState, ok = table.Lookup("00960")
	if !ok || cityState != "Sebastian, FL" {
		t.Fatalf("unexpected lookup: %q %v", cityState, ok)
	}
}
