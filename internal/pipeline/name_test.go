package pipeline

import "testing"

func TestCleanPersonalName(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"SMITH JOHN", "John Smith"},
		{"SMITH JOHN MICHAEL", "John M. Smith"},
		{"SMITH JOHN || SMITH JANE", "John & Jane Smith"},
		{"SMITH JOHN || DOE JANE", "John Smith & Jane Doe"},
		{"DOE||JOHN", "John Doe"},
		{"MR SMITH JOHN JR", "John Smith"},
		{"SMITH JOHN III", "John Smith"},
		{"SMITH JOHN (LE)", "John Smith"},
		{"SMITH JOHN (LIFE ESTATE) || SMITH JANE", "John & Jane Smith"},
		{"SMITH, JOHN", "John Smith"},
		{"", "Valued Customer"},
		{"   ", "Valued Customer"},
		{"SMITH", "Smith"},
	}
	for _, tc := range cases {
		got := CleanPersonalName(tc.raw)
		if got.Display != tc.want {
			t.Fatalf("CleanPersonalName(%q) = %q, want %q", tc.raw, got.Display, tc.want)
		}
	}
}

func TestCleanPersonalNameOrdinalTrust(t *testing.T) {
	// "the <ordinal>" pairs are dropped like suffixes are
	got := CleanPersonalName("SMITH JOHN THE THIRD")
	if got.Display != "John Smith" {
		t.Fatalf("unexpected: %q", got.Display)
	}
}

func TestCleanCommercialName(t *testing.T) {
	cases := []struct {
		execFirst, execLast, legal, company string
		want                                string
	}{
		{"JOHN", "DOE", "", "", "John Doe"},
		{"JOHN MICHAEL", "DOE", "", "", "John M. Doe"},
		{"", "", "ACME HOLDINGS LLC", "", "Acme Holdings Llc"},
		{"", "", "", "MAIN STREET DELI", "Main Street Deli"},
		{"JOHN", "", "ACME HOLDINGS LLC", "", "Acme Holdings Llc"},
		{"", "", "", "", "Valued Business"},
	}
	for _, tc := range cases {
		got := CleanCommercialName(tc.execFirst, tc.execLast, tc.legal, tc.company)
		if got.Display != tc.want {
			t.Fatalf("CleanCommercialName(%q,%q,%q,%q) = %q, want %q",
				tc.execFirst, tc.execLast, tc.legal, tc.company, got.Display, tc.want)
		}
	}
}
