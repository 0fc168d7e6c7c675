package pipeline

import (
	"strings"

	"automailer/internal"
	"automailer/internal/geo"
	"automailer/internal/util"
)

// AddressComposer assembles the canonical mailing address from whatever
// columns the vendor supplied, with ZIP-driven city/state fallback.
type AddressComposer struct {
	zips *geo.ZipTable
}

func NewAddressComposer(zips *geo.ZipTable) *AddressComposer {
	return &AddressComposer{zips: zips}
}

func (c *AddressComposer) Compose(rec internal.RawRecord) internal.CanonicalAddress {
	addr := internal.CanonicalAddress{}

	if line := Resolve(rec, aliasMailingLine1, ""); line != "" {
		addr.Lines = append(addr.Lines, line)
	}
	if line := Resolve(rec, aliasMailingLine2, ""); line != "" {
		addr.Lines = append(addr.Lines, line)
	}

	addr.City = util.TitleCase(Resolve(rec, aliasMailingCity, ""))
	addr.State = strings.ToUpper(Resolve(rec, aliasMailingState, ""))
	addr.ZipRaw = Resolve(rec, aliasMailingZip, "")
	addr.Zip = geo.Normalize(addr.ZipRaw)

	zipDisplay := addr.Zip
	if zipDisplay == "" {
		zipDisplay = strings.TrimSpace(addr.ZipRaw)
	}

	if addr.City != "" && addr.State != "" {
		addr.CityStateZip = strings.TrimSpace(addr.City + ", " + addr.State + " " + zipDisplay)
	} else {
		addr.CityStateZip = c.zips.CityStateZip(addr.ZipRaw)
	}

	return addr
}

// CityStateZip renders the display line for a property-side ZIP (used for
// envelopes and labels, which address the property rather than the owner).
func (c *AddressComposer) CityStateZip(zip string) string {
	return c.zips.CityStateZip(zip)
}

// County extracts the county token for letter substitution. City/state lines
// that already name a county keep it; anything else gets the regional
// default.
func County(cityState string) string {
	if idx := strings.Index(cityState, "County"); idx >= 0 {
		county := strings.TrimSpace(strings.Trim(cityState[:idx], " ,"))
		if county != "" {
			return county
		}
	}
	return "Indian River"
}
