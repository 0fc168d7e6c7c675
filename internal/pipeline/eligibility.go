package pipeline

import (
	"strings"

	"automailer/internal"
	"automailer/internal/util"
)

// Filter holds the loaded client roster and the two tuned similarity
// thresholds. The roster is read-only for the life of a run.
type Filter struct {
	clients         []internal.ClientRecord
	clientThreshold float64
	ownerThreshold  float64
}

func NewFilter(clients []internal.ClientRecord, clientThreshold, ownerThreshold float64) *Filter {
	return &Filter{clients: clients, clientThreshold: clientThreshold, ownerThreshold: ownerThreshold}
}

// ExistingClient scans the roster for an entry where BOTH the name and the
// mailing address clear the threshold. One dimension alone never excludes.
// Linear scan; rosters are hundreds of entries, not millions.
func (f *Filter) ExistingClient(name string, address internal.CanonicalAddress) (internal.ClientRecord, bool) {
	mailing := address.Display()
	for _, client := range f.clients {
		if util.PartialRatio(name, client.Name) > f.clientThreshold &&
			util.PartialRatio(mailing, client.MailingAddress) > f.clientThreshold {
			return client, true
		}
	}
	return internal.ClientRecord{}, false
}

// OwnerOccupied reports whether the property address resembles any component
// of the owner's mailing address, i.e. the owner lives where they own.
func (f *Filter) OwnerOccupied(propertyAddress string, address internal.CanonicalAddress) bool {
	if strings.TrimSpace(propertyAddress) == "" {
		return false
	}
	for _, part := range address.Parts() {
		if util.PartialRatio(propertyAddress, part) > f.ownerThreshold {
			return true
		}
	}
	return false
}

// Categories that are never commercial-lines prospects. A record with no
// business type at all is also disqualified.
var disqualifyingKeywords = []string{
	"church", "religious", "synagogue", "temple", "mosque",
	"school", "college", "university",
	"government", "county", "city", "state", "federal", "municipal", "public", "utility",
	"hoa", "homeowners association", "condominium", "condo",
	"apartments", "apartment", "association",
	"non-profit", "nonprofit", "charity",
	"vacant", "land", "empty lot", "lot",
}

func QualifiesBusiness(businessType string) bool {
	normalized := strings.ToLower(strings.TrimSpace(businessType))
	if normalized == "" {
		return false
	}
	for _, keyword := range disqualifyingKeywords {
		if strings.Contains(normalized, keyword) {
			return false
		}
	}
	return true
}

// NewFormatCommercial detects the newer vendor shape by its explicit
// executive-name columns. Those files arrive pre-filtered, so qualification
// is assumed; a policy worth revisiting, kept as the original behaved.
func NewFormatCommercial(rec internal.RawRecord) bool {
	return HasColumn(rec, "Executive First Name") && HasColumn(rec, "Executive Last Name")
}
