package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"automailer/internal"
	"automailer/internal/geo"
	"automailer/internal/util"
)

// Assembler drives one pass over the input table: resolve fields, normalize
// the name, compose the address, apply eligibility, emit or skip. Rows are
// independent; no row's failure touches any other row.
type Assembler struct {
	mode         internal.Mode
	composer     *AddressComposer
	filter       *Filter
	minNameWords int
	log          zerolog.Logger
}

func NewAssembler(mode internal.Mode, composer *AddressComposer, filter *Filter, minNameWords int, log zerolog.Logger) *Assembler {
	if minNameWords <= 0 {
		minNameWords = 2
	}
	return &Assembler{mode: mode, composer: composer, filter: filter, minNameWords: minNameWords, log: log}
}

type RunStats struct {
	Total    int
	Accepted int
	Skipped  map[internal.SkipReason]int
}

// Run processes every record in source order and returns one outcome per
// row plus aggregate counts.
func (a *Assembler) Run(records []internal.RawRecord) ([]internal.RowOutcome, RunStats) {
	stats := RunStats{Total: len(records), Skipped: map[internal.SkipReason]int{}}
	outcomes := make([]internal.RowOutcome, 0, len(records))

	for _, rec := range records {
		outcome := a.AssembleRow(rec)
		outcomes = append(outcomes, outcome)
		if outcome.Accepted {
			stats.Accepted++
			a.log.Info().Int("row", outcome.RowNo).Str("name", outcome.Record.DisplayName).Msg("processed")
		} else {
			stats.Skipped[outcome.Reason]++
			a.log.Info().Int("row", outcome.RowNo).Str("reason", string(outcome.Reason)).Str("detail", outcome.Detail).Msg("skipped")
		}
	}

	return outcomes, stats
}

// AssembleRow runs the per-row state machine. Any panic inside row handling
// is converted to a row-error skip; only batch-level setup may fail a run.
func (a *Assembler) AssembleRow(rec internal.RawRecord) (outcome internal.RowOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = skip(rec.RowNo, internal.SkipRowError, fmt.Sprint(r))
		}
	}()

	propertyRaw := Resolve(rec, aliasPropertyAddress, "")
	property := strings.TrimSpace(util.TitleCase(propertyRaw))
	address := a.composer.Compose(rec)
	newFormat := a.mode == internal.ModeCommercial && NewFormatCommercial(rec)

	var name internal.PersonName
	if a.mode == internal.ModePersonal {
		name = CleanPersonalName(Resolve(rec, aliasOwnerName, ""))
	} else {
		name = CleanCommercialName(
			Resolve(rec, aliasExecFirstName, ""),
			Resolve(rec, aliasExecLastName, ""),
			Resolve(rec, aliasLegalName, ""),
			Resolve(rec, aliasCompanyName, ""),
		)
	}

	if name.Display == "" {
		return skip(rec.RowNo, internal.SkipMissingName, "")
	}
	if util.AlphabeticWordCount(name.Display) < a.minNameWords {
		return skip(rec.RowNo, internal.SkipInsufficientName, name.Display)
	}

	zipRaw := Resolve(rec, aliasSiteZip, "")
	zip := geo.Normalize(zipRaw)
	if zip == "" {
		zip = strings.TrimSpace(zipRaw)
	}
	cityStateZip := a.composer.CityStateZip(zipRaw)

	saleDate := "Unknown"
	salePrice := 0.0
	if !newFormat {
		saleDate = parseSaleDate(Resolve(rec, aliasSaleDate, ""))
		salePrice = parseSalePrice(Resolve(rec, aliasSalePrice, ""))
	}

	// Commercial records are scrubbed against the roster by their property
	// address; the owner's mailing address only matters for personal lines.
	clientAddress := address
	if a.mode == internal.ModeCommercial {
		clientAddress = internal.CanonicalAddress{Lines: []string{propertyRaw}}
	}
	if client, found := a.filter.ExistingClient(name.Display, clientAddress); found {
		return skip(rec.RowNo, internal.SkipExistingClient, client.Name)
	}

	if a.mode == internal.ModePersonal {
		if !a.filter.OwnerOccupied(propertyRaw, address) {
			return skip(rec.RowNo, internal.SkipNotOwnerOccupied, property)
		}
	} else if !newFormat {
		if !QualifiesBusiness(Resolve(rec, aliasBusinessType, "")) {
			return skip(rec.RowNo, internal.SkipBusinessType, name.Display)
		}
	}

	record := &internal.NormalizedRecord{
		DisplayName:     name.Display,
		PropertyAddress: property,
		Address:         address,
		Zip:             zip,
		CityStateZip:    cityStateZip,
		County:          County(cityStateZip),
		SaleDate:        saleDate,
		SalePrice:       salePrice,
		Mode:            a.mode,
	}
	return internal.RowOutcome{RowNo: rec.RowNo, Accepted: true, Record: record}
}

func skip(rowNo int, reason internal.SkipReason, detail string) internal.RowOutcome {
	return internal.RowOutcome{RowNo: rowNo, Reason: reason, Detail: detail}
}

// parseSaleDate accepts the vendor's MM/DD/YYYY form and renders the letter
// style with a zero-padded day ("January 05, 2024"); anything else is
// "Unknown".
func parseSaleDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Unknown"
	}
	t, err := time.Parse("01/02/2006", raw)
	if err != nil {
		return "Unknown"
	}
	return t.Format("January 02, 2006")
}

// parseSalePrice strips currency punctuation and defaults to 0 on anything
// unparseable. A bad price is a data blemish, not a reason to drop the row.
func parseSalePrice(raw string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return 0
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}
