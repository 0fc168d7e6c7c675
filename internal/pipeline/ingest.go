package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"automailer/internal"
)

// ExtractRecordsFromInput reads a vendor file into RawRecords. Batch-level
// problems (missing file, unreadable content, unknown type) fail here,
// before any row is processed.
func ExtractRecordsFromInput(inputType, path string) ([]internal.RawRecord, error) {
	switch inputType {
	case "xlsx":
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return parseXLSXRecords(blob)
	case "csv":
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return parseCSVRecords(blob)
	case "html":
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return parseHTMLRecords(string(blob)), nil
	case "pdf":
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return parsePDFRecords(blob)
	default:
		return nil, fmt.Errorf("unsupported input type: %s", inputType)
	}
}

// DropContent is everything extracted from one raw drop email.
type DropContent struct {
	Records         []internal.RawRecord
	Subject         string
	Text            string
	HTML            string
	AttachmentNames []string
}

// ExtractRecordsFromDropRaw pulls records out of a raw vendor email: tables
// in the HTML body plus any spreadsheet, CSV, or PDF attachments.
func ExtractRecordsFromDropRaw(raw []byte) (DropContent, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return DropContent{}, err
	}

	records := make([]internal.RawRecord, 0)
	if env.HTML != "" {
		records = append(records, parseHTMLRecords(env.HTML)...)
	}

	attachmentNames := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		attachmentNames = append(attachmentNames, filename)
		lower := strings.ToLower(filename)

		var extra []internal.RawRecord
		switch {
		case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
			extra, err = parseXLSXRecords(att.Content)
		case strings.HasSuffix(lower, ".csv"):
			extra, err = parseCSVRecords(att.Content)
		case strings.HasSuffix(lower, ".pdf"):
			extra, err = parsePDFRecords(att.Content)
		default:
			continue
		}
		if err != nil {
			continue
		}
		for i := range extra {
			if extra[i].Meta == nil {
				extra[i].Meta = map[string]any{}
			}
			extra[i].Meta["attachment"] = filename
		}
		records = append(records, extra...)
	}

	for i := range records {
		records[i].RowNo = i + 1
	}

	return DropContent{
		Records:         records,
		Subject:         env.GetHeader("Subject"),
		Text:            env.Text,
		HTML:            env.HTML,
		AttachmentNames: attachmentNames,
	}, nil
}

func parseXLSXRecords(content []byte) ([]internal.RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []internal.RawRecord{}
	rowNo := 0
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}

		var headers []string
		for i, row := range rows {
			cells := normalizeCells(row)
			if allBlank(cells) {
				continue
			}
			if headers == nil {
				headers = cells
				continue
			}
			fields := zipRow(headers, cells)
			if len(fields) == 0 {
				continue
			}
			rowNo++
			out = append(out, internal.RawRecord{
				RowNo:  rowNo,
				Source: internal.SourceXLSX,
				Fields: fields,
				Meta:   map[string]any{"sheet": sheet, "rowNumber": i + 1},
			})
		}
	}

	return out, nil
}

func parseCSVRecords(content []byte) ([]internal.RawRecord, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	out := []internal.RawRecord{}
	var headers []string
	rowNo := 0
	for _, row := range rows {
		cells := normalizeCells(row)
		if allBlank(cells) {
			continue
		}
		if headers == nil {
			headers = cells
			continue
		}
		fields := zipRow(headers, cells)
		if len(fields) == 0 {
			continue
		}
		rowNo++
		out = append(out, internal.RawRecord{RowNo: rowNo, Source: internal.SourceCSV, Fields: fields})
	}
	return out, nil
}

func parseHTMLRecords(html string) []internal.RawRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	out := []internal.RawRecord{}
	rowNo := 0
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, normalizeSpaces(cell.Text()))
		})
		if allBlank(headers) {
			return
		}

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, normalizeSpaces(cell.Text()))
			})
			fields := zipRow(headers, cells)
			if len(fields) == 0 {
				return
			}
			rowNo++
			out = append(out, internal.RawRecord{RowNo: rowNo, Source: internal.SourceHTMLTable, Fields: fields})
		})
	})

	return out
}

var pdfColumnSplit = regexp.MustCompile(`\s{2,}|\t`)

// parsePDFRecords handles the line-oriented PDF exports some vendors send:
// a header line followed by rows, columns separated by runs of whitespace.
// Best effort; anything that doesn't line up with the header is dropped.
func parsePDFRecords(content []byte) ([]internal.RawRecord, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	out := []internal.RawRecord{}
	var headers []string
	rowNo := 0
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range splitLines(text) {
			cells := normalizeCells(pdfColumnSplit.Split(line, -1))
			if allBlank(cells) {
				continue
			}
			if headers == nil {
				headers = cells
				continue
			}
			if len(cells) < 2 {
				continue
			}
			fields := zipRow(headers, cells)
			if len(fields) == 0 {
				continue
			}
			rowNo++
			out = append(out, internal.RawRecord{
				RowNo:  rowNo,
				Source: internal.SourcePDF,
				Fields: fields,
				Meta:   map[string]any{"page": i},
			})
		}
	}
	return out, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeSpaces(input string) string {
	return strings.TrimSpace(reSpacesHTML.ReplaceAllString(input, " "))
}

var reSpacesHTML = regexp.MustCompile(`\s+`)

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, normalizeSpaces(c))
	}
	return out
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// zipRow pairs header names with cell values. Blank cells stay in the map:
// column presence drives format detection even when a value is empty. Short
// rows are fine; extra cells past the header are ignored.
func zipRow(headers, cells []string) map[string]string {
	fields := map[string]string{}
	for i, header := range headers {
		if header == "" || i >= len(cells) {
			continue
		}
		fields[header] = cells[i]
	}
	return fields
}
