package roster

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"automailer/internal"
)

var nameColumns = []string{"Name", "Insured Name", "Client Name"}
var addressColumns = []string{"Mailing Address", "Address"}

// LoadFile reads a master client list export. Entries with a blank name or
// address carry no useful match signal and are dropped at load.
func LoadFile(path string) ([]internal.ClientRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		rows, err = readXLSXRows(content)
	case ".csv":
		rows, err = readCSVRows(content)
	default:
		return nil, fmt.Errorf("unsupported roster file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return parseRows(rows), nil
}

func parseRows(rows [][]string) []internal.ClientRecord {
	if len(rows) == 0 {
		return nil
	}

	headers := rows[0]
	nameIdx := columnIndex(headers, nameColumns)
	addressIdx := columnIndex(headers, addressColumns)

	var out []internal.ClientRecord
	for _, row := range rows[1:] {
		name := strings.TrimSpace(cellAt(row, nameIdx))
		address := strings.TrimSpace(cellAt(row, addressIdx))
		if name == "" || address == "" {
			continue
		}
		out = append(out, internal.ClientRecord{Name: name, MailingAddress: address})
	}
	return out
}

func columnIndex(headers, candidates []string) int {
	for _, candidate := range candidates {
		for i, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), candidate) {
				return i
			}
		}
	}
	// fall back to positional: first column is the name, second the address
	if len(candidates) > 0 && candidates[0] == "Name" {
		return 0
	}
	return 1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func readXLSXRows(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

func readCSVRows(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}
