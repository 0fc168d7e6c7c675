package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"automailer/internal"
)

// CRMSourceLabel builds the source tag CRM imports carry: the capitalized
// campaign mode, e.g. "Personal Anniversary Mailer-Sept-Oct".
func CRMSourceLabel(mode internal.Mode) string {
	kind := "Personal"
	if mode == internal.ModeCommercial {
		kind = "Commercial"
	}
	return fmt.Sprintf("%s Anniversary Mailer-Sept-Oct", kind)
}

var crmHeaders = []string{"Name", "Address", "Zip", "Sale Date", "Sale Price", "Email", "Phone", "Source"}

func WriteCRMCSV(contacts []internal.ContactRow, mode internal.Mode, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(crmHeaders); err != nil {
		return err
	}

	source := CRMSourceLabel(mode)
	for _, c := range contacts {
		record := []string{
			c.Name,
			c.Address,
			c.Zip,
			c.SaleDate,
			formatSalePrice(c.SalePrice),
			"",
			"",
			source,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatSalePrice(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func WriteCampaignReportXLSX(rows []internal.ReportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"row_no", "outcome", "reason",
		"name", "address", "zip", "city_state_zip", "sale_date", "sale_price",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.RowNo)
		set(2, row.Outcome)
		set(3, row.Reason)
		set(4, row.Name)
		set(5, row.Address)
		set(6, row.Zip)
		set(7, row.CityStateZip)
		set(8, row.SaleDate)
		if row.Outcome == "accepted" {
			set(9, row.SalePrice)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
