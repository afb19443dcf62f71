package report

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/rfscore-cli/internal/config"
	"github.com/sells-group/rfscore-cli/internal/model"
)

// SheetName is the name of the single sheet of the spreadsheet export.
const SheetName = "Dados Completos"

// WriteXLSX writes every record, OK and ERROR, as one spreadsheet row.
// Pontuacao is left empty for ERROR records.
func WriteXLSX(w io.Writer, records []model.Record, table config.ScoringTable) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range Headers() {
		header.AddCell().SetString(h)
	}

	for _, r := range Rows(records, table) {
		row := sheet.AddRow()
		for _, c := range columns {
			cell := row.AddCell()
			switch v := c.value(r).(type) {
			case string:
				cell.SetString(v)
			case int:
				cell.SetInt(v)
			case float64:
				cell.SetFloat(v)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write xlsx")
	}
	return nil
}

// WriteCSV writes the same rows as WriteXLSX in CSV form.
func WriteCSV(w io.Writer, records []model.Record, table config.ScoringTable) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Headers()); err != nil {
		return eris.Wrap(err, "report: write CSV header")
	}
	for _, r := range Rows(records, table) {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = text(c.value(r))
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "report: write CSV row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush CSV")
	}
	return nil
}
