// Package export renders confirmed donations as spreadsheets.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/pkg/zip"
)

const (
	SheetName     = "Donations"
	DefaultSymbol = "$"
	timeLayout    = "01/02/2006 03:04 PM"
	fileLayout    = "20060102_150405"
)

// Header is the first row of every export.
var Header = []string{"#", "Name", "Amount", "Time"}

// Row is one exported donation.
type Row struct {
	Index  int
	Name   string
	Amount string
	Time   string
}

func (r Row) strings() []string {
	return []string{strconv.Itoa(r.Index), r.Name, r.Amount, r.Time}
}

// Rows numbers records from 1 in the order given, which callers keep oldest
// first. Amounts carry symbol ("$" when empty); times are rendered in loc,
// UTC when nil.
func Rows(records []domain.Donation, symbol string, loc *time.Location) []Row {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]Row, 0, len(records))
	for i, d := range records {
		amount := d.Amount
		if amount == "" {
			amount = "0"
		}
		rows = append(rows, Row{
			Index:  i + 1,
			Name:   d.Name,
			Amount: symbol + amount,
			Time:   d.CreatedAt.In(loc).Format(timeLayout),
		})
	}
	return rows
}

// FileName returns e.g. donations_20250301_193000.csv.
func FileName(at time.Time, ext string) string {
	return fmt.Sprintf("donations_%s.%s", at.Format(fileLayout), ext)
}

// WriteCSV writes the header and rows.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	for _, r := range rows {
		cells := r.strings()
		for i := range cells {
			cells[i] = csvCell(cells[i])
		}
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}

// csvCell quotes values a spreadsheet would otherwise evaluate as a formula.
// XLSX cells are written as typed strings and need no escaping.
func csvCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

// WriteXLSX writes a workbook with a single Donations sheet.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "D1", bold); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export xlsx: %w", err)
		}
		values := []any{r.Index, r.Name, r.Amount, r.Time}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("export xlsx: %w", err)
		}
	}
	if err := f.SetColWidth(SheetName, "B", "B", 32); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	if err := f.SetColWidth(SheetName, "D", "D", 22); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	return nil
}

// Artifact is a rendered export file.
type Artifact struct {
	Name string
	MIME string
	Data []byte
}

const (
	MIMECSV  = "text/csv"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEZIP  = "application/zip"
)

// CSV renders rows into a named CSV artifact.
func CSV(rows []Row, at time.Time) (Artifact, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return Artifact{}, err
	}
	return Artifact{Name: FileName(at, "csv"), MIME: MIMECSV, Data: buf.Bytes()}, nil
}

// XLSX renders rows into a named workbook artifact.
func XLSX(rows []Row, at time.Time) (Artifact, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, rows); err != nil {
		return Artifact{}, err
	}
	return Artifact{Name: FileName(at, "xlsx"), MIME: MIMEXLSX, Data: buf.Bytes()}, nil
}

// Bundle renders both formats and a zip holding the two.
func Bundle(rows []Row, at time.Time) ([]Artifact, error) {
	c, err := CSV(rows, at)
	if err != nil {
		return nil, err
	}
	x, err := XLSX(rows, at)
	if err != nil {
		return nil, err
	}
	archive, err := zip.Archive([]zip.File{
		{Name: c.Name, Data: c.Data, Modified: at},
		{Name: x.Name, Data: x.Data, Modified: at},
	})
	if err != nil {
		return nil, err
	}
	return []Artifact{c, x, {Name: FileName(at, "zip"), MIME: MIMEZIP, Data: archive}}, nil
}
