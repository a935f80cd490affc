package project

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/peppy/internal/constants"
	"github.com/user/peppy/internal/model"
	"github.com/xuri/excelize/v2"
)

// Row is one annotation row keyed by column header.
type Row map[string]string

// Table is a parsed annotation sheet.
type Table struct {
	Header []string
	Rows   []Row
}

// ReadAnnotations reads a sample annotation sheet. CSV, TSV and XLSX are
// supported; the format is chosen from the file extension.
func ReadAnnotations(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.NewMissingSampleSheetError(path)
		}
		return nil, fmt.Errorf("failed to stat annotation sheet: %w", err)
	}

	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readXLSX(path)
	case ".tsv", ".txt":
		records, err = readDelimited(path, '\t')
	default:
		records, err = readDelimited(path, ',')
	}
	if err != nil {
		return nil, err
	}

	return newTable(path, records)
}

func readDelimited(path string, delim rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation sheet: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse annotation sheet: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func newTable(path string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("annotation sheet '%s' is empty", path)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	hasName := false
	for _, h := range header {
		if h == constants.SampleNameColname {
			hasName = true
			break
		}
	}
	if !hasName {
		return nil, fmt.Errorf("annotation sheet '%s' has no '%s' column", path, constants.SampleNameColname)
	}

	table := &Table{Header: header}
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make(Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			} else {
				row[h] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteAnnotations writes a table as CSV, TSV or XLSX depending on the
// extension of path.
func WriteAnnotations(path string, table *Table) error {
	records := make([][]string, 0, len(table.Rows)+1)
	records = append(records, table.Header)
	for _, row := range table.Rows {
		record := make([]string, len(table.Header))
		for i, h := range table.Header {
			record[i] = row[h]
		}
		records = append(records, record)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeXLSX(path, records)
	case ".tsv", ".txt":
		return writeDelimited(path, '\t', records)
	default:
		return writeDelimited(path, ',', records)
	}
}

func writeDelimited(path string, delim rune, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create annotation sheet: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = delim
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write annotation sheet: %w", err)
	}
	return nil
}

func writeXLSX(path string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, record := range records {
		for c, value := range record {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}
