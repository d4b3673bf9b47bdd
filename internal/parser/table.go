package parser

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/carbon-compass/compass/internal/model"
)

// ParseFile parses activities from a file on disk, inferring the format
// from the extension.
func (p *ActivityParser) ParseFile(path string, mapping map[string]string) ([]model.ActivityInput, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "parser: read file")
	}
	return p.Parse(content, format, mapping)
}

// FormatForPath maps a file extension to a parse format.
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", nil
	case ".xlsx":
		return "xlsx", nil
	}
	return "", eris.Wrapf(ErrUnsupportedFormat, "%q (use .csv or .xlsx)", filepath.Ext(path))
}

// readTable reads raw file bytes into a trimmed header row plus data rows.
func readTable(content []byte, format string) (header []string, rows [][]string, err error) {
	switch strings.ToLower(format) {
	case "csv":
		return readCSV(content)
	case "xlsx", "excel":
		return readXLSX(content)
	}
	return nil, nil, eris.Wrapf(ErrUnsupportedFormat, "%q", format)
}

func readCSV(content []byte) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var header []string
	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "parser: read csv row")
		}
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}
		if header == nil {
			header = record
			continue
		}
		rows = append(rows, record)
	}
	if header == nil {
		return nil, nil, eris.New("parser: empty csv file")
	}
	return header, rows, nil
}

func readXLSX(content []byte) ([]string, [][]string, error) {
	f, err := xlsx.OpenBinary(content)
	if err != nil {
		return nil, nil, eris.Wrap(err, "parser: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, nil, eris.New("parser: xlsx file has no sheets")
	}

	sheet := f.Sheets[0]
	var header []string
	var rows [][]string
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}
		if header == nil {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	if header == nil {
		return nil, nil, eris.New("parser: empty xlsx sheet")
	}
	return header, rows, nil
}
