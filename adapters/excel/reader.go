package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"priorelicit/domain/elicit"
	"priorelicit/internal"
	"priorelicit/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader reads an elicitation dataset from an Excel workbook or CSV file.
// The first row holds variable names; every later row is one entity.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *internal.Logger
}

// NewDataReader creates a reader; the file type follows the extension
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	fileType := "xlsx"
	if strings.EqualFold(filepath.Ext(filePath), ".csv") {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger.With("excel")}
}

// WithSheet selects a named worksheet instead of the first one
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	return r
}

var _ ports.DatasetSource = (*DataReader)(nil)

// LoadDataset implements ports.DatasetSource
func (r *DataReader) LoadDataset(ctx context.Context) (elicit.Dataset, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return r.ReadDataset()
}

// ReadDataset reads the file into a dataset and returns the header order alongside
func (r *DataReader) ReadDataset() (elicit.Dataset, []string, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("%s file must have a header row and at least one data row", strings.ToUpper(r.fileType))
	}
	return r.processRows(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	r.logger.Debug("sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows parses numeric cells; blank or non-numeric cells are left out of the entity
func (r *DataReader) processRows(rows [][]string) (elicit.Dataset, []string, error) {
	headers := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(headers))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, nil, fmt.Errorf("column %d has an empty header", i+1)
		}
		if seen[h] {
			return nil, nil, fmt.Errorf("duplicate column header %q", h)
		}
		seen[h] = true
		headers[i] = h
	}

	data := make(elicit.Dataset, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		entity := make(elicit.Entity, len(headers))
		for j, cell := range row {
			if j >= len(headers) {
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				if strings.TrimSpace(cell) != "" {
					skipped++
				}
				continue
			}
			entity[headers[j]] = v
		}
		if len(entity) > 0 {
			data = append(data, entity)
		}
	}
	r.logger.Info("%s file processed (%d columns, %d entities, %d non-numeric cells ignored)",
		strings.ToUpper(r.fileType), len(headers), len(data), skipped)
	return data, headers, nil
}
