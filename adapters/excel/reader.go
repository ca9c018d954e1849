package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gomediate/domain/core"
	"gomediate/domain/ratings"
)

// DataReader reads a ratings export from an Excel workbook or a CSV file
// into the untyped row form the schema parser consumes.
type DataReader struct {
	filePath string
	sheet    string
	ext      string
}

// NewDataReader builds a reader for filePath. The sheet name only applies
// to workbooks; "" means Sheet1.
func NewDataReader(filePath, sheet string) *DataReader {
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &DataReader{
		filePath: filePath,
		sheet:    sheet,
		ext:      strings.ToLower(filepath.Ext(filePath)),
	}
}

// Read loads the file and returns its rows keyed by trimmed header.
func (r *DataReader) Read() (*ratings.RawTable, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, core.NewSourceNotFoundError(r.filePath)
	}

	switch r.ext {
	case ".xlsx", ".xlsm":
		return r.readWorkbook()
	case ".csv":
		return r.readCSV()
	default:
		return nil, core.NewUnsupportedFormatError(r.ext)
	}
}

func (r *DataReader) readWorkbook() (*ratings.RawTable, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	log.Printf("[DataReader] Workbook opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	readStart := time.Now()
	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", r.sheet, err)
	}
	log.Printf("[DataReader] Sheet %s read in %.2fms (%d rows)",
		r.sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

func (r *DataReader) readCSV() (*ratings.RawTable, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// processRows trims headers and cells and keys each data row by header.
// Ragged rows keep whatever cells they have; missing cells parse as blank.
func (r *DataReader) processRows(rows [][]string) (*ratings.RawTable, error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptyDataset
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]ratings.RawRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rowData := make(ratings.RawRow, len(headers))
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(strings.TrimPrefix(r.ext, ".")), len(headers), len(dataRows))

	return &ratings.RawTable{Headers: headers, Rows: dataRows}, nil
}
