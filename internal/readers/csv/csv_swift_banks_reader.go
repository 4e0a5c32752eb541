package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	readers "github.com/zdziszkee/swift-registry/internal/readers"
)

const (
	ColumnSwiftCode   = "SWIFT CODE"
	ColumnName        = "NAME"
	ColumnAddress     = "ADDRESS"
	ColumnCountryISO2 = "COUNTRY ISO2 CODE"
	ColumnCountryName = "COUNTRY NAME"
)

var requiredColumns = []string{ColumnCountryISO2, ColumnSwiftCode, ColumnName, ColumnAddress, ColumnCountryName}

// CSVSwiftBanksReader maps columns by header name. Column order is free and
// extra columns such as CODE TYPE or TIME ZONE are ignored.
type CSVSwiftBanksReader struct {
}

func (c *CSVSwiftBanksReader) LoadSwiftBanks(reader io.Reader) ([]readers.SwiftBankRecord, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.ReuseRecord = true
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []readers.SwiftBankRecord{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	headerMap := map[string]int{}
	for i, col := range header {
		headerMap[normalizeColumn(col)] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := headerMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("invalid header: missing columns %s", strings.Join(missing, ", "))
	}

	records := []readers.SwiftBankRecord{}
	rowNum := 1
	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		// Short rows read as empty fields; the parser decides what to skip.
		getVal := func(field string) string {
			i := headerMap[field]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		records = append(records, readers.SwiftBankRecord{
			Index:       rowNum,
			SwiftCode:   getVal(ColumnSwiftCode),
			BankName:    getVal(ColumnName),
			Address:     getVal(ColumnAddress),
			CountryISO2: getVal(ColumnCountryISO2),
			CountryName: getVal(ColumnCountryName),
		})
		rowNum++
	}

	return records, nil
}

func normalizeColumn(col string) string {
	// A UTF-8 BOM survives on the first column of spreadsheet exports.
	col = strings.TrimPrefix(col, "\ufeff")
	return strings.Join(strings.Fields(strings.ToUpper(col)), " ")
}
