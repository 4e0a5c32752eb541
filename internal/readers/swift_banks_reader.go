package reader

import (
	"io"
)

// SwiftBankRecord is one raw data row, trimmed but otherwise unvalidated.
type SwiftBankRecord struct {
	Index       int    // 1-based data row number, header excluded
	SwiftCode   string // SWIFT CODE
	BankName    string // NAME
	Address     string // ADDRESS
	CountryISO2 string // COUNTRY ISO2 CODE
	CountryName string // COUNTRY NAME
}

// Blank reports whether every field of the row is empty.
func (r SwiftBankRecord) Blank() bool {
	return r.SwiftCode == "" && r.BankName == "" && r.Address == "" && r.CountryISO2 == "" && r.CountryName == ""
}

// SwiftBanksReader turns an input stream into raw bank records
type SwiftBanksReader interface {
	LoadSwiftBanks(reader io.Reader) ([]SwiftBankRecord, error)
}
