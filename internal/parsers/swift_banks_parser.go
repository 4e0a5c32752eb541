package parser

import (
	"log/slog"
	"strings"

	"github.com/zdziszkee/swift-registry/internal/models"
	readers "github.com/zdziszkee/swift-registry/internal/readers"
	"github.com/zdziszkee/swift-registry/internal/swiftcode"
	"github.com/zdziszkee/swift-registry/internal/validation"
)

// ParsedRecord is a row ready for admission, keeping its row number for reporting.
type ParsedRecord struct {
	Index     int
	Candidate validation.Candidate
}

type SwiftBanksParser interface {
	ParseSwiftBanks(records []readers.SwiftBankRecord) (parsed []ParsedRecord, skipped int)
}

// DefaultSwiftBanksParser drops blank rows and rows with an empty required
// field. Everything else is left to the validation engine.
type DefaultSwiftBanksParser struct {
	Logger *slog.Logger
}

func (p DefaultSwiftBanksParser) ParseSwiftBanks(records []readers.SwiftBankRecord) ([]ParsedRecord, int) {
	parsed := make([]ParsedRecord, 0, len(records))
	skipped := 0

	for _, record := range records {
		if record.Blank() {
			skipped++
			continue
		}
		if missing := missingFields(record); len(missing) > 0 {
			p.debug("row skipped", slog.Int("row", record.Index), slog.String("missing", strings.Join(missing, ", ")))
			skipped++
			continue
		}

		code := swiftcode.Normalize(record.SwiftCode)
		// The headquarter flag is derived from the suffix; the file has no column for it.
		isHeadquarter := strings.HasSuffix(code, models.HeadquarterSuffix)
		parsed = append(parsed, ParsedRecord{
			Index: record.Index,
			Candidate: validation.Candidate{
				SwiftCode:     &code,
				BankName:      ptr(record.BankName),
				Address:       ptr(record.Address),
				CountryISO2:   ptr(record.CountryISO2),
				CountryName:   ptr(record.CountryName),
				IsHeadquarter: &isHeadquarter,
			},
		})
	}

	return parsed, skipped
}

func (p DefaultSwiftBanksParser) debug(msg string, attrs ...any) {
	if p.Logger != nil {
		p.Logger.Debug(msg, attrs...)
	}
}

func missingFields(r readers.SwiftBankRecord) []string {
	var missing []string
	if r.SwiftCode == "" {
		missing = append(missing, "SWIFT CODE")
	}
	if r.BankName == "" {
		missing = append(missing, "NAME")
	}
	if r.Address == "" {
		missing = append(missing, "ADDRESS")
	}
	if r.CountryISO2 == "" {
		missing = append(missing, "COUNTRY ISO2 CODE")
	}
	if r.CountryName == "" {
		missing = append(missing, "COUNTRY NAME")
	}
	return missing
}

func ptr[T any](v T) *T {
	return &v
}
