// Package loader bulk-imports bank records from a file into the registry.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zdziszkee/swift-registry/internal/metrics"
	"github.com/zdziszkee/swift-registry/internal/models"
	parser "github.com/zdziszkee/swift-registry/internal/parsers"
	readers "github.com/zdziszkee/swift-registry/internal/readers"
	"github.com/zdziszkee/swift-registry/internal/validation"
)

// Inserter admits one candidate into the registry.
type Inserter interface {
	Insert(ctx context.Context, candidate validation.Candidate) (models.Bank, error)
}

// Report summarizes a load. Rows = Inserted + Duplicates + Skipped + Rejected.
type Report struct {
	Rows       int
	Inserted   int
	Duplicates int
	Skipped    int
	Rejected   int
}

type Loader struct {
	reader   readers.SwiftBanksReader
	parser   parser.SwiftBanksParser
	inserter Inserter
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func New(reader readers.SwiftBanksReader, p parser.SwiftBanksParser, inserter Inserter, logger *slog.Logger, m *metrics.Metrics) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{reader: reader, parser: p, inserter: inserter, logger: logger, metrics: m}
}

// LoadFile opens path and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	report, err := l.Load(ctx, f)
	if err != nil {
		return report, fmt.Errorf("load %s: %w", path, err)
	}
	return report, nil
}

// Load inserts every usable row of r, one transaction per row. Duplicates
// are counted, not reported as errors; other rejections are logged and the
// load carries on. Only read failures and cancellation abort it.
func (l *Loader) Load(ctx context.Context, r io.Reader) (Report, error) {
	records, err := l.reader.LoadSwiftBanks(r)
	if err != nil {
		return Report{}, err
	}

	parsed, skipped := l.parser.ParseSwiftBanks(records)
	report := Report{Rows: len(records), Skipped: skipped}
	l.metrics.ObserveIngest(metrics.OutcomeSkipped, skipped)

	for _, rec := range parsed {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		_, err := l.inserter.Insert(ctx, rec.Candidate)
		switch {
		case err == nil:
			report.Inserted++
			l.metrics.ObserveIngest(metrics.OutcomeSuccess, 1)
		case errors.Is(err, validation.ErrDuplicateRecord):
			report.Duplicates++
			l.metrics.ObserveIngest(metrics.OutcomeDuplicate, 1)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return report, err
		default:
			report.Rejected++
			l.metrics.ObserveIngest(metrics.OutcomeInvalid, 1)
			l.logger.WarnContext(ctx, "row rejected",
				slog.Int("row", rec.Index),
				slog.String("swift_code", *rec.Candidate.SwiftCode),
				slog.String("reason", err.Error()))
		}
	}

	l.logger.InfoContext(ctx, "load finished",
		slog.Int("rows", report.Rows),
		slog.Int("inserted", report.Inserted),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("skipped", report.Skipped),
		slog.Int("rejected", report.Rejected))
	return report, nil
}
