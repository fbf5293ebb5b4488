// Package survey loads and cleans salary survey exports.
package survey

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/verte-zerg/salaryscope/internal/config"
	"github.com/verte-zerg/salaryscope/internal/logging"
	"github.com/verte-zerg/salaryscope/internal/model"
)

// Survey column headers.
const (
	ColCompany    = "Työpaikka"
	ColHours      = "Työaika (jos työsuhteessa)"
	ColSex        = "Sukupuoli"
	ColExperience = "Työkokemus"
	ColSalary     = "Kuukausipalkka (brutto, euroina)"
	ColLocation   = "Sijainti"
)

// LongLocationHeader is the question text some exports use for ColLocation.
const LongLocationHeader = "Missä kaupungissa työpaikkasi pääasiallinen toimisto sijaitsee?"

var headerRenames = map[string]string{
	LongLocationHeader: ColLocation,
}

var requiredColumns = []string{ColCompany, ColHours, ColSex, ColExperience, ColSalary, ColLocation}

// Options configures cleaning.
type Options struct {
	Aliases config.AliasConfig
	Logger  *slog.Logger
}

// Dataset is the cleaned, read-only survey table.
type Dataset struct {
	source  string
	records []model.Record
	read    int
}

// NewDataset wraps already-clean records.
func NewDataset(source string, records []model.Record) *Dataset {
	return &Dataset{source: source, records: slices.Clone(records), read: len(records)}
}

// RestoreDataset wraps records persisted earlier together with the number of
// rows the original load read.
func RestoreDataset(source string, records []model.Record, rowsRead int) *Dataset {
	ds := NewDataset(source, records)
	if rowsRead > ds.read {
		ds.read = rowsRead
	}
	return ds
}

// Source returns the path the dataset was loaded from.
func (d *Dataset) Source() string { return d.source }

// Len returns the number of kept records.
func (d *Dataset) Len() int { return len(d.records) }

// RowsRead returns the number of data rows in the source.
func (d *Dataset) RowsRead() int { return d.read }

// Dropped returns the number of rows removed for a missing salary.
func (d *Dataset) Dropped() int { return d.read - len(d.records) }

// Records returns a copy of the records in source order.
func (d *Dataset) Records() []model.Record {
	return slices.Clone(d.records)
}

// Each calls fn for every record in source order.
func (d *Dataset) Each(fn func(model.Record)) {
	for _, r := range d.records {
		fn(r)
	}
}

// Load reads the source and cleans it.
func Load(ctx context.Context, src Source, opts Options) (*Dataset, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	canon, err := NewCanonicalizer(opts.Aliases)
	if err != nil {
		return nil, err
	}
	header, rows, err := readTable(ctx, src)
	if err != nil {
		return nil, err
	}
	ds := Clean(header, rows, canon, logger)
	ds.source = src.Path
	logger.Info("survey loaded",
		slog.String("source", src.Path),
		slog.Int("rows_read", ds.RowsRead()),
		slog.Int("rows_kept", ds.Len()),
		slog.Int("rows_dropped", ds.Dropped()),
	)
	return ds, nil
}

// Clean applies the column rename and value rules to raw rows.
func Clean(header []string, rows [][]string, canon *Canonicalizer, logger *slog.Logger) *Dataset {
	if logger == nil {
		logger = logging.Discard()
	}
	index := columnIndex(header)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			logger.Warn("survey column missing", slog.String("column", col))
		}
	}

	records := make([]model.Record, 0, len(rows))
	for i, row := range rows {
		get := func(col string) string {
			idx, ok := index[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}
		salary, ok := ParseSalary(get(ColSalary))
		if !ok {
			logger.Debug("dropping row without numeric salary",
				slog.Int("row", i+2),
				slog.String("salary", get(ColSalary)),
			)
			continue
		}
		records = append(records, model.Record{
			Company:    canon.Company(get(ColCompany)),
			Hours:      strings.TrimSpace(get(ColHours)),
			Sex:        canon.Sex(get(ColSex)),
			Experience: strings.TrimSpace(get(ColExperience)),
			Salary:     salary,
			Location:   canon.Location(get(ColLocation)),
		})
	}
	return &Dataset{records: records, read: len(rows)}
}

// columnIndex maps canonical column names to their positions; first match wins.
func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if renamed, ok := headerRenames[name]; ok {
			name = renamed
		}
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	return index
}
