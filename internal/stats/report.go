// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/salaryscope/internal/model"
)

// SummarySource provides per-group aggregates.
type SummarySource interface {
	GroupSummaries(ctx context.Context, field model.Field) ([]model.GroupSummary, error)
}

// RecordSummaries aggregates an in-memory record slice.
type RecordSummaries []model.Record

// GroupSummaries implements SummarySource.
func (r RecordSummaries) GroupSummaries(_ context.Context, field model.Field) ([]model.GroupSummary, error) {
	return Summarize(r, field), nil
}

// Report contains precomputed data for summary rendering.
type Report struct {
	Field     model.Field
	Responses int
	Groups    []model.GroupSummary
}

// BuildReport loads group aggregates and keeps the top groups by count.
// A non-positive top keeps every group.
func BuildReport(ctx context.Context, src SummarySource, field model.Field, top int) (Report, error) {
	groups, err := src.GroupSummaries(ctx, field)
	if err != nil {
		return Report{}, err
	}
	responses := 0
	for _, g := range groups {
		responses += g.Count
	}
	if top <= 0 {
		top = len(groups)
	}
	return Report{
		Field:     field,
		Responses: responses,
		Groups:    TopGroups(groups, top),
	}, nil
}

// RenderReport prints the report as an aligned table.
func RenderReport(w io.Writer, report Report) error {
	rows := make([][]string, 0, len(report.Groups))
	for _, g := range report.Groups {
		rows = append(rows, []string{
			g.Value,
			strconv.Itoa(g.Count),
			formatSalary(g.Mean),
			formatSalary(g.Min),
			formatSalary(g.Max),
		})
	}
	headers := []string{fieldTitle(report.Field), "Responses", "Mean", "Min", "Max"}
	for _, line := range (textTable{headers: headers, rows: rows, right: map[int]bool{1: true, 2: true, 3: true, 4: true}, maxCell: maxCellWidth}).lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d responses in %d groups\n", report.Responses, len(report.Groups))
	return err
}

// RenderRecords prints cleaned records in source order.
func RenderRecords(w io.Writer, records []model.Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Company, r.Hours, r.Sex, r.Experience, formatSalary(r.Salary), r.Location})
	}
	headers := []string{"Company", "Hours", "Sex", "Experience", "Salary", "Location"}
	for _, line := range (textTable{headers: headers, rows: rows, right: map[int]bool{4: true}, maxCell: maxCellWidth}).lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatSalary(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func fieldTitle(f model.Field) string {
	switch f {
	case model.FieldSex:
		return "Sex"
	case model.FieldCompany:
		return "Company"
	case model.FieldLocation:
		return "Location"
	case model.FieldExperience:
		return "Experience"
	default:
		return string(f)
	}
}
