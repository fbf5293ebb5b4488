package stats

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/salaryscope/internal/model"
)

type failingSource struct{}

func (failingSource) GroupSummaries(context.Context, model.Field) ([]model.GroupSummary, error) {
	return nil, errors.New("boom")
}

func sampleRecords() []model.Record {
	return []model.Record{
		{Company: "gofore", Sex: model.SexMale, Experience: "5", Salary: 4000, Location: "helsinki"},
		{Company: "siili", Sex: model.SexFemale, Experience: "2", Salary: 3000, Location: "tampere"},
		{Company: "gofore", Sex: model.SexFemale, Experience: "10", Salary: 5000, Location: "helsinki"},
	}
}

func TestBuildReport(t *testing.T) {
	report, err := BuildReport(context.Background(), RecordSummaries(sampleRecords()), model.FieldCompany, 1)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Responses != 3 {
		t.Fatalf("expected 3 responses, got %d", report.Responses)
	}
	if len(report.Groups) != 1 || report.Groups[0].Value != "gofore" {
		t.Fatalf("unexpected groups: %+v", report.Groups)
	}
	if report.Groups[0].Mean != 4500 || report.Groups[0].Min != 4000 || report.Groups[0].Max != 5000 {
		t.Fatalf("unexpected aggregate: %+v", report.Groups[0])
	}
}

func TestBuildReportKeepsAllGroups(t *testing.T) {
	report, err := BuildReport(context.Background(), RecordSummaries(sampleRecords()), model.FieldSex, 0)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(report.Groups))
	}
}

func TestBuildReportError(t *testing.T) {
	if _, err := BuildReport(context.Background(), failingSource{}, model.FieldSex, 0); err == nil {
		t.Fatalf("expected error from source")
	}
}

func TestRenderReport(t *testing.T) {
	report := Report{
		Field:     model.FieldLocation,
		Responses: 3,
		Groups: []model.GroupSummary{
			{Value: "helsinki", Count: 2, Mean: 4500, Min: 4000, Max: 5000},
			{Value: "tampere", Count: 1, Mean: 3000, Min: 3000, Max: 3000},
		},
	}
	var buf bytes.Buffer
	if err := RenderReport(&buf, report); err != nil {
		t.Fatalf("render report: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Location") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[3] != "3 responses in 2 groups" {
		t.Fatalf("unexpected footer: %q", lines[3])
	}
}

func TestRenderRecords(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderRecords(&buf, sampleRecords()); err != nil {
		t.Fatalf("render records: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "4000.00") || !strings.Contains(out, "tampere") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if got := len(strings.Split(strings.TrimSpace(out), "\n")); got != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", got)
	}
}
