package chart

import (
	"fmt"

	"github.com/verte-zerg/salaryscope/internal/model"
	"github.com/verte-zerg/salaryscope/internal/survey"
)

// Axis titles.
const (
	XTitleSalary     = "Salary"
	YTitleShare      = "Share (%)"
	YTitleCount      = "Count (n)"
	XTitleExperience = "Experience (years)"
)

// Render builds the chart described by req. It never fails: an empty
// selection or dataset yields a spec with no rows.
func Render(ds *survey.Dataset, req model.ChartRequest) model.ChartSpec {
	req = req.Sanitize()
	records := Filter(ds, req.GroupBy, req.Filter)

	if req.Kind == model.KindBox {
		spec := model.ChartSpec{
			Kind:    model.KindBox,
			Title:   "Salary by experience",
			XTitle:  XTitleExperience,
			YTitle:  XTitleSalary,
			GroupBy: req.GroupBy,
			Rows:    len(records),
			Boxes:   boxes(records, req.ColorSplit),
		}
		if req.ColorSplit {
			spec.Title += " and sex"
		}
		return spec
	}

	spec := model.ChartSpec{
		Kind:       model.KindHistogram,
		Title:      fmt.Sprintf("Salary distribution by %s", req.GroupBy),
		XTitle:     XTitleSalary,
		YTitle:     YTitleCount,
		GroupBy:    req.GroupBy,
		BinSize:    req.BinSize,
		Normalized: req.Normalize,
		Rows:       len(records),
		Histograms: histograms(records, req.GroupBy, req.BinSize, req.Normalize),
	}
	if req.Normalize {
		spec.YTitle = YTitleShare
	}
	return spec
}
