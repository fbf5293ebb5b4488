package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/salaryscope/internal/model"
	"github.com/verte-zerg/salaryscope/internal/survey"
)

func testDataset() *survey.Dataset {
	return survey.NewDataset("mem", []model.Record{
		{Company: "gofore", Sex: model.SexMale, Experience: "5", Salary: 3100, Location: "helsinki"},
		{Company: "siili", Sex: model.SexFemale, Experience: "10", Salary: 3400, Location: "tampere"},
		{Company: "gofore", Sex: model.SexMale, Experience: "2", Salary: 3600, Location: "helsinki"},
		{Company: "vincit", Sex: model.SexUnknown, Experience: "", Salary: 5250, Location: "-"},
		{Company: "siili", Sex: model.SexFemale, Experience: "10", Salary: 4800, Location: "espoo"},
		{Company: "gofore", Sex: model.SexMale, Experience: "yli 20", Salary: 7000, Location: "helsinki"},
	})
}

func TestEmptyCompanySelectionGivesNoRows(t *testing.T) {
	spec := Render(testDataset(), model.ChartRequest{
		GroupBy: model.FieldCompany,
		Filter:  model.NewSelection(),
	})
	assert.Equal(t, 0, spec.Rows)
	assert.True(t, spec.Empty())
	assert.Empty(t, spec.Histograms)
	assert.Empty(t, Filter(testDataset(), model.FieldCompany, model.Selection{}))
}

func TestNilSelectionKeepsEverything(t *testing.T) {
	spec := Render(testDataset(), model.ChartRequest{GroupBy: model.FieldCompany})
	assert.Equal(t, 6, spec.Rows)
}

func TestNormalizedSeriesSumToHundred(t *testing.T) {
	for _, field := range model.Fields {
		spec := Render(testDataset(), model.ChartRequest{
			GroupBy:   field,
			Normalize: true,
			BinSize:   500,
		})
		require.Equal(t, 500, spec.BinSize)
		require.NotEmpty(t, spec.Histograms, "field %s", field)
		for _, s := range spec.Histograms {
			sum := 0.0
			for _, b := range s.Bins {
				sum += b.Value
			}
			assert.InDelta(t, 100, sum, 1e-9, "series %s/%s", field, s.Name)
		}
		assert.Equal(t, YTitleShare, spec.YTitle)
	}
}

func TestHistogramSharedAlignedBins(t *testing.T) {
	spec := Render(testDataset(), model.ChartRequest{
		GroupBy: model.FieldSex,
		Filter:  model.NewSelection(model.SexMale, model.SexFemale),
		BinSize: 500,
	})
	require.Len(t, spec.Histograms, 2)
	assert.Equal(t, model.SexMale, spec.Histograms[0].Name)
	assert.Equal(t, model.SexFemale, spec.Histograms[1].Name)
	assert.Equal(t, YTitleCount, spec.YTitle)
	assert.Equal(t, XTitleSalary, spec.XTitle)

	male := spec.Histograms[0]
	female := spec.Histograms[1]
	require.Equal(t, len(male.Bins), len(female.Bins))
	assert.Equal(t, 3000.0, male.Bins[0].Lower)
	assert.Equal(t, 3500.0, male.Bins[0].Upper)
	assert.Equal(t, 7500.0, male.Bins[len(male.Bins)-1].Upper)
	for i := range male.Bins {
		assert.Equal(t, male.Bins[i].Lower, female.Bins[i].Lower)
	}
	assert.Equal(t, 1, male.Bins[0].Count)
	assert.Equal(t, 1, male.Bins[1].Count)
	assert.Equal(t, 3, male.Total)
	assert.Equal(t, 1.0, female.Bins[0].Value)
	assert.Equal(t, 2, female.Total)
}

func TestHistogramOutlierSalaryCapsBins(t *testing.T) {
	ds := survey.NewDataset("mem", []model.Record{
		{Company: "gofore", Sex: model.SexMale, Salary: 4200},
		{Company: "siili", Sex: model.SexMale, Salary: 1e300},
		{Company: "vincit", Sex: model.SexFemale, Salary: 42000000000},
	})
	spec := Render(ds, model.ChartRequest{GroupBy: model.FieldSex, BinSize: 500, Normalize: true})
	require.Len(t, spec.Histograms, 2)

	male := spec.Histograms[0]
	require.Len(t, male.Bins, maxBins)
	assert.Equal(t, 4000.0, male.Bins[0].Lower)
	assert.Equal(t, 1, male.Bins[0].Count)
	assert.Equal(t, 1, male.Bins[maxBins-1].Count)
	assert.Equal(t, 2, male.Total)

	female := spec.Histograms[1]
	require.Len(t, female.Bins, maxBins)
	assert.Equal(t, 1, female.Bins[maxBins-1].Count)
	assert.InDelta(t, 100, female.Bins[maxBins-1].Value, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, spec, 0, 0))
}

func TestRenderClampsBinSize(t *testing.T) {
	cases := map[int]int{0: 100, 50: 100, 149: 100, 150: 200, 640: 600, 5000: 1000}
	for in, want := range cases {
		spec := Render(testDataset(), model.ChartRequest{BinSize: in})
		assert.Equal(t, want, spec.BinSize, "bin size %d", in)
	}
}

func TestBoxPlotNaturalOrder(t *testing.T) {
	spec := Render(testDataset(), model.ChartRequest{Kind: model.KindBox})
	assert.Equal(t, model.KindBox, spec.Kind)
	assert.Equal(t, model.FieldExperience, spec.GroupBy)
	require.Len(t, spec.Boxes, 1)
	assert.Equal(t, allSeries, spec.Boxes[0].Name)

	var categories []string
	for _, b := range spec.Boxes[0].Boxes {
		categories = append(categories, b.Category)
	}
	assert.Equal(t, []string{"2", "5", "10", "-", "yli 20"}, categories)

	ten := spec.Boxes[0].Boxes[2]
	assert.Equal(t, 2, ten.N)
	assert.InDelta(t, 4100, ten.Median, 1e-9)
}

func TestBoxPlotSplitBySex(t *testing.T) {
	spec := Render(testDataset(), model.ChartRequest{Kind: model.KindBox, ColorSplit: true})
	require.Len(t, spec.Boxes, 3)
	assert.Equal(t, model.SexMale, spec.Boxes[0].Name)
	assert.Equal(t, model.SexFemale, spec.Boxes[1].Name)
	assert.Equal(t, model.SexUnknown, spec.Boxes[2].Name)
	assert.Len(t, spec.Boxes[0].Boxes, 3)
}

func TestOptionsFirstAppearance(t *testing.T) {
	assert.Equal(t, []string{"gofore", "siili", "vincit"}, Options(testDataset(), model.FieldCompany))
	assert.Equal(t, []string{"helsinki", "tampere", "-", "espoo"}, Options(testDataset(), model.FieldLocation))
	assert.Nil(t, Options(nil, model.FieldSex))
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("2", "10"))
	assert.True(t, naturalLess("10", "10 vuotta"))
	assert.True(t, naturalLess("20", "-"))
	assert.False(t, naturalLess("b", "a"))
}

func TestWritePNG(t *testing.T) {
	for _, req := range []model.ChartRequest{
		{GroupBy: model.FieldSex, BinSize: 500},
		{GroupBy: model.FieldLocation, Normalize: true},
		{Kind: model.KindBox, ColorSplit: true},
	} {
		var buf bytes.Buffer
		require.NoError(t, WritePNG(&buf, Render(testDataset(), req), 640, 360))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "request %+v", req)
	}
}

func TestWritePNGEmpty(t *testing.T) {
	spec := Render(testDataset(), model.ChartRequest{GroupBy: model.FieldCompany, Filter: model.NewSelection()})
	var buf bytes.Buffer
	assert.ErrorIs(t, WritePNG(&buf, spec, 0, 0), ErrEmptyChart)
}
