// Package model defines shared data structures.
package model

import "math"

// Canonical sex values produced by the cleaning step.
const (
	SexMale    = "male"
	SexFemale  = "female"
	SexUnknown = "other/unknown"
)

// Missing is the placeholder for an empty company or location.
const Missing = "-"

// Bin size bounds for histogram requests.
const (
	MinBinSize     = 100
	MaxBinSize     = 1000
	BinSizeStep    = 100
	DefaultBinSize = MinBinSize
)

// Record is one cleaned survey response.
type Record struct {
	Company    string  `json:"company"`
	Hours      string  `json:"hours"`
	Sex        string  `json:"sex"`
	Experience string  `json:"experience"`
	Salary     float64 `json:"salary"`
	Location   string  `json:"location"`
}

// Field names a categorical record field charts can group by.
type Field string

// Group fields.
const (
	FieldSex        Field = "sex"
	FieldCompany    Field = "company"
	FieldLocation   Field = "location"
	FieldExperience Field = "experience"
)

// Fields lists the group fields in display order.
var Fields = []Field{FieldSex, FieldCompany, FieldLocation, FieldExperience}

// ParseField resolves a field name, reporting whether it is known.
func ParseField(name string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// Value returns the record's value for the field.
func (r Record) Value(f Field) string {
	switch f {
	case FieldSex:
		return r.Sex
	case FieldCompany:
		return r.Company
	case FieldLocation:
		return r.Location
	case FieldExperience:
		return r.Experience
	default:
		return ""
	}
}

// ChartKind selects the chart type.
type ChartKind string

// Chart kinds.
const (
	KindHistogram ChartKind = "histogram"
	KindBox       ChartKind = "box"
)

// Selection restricts records to the listed group values.
// A nil Selection keeps every record; a non-nil empty one keeps none.
type Selection map[string]struct{}

// NewSelection builds a non-nil selection from values.
func NewSelection(values ...string) Selection {
	s := make(Selection, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v passes the selection.
func (s Selection) Has(v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}

// ChartRequest is built from UI state for a single render.
type ChartRequest struct {
	Kind       ChartKind
	GroupBy    Field
	Filter     Selection
	Normalize  bool
	BinSize    int
	ColorSplit bool
}

// Sanitize clamps the bin size onto the 100-1000 grid and fills defaults.
func (r ChartRequest) Sanitize() ChartRequest {
	if r.Kind != KindBox {
		r.Kind = KindHistogram
	}
	if _, ok := ParseField(string(r.GroupBy)); !ok {
		r.GroupBy = FieldSex
	}
	if r.Kind == KindBox {
		r.GroupBy = FieldExperience
	}
	r.BinSize = ClampBinSize(r.BinSize)
	return r
}

// ClampBinSize rounds n to the nearest step and keeps it within bounds.
func ClampBinSize(n int) int {
	if n <= 0 {
		return DefaultBinSize
	}
	n = int(math.Round(float64(n)/BinSizeStep)) * BinSizeStep
	if n < MinBinSize {
		return MinBinSize
	}
	if n > MaxBinSize {
		return MaxBinSize
	}
	return n
}

// ChartSpec is a renderer-agnostic chart description.
type ChartSpec struct {
	Kind       ChartKind         `json:"kind"`
	Title      string            `json:"title"`
	XTitle     string            `json:"x_title"`
	YTitle     string            `json:"y_title"`
	GroupBy    Field             `json:"group_by"`
	BinSize    int               `json:"bin_size,omitempty"`
	Normalized bool              `json:"normalized"`
	Rows       int               `json:"rows"`
	Histograms []HistogramSeries `json:"histograms,omitempty"`
	Boxes      []BoxSeries       `json:"boxes,omitempty"`
}

// Empty reports whether the chart has no data to draw.
func (c ChartSpec) Empty() bool {
	return c.Rows == 0
}

// HistogramSeries holds the bins for one group value.
type HistogramSeries struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
	Bins  []Bin  `json:"bins"`
}

// Bin is a half-open salary interval [Lower, Upper).
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// BoxSeries holds one box per category for a series.
type BoxSeries struct {
	Name  string `json:"name"`
	Boxes []Box  `json:"boxes"`
}

// Box summarizes the salary distribution of one category.
type Box struct {
	Category     string    `json:"category"`
	N            int       `json:"n"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers,omitempty"`
}

// GroupSummary aggregates salaries for one group value.
type GroupSummary struct {
	Value string
	Count int
	Mean  float64
	Min   float64
	Max   float64
}
