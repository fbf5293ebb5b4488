package model

import "testing"

func TestSelectionNilVersusEmpty(t *testing.T) {
	var all Selection
	if !all.Has("anything") {
		t.Fatalf("nil selection should keep every value")
	}
	none := NewSelection()
	if none.Has("gofore") {
		t.Fatalf("empty selection should keep nothing")
	}
	some := NewSelection("gofore")
	if !some.Has("gofore") || some.Has("siili") {
		t.Fatalf("unexpected membership for %v", some)
	}
}

func TestSanitize(t *testing.T) {
	got := ChartRequest{GroupBy: "salary", BinSize: 1234}.Sanitize()
	if got.Kind != KindHistogram || got.GroupBy != FieldSex || got.BinSize != MaxBinSize {
		t.Fatalf("unexpected sanitized request: %+v", got)
	}
	box := ChartRequest{Kind: KindBox, GroupBy: FieldCompany}.Sanitize()
	if box.GroupBy != FieldExperience {
		t.Fatalf("box plots group by experience, got %q", box.GroupBy)
	}
}

func TestRecordValue(t *testing.T) {
	r := Record{Company: "gofore", Sex: SexMale, Location: "oulu", Experience: "3"}
	for field, want := range map[Field]string{
		FieldCompany:    "gofore",
		FieldSex:        SexMale,
		FieldLocation:   "oulu",
		FieldExperience: "3",
		Field("x"):      "",
	} {
		if got := r.Value(field); got != want {
			t.Fatalf("Value(%q) = %q, want %q", field, got, want)
		}
	}
}
