// Package chart turns a cleaned survey dataset into chart descriptions.
package chart

import (
	"github.com/verte-zerg/salaryscope/internal/model"
	"github.com/verte-zerg/salaryscope/internal/survey"
)

// Filter returns the records whose field value passes sel, in source order.
func Filter(ds *survey.Dataset, field model.Field, sel model.Selection) []model.Record {
	if ds == nil {
		return nil
	}
	var out []model.Record
	ds.Each(func(r model.Record) {
		if sel.Has(r.Value(field)) {
			out = append(out, r)
		}
	})
	return out
}

// Options lists the distinct values of field in first-appearance order.
func Options(ds *survey.Dataset, field model.Field) []string {
	if ds == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	ds.Each(func(r model.Record) {
		v := r.Value(field)
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	})
	return out
}
