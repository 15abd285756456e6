package export

import (
	"fmt"

	"pmml-exporter/internal/model"
	"pmml-exporter/internal/pmml"
)

// DerivedSuffix is appended to a feature name to name its scaled field.
const DerivedSuffix = "*"

// localTransformations declares one scaled field per feature and returns
// the derived names in feature order. Features whose scaling parameters
// would divide by zero get a constant 0 field and an advisory.
func localTransformations(tr model.Transformer, features []string) (*pmml.LocalTransformations, []string, []Advisory) {
	lt := &pmml.LocalTransformations{DerivedFields: make([]pmml.DerivedField, len(features))}
	names := make([]string, len(features))
	var advisories []Advisory

	for i, f := range features {
		names[i] = f + DerivedSuffix
		df := pmml.DerivedField{Name: names[i], OpType: opContinuous, DataType: typeDouble}

		var norm *pmml.NormContinuous
		var reason string
		switch s := tr.(type) {
		case *model.StandardScaler:
			norm, reason = standardNorm(f, s.Mean[i], s.Scale[i])
		case *model.MinMaxScaler:
			lo, hi := s.Range()
			norm, reason = minMaxNorm(f, s.DataMin[i], s.DataMax[i], lo, hi)
		}

		if norm != nil {
			df.NormContinuous = norm
		} else {
			df.Constant = &pmml.Constant{DataType: typeDouble, Value: "0"}
			advisories = append(advisories, Advisory{
				Code:    AdvisoryDegenerateScaling,
				Field:   f,
				Message: fmt.Sprintf("%s, avoiding scaling; check whether the data holds a single value", reason),
			})
		}
		lt.DerivedFields[i] = df
	}
	return lt, names, advisories
}

// standardNorm maps 0 to -mean/scale and mean to 0.
func standardNorm(field string, mean, scale float64) (*pmml.NormContinuous, string) {
	if mean == 0 {
		return nil, "zero mean"
	}
	if scale == 0 {
		return nil, "zero scale"
	}
	return &pmml.NormContinuous{
		Field: field,
		LinearNorms: []pmml.LinearNorm{
			{Orig: "0", Norm: pmml.Number(-mean / scale)},
			{Orig: pmml.Number(mean), Norm: "0"},
		},
	}, ""
}

// minMaxNorm maps min to rangeLo and max to rangeHi.
func minMaxNorm(field string, lo, hi, rangeLo, rangeHi float64) (*pmml.NormContinuous, string) {
	if hi == lo {
		return nil, "zero range"
	}
	return &pmml.NormContinuous{
		Field: field,
		LinearNorms: []pmml.LinearNorm{
			{Orig: pmml.Number(lo), Norm: pmml.Number(rangeLo)},
			{Orig: pmml.Number(hi), Norm: pmml.Number(rangeHi)},
		},
	}, ""
}
