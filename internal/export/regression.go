package export

import (
	"pmml-exporter/internal/model"
	"pmml-exporter/internal/pmml"
)

type linearSerializer struct {
	model *model.LinearRegression
}

func (s *linearSerializer) nFeatures() int       { return s.model.NFeatures() }
func (s *linearSerializer) nClasses() int        { return 1 }
func (s *linearSerializer) classification() bool { return false }

func (s *linearSerializer) emit(c *emitContext) pmml.Model {
	return &pmml.RegressionModel{
		ModelName:            c.modelName,
		FunctionName:         functionRegression,
		ModelType:            "linearRegression",
		MiningSchema:         c.miningSchema(usagePredicted),
		LocalTransformations: c.local,
		Tables: []pmml.RegressionTable{{
			Intercept:  pmml.Number(s.model.Intercept),
			Predictors: predictors(c, s.model.Coef),
		}},
	}
}

type logisticSerializer struct {
	model *model.LogisticRegression
}

func (s *logisticSerializer) nFeatures() int       { return s.model.NFeatures() }
func (s *logisticSerializer) nClasses() int        { return s.model.NClasses() }
func (s *logisticSerializer) classification() bool { return true }

// emit writes one table per category, walking the categories backwards.
// The first category is processed last and becomes the reference table:
// intercept 0 and no predictors.
func (s *logisticSerializer) emit(c *emitContext) pmml.Model {
	rm := &pmml.RegressionModel{
		ModelName:            c.modelName,
		FunctionName:         functionClassification,
		ModelType:            "logisticRegression",
		NormalizationMethod:  "logit",
		MiningSchema:         c.miningSchema(usageTarget),
		Output:               c.output(),
		LocalTransformations: c.local,
		Tables:               make([]pmml.RegressionTable, 0, len(c.targetValues)),
	}
	for i := len(c.targetValues) - 1; i >= 0; i-- {
		if i == 0 {
			rm.Tables = append(rm.Tables, pmml.RegressionTable{
				Intercept:      "0",
				TargetCategory: c.targetValues[i],
			})
			continue
		}
		coef, intercept := s.model.Row(s.row(i))
		rm.Tables = append(rm.Tables, pmml.RegressionTable{
			Intercept:      pmml.Number(intercept),
			TargetCategory: c.targetValues[i],
			Predictors:     predictors(c, coef),
		})
	}
	return rm
}

// row maps category i to its coefficient row. A binary model has a single
// row, which belongs to the second category.
func (s *logisticSerializer) row(i int) int {
	if s.model.Rows() == 1 {
		return 0
	}
	return i
}

func predictors(c *emitContext, coef []float64) []pmml.NumericPredictor {
	out := make([]pmml.NumericPredictor, len(coef))
	for i, v := range coef {
		out[i] = pmml.NumericPredictor{Name: c.predictorNames[i], Coefficient: pmml.Number(v)}
	}
	return out
}
