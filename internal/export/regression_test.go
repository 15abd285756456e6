package export

import (
	"testing"

	"pmml-exporter/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLinearRegression(t *testing.T) {
	lr := &model.LinearRegression{Coef: []float64{0.5, -1.25, 3}, Intercept: 2.5}

	res, err := newTestExporter().Export(lr, nil, Options{
		FeatureNames: []string{"a", "b", "c"},
		TargetValues: []string{"ignored"},
		TargetName:   "price",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Advisories, "target values are not checked for regression")

	doc := roundTrip(t, res)
	target := doc.DataDictionary.Fields[0]
	assert.Equal(t, "price", target.Name)
	assert.Equal(t, "continuous", target.OpType)
	assert.Equal(t, "double", target.DataType)
	assert.Empty(t, target.Values)

	rm := doc.RegressionModel
	require.NotNil(t, rm)
	assert.Equal(t, "regression", rm.FunctionName)
	assert.Equal(t, "linearRegression", rm.ModelType)
	assert.Empty(t, rm.NormalizationMethod)
	assert.Nil(t, rm.Output)
	assert.Equal(t, "predicted", rm.MiningSchema.Fields[0].UsageType)

	require.Len(t, rm.Tables, 1)
	table := rm.Tables[0]
	assert.Equal(t, "2.5", table.Intercept)
	assert.Empty(t, table.TargetCategory)
	require.Len(t, table.Predictors, 3)
	assert.Equal(t, "b", table.Predictors[1].Name)
	assert.Equal(t, "-1.25", table.Predictors[1].Coefficient)
}

func TestLogisticRegression_Binary(t *testing.T) {
	lr := &model.LogisticRegression{
		Coef:      mat.NewDense(1, 2, []float64{0.5, -1.25}),
		Intercept: []float64{0.75},
	}

	res, err := newTestExporter().Export(lr, nil, Options{
		FeatureNames: []string{"age", "income"},
		TargetValues: []string{"no", "yes"},
	})
	require.NoError(t, err)
	rm := roundTrip(t, res).RegressionModel
	require.NotNil(t, rm)

	assert.Equal(t, "classification", rm.FunctionName)
	assert.Equal(t, "logisticRegression", rm.ModelType)
	assert.Equal(t, "logit", rm.NormalizationMethod)
	assert.Equal(t, "target", rm.MiningSchema.Fields[0].UsageType)

	require.Len(t, rm.Tables, 2)
	assert.Equal(t, "yes", rm.Tables[0].TargetCategory)
	assert.Equal(t, "0.75", rm.Tables[0].Intercept)
	require.Len(t, rm.Tables[0].Predictors, 2)
	assert.Equal(t, "age", rm.Tables[0].Predictors[0].Name)
	assert.Equal(t, "0.5", rm.Tables[0].Predictors[0].Coefficient)

	ref := rm.Tables[1]
	assert.Equal(t, "no", ref.TargetCategory)
	assert.Equal(t, "0", ref.Intercept)
	assert.Empty(t, ref.Predictors)

	require.NotNil(t, rm.Output)
	require.Len(t, rm.Output.Fields, 2)
	assert.Equal(t, "probability_no", rm.Output.Fields[0].Name)
	assert.Equal(t, "probability_yes", rm.Output.Fields[1].Name)
	assert.Equal(t, "double", rm.Output.Fields[1].DataType)
}

func TestLogisticRegression_OneVsRest(t *testing.T) {
	lr := &model.LogisticRegression{
		Coef: mat.NewDense(3, 2, []float64{
			1, 2,
			3, 4,
			5, 6,
		}),
		Intercept: []float64{-1, -2, -3},
	}

	res, err := newTestExporter().Export(lr, nil, Options{
		FeatureNames: []string{"f0", "f1"},
		TargetValues: []string{"a", "b", "c"},
	})
	require.NoError(t, err)
	rm := roundTrip(t, res).RegressionModel
	require.Len(t, rm.Tables, 3)

	categories := []string{rm.Tables[0].TargetCategory, rm.Tables[1].TargetCategory, rm.Tables[2].TargetCategory}
	assert.Equal(t, []string{"c", "b", "a"}, categories)

	references := 0
	for _, table := range rm.Tables {
		if len(table.Predictors) == 0 {
			references++
			assert.Equal(t, "0", table.Intercept)
		}
	}
	assert.Equal(t, 1, references)

	c := rm.Tables[0]
	assert.Equal(t, "-3", c.Intercept)
	assert.Equal(t, "5", c.Predictors[0].Coefficient)
	assert.Equal(t, "6", c.Predictors[1].Coefficient)

	b := rm.Tables[1]
	assert.Equal(t, "-2", b.Intercept)
	assert.Equal(t, "3", b.Predictors[0].Coefficient)
}

func TestLogisticRegression_GeneratedTargets(t *testing.T) {
	lr := &model.LogisticRegression{
		Coef:      mat.NewDense(1, 1, []float64{2}),
		Intercept: []float64{0},
	}

	res, err := newTestExporter().Export(lr, nil, Options{FeatureNames: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, []AdvisoryCode{AdvisoryTargetValues}, advisoryCodes(res.Advisories))

	rm := res.Document.RegressionModel
	assert.Equal(t, "y1", rm.Tables[0].TargetCategory)
	assert.Equal(t, "y0", rm.Tables[1].TargetCategory)
}
