package export

import (
	"fmt"

	"pmml-exporter/internal/model"
	"pmml-exporter/internal/pmml"
)

const (
	functionClassification = "classification"
	functionRegression     = "regression"

	opContinuous  = "continuous"
	opCategorical = "categorical"
	typeDouble    = "double"
	typeString    = "string"

	usageActive    = "active"
	usageTarget    = "target"
	usagePredicted = "predicted"
)

// serializer is implemented by one type per model variant: tree,
// linear regression, logistic regression and segmentation.
type serializer interface {
	nFeatures() int
	nClasses() int
	classification() bool
	emit(c *emitContext) pmml.Model
}

func newSerializer(est model.Estimator) (serializer, error) {
	switch m := est.(type) {
	case *model.Tree:
		return &treeSerializer{tree: m}, nil
	case *model.Forest:
		return &segmentationSerializer{forest: m}, nil
	case *model.LinearRegression:
		return &linearSerializer{model: m}, nil
	case *model.LogisticRegression:
		return &logisticSerializer{model: m}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedModel, est)
}

// emitContext carries the validated names into the serializers.
type emitContext struct {
	modelName    string
	targetName   string
	featureNames []string
	targetValues []string

	// predictorNames are the fields model elements refer to: the derived
	// names when local transformations exist, otherwise featureNames.
	predictorNames []string
	local          *pmml.LocalTransformations
}

func (c *emitContext) miningSchema(targetUsage string) pmml.MiningSchema {
	fields := make([]pmml.MiningField, 0, len(c.featureNames)+1)
	fields = append(fields, pmml.MiningField{Name: c.targetName, UsageType: targetUsage})
	for _, f := range c.featureNames {
		fields = append(fields, pmml.MiningField{Name: f, UsageType: usageActive})
	}
	return pmml.MiningSchema{Fields: fields}
}

// output declares one probability per target category, in order.
func (c *emitContext) output() *pmml.Output {
	out := &pmml.Output{}
	for _, t := range c.targetValues {
		out.Fields = append(out.Fields, pmml.OutputField{
			Name:     "probability_" + t,
			OpType:   opContinuous,
			DataType: typeDouble,
			Feature:  "probability",
			Value:    t,
		})
	}
	return out
}
