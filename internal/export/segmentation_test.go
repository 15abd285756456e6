package export

import (
	"testing"

	"pmml-exporter/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func irisForest(k int) *model.Forest {
	f := &model.Forest{Features: 4, Classes: 3}
	for i := 0; i < k; i++ {
		f.Estimators = append(f.Estimators, irisTree())
	}
	return f
}

func TestSegmentation(t *testing.T) {
	res, err := newTestExporter().Export(irisForest(3), nil, Options{
		FeatureNames: irisFeatures,
		TargetValues: irisClasses,
		ModelName:    "iris-forest",
	})
	require.NoError(t, err)
	doc := roundTrip(t, res)

	mm := doc.MiningModel
	require.NotNil(t, mm)
	assert.Nil(t, doc.TreeModel)
	assert.Equal(t, "iris-forest", mm.ModelName)
	assert.Equal(t, "classification", mm.FunctionName)
	assert.Equal(t, "target", mm.MiningSchema.Fields[0].UsageType)
	require.NotNil(t, mm.Output)
	assert.Len(t, mm.Output.Fields, 3)

	seg := mm.Segmentation
	assert.Equal(t, "average", seg.MultipleModelMethod)
	require.Len(t, seg.Segments, 3)

	for i, s := range seg.Segments {
		assert.Equal(t, i, s.ID)
		assert.NotNil(t, s.True)
		require.NotNil(t, s.TreeModel)

		nested := s.TreeModel
		assert.Empty(t, nested.ModelName)
		assert.Nil(t, nested.Output, "nested trees carry no output")
		assert.Equal(t, "predicted", nested.MiningSchema.Fields[0].UsageType)
		assert.Len(t, walk(nested.Node), irisTree().NodeCount())
	}
}

func TestSegmentation_ExtraTreesMemberShape(t *testing.T) {
	member := irisTree()
	member.Features = 0
	member.Classes = 0
	forest := &model.Forest{Estimators: []*model.Tree{member}, Features: 4, Classes: 3, Extra: true}

	res, err := newTestExporter().Export(forest, nil, Options{FeatureNames: irisFeatures, TargetValues: irisClasses})
	require.NoError(t, err)
	assert.Empty(t, res.Advisories)
	assert.Len(t, res.Document.MiningModel.Segmentation.Segments, 1)
}
