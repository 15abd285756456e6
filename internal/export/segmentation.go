package export

import (
	"pmml-exporter/internal/model"
	"pmml-exporter/internal/pmml"
)

// segmentationSerializer wraps one nested tree per ensemble member and
// averages them.
type segmentationSerializer struct {
	forest *model.Forest
}

func (s *segmentationSerializer) nFeatures() int       { return s.forest.NFeatures() }
func (s *segmentationSerializer) nClasses() int        { return s.forest.NClasses() }
func (s *segmentationSerializer) classification() bool { return true }

func (s *segmentationSerializer) emit(c *emitContext) pmml.Model {
	mm := &pmml.MiningModel{
		ModelName:            c.modelName,
		FunctionName:         functionClassification,
		MiningSchema:         c.miningSchema(usageTarget),
		Output:               c.output(),
		LocalTransformations: c.local,
		Segmentation: pmml.Segmentation{
			MultipleModelMethod: "average",
			Segments:            make([]pmml.Segment, 0, len(s.forest.Estimators)),
		},
	}
	for i, t := range s.forest.Estimators {
		member := &treeSerializer{tree: t, nested: true}
		mm.Segmentation.Segments = append(mm.Segmentation.Segments, pmml.Segment{
			ID:        i,
			True:      &pmml.True{},
			TreeModel: member.treeModel(c),
		})
	}
	return mm
}
