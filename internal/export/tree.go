package export

import (
	"pmml-exporter/internal/model"
	"pmml-exporter/internal/pmml"
)

const (
	opLessOrEqual = "lessOrEqual"
	opGreaterThan = "greaterThan"
)

type treeSerializer struct {
	tree *model.Tree

	// nested trees live inside a Segment: they declare the target as
	// predicted and carry neither Output nor a model name.
	nested bool
}

func (s *treeSerializer) nFeatures() int       { return s.tree.NFeatures() }
func (s *treeSerializer) nClasses() int        { return s.tree.NClasses() }
func (s *treeSerializer) classification() bool { return true }

func (s *treeSerializer) emit(c *emitContext) pmml.Model {
	return s.treeModel(c)
}

func (s *treeSerializer) treeModel(c *emitContext) *pmml.TreeModel {
	tm := &pmml.TreeModel{
		FunctionName:        functionClassification,
		SplitCharacteristic: "binarySplit",
	}
	if s.nested {
		tm.MiningSchema = c.miningSchema(usagePredicted)
	} else {
		tm.ModelName = c.modelName
		tm.MiningSchema = c.miningSchema(usageTarget)
		tm.Output = c.output()
		tm.LocalTransformations = c.local
	}
	tm.Node = s.nodes(c)
	return tm
}

// frame is one pending node of the pre-order walk: the node to emit, the
// node whose split leads to it, the split side and the element to attach to.
type frame struct {
	node   int
	parent int
	op     string
	dest   *pmml.Node
}

// nodes walks the tree from node 0 with an explicit stack. The right child
// is pushed first so the left subtree is emitted, and attached, first.
func (s *treeSerializer) nodes(c *emitContext) *pmml.Node {
	var root *pmml.Node
	stack := []frame{{node: 0, parent: model.TreeLeaf}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := s.node(c, f)
		if f.dest == nil {
			root = n
		} else {
			f.dest.Nodes = append(f.dest.Nodes, n)
		}

		if !s.tree.IsLeaf(f.node) {
			stack = append(stack,
				frame{node: s.tree.ChildrenRight[f.node], parent: f.node, op: opGreaterThan, dest: n},
				frame{node: s.tree.ChildrenLeft[f.node], parent: f.node, op: opLessOrEqual, dest: n},
			)
		}
	}
	return root
}

func (s *treeSerializer) node(c *emitContext, f frame) *pmml.Node {
	counts := s.tree.Value[f.node]

	var total float64
	best := 0
	for i, v := range counts {
		total += v
		if v > counts[best] {
			best = i
		}
	}

	n := &pmml.Node{
		ID:          f.node,
		Score:       c.targetValues[best],
		RecordCount: pmml.Number(total),
	}
	if f.op == "" {
		n.True = &pmml.True{}
	} else {
		n.SimplePredicate = &pmml.SimplePredicate{
			Field:    c.predictorNames[s.tree.Feature[f.parent]],
			Operator: f.op,
			Value:    pmml.Number(s.tree.Threshold[f.parent]),
		}
	}

	n.ScoreDistributions = make([]pmml.ScoreDistribution, len(counts))
	for i, v := range counts {
		sd := pmml.ScoreDistribution{Value: c.targetValues[i], RecordCount: pmml.Number(v)}
		if total > 0 {
			sd.Probability = pmml.Number(v / total)
		}
		n.ScoreDistributions[i] = sd
	}
	return n
}
