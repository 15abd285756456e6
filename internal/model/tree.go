package model

// Tree is a fitted binary classification tree in flat array form.
// Node i splits on Feature[i] at Threshold[i]; samples with
// x <= Threshold[i] go to ChildrenLeft[i], the rest to ChildrenRight[i].
// Value[i][c] is the number of training samples of class c reaching node i.
type Tree struct {
	ChildrenLeft  []int
	ChildrenRight []int
	Feature       []int
	Threshold     []float64
	Value         [][]float64

	// Features and Classes are the input width and class count seen at fit time.
	Features int
	Classes  int

	// Extra marks an extremely randomized tree. It only changes Kind.
	Extra bool
}

func (t *Tree) Kind() Kind {
	if t != nil && t.Extra {
		return KindExtraTree
	}
	return KindDecisionTree
}

func (t *Tree) NFeatures() int { return t.Features }

func (t *Tree) NClasses() int {
	if t.Classes > 0 || len(t.Value) == 0 {
		return t.Classes
	}
	return len(t.Value[0])
}

func (t *Tree) Fitted() bool {
	return t != nil && len(t.ChildrenLeft) > 0
}

// NodeCount returns the number of nodes in the tree arrays.
func (t *Tree) NodeCount() int { return len(t.ChildrenLeft) }

// IsLeaf reports whether node id has no children.
func (t *Tree) IsLeaf(id int) bool {
	return t.ChildrenLeft[id] == TreeLeaf
}

// Forest is a fitted ensemble of classification trees whose predictions
// are averaged.
type Forest struct {
	Estimators []*Tree
	Features   int
	Classes    int
	Extra      bool
}

func (f *Forest) Kind() Kind {
	if f != nil && f.Extra {
		return KindExtraTrees
	}
	return KindRandomForest
}

func (f *Forest) NFeatures() int {
	if f.Features > 0 || len(f.Estimators) == 0 {
		return f.Features
	}
	return f.Estimators[0].NFeatures()
}

func (f *Forest) NClasses() int {
	if f.Classes > 0 || len(f.Estimators) == 0 {
		return f.Classes
	}
	return f.Estimators[0].NClasses()
}

func (f *Forest) Fitted() bool {
	return f != nil && len(f.Estimators) > 0
}
