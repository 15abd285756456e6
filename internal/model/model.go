// Package model holds the fitted estimators and scalers the exporter accepts.
// The set of estimator types is closed: decision trees, tree ensembles,
// linear regression and logistic regression. Models arrive already trained,
// either constructed in Go or decoded from a scikit-learn parameter dump
// (see Load).
package model

import "errors"

// TreeLeaf marks "no child" in the ChildrenLeft/ChildrenRight arrays.
const TreeLeaf = -1

// ErrUnknownModel is returned by the loaders for a model_spec name they do not know.
var ErrUnknownModel = errors.New("unknown model")

// Kind identifies the runtime kind of a fitted estimator.
type Kind int

const (
	KindDecisionTree Kind = iota + 1
	KindExtraTree
	KindRandomForest
	KindExtraTrees
	KindLinearRegression
	KindLogisticRegression
)

var kindNames = map[Kind]string{
	KindDecisionTree:       "DecisionTreeClassifier",
	KindExtraTree:          "ExtraTreeClassifier",
	KindRandomForest:       "RandomForestClassifier",
	KindExtraTrees:         "ExtraTreesClassifier",
	KindLinearRegression:   "LinearRegression",
	KindLogisticRegression: "LogisticRegression",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Classifier reports whether the kind predicts a categorical target.
func (k Kind) Classifier() bool {
	return k != KindLinearRegression
}

// Estimator is a fitted model. NClasses is 1 for pure regression.
type Estimator interface {
	Kind() Kind
	NFeatures() int
	NClasses() int
	Fitted() bool
}

// TransformerKind identifies a fitted feature scaler.
type TransformerKind int

const (
	KindStandardScaler TransformerKind = iota + 1
	KindMinMaxScaler
)

func (k TransformerKind) String() string {
	switch k {
	case KindStandardScaler:
		return "StandardScaler"
	case KindMinMaxScaler:
		return "MinMaxScaler"
	default:
		return "Unknown"
	}
}

// Transformer is a fitted per-feature scaler.
type Transformer interface {
	TransformerKind() TransformerKind
	NFeatures() int
}
