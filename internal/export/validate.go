package export

import (
	"errors"
	"fmt"
	"strings"

	"pmml-exporter/internal/model"
)

var (
	ErrUnsupportedModel       = errors.New("unsupported model kind")
	ErrNotFitted              = errors.New("model is not fitted")
	ErrUnsupportedTransformer = errors.New("unsupported transformer kind")
	ErrMalformedModel         = errors.New("malformed model")
)

// Support lists the estimator and transformer kinds an Exporter accepts.
type Support struct {
	Models       map[model.Kind]bool
	Transformers map[model.TransformerKind]bool
}

// DefaultSupport accepts every kind this package can serialize.
func DefaultSupport() *Support {
	return &Support{
		Models: map[model.Kind]bool{
			model.KindDecisionTree:       true,
			model.KindExtraTree:          true,
			model.KindRandomForest:       true,
			model.KindExtraTrees:         true,
			model.KindLinearRegression:   true,
			model.KindLogisticRegression: true,
		},
		Transformers: map[model.TransformerKind]bool{
			model.KindStandardScaler: true,
			model.KindMinMaxScaler:   true,
		},
	}
}

// Validated holds the names an export proceeds with.
type Validated struct {
	FeatureNames []string
	TargetValues []string
}

// Validate checks that est and tr can be exported and reconciles the
// supplied names with the model's shape. Name mismatches are corrected
// and reported as advisories; everything else is fatal.
func (s *Support) Validate(est model.Estimator, tr model.Transformer, featureNames, targetValues []string) (Validated, []Advisory, error) {
	if est == nil {
		return Validated{}, nil, fmt.Errorf("%w: no model given", ErrUnsupportedModel)
	}
	if !s.Models[est.Kind()] {
		return Validated{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, est.Kind())
	}
	if !est.Fitted() {
		return Validated{}, nil, fmt.Errorf("%w: %s", ErrNotFitted, est.Kind())
	}
	if tr != nil && !s.Transformers[tr.TransformerKind()] {
		return Validated{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedTransformer, tr.TransformerKind())
	}
	if err := checkStructure(est); err != nil {
		return Validated{}, nil, err
	}
	if err := checkTransformer(tr, est.NFeatures()); err != nil {
		return Validated{}, nil, err
	}

	var advisories []Advisory
	v := Validated{FeatureNames: featureNames, TargetValues: targetValues}

	if n := est.NFeatures(); len(featureNames) != n {
		v.FeatureNames = generatedNames("x", n)
		advisories = append(advisories, Advisory{
			Code:    AdvisoryFeatureNames,
			Message: fmt.Sprintf("model has %d inputs but %d feature names were given, using generic names", n, len(featureNames)),
		})
	} else if bad := invalidName(featureNames, tr != nil); bad != "" {
		v.FeatureNames = generatedNames("x", n)
		advisories = append(advisories, Advisory{
			Code:    AdvisoryFeatureNames,
			Field:   bad,
			Message: "feature names must be unique and non-empty, using generic names",
		})
	}
	if est.Kind().Classifier() {
		if n := est.NClasses(); len(targetValues) != n {
			v.TargetValues = generatedNames("y", n)
			advisories = append(advisories, Advisory{
				Code:    AdvisoryTargetValues,
				Message: fmt.Sprintf("model has %d classes but %d target values were given, using generic names", n, len(targetValues)),
			})
		} else if bad := invalidName(targetValues, false); bad != "" {
			v.TargetValues = generatedNames("y", n)
			advisories = append(advisories, Advisory{
				Code:    AdvisoryTargetValues,
				Field:   bad,
				Message: "target values must be unique and non-empty, using generic names",
			})
		}
	} else {
		v.TargetValues = nil
	}
	return v, advisories, nil
}

// invalidName returns the first name that is empty or repeated. With
// derived set, a name that equals another name plus DerivedSuffix also
// counts as repeated. It returns "" when all names are usable; an empty
// name is reported as `""`.
func invalidName(names []string, derived bool) string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return `""`
		}
		if seen[n] {
			return n
		}
		seen[n] = true
	}
	if derived {
		for _, n := range names {
			if seen[n+DerivedSuffix] {
				return n + DerivedSuffix
			}
		}
	}
	return ""
}

// CheckTargetName fails when the target field would share its name with a
// field the document already declares.
func (v Validated) CheckTargetName(target string, derived bool) error {
	for _, f := range v.FeatureNames {
		if f == target || (derived && f+DerivedSuffix == target) {
			return fmt.Errorf("%w: target name %q collides with feature %q", ErrMalformedModel, target, f)
		}
	}
	return nil
}

func generatedNames(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return names
}

// checkStructure rejects fitted state that would produce a broken document.
func checkStructure(est model.Estimator) error {
	switch m := est.(type) {
	case *model.Tree:
		return checkTree(m, m.NFeatures(), m.NClasses())
	case *model.Forest:
		for i, t := range m.Estimators {
			if !t.Fitted() {
				return fmt.Errorf("%w: estimator %d", ErrNotFitted, i)
			}
			if err := checkTree(t, m.NFeatures(), m.NClasses()); err != nil {
				return fmt.Errorf("estimator %d: %w", i, err)
			}
		}
		return nil
	case *model.LinearRegression:
		return nil
	case *model.LogisticRegression:
		rows, classes := m.Rows(), m.NClasses()
		if classes < 2 {
			return fmt.Errorf("%w: logistic regression needs at least 2 classes, has %d", ErrMalformedModel, classes)
		}
		if rows != classes && !(rows == 1 && classes == 2) {
			return fmt.Errorf("%w: %d coefficient rows for %d classes", ErrMalformedModel, rows, classes)
		}
		if len(m.Intercept) != rows {
			return fmt.Errorf("%w: %d intercepts for %d coefficient rows", ErrMalformedModel, len(m.Intercept), rows)
		}
		return nil
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedModel, est)
}

// checkTree walks the tree once with an explicit stack and fails on any
// node that is out of range, reached twice or inconsistent with the shape.
func checkTree(t *model.Tree, features, classes int) error {
	n := t.NodeCount()
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("%w: tree arrays differ in length", ErrMalformedModel)
	}
	if t.Features != 0 && t.Features != features {
		return fmt.Errorf("%w: tree has %d features, ensemble has %d", ErrMalformedModel, t.Features, features)
	}
	if classes < 1 {
		return fmt.Errorf("%w: tree has no classes", ErrMalformedModel)
	}

	visited := make([]bool, n)
	stack := []int{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[id] {
			return fmt.Errorf("%w: node %d is reached twice", ErrMalformedModel, id)
		}
		visited[id] = true

		if len(t.Value[id]) != classes {
			return fmt.Errorf("%w: node %d has %d class counts, expected %d", ErrMalformedModel, id, len(t.Value[id]), classes)
		}

		left, right := t.ChildrenLeft[id], t.ChildrenRight[id]
		if left == model.TreeLeaf && right == model.TreeLeaf {
			continue
		}
		if left < 0 || left >= n || right < 0 || right >= n {
			return fmt.Errorf("%w: node %d has children %d/%d", ErrMalformedModel, id, left, right)
		}
		if f := t.Feature[id]; f < 0 || f >= features {
			return fmt.Errorf("%w: node %d splits on feature %d of %d", ErrMalformedModel, id, f, features)
		}
		stack = append(stack, right, left)
	}
	return nil
}

func checkTransformer(tr model.Transformer, features int) error {
	switch s := tr.(type) {
	case nil:
		return nil
	case *model.StandardScaler:
		if s == nil {
			return fmt.Errorf("%w: empty scaler", ErrMalformedModel)
		}
		if len(s.Scale) != len(s.Mean) {
			return fmt.Errorf("%w: scaler has %d means and %d scales", ErrMalformedModel, len(s.Mean), len(s.Scale))
		}
	case *model.MinMaxScaler:
		if s == nil {
			return fmt.Errorf("%w: empty scaler", ErrMalformedModel)
		}
		if len(s.DataMax) != len(s.DataMin) {
			return fmt.Errorf("%w: scaler has %d minimums and %d maximums", ErrMalformedModel, len(s.DataMin), len(s.DataMax))
		}
		if lo, hi := s.Range(); !(lo < hi) {
			return fmt.Errorf("%w: scaler feature range [%g, %g] is empty", ErrMalformedModel, lo, hi)
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedTransformer, tr)
	}
	if tr.NFeatures() != features {
		return fmt.Errorf("%w: scaler has %d features, model has %d", ErrMalformedModel, tr.NFeatures(), features)
	}
	return nil
}
