package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treeDump = `{
  "model_spec": {"name": "DecisionTreeClassifier", "format_version": "1.0"},
  "params": {
    "n_features": 2, "n_classes": 2,
    "children_left": [1, -1, -1],
    "children_right": [2, -1, -1],
    "feature": [0, -2, -2],
    "threshold": [0.5, -2, -2],
    "value": [[5, 5], [4, 1], [1, 4]]
  }
}`

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		dump      string
		wantKind  Kind
		features  int
		classes   int
		wantErr   error
		errSubstr string
	}{
		{
			name:     "decision tree",
			dump:     treeDump,
			wantKind: KindDecisionTree,
			features: 2,
			classes:  2,
		},
		{
			name:     "extra tree",
			dump:     strings.Replace(treeDump, "DecisionTreeClassifier", "ExtraTreeClassifier", 1),
			wantKind: KindExtraTree,
			features: 2,
			classes:  2,
		},
		{
			name: "random forest",
			dump: `{"model_spec": {"name": "RandomForestClassifier", "format_version": "1.0"},
			        "params": {"n_features": 3, "n_classes": 2, "estimators": [
			          {"children_left": [-1], "children_right": [-1], "feature": [-2], "threshold": [-2], "value": [[3, 1]]},
			          {"children_left": [-1], "children_right": [-1], "feature": [-2], "threshold": [-2], "value": [[1, 3]]}
			        ]}}`,
			wantKind: KindRandomForest,
			features: 3,
			classes:  2,
		},
		{
			name: "linear regression",
			dump: `{"model_spec": {"name": "LinearRegression", "format_version": "1.0"},
			        "params": {"coefficients": [0.5, 1.5, -2], "intercept": 2}}`,
			wantKind: KindLinearRegression,
			features: 3,
			classes:  1,
		},
		{
			name: "binary logistic regression",
			dump: `{"model_spec": {"name": "LogisticRegression", "format_version": "1.0"},
			        "params": {"coefficients": [[0.1, 0.2]], "intercept": [-1]}}`,
			wantKind: KindLogisticRegression,
			features: 2,
			classes:  2,
		},
		{
			name: "one-vs-rest logistic regression",
			dump: `{"model_spec": {"name": "LogisticRegression", "format_version": "1.0"},
			        "params": {"coefficients": [[1, 2], [3, 4], [5, 6]], "intercept": [0, 1, 2], "n_classes": 3}}`,
			wantKind: KindLogisticRegression,
			features: 2,
			classes:  3,
		},
		{
			name:    "unknown model",
			dump:    `{"model_spec": {"name": "SVC", "format_version": "1.0"}, "params": {}}`,
			wantErr: ErrUnknownModel,
		},
		{
			name:      "wrong format version",
			dump:      `{"model_spec": {"name": "LinearRegression", "format_version": "2.0"}, "params": {}}`,
			errSubstr: "format version",
		},
		{
			name:      "missing name",
			dump:      `{"model_spec": {"format_version": "1.0"}, "params": {}}`,
			errSubstr: "name is required",
		},
		{
			name:      "missing params",
			dump:      `{"model_spec": {"name": "LinearRegression", "format_version": "1.0"}}`,
			errSubstr: "params are required",
		},
		{
			name: "ragged coefficients",
			dump: `{"model_spec": {"name": "LogisticRegression", "format_version": "1.0"},
			        "params": {"coefficients": [[1, 2], [3]], "intercept": [0, 1]}}`,
			errSubstr: "coefficient row 1",
		},
		{
			name:      "not JSON",
			dump:      `<PMML/>`,
			errSubstr: "failed to decode dump",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := Load(strings.NewReader(tt.dump))
			if tt.wantErr != nil || tt.errSubstr != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				}
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, est.Kind())
			assert.Equal(t, tt.features, est.NFeatures())
			assert.Equal(t, tt.classes, est.NClasses())
			assert.True(t, est.Fitted())
		})
	}
}

func TestLoad_ForestMembersInheritShape(t *testing.T) {
	est, err := Load(strings.NewReader(`{"model_spec": {"name": "ExtraTreesClassifier", "format_version": "1.0"},
		"params": {"n_features": 4, "n_classes": 3, "estimators": [
		  {"children_left": [-1], "children_right": [-1], "feature": [-2], "threshold": [-2], "value": [[1, 1, 1]]}
		]}}`))
	require.NoError(t, err)

	f, ok := est.(*Forest)
	require.True(t, ok)
	assert.Equal(t, KindExtraTrees, f.Kind())
	require.Len(t, f.Estimators, 1)
	assert.Equal(t, 4, f.Estimators[0].Features)
	assert.Equal(t, 3, f.Estimators[0].Classes)
}

func TestLoad_EmptyLogisticIsUnfitted(t *testing.T) {
	est, err := Load(strings.NewReader(`{"model_spec": {"name": "LogisticRegression", "format_version": "1.0"},
		"params": {"coefficients": [], "intercept": []}}`))
	require.NoError(t, err)
	assert.False(t, est.Fitted())
}

func TestLoadTransformer(t *testing.T) {
	tr, err := LoadTransformer(strings.NewReader(`{"model_spec": {"name": "StandardScaler", "format_version": "1.0"},
		"params": {"mean": [1, 2], "scale": [0.5, 4]}}`))
	require.NoError(t, err)
	assert.Equal(t, KindStandardScaler, tr.TransformerKind())
	assert.Equal(t, 2, tr.NFeatures())

	tr, err = LoadTransformer(strings.NewReader(`{"model_spec": {"name": "MinMaxScaler", "format_version": "1.0"},
		"params": {"data_min": [0, 0, 1], "data_max": [1, 10, 2]}}`))
	require.NoError(t, err)
	assert.Equal(t, KindMinMaxScaler, tr.TransformerKind())
	assert.Equal(t, 3, tr.NFeatures())
	lo, hi := tr.(*MinMaxScaler).Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)

	tr, err = LoadTransformer(strings.NewReader(`{"model_spec": {"name": "MinMaxScaler", "format_version": "1.0"},
		"params": {"data_min": [0], "data_max": [1], "feature_range": [-1, 1]}}`))
	require.NoError(t, err)
	lo, hi = tr.(*MinMaxScaler).Range()
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 1.0, hi)

	_, err = LoadTransformer(strings.NewReader(`{"model_spec": {"name": "MinMaxScaler", "format_version": "1.0"},
		"params": {"data_min": [0], "data_max": [1], "feature_range": [-1]}}`))
	assert.Error(t, err)

	_, err = LoadTransformer(strings.NewReader(`{"model_spec": {"name": "Normalizer", "format_version": "1.0"}, "params": {}}`))
	assert.True(t, errors.Is(err, ErrUnknownModel))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.json")
	require.NoError(t, os.WriteFile(path, []byte(treeDump), 0o644))

	est, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, est.(*Tree).NodeCount())

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = LoadTransformerFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "RandomForestClassifier", KindRandomForest.String())
	assert.Equal(t, "Unknown", Kind(0).String())
	assert.Equal(t, "MinMaxScaler", KindMinMaxScaler.String())
	assert.False(t, KindLinearRegression.Classifier())
	assert.True(t, KindLogisticRegression.Classifier())
}

func TestTree_NClassesFallsBackToValueWidth(t *testing.T) {
	tree := &Tree{ChildrenLeft: []int{-1}, ChildrenRight: []int{-1}, Value: [][]float64{{1, 2, 3}}}
	assert.Equal(t, 3, tree.NClasses())
	assert.True(t, tree.IsLeaf(0))

	var nilTree *Tree
	assert.False(t, nilTree.Fitted())
	assert.Equal(t, KindDecisionTree, nilTree.Kind())
}
