package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

// FormatVersion is the only dump format the loaders accept.
const FormatVersion = "1.0"

// Spec is the metadata block of a model dump.
type Spec struct {
	Name           string `json:"name"`
	FormatVersion  string `json:"format_version"`
	SKLearnVersion string `json:"sklearn_version,omitempty"`
}

// Dump is a fitted scikit-learn object exported as JSON:
//
//	{"model_spec": {"name": "LinearRegression", "format_version": "1.0"},
//	 "params": {"coefficients": [0.5, 1.5], "intercept": 2}}
type Dump struct {
	ModelSpec Spec            `json:"model_spec"`
	Params    json.RawMessage `json:"params"`
}

type treeParams struct {
	NFeatures     int         `json:"n_features"`
	NClasses      int         `json:"n_classes"`
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

type forestParams struct {
	NFeatures  int          `json:"n_features"`
	NClasses   int          `json:"n_classes"`
	Estimators []treeParams `json:"estimators"`
}

type linearParams struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

type logisticParams struct {
	Coefficients [][]float64 `json:"coefficients"`
	Intercept    []float64   `json:"intercept"`
	NClasses     int         `json:"n_classes"`
}

type standardParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type minMaxParams struct {
	DataMin      []float64 `json:"data_min"`
	DataMax      []float64 `json:"data_max"`
	FeatureRange []float64 `json:"feature_range,omitempty"`
}

// DecodeDump reads and checks the envelope of a dump.
func DecodeDump(r io.Reader) (*Dump, error) {
	var d Dump
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode dump: %w", err)
	}
	if d.ModelSpec.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported format version %q", d.ModelSpec.FormatVersion)
	}
	if d.ModelSpec.Name == "" {
		return nil, fmt.Errorf("model name is required")
	}
	return &d, nil
}

// Load decodes a fitted estimator dump.
func Load(r io.Reader) (Estimator, error) {
	d, err := DecodeDump(r)
	if err != nil {
		return nil, err
	}
	return d.Estimator()
}

// LoadFile decodes a fitted estimator dump from path.
func LoadFile(path string) (Estimator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// LoadTransformer decodes a fitted scaler dump.
func LoadTransformer(r io.Reader) (Transformer, error) {
	d, err := DecodeDump(r)
	if err != nil {
		return nil, err
	}
	return d.Transformer()
}

// LoadTransformerFile decodes a fitted scaler dump from path.
func LoadTransformerFile(path string) (Transformer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transformer %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return LoadTransformer(f)
}

// Estimator builds the estimator described by the dump.
func (d *Dump) Estimator() (Estimator, error) {
	switch d.ModelSpec.Name {
	case "DecisionTreeClassifier", "ExtraTreeClassifier":
		var p treeParams
		if err := d.params(&p); err != nil {
			return nil, err
		}
		t := p.tree()
		t.Extra = d.ModelSpec.Name == "ExtraTreeClassifier"
		return t, nil

	case "RandomForestClassifier", "ExtraTreesClassifier":
		var p forestParams
		if err := d.params(&p); err != nil {
			return nil, err
		}
		f := &Forest{
			Features: p.NFeatures,
			Classes:  p.NClasses,
			Extra:    d.ModelSpec.Name == "ExtraTreesClassifier",
		}
		for _, tp := range p.Estimators {
			t := tp.tree()
			if t.Features == 0 {
				t.Features = p.NFeatures
			}
			if t.Classes == 0 {
				t.Classes = p.NClasses
			}
			f.Estimators = append(f.Estimators, t)
		}
		return f, nil

	case "LinearRegression":
		var p linearParams
		if err := d.params(&p); err != nil {
			return nil, err
		}
		return &LinearRegression{Coef: p.Coefficients, Intercept: p.Intercept}, nil

	case "LogisticRegression":
		var p logisticParams
		if err := d.params(&p); err != nil {
			return nil, err
		}
		coef, err := dense(p.Coefficients)
		if err != nil {
			return nil, err
		}
		return &LogisticRegression{Coef: coef, Intercept: p.Intercept, Classes: p.NClasses}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModel, d.ModelSpec.Name)
}

// Transformer builds the scaler described by the dump.
func (d *Dump) Transformer() (Transformer, error) {
	switch d.ModelSpec.Name {
	case "StandardScaler":
		var p standardParams
		if err := d.params(&p); err != nil {
			return nil, err
		}
		return &StandardScaler{Mean: p.Mean, Scale: p.Scale}, nil
	case "MinMaxScaler":
		var p minMaxParams
		if err := d.params(&p); err != nil {
			return nil, err
		}
		s := &MinMaxScaler{DataMin: p.DataMin, DataMax: p.DataMax}
		switch len(p.FeatureRange) {
		case 0:
		case 2:
			s.FeatureRange = [2]float64{p.FeatureRange[0], p.FeatureRange[1]}
		default:
			return nil, fmt.Errorf("%s: feature_range needs 2 values, has %d", d.ModelSpec.Name, len(p.FeatureRange))
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModel, d.ModelSpec.Name)
}

func (d *Dump) params(v interface{}) error {
	if len(d.Params) == 0 {
		return fmt.Errorf("%s: params are required", d.ModelSpec.Name)
	}
	if err := json.Unmarshal(d.Params, v); err != nil {
		return fmt.Errorf("%s: failed to unmarshal params: %w", d.ModelSpec.Name, err)
	}
	return nil
}

func (p treeParams) tree() *Tree {
	return &Tree{
		ChildrenLeft:  p.ChildrenLeft,
		ChildrenRight: p.ChildrenRight,
		Feature:       p.Feature,
		Threshold:     p.Threshold,
		Value:         p.Value,
		Features:      p.NFeatures,
		Classes:       p.NClasses,
	}
}

// dense packs coefficient rows into a matrix. An empty input yields nil,
// which the exporter reports as an unfitted model.
func dense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("coefficient row %d has %d values, expected %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}
