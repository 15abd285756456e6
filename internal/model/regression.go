package model

import "gonum.org/v1/gonum/mat"

// LinearRegression is a fitted ordinary least squares model.
type LinearRegression struct {
	Coef      []float64
	Intercept float64
}

func (m *LinearRegression) Kind() Kind     { return KindLinearRegression }
func (m *LinearRegression) NFeatures() int { return len(m.Coef) }
func (m *LinearRegression) NClasses() int  { return 1 }

func (m *LinearRegression) Fitted() bool {
	return m != nil && len(m.Coef) > 0
}

// LogisticRegression is a fitted logistic classifier.
//
// Coef has one row for a binary model (the row belongs to the second class)
// or one row per class for a one-vs-rest model. Intercept has one entry per
// row.
type LogisticRegression struct {
	Coef      *mat.Dense
	Intercept []float64

	// Classes defaults to 2 for a single coefficient row, otherwise to the
	// number of rows.
	Classes int
}

func (m *LogisticRegression) Kind() Kind { return KindLogisticRegression }

func (m *LogisticRegression) NFeatures() int {
	if m.Coef == nil {
		return 0
	}
	_, c := m.Coef.Dims()
	return c
}

func (m *LogisticRegression) NClasses() int {
	if m.Classes > 0 {
		return m.Classes
	}
	rows := m.Rows()
	if rows == 1 {
		return 2
	}
	return rows
}

func (m *LogisticRegression) Fitted() bool {
	return m != nil && m.Coef != nil && len(m.Intercept) > 0
}

// Rows returns the number of coefficient rows.
func (m *LogisticRegression) Rows() int {
	if m.Coef == nil {
		return 0
	}
	r, _ := m.Coef.Dims()
	return r
}

// Row returns coefficient row i and its intercept.
func (m *LogisticRegression) Row(i int) ([]float64, float64) {
	return mat.Row(nil, i, m.Coef), m.Intercept[i]
}
