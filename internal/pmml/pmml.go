// Package pmml defines the PMML element tree written by the exporter and
// its XML encoding. Only the elements the exporter produces are modelled.
package pmml

import "encoding/xml"

// PMML is the document root. Exactly one of the model fields is set.
type PMML struct {
	XMLName        xml.Name       `xml:"PMML"`
	Version        string         `xml:"version,attr"`
	Xmlns          string         `xml:"xmlns,attr"`
	Header         Header         `xml:"Header"`
	DataDictionary DataDictionary `xml:"DataDictionary"`

	TreeModel       *TreeModel       `xml:"TreeModel"`
	RegressionModel *RegressionModel `xml:"RegressionModel"`
	MiningModel     *MiningModel     `xml:"MiningModel"`
}

type Header struct {
	Copyright   string       `xml:"copyright,attr,omitempty"`
	Description string       `xml:"description,attr,omitempty"`
	Application *Application `xml:"Application"`
	Timestamp   string       `xml:"Timestamp"`
}

type Application struct {
	Name    string `xml:"name,attr"`
	Version string `xml:"version,attr,omitempty"`
}

type DataDictionary struct {
	NumberOfFields int         `xml:"numberOfFields,attr"`
	Fields         []DataField `xml:"DataField"`
}

type DataField struct {
	Name     string  `xml:"name,attr"`
	OpType   string  `xml:"optype,attr"`
	DataType string  `xml:"dataType,attr"`
	Values   []Value `xml:"Value"`
}

type Value struct {
	Value string `xml:"value,attr"`
}

type MiningSchema struct {
	Fields []MiningField `xml:"MiningField"`
}

type MiningField struct {
	Name      string `xml:"name,attr"`
	UsageType string `xml:"usageType,attr,omitempty"`
}

type Output struct {
	Fields []OutputField `xml:"OutputField"`
}

type OutputField struct {
	Name     string `xml:"name,attr"`
	OpType   string `xml:"optype,attr,omitempty"`
	DataType string `xml:"dataType,attr,omitempty"`
	Feature  string `xml:"feature,attr,omitempty"`
	Value    string `xml:"value,attr,omitempty"`
}

type LocalTransformations struct {
	DerivedFields []DerivedField `xml:"DerivedField"`
}

// DerivedField holds one expression: NormContinuous or Constant.
type DerivedField struct {
	Name           string          `xml:"name,attr"`
	OpType         string          `xml:"optype,attr"`
	DataType       string          `xml:"dataType,attr"`
	NormContinuous *NormContinuous `xml:"NormContinuous"`
	Constant       *Constant       `xml:"Constant"`
}

type NormContinuous struct {
	Field       string       `xml:"field,attr"`
	LinearNorms []LinearNorm `xml:"LinearNorm"`
}

type LinearNorm struct {
	Orig string `xml:"orig,attr"`
	Norm string `xml:"norm,attr"`
}

type Constant struct {
	DataType string `xml:"dataType,attr,omitempty"`
	Value    string `xml:",chardata"`
}

// True is the always-true predicate.
type True struct{}

type SimplePredicate struct {
	Field    string `xml:"field,attr"`
	Operator string `xml:"operator,attr"`
	Value    string `xml:"value,attr"`
}

type ScoreDistribution struct {
	Value       string `xml:"value,attr"`
	RecordCount string `xml:"recordCount,attr"`
	Probability string `xml:"probability,attr,omitempty"`
}

// Node is a tree node. It carries either True or SimplePredicate.
type Node struct {
	ID                 int                 `xml:"id,attr"`
	Score              string              `xml:"score,attr,omitempty"`
	RecordCount        string              `xml:"recordCount,attr,omitempty"`
	True               *True               `xml:"True"`
	SimplePredicate    *SimplePredicate    `xml:"SimplePredicate"`
	ScoreDistributions []ScoreDistribution `xml:"ScoreDistribution"`
	Nodes              []*Node             `xml:"Node"`
}

type TreeModel struct {
	ModelName            string                `xml:"modelName,attr,omitempty"`
	FunctionName         string                `xml:"functionName,attr"`
	SplitCharacteristic  string                `xml:"splitCharacteristic,attr,omitempty"`
	MiningSchema         MiningSchema          `xml:"MiningSchema"`
	Output               *Output               `xml:"Output"`
	LocalTransformations *LocalTransformations `xml:"LocalTransformations"`
	Node                 *Node                 `xml:"Node"`
}

type RegressionModel struct {
	ModelName            string                `xml:"modelName,attr,omitempty"`
	FunctionName         string                `xml:"functionName,attr"`
	ModelType            string                `xml:"modelType,attr,omitempty"`
	NormalizationMethod  string                `xml:"normalizationMethod,attr,omitempty"`
	MiningSchema         MiningSchema          `xml:"MiningSchema"`
	Output               *Output               `xml:"Output"`
	LocalTransformations *LocalTransformations `xml:"LocalTransformations"`
	Tables               []RegressionTable     `xml:"RegressionTable"`
}

type RegressionTable struct {
	Intercept      string             `xml:"intercept,attr"`
	TargetCategory string             `xml:"targetCategory,attr,omitempty"`
	Predictors     []NumericPredictor `xml:"NumericPredictor"`
}

type NumericPredictor struct {
	Name        string `xml:"name,attr"`
	Coefficient string `xml:"coefficient,attr"`
}

type MiningModel struct {
	ModelName            string                `xml:"modelName,attr,omitempty"`
	FunctionName         string                `xml:"functionName,attr"`
	MiningSchema         MiningSchema          `xml:"MiningSchema"`
	Output               *Output               `xml:"Output"`
	LocalTransformations *LocalTransformations `xml:"LocalTransformations"`
	Segmentation         Segmentation          `xml:"Segmentation"`
}

type Segmentation struct {
	MultipleModelMethod string    `xml:"multipleModelMethod,attr"`
	Segments            []Segment `xml:"Segment"`
}

type Segment struct {
	ID        int        `xml:"id,attr"`
	True      *True      `xml:"True"`
	TreeModel *TreeModel `xml:"TreeModel"`
}

// Model is one of the top-level model elements.
type Model interface {
	attach(p *PMML)
}

func (m *TreeModel) attach(p *PMML)       { p.TreeModel = m }
func (m *RegressionModel) attach(p *PMML) { p.RegressionModel = m }
func (m *MiningModel) attach(p *PMML)     { p.MiningModel = m }

// SetModel places m as the document's model element.
func (p *PMML) SetModel(m Model) {
	p.TreeModel, p.RegressionModel, p.MiningModel = nil, nil, nil
	m.attach(p)
}

// Model returns the document's model element, or nil.
func (p *PMML) Model() Model {
	switch {
	case p.TreeModel != nil:
		return p.TreeModel
	case p.RegressionModel != nil:
		return p.RegressionModel
	case p.MiningModel != nil:
		return p.MiningModel
	}
	return nil
}
