// Package export turns a fitted estimator, and optionally a fitted scaler,
// into a PMML document.
//
// An export validates its inputs completely before any element is built:
// it either fails with one of the Err* sentinels and produces nothing, or
// it returns a complete document together with the advisories describing
// what was corrected on the way (generated names, degenerate scaling).
package export

import (
	"fmt"
	"time"

	"pmml-exporter/internal/common"
	"pmml-exporter/internal/model"
	"pmml-exporter/internal/pmml"

	"github.com/rs/zerolog/log"
)

// TimestampLayout formats the Header Timestamp.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// MetricsInterface defines the metrics an Exporter reports.
type MetricsInterface interface {
	ExportsInc()
	ExportFailuresInc()
	AdvisoriesAdd(float64)
	ExportLatencyObserve(float64)
}

// Options carries the document metadata of one export.
type Options struct {
	Version      string   `json:"pmml_version,omitempty"`
	FeatureNames []string `json:"feature_names,omitempty"`
	TargetName   string   `json:"target_name,omitempty"`
	TargetValues []string `json:"target_values,omitempty"`
	ModelName    string   `json:"model_name,omitempty"`
	Description  string   `json:"description,omitempty"`
	Copyright    string   `json:"copyright,omitempty"`

	// File, when set, receives the finished document.
	File string `json:"-"`
}

func (o Options) withDefaults() Options {
	if o.Version == "" {
		o.Version = pmml.DefaultVersion
	}
	if o.TargetName == "" {
		o.TargetName = common.DefaultTargetName
	}
	return o
}

// AdvisoryCode classifies a non-fatal correction.
type AdvisoryCode string

const (
	AdvisoryFeatureNames      AdvisoryCode = "feature_names"
	AdvisoryTargetValues      AdvisoryCode = "target_values"
	AdvisoryDegenerateScaling AdvisoryCode = "degenerate_scaling"
)

// Advisory reports something the exporter corrected instead of failing.
type Advisory struct {
	Code    AdvisoryCode `json:"code"`
	Field   string       `json:"field,omitempty"`
	Message string       `json:"message"`
}

func (a Advisory) String() string {
	if a.Field != "" {
		return fmt.Sprintf("%s(%s): %s", a.Code, a.Field, a.Message)
	}
	return fmt.Sprintf("%s: %s", a.Code, a.Message)
}

// Result is a finished export.
type Result struct {
	Document   *pmml.PMML
	Advisories []Advisory
}

// Bytes renders the document as it would be written to a file.
func (r *Result) Bytes() ([]byte, error) {
	return r.Document.Marshal()
}

// Exporter builds PMML documents. It holds no per-export state and may be
// shared between goroutines.
type Exporter struct {
	support *Support
	metrics MetricsInterface
	now     func() time.Time
}

// New creates an Exporter accepting the kinds in support. A nil support
// means DefaultSupport; metrics may be nil.
func New(support *Support, metrics MetricsInterface) *Exporter {
	if support == nil {
		support = DefaultSupport()
	}
	return &Exporter{
		support: support,
		metrics: metrics,
		now:     time.Now,
	}
}

// SetClock replaces the clock used for the Header Timestamp.
func (e *Exporter) SetClock(now func() time.Time) {
	e.now = now
}

// Export validates est and tr and assembles the PMML document.
// tr may be nil.
func (e *Exporter) Export(est model.Estimator, tr model.Transformer, opts Options) (*Result, error) {
	start := time.Now()
	opts = opts.withDefaults()

	res, err := e.export(est, tr, opts)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ExportFailuresInc()
		}
		log.Error().Err(err).Str("model_name", opts.ModelName).Msg("PMML export failed")
		return nil, err
	}

	for _, a := range res.Advisories {
		log.Warn().Str("code", string(a.Code)).Str("field", a.Field).Msg(a.Message)
	}
	if e.metrics != nil {
		e.metrics.ExportsInc()
		e.metrics.AdvisoriesAdd(float64(len(res.Advisories)))
		e.metrics.ExportLatencyObserve(time.Since(start).Seconds())
	}
	log.Info().
		Str("kind", est.Kind().String()).
		Str("version", opts.Version).
		Int("advisories", len(res.Advisories)).
		Msg("Generation of PMML successful")

	return res, nil
}

func (e *Exporter) export(est model.Estimator, tr model.Transformer, opts Options) (*Result, error) {
	v, advisories, err := e.support.Validate(est, tr, opts.FeatureNames, opts.TargetValues)
	if err != nil {
		return nil, err
	}
	if err := v.CheckTargetName(opts.TargetName, tr != nil); err != nil {
		return nil, err
	}
	s, err := newSerializer(est)
	if err != nil {
		return nil, err
	}

	c := &emitContext{
		modelName:      opts.ModelName,
		targetName:     opts.TargetName,
		featureNames:   v.FeatureNames,
		targetValues:   v.TargetValues,
		predictorNames: v.FeatureNames,
	}
	if tr != nil {
		local, names, adv := localTransformations(tr, v.FeatureNames)
		c.local = local
		c.predictorNames = names
		advisories = append(advisories, adv...)
	}

	doc := &pmml.PMML{
		Version:        opts.Version,
		Xmlns:          pmml.Namespace(opts.Version),
		Header:         e.header(opts),
		DataDictionary: dataDictionary(c, s.classification()),
	}
	doc.SetModel(s.emit(c))

	if opts.File != "" {
		if err := doc.WriteFile(opts.File); err != nil {
			return nil, fmt.Errorf("write %s: %w", opts.File, err)
		}
	}
	return &Result{Document: doc, Advisories: advisories}, nil
}

func (e *Exporter) header(opts Options) pmml.Header {
	return pmml.Header{
		Copyright:   opts.Copyright,
		Description: opts.Description,
		Application: &pmml.Application{Name: common.ApplicationName, Version: common.Version},
		Timestamp:   e.now().Format(TimestampLayout),
	}
}

// dataDictionary declares the target first, then every feature in order.
func dataDictionary(c *emitContext, classification bool) pmml.DataDictionary {
	target := pmml.DataField{
		Name:     c.targetName,
		OpType:   opContinuous,
		DataType: typeDouble,
	}
	if classification {
		target.OpType = opCategorical
		target.DataType = typeString
		for _, t := range c.targetValues {
			target.Values = append(target.Values, pmml.Value{Value: t})
		}
	}

	fields := make([]pmml.DataField, 0, len(c.featureNames)+1)
	fields = append(fields, target)
	for _, f := range c.featureNames {
		fields = append(fields, pmml.DataField{Name: f, OpType: opContinuous, DataType: typeDouble})
		log.Debug().Str("field", f).Msg("data field declared")
	}
	return pmml.DataDictionary{NumberOfFields: len(fields), Fields: fields}
}
