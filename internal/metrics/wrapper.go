package metrics

// Wrapper adapts Metrics to the small interfaces the exporter, publisher
// and server depend on, so those packages never import prometheus.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) ExportsInc() {
	w.m.ExportsTotal.Inc()
}

func (w *Wrapper) ExportFailuresInc() {
	w.m.ExportFailures.Inc()
}

func (w *Wrapper) AdvisoriesAdd(n float64) {
	w.m.Advisories.Add(n)
}

func (w *Wrapper) ExportLatencyObserve(seconds float64) {
	w.m.ExportLatency.Observe(seconds)
}

func (w *Wrapper) DocumentBytesObserve(n float64) {
	w.m.DocumentBytes.Observe(n)
}

func (w *Wrapper) PublishInc() {
	w.m.PublishTotal.Inc()
}

func (w *Wrapper) PublishFailuresInc() {
	w.m.PublishFailures.Inc()
}

func (w *Wrapper) StoredExportsInc() {
	w.m.StoredExports.Inc()
}
