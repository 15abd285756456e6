package model

// StandardScaler standardizes each feature as (x - Mean[i]) / Scale[i].
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

func (s *StandardScaler) TransformerKind() TransformerKind { return KindStandardScaler }
func (s *StandardScaler) NFeatures() int                   { return len(s.Mean) }

// MinMaxScaler maps each feature from [DataMin[i], DataMax[i]] onto
// FeatureRange. A zero FeatureRange means [0, 1].
type MinMaxScaler struct {
	DataMin      []float64
	DataMax      []float64
	FeatureRange [2]float64
}

// Range returns the target interval of the scaling.
func (s *MinMaxScaler) Range() (lo, hi float64) {
	if s.FeatureRange == [2]float64{} {
		return 0, 1
	}
	return s.FeatureRange[0], s.FeatureRange[1]
}

func (s *MinMaxScaler) TransformerKind() TransformerKind { return KindMinMaxScaler }
func (s *MinMaxScaler) NFeatures() int                   { return len(s.DataMin) }
