package metrics

import (
	"math"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metric is an observer that reduces a run to a single number.
type Metric interface {
	Name() string
	OnTick(sys *dynamo.System, t float64)
	Value() float64
	Reset()
}

// Series is a time series of scalar samples.
type Series struct {
	Times  []float64
	Values []float64
}

func (s *Series) Add(t, v float64) {
	s.Times = append(s.Times, t)
	s.Values = append(s.Values, v)
}

func (s *Series) Len() int { return len(s.Values) }

func (s *Series) Last() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return s.Values[len(s.Values)-1]
}

func (s *Series) Reset() {
	s.Times = s.Times[:0]
	s.Values = s.Values[:0]
}

type Summary struct {
	Min, Max, Mean, StdDev float64
	// RelSpread is (max-min)/|first|, 0 when the first sample is 0.
	RelSpread float64
}

func (s *Series) Summary() Summary {
	if len(s.Values) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(s.Values, nil)
	if len(s.Values) == 1 {
		std = 0
	}
	sum := Summary{
		Min:    floats.Min(s.Values),
		Max:    floats.Max(s.Values),
		Mean:   mean,
		StdDev: std,
	}
	if first := math.Abs(s.Values[0]); first > 0 {
		sum.RelSpread = (sum.Max - sum.Min) / first
	}
	return sum
}
