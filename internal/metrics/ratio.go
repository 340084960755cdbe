package metrics

import "strconv"

// Ratio is a quotient that may be undefined when its denominator is zero.
type Ratio struct {
	Value   float64
	Defined bool
}

func NewRatio(num, den float64) Ratio {
	if den == 0 {
		return Ratio{}
	}
	return Ratio{Value: num / den, Defined: true}
}

func (r Ratio) String() string {
	if !r.Defined {
		return "undefined"
	}
	return strconv.FormatFloat(r.Value, 'f', 6, 64)
}

// F1 is the harmonic mean of precision and recall, undefined when either is
// undefined or both are zero.
func F1(precision, recall Ratio) Ratio {
	if !precision.Defined || !recall.Defined {
		return Ratio{}
	}
	return NewRatio(2*precision.Value*recall.Value, precision.Value+recall.Value)
}
