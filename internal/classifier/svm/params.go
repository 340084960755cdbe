package svm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type KernelType int

const (
	KernelLinear KernelType = iota
	KernelPoly
	KernelRBF
	KernelSigmoid
)

func (k KernelType) String() string {
	switch k {
	case KernelLinear:
		return "linear"
	case KernelPoly:
		return "polynomial"
	case KernelRBF:
		return "rbf"
	case KernelSigmoid:
		return "sigmoid"
	default:
		return "kernel(" + strconv.Itoa(int(k)) + ")"
	}
}

// Params are the C-SVC hyperparameters. A zero Gamma means 1/dimensions.
type Params struct {
	Kernel KernelType
	C      float64
	Gamma  float64
	Degree int
	Coef0  float64
	Eps    float64
	Quiet  bool
}

func DefaultParams() Params {
	return Params{
		Kernel: KernelLinear,
		C:      1,
		Degree: 3,
		Eps:    1e-3,
	}
}

var (
	ErrUnknownParam = errors.New("unknown svm parameter")
	ErrParamValue   = errors.New("invalid svm parameter value")
)

// ParseParams reads the "key:value,key:value" form: t kernel type, c cost,
// g gamma, d degree, r coef0, e tolerance, q quiet (no value needed).
func ParseParams(s string) (Params, error) {
	p := DefaultParams()
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, value, hasValue := strings.Cut(entry, ":")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if key == "q" {
			p.Quiet = true
			continue
		}
		if !hasValue || value == "" {
			return Params{}, fmt.Errorf("%w: %q needs a value", ErrParamValue, key)
		}

		var err error
		switch key {
		case "t":
			var t int
			t, err = strconv.Atoi(value)
			p.Kernel = KernelType(t)
		case "c":
			p.C, err = strconv.ParseFloat(value, 64)
		case "g":
			p.Gamma, err = strconv.ParseFloat(value, 64)
		case "d":
			p.Degree, err = strconv.Atoi(value)
		case "r":
			p.Coef0, err = strconv.ParseFloat(value, 64)
		case "e":
			p.Eps, err = strconv.ParseFloat(value, 64)
		default:
			return Params{}, fmt.Errorf("%w: %q", ErrUnknownParam, key)
		}
		if err != nil {
			return Params{}, fmt.Errorf("%w: %s:%s: %v", ErrParamValue, key, value, err)
		}
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func (p Params) Validate() error {
	switch {
	case p.Kernel < KernelLinear || p.Kernel > KernelSigmoid:
		return fmt.Errorf("%w: kernel type %d", ErrParamValue, p.Kernel)
	case !(p.C > 0):
		return fmt.Errorf("%w: cost %v must be positive", ErrParamValue, p.C)
	case !(p.Eps > 0):
		return fmt.Errorf("%w: tolerance %v must be positive", ErrParamValue, p.Eps)
	case p.Gamma < 0:
		return fmt.Errorf("%w: gamma %v is negative", ErrParamValue, p.Gamma)
	case p.Degree < 0:
		return fmt.Errorf("%w: degree %d is negative", ErrParamValue, p.Degree)
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("t:%d,c:%g,g:%g,d:%d,r:%g,e:%g", p.Kernel, p.C, p.Gamma, p.Degree, p.Coef0, p.Eps)
}
