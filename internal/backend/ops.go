package backend

import (
	"fmt"
	"math"
)

type opFunc struct {
	unary bool
	// fold combines the argument values at one element position.
	fold func(xs []float64) float64
}

func (o opFunc) arity() string {
	if o.unary {
		return "exactly one argument"
	}
	return "one or more arguments"
}

var ops = map[string]opFunc{
	"identity": {unary: true, fold: func(xs []float64) float64 { return xs[0] }},
	"sum": {fold: func(xs []float64) float64 {
		var s float64
		for _, x := range xs {
			s += x
		}
		return s
	}},
	"product": {fold: func(xs []float64) float64 {
		p := 1.0
		for _, x := range xs {
			p *= x
		}
		return p
	}},
	"mean": {fold: func(xs []float64) float64 {
		var s float64
		for _, x := range xs {
			s += x
		}
		return s / float64(len(xs))
	}},
	"max": {fold: func(xs []float64) float64 {
		m := math.Inf(-1)
		for _, x := range xs {
			m = math.Max(m, x)
		}
		return m
	}},
	"min": {fold: func(xs []float64) float64 {
		m := math.Inf(1)
		for _, x := range xs {
			m = math.Min(m, x)
		}
		return m
	}},
}

// apply evaluates op over args, which must all share one shape.
func apply(op string, args []tensor) (tensor, error) {
	fn, ok := ops[op]
	if !ok {
		return tensor{}, fmt.Errorf("unknown op %q", op)
	}
	first := args[0]
	for i, a := range args[1:] {
		if !sameShape(first.shape, a.shape) {
			return tensor{}, fmt.Errorf("shape mismatch: argument %d has shape %v, argument 0 has %v", i+1, a.shape, first.shape)
		}
	}
	out := tensor{shape: append([]int(nil), first.shape...), data: make([]float64, len(first.data))}
	xs := make([]float64, len(args))
	for j := range first.data {
		for i, a := range args {
			xs[i] = a.data[j]
		}
		out.data[j] = fn.fold(xs)
	}
	return out, nil
}
