package backend

import (
	"encoding/json"
	"fmt"
	"math"
)

// tensor is a dense float64 array in row-major order. A scalar has an
// empty shape and one element.
type tensor struct {
	shape []int
	data  []float64
}

// toTensor converts a decoded JSON value (number or rectangular nested
// array of numbers) into a tensor.
func toTensor(v any) (tensor, error) {
	var t tensor
	if err := t.fill(v, 0); err != nil {
		return tensor{}, err
	}
	return t, nil
}

func (t *tensor) fill(v any, depth int) error {
	switch x := v.(type) {
	case []any:
		if depth == len(t.shape) {
			if len(t.data) > 0 {
				return fmt.Errorf("ragged array at depth %d", depth)
			}
			t.shape = append(t.shape, len(x))
		} else if t.shape[depth] != len(x) {
			return fmt.Errorf("ragged array at depth %d: %d vs %d elements", depth, len(x), t.shape[depth])
		}
		for _, e := range x {
			if err := t.fill(e, depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		if depth != len(t.shape) {
			return fmt.Errorf("ragged array at depth %d", depth)
		}
		f, err := number(v)
		if err != nil {
			return err
		}
		t.data = append(t.data, f)
		return nil
	}
}

func number(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("non-numeric value %v (%T)", v, v)
	}
}

// conforms reports whether the tensor matches a declared shape, where -1
// matches any size. An empty declared shape accepts anything.
func (t tensor) conforms(declared []int64) bool {
	if len(declared) == 0 {
		return true
	}
	if len(declared) != len(t.shape) {
		return false
	}
	for i, d := range declared {
		if d >= 0 && int(d) != t.shape[i] {
			return false
		}
	}
	return true
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// value rebuilds the nested JSON form. Non-finite results are an error
// since they cannot be encoded.
func (t tensor) value() (any, error) {
	for _, f := range t.data {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite result %v", f)
		}
	}
	if len(t.shape) == 0 {
		return t.data[0], nil
	}
	v, _ := t.nest(0, 0)
	return v, nil
}

func (t tensor) nest(depth, off int) (any, int) {
	if depth == len(t.shape) {
		return t.data[off], off + 1
	}
	out := make([]any, t.shape[depth])
	for i := range out {
		out[i], off = t.nest(depth+1, off)
	}
	return out, off
}

func (t tensor) String() string { return fmt.Sprintf("%v", t.shape) }
