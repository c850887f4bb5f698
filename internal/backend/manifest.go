package backend

import (
	"fmt"

	"modelpipe/pkg/types"
)

// Manifest declares a model: typed inputs and an ordered list of outputs,
// each computed element-wise from one or more inputs.
//
//	name: adder
//	inputs:
//	  a: {dtype: float64, shape: [-1]}
//	  b: {dtype: float64, shape: [-1]}
//	outputs:
//	  - {name: total, op: sum, args: [a, b], dtype: float64, shape: [-1]}
type Manifest struct {
	Name    string                      `json:"name" yaml:"name" toml:"name"`
	Inputs  map[string]types.TensorSpec `json:"inputs" yaml:"inputs" toml:"inputs"`
	Outputs []OutputSpec                `json:"outputs" yaml:"outputs" toml:"outputs"`
}

// OutputSpec is one manifest output.
type OutputSpec struct {
	Name  string   `json:"name" yaml:"name" toml:"name"`
	Op    string   `json:"op" yaml:"op" toml:"op"`
	Args  []string `json:"args" yaml:"args" toml:"args"`
	DType string   `json:"dtype" yaml:"dtype" toml:"dtype"`
	Shape []int64  `json:"shape" yaml:"shape" toml:"shape"`
}

// Validate checks that every output names a known op and declared inputs.
func (m Manifest) Validate() error {
	if len(m.Inputs) == 0 {
		return fmt.Errorf("manifest declares no inputs")
	}
	if len(m.Outputs) == 0 {
		return fmt.Errorf("manifest declares no outputs")
	}
	seen := make(map[string]struct{}, len(m.Outputs))
	for i, o := range m.Outputs {
		if o.Name == "" {
			return fmt.Errorf("output %d: empty name", i)
		}
		if _, dup := seen[o.Name]; dup {
			return fmt.Errorf("output %q declared twice", o.Name)
		}
		seen[o.Name] = struct{}{}
		fn, ok := ops[o.Op]
		if !ok {
			return fmt.Errorf("output %q: unknown op %q", o.Name, o.Op)
		}
		if len(o.Args) == 0 || (fn.unary && len(o.Args) != 1) {
			return fmt.Errorf("output %q: op %s takes %s, got %d", o.Name, o.Op, fn.arity(), len(o.Args))
		}
		for _, a := range o.Args {
			if _, ok := m.Inputs[a]; !ok {
				return fmt.Errorf("output %q: unknown input %q", o.Name, a)
			}
		}
	}
	return nil
}

// Signature converts the manifest into the runtime-facing signature.
func (m Manifest) Signature() types.Signature {
	sig := types.Signature{
		Inputs:  make(map[string]types.TensorSpec, len(m.Inputs)),
		Outputs: make([]types.NamedTensor, 0, len(m.Outputs)),
	}
	for name, spec := range m.Inputs {
		sig.Inputs[name] = spec
	}
	for _, o := range m.Outputs {
		dt := o.DType
		if dt == "" {
			dt = "float64"
		}
		sig.Outputs = append(sig.Outputs, types.NamedTensor{
			Name:       o.Name,
			TensorSpec: types.TensorSpec{DType: dt, Shape: o.Shape},
		})
	}
	return sig
}
