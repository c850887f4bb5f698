package manager

import (
	"sort"

	"modelpipe/pkg/types"
)

// sortedInputNames returns the signature's input names in lexical order.
func sortedInputNames(sig types.Signature) []string {
	names := make([]string, 0, len(sig.Inputs))
	for name := range sig.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cloneShape copies a shape slice so callers cannot mutate session state.
func cloneShape(shape []int64) []int64 {
	if shape == nil {
		return []int64{}
	}
	out := make([]int64, len(shape))
	copy(out, shape)
	return out
}
