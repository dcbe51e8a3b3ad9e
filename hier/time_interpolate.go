package hier

import (
	"fmt"
)

// TimeInterpolateOperator fills patch data at an intermediate time from data
// at two bracketing times
type TimeInterpolateOperator interface {
	// FindTimeInterpolateOperator reports whether the operator handles data
	// of v's kind under the name opName
	FindTimeInterpolateOperator(v *Variable, opName string) bool
	// TimeInterpolate fills dst over where, using dst's time to weigh older and
	// newer
	TimeInterpolate(dst PatchData, where Box, older, newer PatchData) error
}

// TimeInterpolateRegistry dispatches a (variable, operator name) pair to the
// first registered operator that claims it
type TimeInterpolateRegistry struct {
	ops []TimeInterpolateOperator
}

func NewTimeInterpolateRegistry() *TimeInterpolateRegistry {
	return &TimeInterpolateRegistry{}
}

// Register appends op; earlier registrations win on lookup
func (r *TimeInterpolateRegistry) Register(op TimeInterpolateOperator) {
	r.ops = append(r.ops, op)
}

// Lookup returns the operator for v named opName
func (r *TimeInterpolateRegistry) Lookup(v *Variable, opName string) (TimeInterpolateOperator, error) {
	for _, op := range r.ops {
		if op.FindTimeInterpolateOperator(v, opName) {
			return op, nil
		}
	}
	return nil, fmt.Errorf("no time interpolation operator %q for variable %q of kind %q", opName, v.Name, v.Kind)
}
