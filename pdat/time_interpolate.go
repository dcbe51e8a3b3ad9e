package pdat

import (
	"fmt"

	"github.com/notargets/amrgeom/hier"
)

// LinearTimeInterpolateName is the operator name of linear interpolation
const LinearTimeInterpolateName = "STD_LINEAR_TIME_INTERPOLATE"

// timeFraction returns how far t lies from older toward newer; coincident
// source times weigh older only
func timeFraction(t, older, newer float64) float64 {
	if newer == older {
		return 0
	}
	return (t - older) / (newer - older)
}

// CellDoubleLinearTimeInterpolateOp interpolates CellData linearly in time
type CellDoubleLinearTimeInterpolateOp struct{}

func (CellDoubleLinearTimeInterpolateOp) FindTimeInterpolateOperator(v *hier.Variable, opName string) bool {
	return v.Kind == CellDoubleKind && opName == LinearTimeInterpolateName
}

func (CellDoubleLinearTimeInterpolateOp) TimeInterpolate(dst hier.PatchData, where hier.Box, older, newer hier.PatchData) error {
	d, ok1 := dst.(*CellData)
	o, ok2 := older.(*CellData)
	n, ok3 := newer.(*CellData)
	if !ok1 || !ok2 || !ok3 {
		return fmt.Errorf("cell time interpolation needs CellData, got %T, %T, %T", dst, older, newer)
	}
	tfrac := timeFraction(d.Time(), o.Time(), n.Time())
	return d.array.LinearSum(where, 1-tfrac, o.array, tfrac, n.array)
}

// FaceDoubleLinearTimeInterpolateOp interpolates FaceData linearly in time
type FaceDoubleLinearTimeInterpolateOp struct{}

func (FaceDoubleLinearTimeInterpolateOp) FindTimeInterpolateOperator(v *hier.Variable, opName string) bool {
	return v.Kind == FaceDoubleKind && opName == LinearTimeInterpolateName
}

func (FaceDoubleLinearTimeInterpolateOp) TimeInterpolate(dst hier.PatchData, where hier.Box, older, newer hier.PatchData) error {
	d, ok1 := dst.(*FaceData)
	o, ok2 := older.(*FaceData)
	n, ok3 := newer.(*FaceData)
	if !ok1 || !ok2 || !ok3 {
		return fmt.Errorf("face time interpolation needs FaceData, got %T, %T, %T", dst, older, newer)
	}
	tfrac := timeFraction(d.Time(), o.Time(), n.Time())
	for dir := 0; dir < int(d.box.Dim); dir++ {
		err := d.arrays[dir].LinearSum(FaceBox(where, dir), 1-tfrac, o.arrays[dir], tfrac, n.arrays[dir])
		if err != nil {
			return fmt.Errorf("direction %d: %w", dir, err)
		}
	}
	return nil
}

// RegisterTimeInterpolateOperators adds the linear operators of this
// package to r
func RegisterTimeInterpolateOperators(r *hier.TimeInterpolateRegistry) {
	r.Register(CellDoubleLinearTimeInterpolateOp{})
	r.Register(FaceDoubleLinearTimeInterpolateOp{})
}
