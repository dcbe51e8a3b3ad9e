package hier

// PatchGeometry holds what a patch knows about its place in the domain: its
// refinement ratio and its physical boundary boxes. It is owned by exactly
// one Patch.
type PatchGeometry struct {
	ratio           IntVector
	touchesRegular  [MaxDim][2]bool
	touchesPeriodic [MaxDim][2]bool
	boundaries      *PatchBoundaries
}

// RatioToLevelZero returns the refinement ratio of the patch's level
func (pg *PatchGeometry) RatioToLevelZero() IntVector { return pg.ratio }

// PhysicalBoundaries returns the physical boundary boxes of a type
func (pg *PatchGeometry) PhysicalBoundaries(boundaryType int) []BoundaryBox {
	return pg.boundaries.Boxes(boundaryType)
}

// IntersectsPhysicalBoundary reports whether any physical boundary box exists
func (pg *PatchGeometry) IntersectsPhysicalBoundary() bool {
	return !pg.boundaries.Empty()
}

// TouchesRegularBoundary reports whether side (0 lower, 1 upper) of
// direction d lies on a non-periodic domain boundary
func (pg *PatchGeometry) TouchesRegularBoundary(d, side int) bool {
	return pg.touchesRegular[d][side]
}

// TouchesPeriodicBoundary reports whether side of direction d lies on a
// periodic seam
func (pg *PatchGeometry) TouchesPeriodicBoundary(d, side int) bool {
	return pg.touchesPeriodic[d][side]
}
