package hier

// computeBoundaryBoxes decomposes the open cells around box into boundary
// boxes. open must be pairwise disjoint and lie outside box. ghost is the
// tangential extent boundary boxes may reach past the box.
//
// A cell in the slab of location l is kept only if, for every normal
// direction d of l, its projection onto the d-face layer of box is open.
// This keeps faces continuous past box corners while corners that another
// box or a boundary closes off drop out.
func computeBoundaryBoxes(box Box, ghost IntVector, open BoxContainer) *PatchBoundaries {
	dim := box.Dim
	pb := &PatchBoundaries{}
	if len(open) == 0 {
		return pb
	}

	for _, loc := range locations(dim) {
		slab := slabBox(box, ghost, loc)
		candidates := open.IntersectBox(slab)
		for d := 0; d < int(dim) && len(candidates) > 0; d++ {
			if loc[d] == 0 {
				continue
			}
			candidates = candidates.IntersectAll(projectionCover(box, ghost, loc, d, open))
		}
		if len(candidates) == 0 {
			continue
		}

		candidates = candidates.Coalesce()
		candidates.Sort()
		k := loc.codim(dim)
		idx := loc.index(dim)
		for _, c := range candidates {
			c.ID = box.ID
			c.Block = box.Block
			pb.add(BoundaryBox{Box: c, LocationIndex: idx, BoundaryType: k})
		}
	}
	return pb
}

// slabCoord is the single normal coordinate of location side s next to box
func slabCoord(box Box, d, s int) int {
	if s < 0 {
		return box.Lower[d] - 1
	}
	return box.Upper[d] + 1
}

// slabBox is one cell thick next to box in each normal direction of loc and
// spans the box extent plus ghost in each tangential direction
func slabBox(box Box, ghost IntVector, loc location) Box {
	r := box
	for d := 0; d < int(box.Dim); d++ {
		if loc[d] != 0 {
			c := slabCoord(box, d, loc[d])
			r.Lower[d], r.Upper[d] = c, c
		} else {
			r.Lower[d] = box.Lower[d] - ghost[d]
			r.Upper[d] = box.Upper[d] + ghost[d]
		}
	}
	return r
}

// projectionCover returns the slab cells of loc whose projection onto the
// d-face layer of box is open. The face layer is clamped to the box extent,
// so open face pieces reaching the box extent are extended by ghost.
func projectionCover(box Box, ghost IntVector, loc location, d int, open BoxContainer) BoxContainer {
	face := box
	for e := 0; e < int(box.Dim); e++ {
		switch {
		case e == d:
			c := slabCoord(box, e, loc[e])
			face.Lower[e], face.Upper[e] = c, c
		case loc[e] < 0:
			face.Upper[e] = box.Lower[e]
		case loc[e] > 0:
			face.Lower[e] = box.Upper[e]
		}
	}

	proj := open.IntersectBox(face)
	cover := make(BoxContainer, 0, len(proj))
	for _, p := range proj {
		c := p
		for e := 0; e < int(box.Dim); e++ {
			if e == d {
				continue
			}
			if loc[e] != 0 {
				s := slabCoord(box, e, loc[e])
				c.Lower[e], c.Upper[e] = s, s
				continue
			}
			if p.Lower[e] == box.Lower[e] {
				c.Lower[e] -= ghost[e]
			}
			if p.Upper[e] == box.Upper[e] {
				c.Upper[e] += ghost[e]
			}
		}
		cover = append(cover, c)
	}
	return cover
}
