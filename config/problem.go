// Package config reads a TOML problem description and builds the patch
// hierarchy it describes.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/notargets/amrgeom/hier"
	"github.com/notargets/amrgeom/pdat"
)

// BoxSpec is a box in a problem file. Lower and Upper have one entry per
// dimension.
type BoxSpec struct {
	Lower []int `toml:"lower"`
	Upper []int `toml:"upper"`
	Block int   `toml:"block"`
}

// LevelSpec is one refinement level. Ratio is relative to the next coarser
// level; level zero must have ratio one or none.
type LevelSpec struct {
	Ratio []int     `toml:"ratio"`
	Ranks int       `toml:"ranks"`
	Boxes []BoxSpec `toml:"box"`
}

// VariableSpec declares a field stored on every patch
type VariableSpec struct {
	Name    string `toml:"name"`
	Kind    string `toml:"kind"` // "cell" or "face"
	Depth   int    `toml:"depth"`
	Ghosts  []int  `toml:"ghosts"`
	Context string `toml:"context"`
}

// Problem is the top level of a problem file
type Problem struct {
	Dim        int            `toml:"dim"`
	GhostWidth []int          `toml:"ghost_width"`
	Periodic   []bool         `toml:"periodic"`
	Domain     []BoxSpec      `toml:"domain"`
	Levels     []LevelSpec    `toml:"level"`
	Variables  []VariableSpec `toml:"variable"`
}

// Load decodes a problem file and validates it
func Load(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Decode reads a problem from r and validates it
func Decode(r io.Reader) (*Problem, error) {
	p := new(Problem)
	md, err := toml.NewDecoder(r).Decode(p)
	if err != nil {
		return nil, err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("unknown keys %v", undec)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Encode writes the problem as TOML
func (p *Problem) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(p)
}

// Validate checks that every vector has the problem's dimension and every
// box is non-empty
func (p *Problem) Validate() error {
	if p.Dim < 1 || p.Dim > hier.MaxDim {
		return fmt.Errorf("dim %d must be 1, 2 or 3", p.Dim)
	}
	if err := checkLen("ghost_width", len(p.GhostWidth), p.Dim); err != nil {
		return err
	}
	if err := checkLen("periodic", len(p.Periodic), p.Dim); err != nil {
		return err
	}
	for _, g := range p.GhostWidth {
		if g < 0 {
			return fmt.Errorf("ghost_width %v has a negative entry", p.GhostWidth)
		}
	}
	if len(p.Domain) == 0 {
		return fmt.Errorf("no domain boxes")
	}
	for i, b := range p.Domain {
		if err := b.validate(p.Dim); err != nil {
			return fmt.Errorf("domain box %d: %w", i, err)
		}
	}
	if len(p.Levels) == 0 {
		return fmt.Errorf("no levels")
	}
	for n, l := range p.Levels {
		if err := checkLen(fmt.Sprintf("level %d ratio", n), len(l.Ratio), p.Dim); err != nil {
			return err
		}
		for _, r := range l.Ratio {
			if r < 1 || (n == 0 && r != 1) {
				return fmt.Errorf("level %d ratio %v is invalid", n, l.Ratio)
			}
		}
		if len(l.Boxes) == 0 {
			return fmt.Errorf("level %d has no boxes", n)
		}
		for i, b := range l.Boxes {
			if err := b.validate(p.Dim); err != nil {
				return fmt.Errorf("level %d box %d: %w", n, i, err)
			}
		}
	}
	for _, v := range p.Variables {
		if v.Name == "" {
			return fmt.Errorf("variable with no name")
		}
		if v.Kind != "cell" && v.Kind != "face" {
			return fmt.Errorf("variable %q: kind %q must be cell or face", v.Name, v.Kind)
		}
		if err := checkLen(fmt.Sprintf("variable %q ghosts", v.Name), len(v.Ghosts), p.Dim); err != nil {
			return err
		}
	}
	return nil
}

// checkLen accepts a list of dim entries or an empty one
func checkLen(what string, n, dim int) error {
	if n == dim || n == 0 {
		return nil
	}
	return fmt.Errorf("%s has %d entries, dim is %d", what, n, dim)
}

func (b BoxSpec) validate(dim int) error {
	if len(b.Lower) != dim || len(b.Upper) != dim {
		return fmt.Errorf("corners %v %v must have %d entries", b.Lower, b.Upper, dim)
	}
	for d := 0; d < dim; d++ {
		if b.Upper[d] < b.Lower[d] {
			return fmt.Errorf("box %v %v is empty", b.Lower, b.Upper)
		}
	}
	if b.Block < 0 {
		return fmt.Errorf("negative block %d", b.Block)
	}
	return nil
}

// vector converts a per-dimension list; missing entries take def
func vector(v []int, def int) hier.IntVector {
	out := hier.Uniform(def)
	copy(out[:], v)
	return out
}

func (b BoxSpec) box(dim hier.Dimension) hier.Box {
	box := hier.NewBox(dim, vector(b.Lower, 0), vector(b.Upper, 0))
	box.Block = hier.BlockId(b.Block)
	return box
}

// GhostVector returns the ghost width used for boundaries and connectors
func (p *Problem) GhostVector() hier.IntVector {
	return vector(p.GhostWidth, 0)
}

// Build creates the hierarchy, defining every variable in the "CURRENT"
// context unless the variable names another
func (p *Problem) Build() (*hier.PatchHierarchy, error) {
	dim := hier.Dimension(p.Dim)

	var periodic [hier.MaxDim]bool
	copy(periodic[:], p.Periodic)
	domain := make([]hier.Box, len(p.Domain))
	for i, b := range p.Domain {
		domain[i] = b.box(dim)
	}
	geom, err := hier.NewGridGeometry(dim, domain, periodic)
	if err != nil {
		return nil, err
	}

	descriptor := hier.NewPatchDescriptor()
	contexts := make(map[string]*hier.VariableContext)
	for _, vs := range p.Variables {
		var v *hier.Variable
		depth := max(vs.Depth, 1)
		switch vs.Kind {
		case "face":
			v = pdat.NewFaceVariable(vs.Name, depth, vector(vs.Ghosts, 0))
		default:
			v = pdat.NewCellVariable(vs.Name, depth, vector(vs.Ghosts, 0))
		}
		name := vs.Context
		if name == "" {
			name = "CURRENT"
		}
		ctx, ok := contexts[name]
		if !ok {
			ctx = &hier.VariableContext{Name: name}
			contexts[name] = ctx
		}
		if _, err := descriptor.RegisterVariableAndContext(v, ctx); err != nil {
			return nil, err
		}
	}

	ghost := p.GhostVector().Max(descriptor.MaxGhostWidth())
	h := hier.NewPatchHierarchy(geom, descriptor, ghost)
	ratio := hier.One
	for n, ls := range p.Levels {
		ratio = ratio.Mul(vector(ls.Ratio, 1))
		boxes := make([]hier.Box, len(ls.Boxes))
		for i, b := range ls.Boxes {
			boxes[i] = b.box(dim)
		}
		builder := hier.BoxLevelBuilder{Dim: dim, Ratio: ratio, NumRanks: ls.Ranks}
		boxLevel, err := builder.Build(boxes)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", n, err)
		}
		if _, err := h.MakeNewPatchLevel(n, boxLevel); err != nil {
			return nil, err
		}
	}
	return h, nil
}
