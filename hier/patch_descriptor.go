package hier

import (
	"fmt"
	"slices"
)

// PatchDescriptor lists the data components every patch of a level may hold.
// It is shared by all patches and describes component kinds, never instances.
type PatchDescriptor struct {
	names     []string
	factories []PatchDataFactory
	byName    map[string]int
	byVarCtx  map[varCtxKey]int
}

type varCtxKey struct {
	variable *Variable
	context  *VariableContext
}

func NewPatchDescriptor() *PatchDescriptor {
	return &PatchDescriptor{
		byName:   make(map[string]int),
		byVarCtx: make(map[varCtxKey]int),
	}
}

// DefinePatchDataComponent registers a component and returns its id. Names
// must be unique; they key the component in persisted patches, so the keys
// of the patch record itself are refused.
func (pd *PatchDescriptor) DefinePatchDataComponent(name string, factory PatchDataFactory) (int, error) {
	if name == "" || slices.Contains(patchKeys, name) {
		return -1, fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	if factory == nil {
		return -1, fmt.Errorf("component %q: nil factory", name)
	}
	if _, found := pd.byName[name]; found {
		return -1, fmt.Errorf("component %q already defined", name)
	}
	id := len(pd.factories)
	pd.names = append(pd.names, name)
	pd.factories = append(pd.factories, factory)
	pd.byName[name] = id
	return id, nil
}

// RegisterVariableAndContext defines a component for a (variable, context)
// pair, named "variable##context", using the variable's factory
func (pd *PatchDescriptor) RegisterVariableAndContext(v *Variable, ctx *VariableContext) (int, error) {
	key := varCtxKey{variable: v, context: ctx}
	if id, found := pd.byVarCtx[key]; found {
		return id, nil
	}
	id, err := pd.DefinePatchDataComponent(v.Name+"##"+ctx.Name, v.Factory)
	if err != nil {
		return -1, err
	}
	pd.byVarCtx[key] = id
	return id, nil
}

// MapVariableAndContextToIndex resolves a (variable, context) pair to an id
func (pd *PatchDescriptor) MapVariableAndContextToIndex(v *Variable, ctx *VariableContext) (int, bool) {
	id, ok := pd.byVarCtx[varCtxKey{variable: v, context: ctx}]
	return id, ok
}

// MapNameToIndex resolves a component name
func (pd *PatchDescriptor) MapNameToIndex(name string) (int, bool) {
	id, ok := pd.byName[name]
	return id, ok
}

// MapIndexToName returns the name of component id, or "" if undefined
func (pd *PatchDescriptor) MapIndexToName(id int) string {
	if id < 0 || id >= len(pd.names) {
		return ""
	}
	return pd.names[id]
}

// PatchDataFactory returns the factory of component id
func (pd *PatchDescriptor) PatchDataFactory(id int) (PatchDataFactory, error) {
	if id < 0 || id >= len(pd.factories) {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownComponent, id)
	}
	return pd.factories[id], nil
}

// MaxNumberRegisteredComponents returns one past the largest component id
func (pd *PatchDescriptor) MaxNumberRegisteredComponents() int {
	return len(pd.factories)
}

// MaxGhostWidth returns the largest ghost width of any component
func (pd *PatchDescriptor) MaxGhostWidth() IntVector {
	var g IntVector
	for _, f := range pd.factories {
		g = g.Max(f.GhostCellWidth())
	}
	return g
}
