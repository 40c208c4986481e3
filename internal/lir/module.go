package lir

// Features records module-level capabilities that gate the region analysis.
type Features struct {
	// DeferredThreadSafety is set when the module was compiled with deferred
	// thread-safety checking enabled.
	DeferredThreadSafety bool
	// MarkerProtocol is set when the thread-safety marker protocol was
	// resolvable while building the module.
	MarkerProtocol bool
}

type Module struct {
	Name     string
	Features Features

	Funcs      []*Func
	FuncByName map[string]FuncID
}

func NewModule(name string) *Module {
	return &Module{
		Name:       name,
		FuncByName: make(map[string]FuncID),
	}
}

// AddFunc registers the function and assigns its FuncID.
func (m *Module) AddFunc(f *Func) FuncID {
	id := FuncID(len(m.Funcs))
	f.ID = id
	m.Funcs = append(m.Funcs, f)
	if m.FuncByName == nil {
		m.FuncByName = make(map[string]FuncID)
	}
	m.FuncByName[f.Name] = id
	return id
}

// Lookup returns the function with the given name.
func (m *Module) Lookup(name string) (*Func, bool) {
	id, ok := m.FuncByName[name]
	if !ok || int(id) >= len(m.Funcs) {
		return nil, false
	}
	return m.Funcs[id], true
}
