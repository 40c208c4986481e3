package lir

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"regionck/internal/source"
	"regionck/internal/types"
)

// Schema version for serialized modules - increment when the wire format changes.
const codecSchemaVersion uint16 = 1

// fileWire carries a file's span-resolution data without its content.
type fileWire struct {
	Path    string
	LineIdx []uint32
	Size    uint32
}

// moduleWire is the top-level serialized form of a module.
type moduleWire struct {
	Schema   uint16
	Name     string
	Features Features
	Types    types.Snapshot
	Files    []fileWire
	Funcs    []*Func
}

// EncodeModule serializes a module together with its type tables and the
// span-resolution data of its file set.
func EncodeModule(w io.Writer, m *Module, typesIn *types.Interner, fs *source.FileSet) error {
	if m == nil {
		return fmt.Errorf("lir: encode nil module")
	}

	wire := moduleWire{
		Schema:   codecSchemaVersion,
		Name:     m.Name,
		Features: m.Features,
		Funcs:    m.Funcs,
	}
	if typesIn != nil {
		wire.Types = typesIn.Snapshot()
	}
	if fs != nil {
		wire.Files = make([]fileWire, 0, fs.Len())
		for i := 0; i < fs.Len(); i++ {
			f := fs.Get(source.FileID(i))
			wire.Files = append(wire.Files, fileWire{
				Path:    f.Path,
				LineIdx: f.LineIdx,
				Size:    f.Size,
			})
		}
	}

	return msgpack.NewEncoder(w).Encode(&wire)
}

// DecodeModule reads a serialized module. The returned file set carries line
// indexes only; GetLine on its files yields empty strings.
func DecodeModule(r io.Reader) (*Module, *types.Interner, *source.FileSet, error) {
	var wire moduleWire
	if err := msgpack.NewDecoder(r).Decode(&wire); err != nil {
		return nil, nil, nil, fmt.Errorf("lir: decode module: %w", err)
	}
	if wire.Schema != codecSchemaVersion {
		return nil, nil, nil, fmt.Errorf("lir: unsupported module schema %d (want %d)", wire.Schema, codecSchemaVersion)
	}

	m := NewModule(wire.Name)
	m.Features = wire.Features
	m.Funcs = wire.Funcs
	for id, f := range m.Funcs {
		if f != nil {
			m.FuncByName[f.Name] = FuncID(id)
		}
	}

	typesIn := types.FromSnapshot(wire.Types)

	fs := source.NewFileSet()
	for _, f := range wire.Files {
		fs.AddIndexed(f.Path, f.LineIdx, f.Size)
	}

	return m, typesIn, fs, nil
}
