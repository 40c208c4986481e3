package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	// FileIndexed indicates the file carries only a line index and no content,
	// reconstructed from a serialized LIR module.
	FileIndexed
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single source file.
// Files restored from a serialized module have Content == nil and the
// FileIndexed flag set; spans are still resolvable through LineIdx.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Size    uint32
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
