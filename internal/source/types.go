package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, embedded AST payload).
	FileVirtual FileFlags = 1 << iota
	// FilePathOnly indicates only the path is known; content was never loaded.
	FilePathOnly
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single surface-language file
// referenced by the decoded program.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
