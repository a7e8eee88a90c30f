package ghostfat

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DynamicContent is the contract for a File backed by an object other than
// a plain byte buffer — hardware-backed storage, a ring buffer, a status
// register rendered as text, and so on. Implementations must internally
// serialize access; GhostFat calls them from a single call site at a time.
type DynamicContent interface {
	// Len returns the current content length in bytes.
	Len() int
	// ReadChunk copies the block_size-sized chunk at index into buf and
	// returns the number of bytes copied.
	ReadChunk(index int, buf []byte) int
	// WriteChunk accepts up to len(buf) bytes at the given chunk index and
	// returns the number of bytes accepted.
	WriteChunk(index int, buf []byte) int
}

type contentKind uint8

const (
	contentRead contentKind = iota
	contentWrite
	contentDynamic
)

// File is a named logical file whose contents are synthesized into the
// virtual volume's data region. A File borrows its backing store (readBuf,
// writeBuf, or dynamic) for the lifetime of the GhostFat instance it is
// registered with.
type File struct {
	name      string
	shortName [11]byte
	kind      contentKind
	readBuf   []byte
	writeBuf  []byte
	dynamic   DynamicContent
}

// NewReadOnlyFile creates a File whose content is an immutable byte buffer.
// Writes to its data clusters are rejected with ErrWriteProtected.
func NewReadOnlyFile(name string, data []byte) (*File, error) {
	short, err := shortName(name)
	if err != nil {
		return nil, err
	}
	return &File{name: name, shortName: short, kind: contentRead, readBuf: data}, nil
}

// NewWritableFile creates a File whose content is a mutable byte buffer the
// host can overwrite in place via WriteBlock.
func NewWritableFile(name string, data []byte) (*File, error) {
	short, err := shortName(name)
	if err != nil {
		return nil, err
	}
	return &File{name: name, shortName: short, kind: contentWrite, writeBuf: data}, nil
}

// NewDynamicFile creates a File whose content is served by content, e.g. a
// handle onto hardware-backed storage.
func NewDynamicFile(name string, content DynamicContent) (*File, error) {
	short, err := shortName(name)
	if err != nil {
		return nil, err
	}
	return &File{name: name, shortName: short, kind: contentDynamic, dynamic: content}, nil
}

// Name returns the file's display name, e.g. "INFO_UF2.TXT".
func (f *File) Name() string { return f.name }

// Len returns the current content length in bytes.
func (f *File) Len() int {
	switch f.kind {
	case contentRead:
		return len(f.readBuf)
	case contentWrite:
		return len(f.writeBuf)
	default:
		return f.dynamic.Len()
	}
}

// NumBlocks returns ceil(Len() / blockSize), the number of clusters this
// file occupies.
func (f *File) NumBlocks(blockSize int) int {
	n := f.Len() / blockSize
	if f.Len()%blockSize != 0 {
		n++
	}
	return n
}

// Attrs returns the directory-entry attribute byte for this file's content
// kind: READ_ONLY for immutable content, no bits set otherwise.
func (f *File) Attrs() Attrs {
	if f.kind == contentRead {
		return AttrReadOnly
	}
	return 0
}

// IsReadOnly reports whether writes to this file's clusters must be
// rejected.
func (f *File) IsReadOnly() bool { return f.kind == contentRead }

// ShortName returns the 11-byte 8.3 short name placed in directory entries.
func (f *File) ShortName() [11]byte { return f.shortName }

// chunk copies the i-th block_size-sized slice of the file's content into
// buf (sized to one block), returning the number of bytes copied. It
// returns 0 if i is past the end of the file.
func (f *File) chunk(i int, buf []byte) int {
	switch f.kind {
	case contentRead:
		return copyChunk(f.readBuf, i, buf)
	case contentWrite:
		return copyChunk(f.writeBuf, i, buf)
	default:
		return f.dynamic.ReadChunk(i, buf)
	}
}

// chunkMut writes data into the i-th block_size-sized slice of the file's
// content, returning the number of bytes accepted. Read-only content always
// returns 0.
func (f *File) chunkMut(i int, data []byte) int {
	switch f.kind {
	case contentWrite:
		return copyChunkInto(f.writeBuf, i, data)
	case contentDynamic:
		return f.dynamic.WriteChunk(i, data)
	default:
		return 0
	}
}

func copyChunk(data []byte, i int, dst []byte) int {
	blockSize := len(dst)
	start := i * blockSize
	if start >= len(data) {
		return 0
	}
	end := start + blockSize
	if end > len(data) {
		end = len(data)
	}
	return copy(dst, data[start:end])
}

func copyChunkInto(data []byte, i int, src []byte) int {
	blockSize := len(src)
	start := i * blockSize
	if start >= len(data) {
		return 0
	}
	end := start + blockSize
	if end > len(data) {
		end = len(data)
	}
	return copy(data[start:end], src)
}

// oemEncoder transcodes display names into IBM codepage 437, the
// traditional FAT OEM code page for 8.3 short names, replacing characters
// the code page cannot represent with '_' instead of failing.
var oemEncoder = encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder())

// shortName derives the 11-byte 8.3 short-name field from a display name,
// per spec.md §4.4: split on the first '.'; reject names with no
// extension or whose prefix+extension exceeds 11 bytes; space-pad the
// result. The prefix and extension are upper-cased and transcoded through
// the OEM code page before measuring their length.
func shortName(name string) ([11]byte, error) {
	var out [11]byte
	for i := range out {
		out[i] = ASCIISpace
	}

	dot := strings.IndexByte(name, '.')
	if dot < 0 || dot == len(name)-1 {
		return out, ErrInvalidName
	}
	prefix, ext := name[:dot], name[dot+1:]
	if strings.IndexByte(ext, '.') >= 0 {
		// Only a single extension component is supported (no LFN, no
		// multi-dot names); spec.md §1 places long names out of scope.
		return out, ErrInvalidName
	}

	prefix = toOEM(strings.ToUpper(prefix))
	ext = toOEM(strings.ToUpper(ext))
	if len(prefix) == 0 || len(ext) == 0 || len(prefix)+len(ext) > 11 {
		return out, ErrInvalidName
	}

	copy(out[:len(prefix)], prefix)
	copy(out[11-len(ext):], ext)
	return out, nil
}

func toOEM(s string) string {
	out, err := oemEncoder.String(s)
	if err != nil {
		return s
	}
	return out
}
