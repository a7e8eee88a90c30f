package ghostfat

import "errors"

// Sentinel errors returned by this package. Callers should compare against
// these with errors.Is rather than matching on error text.
var (
	// ErrInvalidName is returned by the File constructors when a display
	// name cannot be reduced to an 8.3 short name.
	ErrInvalidName = errors.New("ghostfat: invalid 8.3 file name")

	// ErrWriteProtected is returned by WriteBlock when a write targets a
	// cluster backed by read-only file content.
	ErrWriteProtected = errors.New("ghostfat: write to read-only file")

	// ErrBufferTooSmall is returned by the packing routines when the
	// destination buffer is smaller than the structure being encoded. It
	// must never escape GhostFat.ReadBlock/WriteBlock under correct use;
	// the façade asserts the buffer size at entry.
	ErrBufferTooSmall = errors.New("ghostfat: destination buffer too small")

	// ErrBlockSizeTooLarge is returned by Mount-time configuration when the
	// requested block size cannot be represented as the BootBlock's 16-bit
	// BytesPerSector field.
	ErrBlockSizeTooLarge = errors.New("ghostfat: block size too large")
)
