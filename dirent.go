package ghostfat

import (
	"encoding/binary"

	"github.com/go-restruct/restruct"
)

// directoryEntrySize is the packed size in bytes of a DirectoryEntry.
const directoryEntrySize = 32

// Attrs are the FAT directory entry attribute bits.
type Attrs uint8

// FAT16 directory entry attribute flags.
const (
	AttrReadOnly    Attrs = 0x01
	AttrHidden      Attrs = 0x02
	AttrSystem      Attrs = 0x04
	AttrVolumeLabel Attrs = 0x08
	AttrSubdir      Attrs = 0x10
	AttrArchive     Attrs = 0x20
	AttrDevice      Attrs = 0x40
)

// volumeLabelAttrs is the attribute byte stamped on the synthesized
// volume-label entry at offset 0 of the root directory.
const volumeLabelAttrs = AttrVolumeLabel | AttrArchive

// DirectoryEntry is a packed 32-byte FAT directory entry. All multi-byte
// fields are little-endian; timestamps are always zero for synthesized
// entries per spec.md §4.5 Region 3.
type DirectoryEntry struct {
	Name             [11]byte
	Attrs            uint8
	Reserved         uint8
	CreateTimeFine   uint8
	CreateTime       uint16
	CreateDate       uint16
	LastAccessDate   uint16
	HighStartCluster uint16
	UpdateTime       uint16
	UpdateDate       uint16
	StartCluster     uint16
	Size             uint32
}

// pack writes the little-endian 32-byte entry into buf[:directoryEntrySize].
func (d *DirectoryEntry) pack(buf []byte) error {
	if len(buf) < directoryEntrySize {
		return ErrBufferTooSmall
	}
	return restruct.Pack(buf[:directoryEntrySize], binary.LittleEndian, d)
}
