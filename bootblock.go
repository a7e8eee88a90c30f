package ghostfat

import (
	"encoding/binary"

	"github.com/go-restruct/restruct"
)

// fatBootBlockSize is the packed size in bytes of FatBootBlock, restated
// from the FAT16 BIOS Parameter Block public specification.
const fatBootBlockSize = 62

const bootSignatureOffset = 510 // 0x55 0xAA lives at the end of the 512-byte sector.

// FatBootBlock is the FAT16 BIOS Parameter Block (BPB). Field order and
// widths are load-bearing: the struct is packed byte-for-byte with
// restruct, little-endian, matching the wire layout a FAT16 driver expects
// at LBA 0.
type FatBootBlock struct {
	JumpInstruction [3]byte
	OEMInfo         [8]byte

	BytesPerSector       uint16
	SectorsPerCluster    uint8
	ReservedSectors      uint16
	FATCopies            uint8
	RootDirectoryEntries uint16
	TotalSectors16       uint16
	MediaDescriptor      uint8
	SectorsPerFAT        uint16
	SectorsPerTrack      uint16
	Heads                uint16
	HiddenSectors        uint32
	TotalSectors32       uint32
	PhysicalDriveNum     uint8
	Reserved1            uint8
	ExtendedBootSig      uint8
	VolumeSerialNumber   uint32
	VolumeLabel          [11]byte
	FilesystemIdentifier [8]byte
}

// newFatBootBlock populates a FatBootBlock from cfg. It is infallible by
// construction: every string field is truncated to fit rather than
// rejected, per spec.md §4.2.
func newFatBootBlock(cfg Config) FatBootBlock {
	boot := FatBootBlock{
		JumpInstruction:      [3]byte{0xEB, 0x3C, 0x90},
		OEMInfo:              spaceFill8(cfg.OEMInfo),
		BytesPerSector:       uint16(cfg.BlockSize),
		SectorsPerCluster:    1,
		ReservedSectors:      uint16(cfg.ReservedSectors),
		FATCopies:            2,
		RootDirectoryEntries: uint16(cfg.rootDirEntries()),
		MediaDescriptor:      0xF8,
		SectorsPerFAT:        uint16(cfg.sectorsPerFAT()),
		SectorsPerTrack:      1,
		Heads:                1,
		PhysicalDriveNum:     0,
		ExtendedBootSig:      0x29,
		VolumeSerialNumber:   0x00420042,
		VolumeLabel:          spaceFill11(cfg.VolumeLabel),
		FilesystemIdentifier: spaceFill8(cfg.FilesystemIdentifier),
	}
	if cfg.NumBlocks-2 <= 0xFFFF {
		boot.TotalSectors16 = uint16(cfg.NumBlocks - 2)
	} else {
		boot.TotalSectors32 = cfg.NumBlocks - 2
	}
	return boot
}

// pack writes the little-endian 62-byte BPB into buf[:fatBootBlockSize].
func (b *FatBootBlock) pack(buf []byte) error {
	if len(buf) < fatBootBlockSize {
		return ErrBufferTooSmall
	}
	return restruct.Pack(buf[:fatBootBlockSize], binary.LittleEndian, b)
}

// spaceFill8 space-fills s (0x20) into an 8-byte array, preserving at least
// one trailing space as FAT conventions expect.
func spaceFill8(s string) [8]byte {
	var out [8]byte
	for i := range out {
		out[i] = ASCIISpace
	}
	n := len(s)
	if n > len(out)-1 {
		n = len(out) - 1
	}
	copy(out[:n], s)
	return out
}

// spaceFill11 is spaceFill8 for the 11-byte volume-label-shaped fields.
func spaceFill11(s string) [11]byte {
	var out [11]byte
	for i := range out {
		out[i] = ASCIISpace
	}
	n := len(s)
	if n > len(out)-1 {
		n = len(out) - 1
	}
	copy(out[:n], s)
	return out
}

// ASCIISpace is the FAT pad byte used throughout the boot block, directory
// entries, and short names.
const ASCIISpace = 0x20
