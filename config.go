package ghostfat

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/hashicorp/go-multierror"
)

// Config selects the shape of the synthesized FAT16 volume: its advertised
// size, the sector regions preceding the data area, and the strings baked
// into the boot sector. Every field has a zero-value-safe default applied by
// New via withDefaults, mirroring the teacher's "default() -> Config"
// idiom (soypat/fat's FormatConfig, ghostfat's original config.rs).
type Config struct {
	// NumBlocks is the total number of sectors the virtual volume
	// advertises. Default 8000.
	NumBlocks uint32
	// ReservedSectors is the number of sectors preceding FAT0, including
	// the boot block. Default 1. Must be >= 1.
	ReservedSectors uint32
	// RootDirSectors is the number of sectors reserved for the root
	// directory. Default 4.
	RootDirSectors uint32
	// BlockSize is the sector size in bytes. Default 512.
	BlockSize int
	// OEMInfo is an up-to-7-visible-byte OEM name, space-filled to 8.
	// Default "UF2 UF2".
	OEMInfo string
	// VolumeLabel is an up-to-10-visible-byte volume label, space-filled to
	// 11. Default "GHOSTFAT".
	VolumeLabel string
	// FilesystemIdentifier is an up-to-7-visible-byte FS type string,
	// space-filled to 8. Default "FAT16".
	FilesystemIdentifier string
	// Logger receives structured trace/debug/warn records for every block
	// dispatched through ReadBlock/WriteBlock. Nil disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns the Config used throughout spec.md's end-to-end
// scenarios: an 8000-block (≈3.9MiB at 512-byte blocks) FAT16 volume named
// GHOSTFAT.
func DefaultConfig() Config {
	return Config{
		NumBlocks:            8000,
		ReservedSectors:      1,
		RootDirSectors:       4,
		BlockSize:            512,
		OEMInfo:              "UF2 UF2",
		VolumeLabel:          "GHOSTFAT",
		FilesystemIdentifier: "FAT16",
	}
}

// withDefaults fills any zero-valued field from DefaultConfig and validates
// the result, collecting every violated invariant into a single error
// instead of failing on the first one it finds.
func (c Config) withDefaults() (Config, error) {
	def := DefaultConfig()
	if c.NumBlocks == 0 {
		c.NumBlocks = def.NumBlocks
	}
	if c.ReservedSectors == 0 {
		c.ReservedSectors = def.ReservedSectors
	}
	if c.RootDirSectors == 0 {
		c.RootDirSectors = def.RootDirSectors
	}
	if c.BlockSize == 0 {
		c.BlockSize = def.BlockSize
	}
	if c.OEMInfo == "" {
		c.OEMInfo = def.OEMInfo
	}
	if c.VolumeLabel == "" {
		c.VolumeLabel = def.VolumeLabel
	}
	if c.FilesystemIdentifier == "" {
		c.FilesystemIdentifier = def.FilesystemIdentifier
	}

	var errs *multierror.Error
	if c.ReservedSectors < 1 {
		errs = multierror.Append(errs, fmt.Errorf("reserved_sectors must be >= 1, got %d", c.ReservedSectors))
	}
	if c.BlockSize <= 0 || c.BlockSize%2 != 0 {
		errs = multierror.Append(errs, fmt.Errorf("block_size must be a positive even number, got %d", c.BlockSize))
	}
	if c.BlockSize > math.MaxUint16 {
		errs = multierror.Append(errs, fmt.Errorf("%w: %d", ErrBlockSizeTooLarge, c.BlockSize))
	}
	if c.NumBlocks < 2 {
		errs = multierror.Append(errs, fmt.Errorf("num_blocks must be >= 2, got %d", c.NumBlocks))
	}
	if c.BlockSize > 0 {
		startClusters := c.startClusters()
		if startClusters >= c.NumBlocks {
			errs = multierror.Append(errs, fmt.Errorf(
				"start_clusters (%d) must be < num_blocks (%d): reserved/root-dir/FAT sizing leaves no data region",
				startClusters, c.NumBlocks))
		}
	}
	if errs != nil {
		errs.ErrorFormat = func(es []error) string {
			s := fmt.Sprintf("ghostfat: %d invalid config field(s):", len(es))
			for _, e := range es {
				s += "\n  - " + e.Error()
			}
			return s
		}
		return c, errs
	}
	return c, nil
}

// sectorsPerFAT returns the number of sectors required to hold one FAT16
// copy: two bytes per entry, rounded up to the next whole sector.
func (c Config) sectorsPerFAT() uint32 {
	entryBytes := uint64(c.NumBlocks) * 2
	return uint32((entryBytes + uint64(c.BlockSize) - 1) / uint64(c.BlockSize))
}

// startFAT0 returns the LBA of the first sector of the first FAT copy.
func (c Config) startFAT0() uint32 { return c.ReservedSectors }

// startFAT1 returns the LBA of the first sector of the second FAT copy.
func (c Config) startFAT1() uint32 { return c.startFAT0() + c.sectorsPerFAT() }

// startRootDir returns the LBA of the first sector of the root directory.
func (c Config) startRootDir() uint32 { return c.startFAT1() + c.sectorsPerFAT() }

// startClusters returns the LBA of the first data cluster (cluster 2).
func (c Config) startClusters() uint32 { return c.startRootDir() + c.RootDirSectors }

// maxLBA returns the highest valid LBA for this configuration.
func (c Config) maxLBA() uint32 { return c.NumBlocks - 1 }

// rootDirEntries returns the number of 32-byte directory entry slots the
// root directory region can hold.
func (c Config) rootDirEntries() uint32 {
	return c.RootDirSectors * uint32(c.BlockSize) / 32
}

// entriesPerFATSector returns how many 16-bit FAT entries fit in one sector.
func (c Config) entriesPerFATSector() uint32 {
	return uint32(c.BlockSize) / 2
}
