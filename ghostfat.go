// Package ghostfat synthesizes the byte contents of a FAT16-formatted
// volume, on demand, from a small statically-declared set of logical files.
// No bytes of the "disk" are stored in aggregate: GhostFat fabricates each
// block when ReadBlock is called, and demultiplexes WriteBlock calls back
// onto the owning file's backing store.
package ghostfat

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// firstDataCluster is the lowest cluster number FAT16 assigns to usable
// data; clusters 0 and 1 are reserved (media descriptor / end-of-chain).
const firstDataCluster = 2

// GhostFat is a virtual FAT16 file system: a BlockDevice façade over a
// fixed, in-memory table of files. Construct with New; it then implements
// ReadBlock/WriteBlock/MaxLBA/BlockBytes for a transport (USB mass storage,
// SCSI, ...) to drive.
type GhostFat struct {
	config Config
	boot   FatBootBlock
	files  []*File
	log    *slog.Logger

	// clusterStarts[i] is the first cluster of files[i]; clusterStarts[len(files)]
	// is one past the last cluster allocated to any file. Precomputed once
	// in New so the read/write paths never re-walk the file list to find
	// cluster boundaries.
	clusterStarts []uint32
}

// New creates a GhostFat instance over files with the given configuration.
// files is borrowed exclusively for the lifetime of the returned GhostFat:
// callers must not mutate the slice, and must not construct a second
// GhostFat over the same backing buffers concurrently, since WriteBlock
// mutates them directly.
func New(files []*File, config Config) (*GhostFat, error) {
	cfg, err := config.withDefaults()
	if err != nil {
		return nil, err
	}

	clusterStarts := make([]uint32, len(files)+1)
	cluster := uint32(firstDataCluster)
	for i, f := range files {
		clusterStarts[i] = cluster
		cluster += uint32(f.NumBlocks(cfg.BlockSize))
	}
	clusterStarts[len(files)] = cluster

	gf := &GhostFat{
		config:        cfg,
		boot:          newFatBootBlock(cfg),
		files:         files,
		log:           cfg.Logger,
		clusterStarts: clusterStarts,
	}
	gf.info("ghostfat: mounted volume", slog.String("label", cfg.VolumeLabel),
		slog.String("capacity", humanize.Bytes(uint64(cfg.NumBlocks)*uint64(cfg.BlockSize))),
		slog.Int("files", len(files)))
	return gf, nil
}

// BlockBytes returns the configured sector size in bytes.
func (g *GhostFat) BlockBytes() int { return g.config.BlockSize }

// MaxLBA returns the highest valid logical block address for this volume.
func (g *GhostFat) MaxLBA() uint32 { return g.config.maxLBA() }

// ReadBlock synthesizes the bytes of sector lba into buf, which must be
// exactly BlockBytes() long. Reads never fail for in-range LBAs; unknown
// LBAs within range yield a zero-filled block.
func (g *GhostFat) ReadBlock(lba uint32, buf []byte) error {
	if len(buf) != g.config.BlockSize {
		panic(fmt.Sprintf("ghostfat: ReadBlock buffer length %d != block size %d", len(buf), g.config.BlockSize))
	}
	g.trace("ghostfat: read", slog.Uint64("lba", uint64(lba)))

	for i := range buf {
		buf[i] = 0
	}

	switch {
	case lba == 0:
		g.readBootBlock(buf)
	case lba < g.config.startRootDir():
		g.readFAT(lba, buf)
	case lba < g.config.startClusters():
		g.readRootDir(lba, buf)
	default:
		g.readCluster(lba, buf)
	}
	return nil
}

// WriteBlock demultiplexes a write to sector lba. Writes to the boot block,
// FAT copies, and root directory are accepted and discarded: the file set
// and its cluster chain are fixed at construction, so host metadata writes
// there can have no effect and must not be reported as errors (spec.md §7).
// Writes to cluster data are forwarded to the owning file; a write to
// read-only content returns ErrWriteProtected.
func (g *GhostFat) WriteBlock(lba uint32, buf []byte) error {
	g.trace("ghostfat: write", slog.Uint64("lba", uint64(lba)), slog.Int("len", len(buf)))

	switch {
	case lba == 0:
		g.warn("ghostfat: ignoring write to boot sector", slog.Uint64("lba", uint64(lba)))
		return nil
	case lba < g.config.startRootDir():
		g.warn("ghostfat: ignoring write to FAT region", slog.Uint64("lba", uint64(lba)))
		return nil
	case lba < g.config.startClusters():
		g.warn("ghostfat: ignoring write to root directory", slog.Uint64("lba", uint64(lba)))
		return nil
	default:
		return g.writeCluster(lba, buf)
	}
}

// readBootBlock packs the BPB into buf[0:62] and stamps the 0x55/0xAA
// signature at the end of the sector.
func (g *GhostFat) readBootBlock(buf []byte) {
	if err := g.boot.pack(buf); err != nil {
		g.logerror("ghostfat: pack boot block", slog.String("err", err.Error()))
		return
	}
	buf[bootSignatureOffset] = 0x55
	buf[bootSignatureOffset+1] = 0xAA
}

// readFAT fills buf with the FAT16 entries covering the cluster window that
// sector lba represents. The second FAT copy mirrors the first by wrapping
// the section index, per spec.md §4.5 Region 2 and §9.
func (g *GhostFat) readFAT(lba uint32, buf []byte) {
	section := lba - g.config.startFAT0()
	sectorsPerFAT := g.config.sectorsPerFAT()
	if section >= sectorsPerFAT {
		section -= sectorsPerFAT
	}
	g.trace("ghostfat: read FAT section", slog.Uint64("section", uint64(section)))

	entriesPerSector := g.config.entriesPerFATSector()
	firstCluster := section * entriesPerSector
	for i := uint32(0); i < entriesPerSector; i++ {
		val := g.fatEntry(firstCluster + i)
		binary.LittleEndian.PutUint16(buf[i*2:], val)
	}
}

// fatEntry returns the 16-bit FAT table value for the given cluster number:
// the reserved media marker for cluster 0, the reserved end-of-chain marker
// for cluster 1, a next-cluster pointer or end-of-chain marker for clusters
// allocated to a file, and 0x0000 (free) beyond the last allocated cluster.
func (g *GhostFat) fatEntry(cluster uint32) uint16 {
	switch cluster {
	case 0:
		// Low byte 0xF0 plus three 0xFF bytes: cluster 0 = 0xFFF0, cluster 1
		// = 0xFFFF, matching the reserved-marker form spec.md §9 mandates.
		return 0xFFF0
	case 1:
		return 0xFFFF
	}

	fi := g.fileIndexForCluster(cluster)
	if fi < 0 {
		return 0x0000 // Free: beyond the last allocated cluster.
	}
	last := g.clusterStarts[fi+1] - 1
	if cluster == last {
		return 0xFFFF // End of chain.
	}
	return uint16(cluster + 1)
}

// fileIndexForCluster returns the index into g.files whose cluster chain
// contains cluster, or -1 if cluster is unallocated.
func (g *GhostFat) fileIndexForCluster(cluster uint32) int {
	for i := range g.files {
		if cluster >= g.clusterStarts[i] && cluster < g.clusterStarts[i+1] {
			return i
		}
	}
	return -1
}

// readRootDir emits the volume-label entry and one directory entry per
// registered file at section 0 of the root directory region; every other
// section is an all-zero sector (already zero-filled by ReadBlock).
func (g *GhostFat) readRootDir(lba uint32, buf []byte) {
	section := lba - g.config.startRootDir()
	if section != 0 {
		return
	}

	var dir DirectoryEntry
	dir.Name = g.boot.VolumeLabel
	dir.Attrs = uint8(volumeLabelAttrs)
	dir.pack(buf[:directoryEntrySize])

	for i, f := range g.files {
		dir = DirectoryEntry{
			Name:         f.ShortName(),
			Attrs:        uint8(f.Attrs()),
			StartCluster: uint16(g.clusterStarts[i]),
			Size:         uint32(f.Len()),
		}
		start := (i + 1) * directoryEntrySize
		if start+directoryEntrySize > len(buf) {
			g.warn("ghostfat: root directory overflow, file dropped",
				slog.String("file", f.Name()), slog.Int("index", i))
			break
		}
		dir.pack(buf[start : start+directoryEntrySize])
	}
}

// readCluster locates the file owning section (lba - start_clusters) and
// copies its data into buf, leaving buf zero-filled if no file claims it.
func (g *GhostFat) readCluster(lba uint32, buf []byte) {
	section := int(lba - g.config.startClusters())
	f, offset := g.fileAtSection(section)
	if f == nil {
		g.warn("ghostfat: unhandled cluster read", slog.Int("section", section), slog.Uint64("lba", uint64(lba)))
		return
	}
	g.debug("ghostfat: read file chunk", slog.String("file", f.Name()), slog.Int("offset", offset))
	if f.chunk(offset, buf) == 0 {
		g.warn("ghostfat: failed to read file chunk", slog.String("file", f.Name()), slog.Int("offset", offset))
	}
}

// writeCluster locates the file owning section (lba - start_clusters) and
// forwards the write to it. A write to read-only content is reported as
// ErrWriteProtected; a write past the end of the allocated file set is
// silently discarded, per spec.md §4.6.
func (g *GhostFat) writeCluster(lba uint32, buf []byte) error {
	section := int(lba - g.config.startClusters())
	f, offset := g.fileAtSection(section)
	if f == nil {
		g.warn("ghostfat: unhandled cluster write, discarding", slog.Int("section", section))
		return nil
	}

	g.debug("ghostfat: write file chunk", slog.String("file", f.Name()), slog.Int("offset", offset), slog.Int("len", len(buf)))
	if f.chunkMut(offset, buf) == 0 && f.IsReadOnly() {
		g.logerror("ghostfat: write to read-only file", slog.String("file", f.Name()))
		return fmt.Errorf("ghostfat: write %s: %w", f.Name(), ErrWriteProtected)
	}
	return nil
}

// fileAtSection walks the file table in declaration order to find the file
// whose cluster chain contains data-region section index section, and the
// chunk offset within that file. Returns (nil, 0) if no file claims it.
func (g *GhostFat) fileAtSection(section int) (*File, int) {
	blockIndex := 0
	for _, f := range g.files {
		n := f.NumBlocks(g.config.BlockSize)
		if section < blockIndex+n {
			return f, section - blockIndex
		}
		blockIndex += n
	}
	return nil, 0
}

const slogLevelTrace = slog.LevelDebug - 2

func (g *GhostFat) logAttrs(level slog.Level, msg string, attrs ...slog.Attr) {
	if g.log != nil {
		g.log.LogAttrs(context.Background(), level, msg, attrs...)
	}
}

func (g *GhostFat) trace(msg string, attrs ...slog.Attr)    { g.logAttrs(slogLevelTrace, msg, attrs...) }
func (g *GhostFat) debug(msg string, attrs ...slog.Attr)    { g.logAttrs(slog.LevelDebug, msg, attrs...) }
func (g *GhostFat) info(msg string, attrs ...slog.Attr)     { g.logAttrs(slog.LevelInfo, msg, attrs...) }
func (g *GhostFat) warn(msg string, attrs ...slog.Attr)     { g.logAttrs(slog.LevelWarn, msg, attrs...) }
func (g *GhostFat) logerror(msg string, attrs ...slog.Attr) { g.logAttrs(slog.LevelError, msg, attrs...) }
