package ghostfat

import "testing"

func TestDefaultConfigLayout(t *testing.T) {
	cfg, err := DefaultConfig().withDefaults()
	if err != nil {
		t.Fatalf("withDefaults: %v", err)
	}

	// ceil(8000*2/512) = ceil(16000/512) = 32 (512*31=15872, remainder 128).
	if got, want := cfg.sectorsPerFAT(), uint32(32); got != want {
		t.Errorf("sectorsPerFAT() = %d, want %d", got, want)
	}
	if got, want := cfg.startFAT0(), uint32(1); got != want {
		t.Errorf("startFAT0() = %d, want %d", got, want)
	}
	if got, want := cfg.startFAT1(), cfg.startFAT0()+cfg.sectorsPerFAT(); got != want {
		t.Errorf("startFAT1() = %d, want %d", got, want)
	}
	if got, want := cfg.startRootDir(), cfg.startFAT1()+cfg.sectorsPerFAT(); got != want {
		t.Errorf("startRootDir() = %d, want %d", got, want)
	}
	if got, want := cfg.startClusters(), cfg.startRootDir()+4; got != want {
		t.Errorf("startClusters() = %d, want %d", got, want)
	}
	if got, want := cfg.maxLBA(), cfg.NumBlocks-1; got != want {
		t.Errorf("maxLBA() = %d, want %d", got, want)
	}
	if cfg.startClusters() >= cfg.NumBlocks {
		t.Errorf("start_clusters (%d) must be < num_blocks (%d)", cfg.startClusters(), cfg.NumBlocks)
	}
}

func TestSectorsPerFATCeilingDivision(t *testing.T) {
	// block_size=8, num_blocks chosen so entry bytes don't divide evenly.
	cfg := Config{NumBlocks: 9, ReservedSectors: 1, RootDirSectors: 4, BlockSize: 8}
	cfg, err := cfg.withDefaults()
	if err != nil {
		t.Fatalf("withDefaults: %v", err)
	}
	// 9*2=18 bytes, ceil(18/8) = 3.
	if got, want := cfg.sectorsPerFAT(), uint32(3); got != want {
		t.Errorf("sectorsPerFAT() = %d, want %d", got, want)
	}
}

func TestWithDefaultsRejectsOddBlockSize(t *testing.T) {
	bad := Config{NumBlocks: 8000, ReservedSectors: 1, RootDirSectors: 4, BlockSize: 3}
	_, err := bad.withDefaults()
	if err == nil {
		t.Fatal("expected error for odd block size")
	}
}

func TestWithDefaultsAggregatesMultipleErrors(t *testing.T) {
	bad := Config{NumBlocks: 1, ReservedSectors: 1, RootDirSectors: 4, BlockSize: 3}
	_, err := bad.withDefaults()
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	msg := err.Error()
	if !contains(msg, "block_size") || !contains(msg, "num_blocks") {
		t.Errorf("expected aggregated error to mention both violations, got: %s", msg)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
