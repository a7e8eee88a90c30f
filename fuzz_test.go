package ghostfat

import "testing"

// FuzzReadBlock exercises ReadBlock across the full LBA range with an
// assortment of registered files, checking only the invariants that must
// hold for every in-range LBA: no error, no panic, and a block-sized result.
func FuzzReadBlock(f *testing.F) {
	f.Add(uint32(0))
	f.Add(uint32(1))
	f.Add(uint32(33))
	f.Add(uint32(7999))

	files := []*File{}
	if rf, err := NewReadOnlyFile("INFO_UF2.TXT", []byte("hello from ghostfat\r\n")); err == nil {
		files = append(files, rf)
	}
	if wf, err := NewWritableFile("TEST.BIN", make([]byte, 1024)); err == nil {
		files = append(files, wf)
	}
	gf, err := New(files, DefaultConfig())
	if err != nil {
		f.Fatalf("New: %v", err)
	}

	f.Fuzz(func(t *testing.T, lba uint32) {
		lba %= gf.config.NumBlocks
		buf := make([]byte, gf.BlockBytes())
		if err := gf.ReadBlock(lba, buf); err != nil {
			t.Fatalf("ReadBlock(%d) = %v, want nil", lba, err)
		}

		again := make([]byte, gf.BlockBytes())
		if err := gf.ReadBlock(lba, again); err != nil {
			t.Fatalf("ReadBlock(%d) second call = %v, want nil", lba, err)
		}
		for i := range buf {
			if buf[i] != again[i] {
				t.Fatalf("ReadBlock(%d) not stable at byte %d: %02X != %02X", lba, i, buf[i], again[i])
			}
		}
	})
}

// FuzzWriteBlockThenRead checks that a write to a writable file's data
// region is observable on the next read at the same LBA, and that writes
// below the data region never return an error.
func FuzzWriteBlockThenRead(f *testing.F) {
	f.Add(uint32(0), byte(0xAB))
	f.Add(uint32(1), byte(0x00))

	wf, err := NewWritableFile("TEST.BIN", make([]byte, 4096))
	if err != nil {
		f.Fatalf("NewWritableFile: %v", err)
	}
	gf, err := New([]*File{wf}, DefaultConfig())
	if err != nil {
		f.Fatalf("New: %v", err)
	}

	f.Fuzz(func(t *testing.T, offset uint32, fill byte) {
		lba := gf.config.maxLBA()
		if lba > 0 {
			lba = gf.config.startClusters() + offset%(gf.config.NumBlocks-gf.config.startClusters())
		} else {
			lba = gf.config.startClusters()
		}

		buf := make([]byte, gf.BlockBytes())
		for i := range buf {
			buf[i] = fill
		}
		if err := gf.WriteBlock(lba, buf); err != nil {
			t.Fatalf("WriteBlock(%d) = %v, want nil", lba, err)
		}

		readBack := make([]byte, gf.BlockBytes())
		if err := gf.ReadBlock(lba, readBack); err != nil {
			t.Fatalf("ReadBlock(%d) = %v, want nil", lba, err)
		}
		for i := range readBack {
			if readBack[i] != fill {
				t.Fatalf("ReadBlock(%d) byte %d = %02X, want %02X", lba, i, readBack[i], fill)
			}
		}
	})
}
