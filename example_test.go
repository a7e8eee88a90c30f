package ghostfat_test

import (
	"fmt"

	"github.com/soypat/ghostfat"
)

// This example builds a small two-file volume and reads the root directory
// sector back out, the way a USB mass-storage handler would on first mount.
func Example() {
	info, err := ghostfat.NewReadOnlyFile("INFO_UF2.TXT", []byte("UF2 Bootloader v1.0\r\n"))
	if err != nil {
		panic(err)
	}
	status, err := ghostfat.NewWritableFile("STATUS.TXT", make([]byte, 64))
	if err != nil {
		panic(err)
	}

	gf, err := ghostfat.New([]*ghostfat.File{info, status}, ghostfat.DefaultConfig())
	if err != nil {
		panic(err)
	}

	fmt.Println("max_lba:", gf.MaxLBA())
	fmt.Println("block_bytes:", gf.BlockBytes())

	buf := make([]byte, gf.BlockBytes())
	if err := gf.ReadBlock(0, buf); err != nil {
		panic(err)
	}
	fmt.Printf("boot signature: %02X %02X\n", buf[510], buf[511])

	// Output:
	// max_lba: 7999
	// block_bytes: 512
	// boot signature: 55 AA
}
