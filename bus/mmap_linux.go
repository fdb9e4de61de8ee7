//go:build linux
// +build linux

package bus

import (
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(path string, size uint64) ([]byte, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func unmapFile(mem []byte) error {
	return unix.Munmap(mem)
}
