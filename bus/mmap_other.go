//go:build !linux
// +build !linux

package bus

import "errors"

func mapFile(path string, size uint64) ([]byte, error) {
	return nil, errors.New("register mapping requires linux")
}

func unmapFile(mem []byte) error {
	return nil
}
