package bus

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

const absentRead uint32 = 0xffffffff

type window struct {
	mtx     sync.Mutex
	mem     []byte
	base    uint64
	size    uint64
	release func([]byte) error
}

func newWindow(mem []byte, base uint64, release func([]byte) error) *window {
	return &window{mem: mem, base: base, size: uint64(len(mem)), release: release}
}

func newMemoryWindow(base, size uint64) *window {
	words := make([]uint32, (size+3)/4)
	if len(words) == 0 {
		return newWindow(nil, base, nil)
	}
	mem := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4)
	return newWindow(mem, base, nil)
}

func (w *window) word(offset uint32) *uint32 {
	if offset%4 != 0 || uint64(offset)+4 > w.size {
		panic(fmt.Sprintf("register offset %#x outside %d byte window", offset, w.size))
	}
	if w.mem == nil {
		return nil
	}
	return (*uint32)(unsafe.Pointer(&w.mem[offset]))
}

// Read32 returns all ones once the window is closed, like a read from a
// device that has gone away.
func (w *window) Read32(offset uint32) uint32 {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if p := w.word(offset); p != nil {
		return atomic.LoadUint32(p)
	}
	return absentRead
}

func (w *window) Write32(offset uint32, value uint32) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if p := w.word(offset); p != nil {
		atomic.StoreUint32(p, value)
	}
}

func (w *window) Base() uint64 {
	return w.base
}

func (w *window) Size() uint64 {
	return w.size
}

func (w *window) Close() error {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if w.mem == nil {
		return nil
	}
	mem := w.mem
	w.mem = nil
	if w.release != nil {
		return w.release(mem)
	}
	return nil
}
