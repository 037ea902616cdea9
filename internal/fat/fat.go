// Package fat implements chain allocation and traversal over a
// mounted block.Device: the free-block search, chain build/fill/delete
// operations of spec.md §4.1, kept as pure cell-graph algorithms on
// top of the device's Cell/SetCell primitives.
package fat

import (
	"github.com/go-pennos/pennos/internal/block"
	"github.com/go-pennos/pennos/internal/errno"
)

// FreeCell is the FAT cell value marking an unallocated block.
const FreeCell uint16 = 0x0000

// Allocator manages block allocation for a single mounted device.
type Allocator struct {
	dev *block.Device
}

// New wraps dev in an Allocator.
func New(dev *block.Device) *Allocator {
	return &Allocator{dev: dev}
}

// FreeBlockSearch scans cells [2, N) for the first unallocated block,
// skipping cell 0 (metadata) and cell 1 (root directory head).
func (a *Allocator) FreeBlockSearch() (int, error) {
	for k := 2; k < a.dev.CellCount(); k++ {
		if a.dev.Cell(k) == FreeCell {
			return k, nil
		}
	}
	return 0, errno.New(errno.NoSpace, "fat.FreeBlockSearch")
}

// BuildChain allocates fresh blocks and writes buffer into them,
// returning the head cell of the new chain. It creates a file's first
// block; FillChain extends chains itself, block by block, without
// calling BuildChain.
func (a *Allocator) BuildChain(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		head, err := a.FreeBlockSearch()
		if err != nil {
			return 0, err
		}
		if err := a.dev.SetCell(head, block.LastBlock); err != nil {
			return 0, err
		}
		return head, nil
	}

	blockSize := a.dev.BlockSize()
	prev := -1
	head := -1
	for off := 0; off < len(buffer); off += blockSize {
		end := off + blockSize
		if end > len(buffer) {
			end = len(buffer)
		}
		cur, err := a.FreeBlockSearch()
		if err != nil {
			return 0, err
		}
		if err := a.dev.SetCell(cur, block.LastBlock); err != nil {
			return 0, err
		}
		if prev >= 0 {
			if err := a.dev.SetCell(prev, uint16(cur)); err != nil {
				return 0, err
			}
		} else {
			head = cur
		}
		if _, err := a.dev.WriteBlock(cur, buffer[off:end]); err != nil {
			return 0, err
		}
		prev = cur
	}
	return head, nil
}

// FillChain overwrites chain starting at head with buffer, starting at
// chainOffset bytes into the chain, extending the chain with freshly
// allocated blocks when buffer runs past the existing length. It
// returns the (possibly unchanged) head of the chain.
func (a *Allocator) FillChain(head int, chainOffset int, buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return head, nil
	}
	blockSize := a.dev.BlockSize()

	startBlockIdx := chainOffset / blockSize
	withinBlockOff := chainOffset % blockSize

	cur := head
	prev := -1
	idx := 0
	for idx < startBlockIdx {
		next := a.dev.Cell(cur)
		if next == block.LastBlock {
			nb, err := a.FreeBlockSearch()
			if err != nil {
				return head, err
			}
			if err := a.dev.SetCell(nb, block.LastBlock); err != nil {
				return head, err
			}
			if err := a.dev.SetCell(cur, uint16(nb)); err != nil {
				return head, err
			}
			next = uint16(nb)
		}
		prev = cur
		cur = int(next)
		idx++
	}
	_ = prev

	remaining := buffer
	writeOff := withinBlockOff
	for len(remaining) > 0 {
		space := blockSize - writeOff
		n := len(remaining)
		if n > space {
			n = space
		}
		existing := make([]byte, blockSize)
		if writeOff > 0 || n < space {
			a.dev.ReadBlock(cur, existing)
		}
		copy(existing[writeOff:writeOff+n], remaining[:n])
		if _, err := a.dev.WriteBlock(cur, existing); err != nil {
			return head, err
		}
		remaining = remaining[n:]
		writeOff = 0

		if len(remaining) == 0 {
			break
		}
		next := a.dev.Cell(cur)
		if next == block.LastBlock {
			nb, err := a.FreeBlockSearch()
			if err != nil {
				return head, err
			}
			if err := a.dev.SetCell(nb, block.LastBlock); err != nil {
				return head, err
			}
			if err := a.dev.SetCell(cur, uint16(nb)); err != nil {
				return head, err
			}
			next = uint16(nb)
		}
		cur = int(next)
	}
	return head, nil
}

// ReadChain reads up to len(buffer) bytes from the chain starting at
// head, beginning at chainOffset bytes in, returning the count read.
func (a *Allocator) ReadChain(head int, chainOffset int, buffer []byte) (int, error) {
	blockSize := a.dev.BlockSize()
	startBlockIdx := chainOffset / blockSize
	withinBlockOff := chainOffset % blockSize

	cur := head
	idx := 0
	for idx < startBlockIdx {
		next := a.dev.Cell(cur)
		if next == block.LastBlock {
			return 0, nil
		}
		cur = int(next)
		idx++
	}

	total := 0
	readOff := withinBlockOff
	for total < len(buffer) {
		tmp := make([]byte, blockSize)
		n, err := a.dev.ReadBlock(cur, tmp)
		if err != nil {
			return total, err
		}
		if readOff >= n {
			break
		}
		copied := copy(buffer[total:], tmp[readOff:n])
		total += copied
		readOff = 0
		if total >= len(buffer) {
			break
		}
		next := a.dev.Cell(cur)
		if next == block.LastBlock {
			break
		}
		cur = int(next)
	}
	return total, nil
}

// DeleteChain frees every block in the chain starting at head.
func (a *Allocator) DeleteChain(head int) error {
	cur := head
	for cur != int(block.LastBlock) {
		next := a.dev.Cell(cur)
		if err := a.dev.SetCell(cur, FreeCell); err != nil {
			return err
		}
		if next == block.LastBlock {
			break
		}
		cur = int(next)
	}
	return nil
}

// ChainLength walks the chain starting at head and returns its block
// count, used to size the directory's slot table when it is loaded.
func (a *Allocator) ChainLength(head int) int {
	n := 0
	cur := head
	for {
		n++
		next := a.dev.Cell(cur)
		if next == block.LastBlock {
			break
		}
		cur = int(next)
	}
	return n
}
