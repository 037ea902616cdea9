// Package block implements the byte-addressable FAT image abstraction
// of spec.md §4.1 and §6: a memory-mapped FAT region kept coherent
// with the backing file via explicit msync, and seek+read/write access
// to the data region.
package block

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/go-pennos/pennos/internal/errno"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

const (
	// LastBlock is the FAT cell value marking the end of a chain.
	LastBlock uint16 = 0xFFFF

	// cellSize is the width in bytes of one FAT cell.
	cellSize = 2

	// rootDirHead is the cell index at which the root directory chain
	// always begins (spec.md §3).
	rootDirHead = 1
)

// Device owns a mounted FAT image: the memory-mapped FAT region plus
// the host file descriptor used for data-region I/O.
type Device struct {
	// ID is a random identifier assigned at mount; it has no on-disk
	// meaning and nothing writes it to the log.
	ID uuid.UUID

	file *os.File
	fat  []byte // mmap'd bytes [0, B*S)

	fatBlocks int // B
	blockSize int // S
	cellCount int // N = (B*S)/2
}

// FatBlocks returns B, the number of FAT blocks.
func (d *Device) FatBlocks() int { return d.fatBlocks }

// BlockSize returns S, the data block size in bytes.
func (d *Device) BlockSize() int { return d.blockSize }

// CellCount returns N, the number of FAT cells (and one more than the
// largest legal data-block index).
func (d *Device) CellCount() int { return d.cellCount }

// RootDirHead is the cell index at which the root directory begins.
func (d *Device) RootDirHead() int { return rootDirHead }

// Mount opens an existing FAT image at path and maps its FAT region.
func Mount(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errno.Wrap(errno.IOFatal, "block.Mount", err)
	}

	hdr := make([]byte, cellSize)
	if _, err := f.ReadAt(hdr, 0); err != nil {
		f.Close()
		return nil, errno.Wrap(errno.IOFatal, "block.Mount", err)
	}

	b := int(hdr[1])
	e := int(hdr[0])
	if b < 1 || b > 32 || e < 0 || e > 4 {
		f.Close()
		return nil, errno.New(errno.IOFatal, "block.Mount: corrupt metadata word")
	}
	blockSize := 256 << uint(e)
	fatRegionLen := b * blockSize

	d, err := mapDevice(f, b, blockSize, fatRegionLen)
	if err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

func mapDevice(f *os.File, fatBlocks, blockSize, fatRegionLen int) (*Device, error) {
	fat, err := unix.Mmap(int(f.Fd()), 0, fatRegionLen, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errno.Wrap(errno.IOFatal, "block.mapDevice", err)
	}

	return &Device{
		ID:        uuid.New(),
		file:      f,
		fat:       fat,
		fatBlocks: fatBlocks,
		blockSize: blockSize,
		cellCount: fatRegionLen / cellSize,
	}, nil
}

// Format writes a fresh metadata word and root-directory sentinel into
// a new image file at path, then mounts it. This is the mkfs path of
// spec.md §8 scenario 1.
func Format(path string, fatBlocks int, blockSizeExp int) (*Device, error) {
	if fatBlocks < 1 || fatBlocks > 32 {
		return nil, errno.New(errno.IOFatal, "block.Format: fat-blocks out of range")
	}
	if blockSizeExp < 0 || blockSizeExp > 4 {
		return nil, errno.New(errno.IOFatal, "block.Format: block-size-exponent out of range")
	}
	blockSize := 256 << uint(blockSizeExp)
	fatRegionLen := fatBlocks * blockSize
	cellCount := fatRegionLen / cellSize
	dataBlocks := cellCount - 1
	totalLen := fatRegionLen + dataBlocks*blockSize

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errno.Wrap(errno.IOFatal, "block.Format", err)
	}
	if err := f.Truncate(int64(totalLen)); err != nil {
		f.Close()
		return nil, errno.Wrap(errno.IOFatal, "block.Format", err)
	}

	hdr := []byte{byte(blockSizeExp), byte(fatBlocks)}
	if _, err := f.WriteAt(hdr, 0); err != nil {
		f.Close()
		return nil, errno.Wrap(errno.IOFatal, "block.Format", err)
	}
	rootSentinel := make([]byte, cellSize)
	binary.LittleEndian.PutUint16(rootSentinel, LastBlock)
	if _, err := f.WriteAt(rootSentinel, rootDirHead*cellSize); err != nil {
		f.Close()
		return nil, errno.Wrap(errno.IOFatal, "block.Format", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, errno.Wrap(errno.IOFatal, "block.Format", err)
	}

	d, err := mapDevice(f, fatBlocks, blockSize, fatRegionLen)
	if err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

// Close unmaps the FAT region and closes the backing file.
func (d *Device) Close() error {
	if err := unix.Munmap(d.fat); err != nil {
		return errno.Wrap(errno.IOFatal, "block.Close", err)
	}
	return d.file.Close()
}

// Cell returns the value of FAT cell k.
func (d *Device) Cell(k int) uint16 {
	return binary.LittleEndian.Uint16(d.fat[k*cellSize:])
}

// SetCell writes FAT cell k and immediately msyncs the affected range,
// per the msync discipline of spec.md §4.1 and §5.
func (d *Device) SetCell(k int, v uint16) error {
	binary.LittleEndian.PutUint16(d.fat[k*cellSize:], v)
	start := (k * cellSize) &^ (pageSize() - 1)
	end := start + pageSize()
	if end > len(d.fat) {
		end = len(d.fat)
	}
	if err := unix.Msync(d.fat[start:end], unix.MS_SYNC); err != nil {
		return errno.Wrap(errno.IOFatal, "block.SetCell", err)
	}
	return nil
}

func pageSize() int {
	return os.Getpagesize()
}

// dataBlockOffset returns the byte offset of data block b, per
// spec.md §4.1: B·S + (b−1)·S.
func (d *Device) dataBlockOffset(b int) int64 {
	return int64(d.fatBlocks*d.blockSize) + int64(b-1)*int64(d.blockSize)
}

// ReadBlock reads up to len(buf) bytes (at most S) from data block b.
func (d *Device) ReadBlock(b int, buf []byte) (int, error) {
	if len(buf) > d.blockSize {
		buf = buf[:d.blockSize]
	}
	n, err := d.file.ReadAt(buf, d.dataBlockOffset(b))
	if err != nil && n == 0 {
		return 0, errno.Wrap(errno.IOFatal, "block.ReadBlock", err)
	}
	return n, nil
}

// WriteBlock writes buf (at most S bytes) to data block b.
func (d *Device) WriteBlock(b int, buf []byte) (int, error) {
	if len(buf) > d.blockSize {
		return 0, errno.New(errno.IOFatal, fmt.Sprintf("block.WriteBlock: buffer exceeds block size %d", d.blockSize))
	}
	n, err := d.file.WriteAt(buf, d.dataBlockOffset(b))
	if err != nil {
		return n, errno.Wrap(errno.IOFatal, "block.WriteBlock", err)
	}
	return n, nil
}
