package vfs

import (
	"github.com/go-pennos/pennos/internal/errno"
)

// Content is a mutable view onto one directory entry's chain: reads
// and writes go straight through to the FAT allocator, and every
// write updates the owning directory's Size/MTime record.
//
// Grounded on gcsproxy/mutable_content.go's ReadAt/WriteAt/Truncate
// shape, simplified because there is no read-only lease to upgrade
// here — every open file is directly backed by its chain.
//
// External synchronization is required: callers serialize through
// Directory's mutex plus the kernel's single-writer-per-file
// discipline (spec.md §4.3).
type Content struct {
	dir  *Directory
	name string
}

// NewContent returns a Content view onto name, which must already
// exist in dir.
func NewContent(dir *Directory, name string) *Content {
	return &Content{dir: dir, name: name}
}

// ReadAt reads up to len(buf) bytes starting at offset, returning the
// count actually read. Reading at or past the end of the file yields
// (0, nil), matching io.ReaderAt's EOF-as-zero convention used by the
// read syscall path.
func (c *Content) ReadAt(buf []byte, offset int64) (int, error) {
	e, ok := c.dir.Find(c.name)
	if !ok {
		return 0, errno.New(errno.NotFound, "vfs.Content.ReadAt")
	}
	if offset >= int64(e.Size) {
		return 0, nil
	}
	remaining := int64(e.Size) - offset
	if int64(len(buf)) > remaining {
		buf = buf[:remaining]
	}
	return c.dir.alloc.ReadChain(int(e.FirstBlock), int(offset), buf)
}

// WriteAt splices buf into the chain at offset, extending the chain
// and the recorded size as needed, and stamps mtime.
func (c *Content) WriteAt(buf []byte, offset int64) (int, error) {
	i := c.dir.findSlot(c.name)
	if i < 0 {
		return 0, errno.New(errno.NotFound, "vfs.Content.WriteAt")
	}
	e := c.dir.slots[i]

	if _, err := c.dir.alloc.FillChain(int(e.FirstBlock), int(offset), buf); err != nil {
		return 0, err
	}

	newEnd := offset + int64(len(buf))
	if newEnd > int64(e.Size) {
		e.Size = uint32(newEnd)
	}
	e.MTime = c.dir.clk.Now().UnixNano()
	c.dir.slots[i] = e
	if err := c.dir.writeSlot(i); err != nil {
		return 0, err
	}
	return len(buf), nil
}

// Truncate shrinks or grows the file's recorded size to n bytes.
// Shrinking does not reclaim trailing blocks (spec.md does not
// require compaction on truncate); growing writes zeros over the new
// range, extending the chain through FillChain as needed.
func (c *Content) Truncate(n int64) error {
	i := c.dir.findSlot(c.name)
	if i < 0 {
		return errno.New(errno.NotFound, "vfs.Content.Truncate")
	}
	if old := int64(c.dir.slots[i].Size); n > old {
		if _, err := c.dir.alloc.FillChain(int(c.dir.slots[i].FirstBlock), int(old), make([]byte, n-old)); err != nil {
			return err
		}
	}
	c.dir.slots[i].Size = uint32(n)
	c.dir.slots[i].MTime = c.dir.clk.Now().UnixNano()
	return c.dir.writeSlot(i)
}

// Size returns the current recorded size of the entry.
func (c *Content) Size() (int64, error) {
	e, ok := c.dir.Find(c.name)
	if !ok {
		return 0, errno.New(errno.NotFound, "vfs.Content.Size")
	}
	return int64(e.Size), nil
}
