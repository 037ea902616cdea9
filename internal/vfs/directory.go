package vfs

import (
	"sort"
	"sync"

	"github.com/go-pennos/pennos/clock"
	"github.com/go-pennos/pennos/internal/block"
	"github.com/go-pennos/pennos/internal/errno"
	"github.com/go-pennos/pennos/internal/fat"
	"github.com/jacobsa/syncutil"
)

// pinCount tracks how many open references a name has (every open
// pins it), mirroring the teacher's lookupCount: if the name is
// unlinked meanwhile, the backing chain is only freed once the count
// reaches zero.
//
// Grounded on fs/inode/lookup_count.go.
type pinCount struct {
	mu    sync.Mutex
	count uint64
}

func (p *pinCount) inc() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
}

// dec returns true once the count has dropped to zero.
func (p *pinCount) dec() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.count == 0 {
		panic("vfs: pinCount.dec below zero")
	}
	p.count--
	return p.count == 0
}

// Directory is the single flat root directory of spec.md §3: a chain
// of fixed-size records backed by the FAT allocator, guarded by an
// invariant-checking mutex the way the teacher guards DirInode.
type Directory struct {
	dev   *block.Device
	alloc *fat.Allocator
	clk   clock.Clock

	// mu must be held for any method below except Lock/Unlock
	// themselves. GUARDED_BY(mu): slots, head.
	mu syncutil.InvariantMutex

	head  int
	slots []Entry // slot i is free iff slots[i].Name == ""

	pins map[string]*pinCount
}

// NewDirectory loads the root directory chain from dev.
func NewDirectory(dev *block.Device, clk clock.Clock) (*Directory, error) {
	d := &Directory{
		dev:   dev,
		alloc: fat.New(dev),
		clk:   clk,
		head:  dev.RootDirHead(),
		pins:  make(map[string]*pinCount),
	}
	d.mu = syncutil.NewInvariantMutex(d.checkInvariants)

	if err := d.reload(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Directory) checkInvariants() {
	seen := make(map[string]bool)
	for _, e := range d.slots {
		if e.Name == "" {
			continue
		}
		if seen[e.Name] {
			panic("vfs: duplicate directory entry " + e.Name)
		}
		seen[e.Name] = true
	}
}

func (d *Directory) Lock()   { d.mu.Lock() }
func (d *Directory) Unlock() { d.mu.Unlock() }

// reload re-reads every record in the directory chain into memory.
// LOCKS_REQUIRED(d) is not enforced here since it only runs at
// construction, before d is shared.
func (d *Directory) reload() error {
	blockSize := d.dev.BlockSize()
	perBlock := blockSize / EntrySize
	n := d.alloc.ChainLength(d.head) * perBlock

	raw := make([]byte, n*EntrySize)
	if _, err := d.alloc.ReadChain(d.head, 0, raw); err != nil {
		return err
	}

	slots := make([]Entry, n)
	for i := 0; i < n; i++ {
		e, ok, err := UnmarshalEntry(raw[i*EntrySize : (i+1)*EntrySize])
		if err != nil {
			return err
		}
		if ok {
			slots[i] = e
		}
	}
	d.slots = slots
	return nil
}

// writeSlot persists slots[i] to its on-disk position.
// LOCKS_REQUIRED(d)
func (d *Directory) writeSlot(i int) error {
	buf, err := d.slots[i].Marshal()
	if err != nil {
		return err
	}
	_, err = d.alloc.FillChain(d.head, i*EntrySize, buf)
	return err
}

// findSlot returns the slot index holding name, or -1.
// LOCKS_REQUIRED(d)
func (d *Directory) findSlot(name string) int {
	for i, e := range d.slots {
		if e.Name == name {
			return i
		}
	}
	return -1
}

func (d *Directory) freeSlot() int {
	for i, e := range d.slots {
		if e.Name == "" {
			return i
		}
	}
	return -1
}

// Find looks up name, returning its entry and whether it exists.
// LOCKS_REQUIRED(d)
func (d *Directory) Find(name string) (Entry, bool) {
	i := d.findSlot(name)
	if i < 0 {
		return Entry{}, false
	}
	return d.slots[i], true
}

// List returns every live entry, sorted by name for stable output.
// LOCKS_REQUIRED(d)
func (d *Directory) List() []Entry {
	out := make([]Entry, 0, len(d.slots))
	for _, e := range d.slots {
		if e.Name != "" {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Touch creates a new, empty entry named name with the given
// permission bits, failing if the name already exists.
// LOCKS_REQUIRED(d)
func (d *Directory) Touch(name string, perm Perm) (Entry, error) {
	if d.findSlot(name) >= 0 {
		return Entry{}, errno.New(errno.PermissionDenied, "vfs.Touch: already exists")
	}
	if len(name) == 0 || len(name) > maxNameLen {
		return Entry{}, errno.New(errno.IllegalMode, "vfs.Touch: invalid name")
	}

	head, err := d.alloc.BuildChain(nil)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		Name:       name,
		Type:       TypeFile,
		Perm:       perm,
		Size:       0,
		FirstBlock: uint16(head),
		MTime:      d.clk.Now().UnixNano(),
	}

	i := d.freeSlot()
	if i < 0 {
		i = len(d.slots)
		d.slots = append(d.slots, Entry{})
	}
	d.slots[i] = e
	if err := d.writeSlot(i); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Chmod sets name's permission bits, returning the previous bits.
// LOCKS_REQUIRED(d)
func (d *Directory) Chmod(name string, perm Perm) (Perm, error) {
	i := d.findSlot(name)
	if i < 0 {
		return 0, errno.New(errno.NotFound, "vfs.Chmod")
	}
	prev := d.slots[i].Perm
	d.slots[i].Perm = perm
	if err := d.writeSlot(i); err != nil {
		return 0, err
	}
	return prev, nil
}

// Rename moves the entry at oldName to newName, failing if newName is
// already taken.
// LOCKS_REQUIRED(d)
func (d *Directory) Rename(oldName, newName string) error {
	if d.findSlot(newName) >= 0 {
		return errno.New(errno.PermissionDenied, "vfs.Rename: target exists")
	}
	i := d.findSlot(oldName)
	if i < 0 {
		return errno.New(errno.NotFound, "vfs.Rename")
	}
	d.slots[i].Name = newName
	return d.writeSlot(i)
}

// Pin marks name as referenced by an open file, deferring block
// reclamation past a concurrent Remove.
// LOCKS_REQUIRED(d)
func (d *Directory) Pin(name string) {
	p, ok := d.pins[name]
	if !ok {
		p = &pinCount{}
		d.pins[name] = p
	}
	p.inc()
}

// Unpin releases one reference taken by Pin. If name was removed
// while pinned and this was the last reference, its chain is freed
// now.
// LOCKS_REQUIRED(d)
func (d *Directory) Unpin(name string, firstBlock uint16) error {
	p, ok := d.pins[name]
	if !ok {
		return nil
	}
	last := p.dec()
	if !last {
		return nil
	}
	delete(d.pins, name)
	if _, stillLive := d.Find(name); stillLive {
		return nil
	}
	return d.alloc.DeleteChain(int(firstBlock))
}

// Remove unlinks name. If it is still pinned by an open file, the
// directory slot is freed immediately but the chain survives until
// the last Unpin (MarkDeletedPinned semantics).
// LOCKS_REQUIRED(d)
func (d *Directory) Remove(name string) error {
	i := d.findSlot(name)
	if i < 0 {
		return errno.New(errno.NotFound, "vfs.Remove")
	}
	head := d.slots[i].FirstBlock
	pinned := d.pins[name] != nil

	d.slots[i] = Entry{}
	if err := d.writeSlot(i); err != nil {
		return err
	}

	if pinned {
		return nil
	}
	return d.alloc.DeleteChain(int(head))
}
