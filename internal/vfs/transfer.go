package vfs

import (
	"fmt"
	"strings"

	"github.com/go-pennos/pennos/internal/errno"
)

// Copy reads all of srcName's bytes and writes them over dstName,
// creating dstName if it does not already exist; afterwards dstName
// holds exactly srcName's bytes and size. It is the backing
// operation for the "cp" file-utility command.
func Copy(dir *Directory, srcName, dstName string) error {
	srcEntry, ok := dir.Find(srcName)
	if !ok {
		return errno.New(errno.NotFound, "vfs.Copy: "+srcName)
	}

	buf := make([]byte, srcEntry.Size)
	if _, err := NewContent(dir, srcName).ReadAt(buf, 0); err != nil {
		return err
	}

	if _, ok := dir.Find(dstName); !ok {
		if _, err := dir.Touch(dstName, srcEntry.Perm); err != nil {
			return err
		}
	}
	dst := NewContent(dir, dstName)
	if _, err := dst.WriteAt(buf, 0); err != nil {
		return err
	}
	return dst.Truncate(int64(len(buf)))
}

// Concatenate appends the bytes of every name in srcNames, in order,
// into a single in-memory buffer, used to implement shell-level "cat
// a b c" without an intermediate file.
func Concatenate(dir *Directory, srcNames []string) ([]byte, error) {
	var out []byte
	for _, name := range srcNames {
		e, ok := dir.Find(name)
		if !ok {
			return nil, errno.New(errno.NotFound, "vfs.Concatenate: "+name)
		}
		buf := make([]byte, e.Size)
		if _, err := NewContent(dir, name).ReadAt(buf, 0); err != nil {
			return nil, err
		}
		out = append(out, buf...)
	}
	return out, nil
}

// HexDump renders buf the way the "hd" file utility prints a file:
// a 4-digit hex offset, 16 space-separated hex bytes, and the ASCII
// gloss with non-printable bytes shown as '.'.
func HexDump(buf []byte) string {
	var sb strings.Builder
	for off := 0; off < len(buf); off += 16 {
		end := off + 16
		if end > len(buf) {
			end = len(buf)
		}
		row := buf[off:end]

		fmt.Fprintf(&sb, "%04x  ", off)
		for i := 0; i < 16; i++ {
			if i < len(row) {
				fmt.Fprintf(&sb, "%02x ", row[i])
			} else {
				sb.WriteString("   ")
			}
		}
		sb.WriteString(" |")
		for _, b := range row {
			if b >= 0x20 && b < 0x7f {
				sb.WriteByte(b)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}
