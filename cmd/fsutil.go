package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-pennos/pennos/clock"
	"github.com/go-pennos/pennos/internal/block"
	"github.com/go-pennos/pennos/internal/vfs"
	"github.com/spf13/cobra"
)

// fsutilCmd groups the one-shot file-utility subcommands of
// spec.md §4.7. Unlike "run", these operate directly on a mounted
// Directory without booting a kernel or scheduler, the way a host
// tool inspecting a disk image would.
var fsutilCmd = &cobra.Command{
	Use:   "fsutil",
	Short: "Inspect or edit a FAT image without booting the kernel",
}

// withDirectory mounts --image, opens its root directory, runs fn,
// and unmounts afterward regardless of fn's outcome.
func withDirectory(fn func(dir *vfs.Directory) error) error {
	dev, err := block.Mount(Config.FileSystem.ImagePath)
	if err != nil {
		return err
	}
	defer dev.Close()

	dir, err := vfs.NewDirectory(dev, clock.RealClock{})
	if err != nil {
		return err
	}

	dir.Lock()
	defer dir.Unlock()
	return fn(dir)
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List every entry in the root directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDirectory(func(dir *vfs.Directory) error {
			for _, e := range dir.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %8d %s %s\n",
					e.Perm, e.Size, time.Unix(0, e.MTime).Format(time.RFC3339), e.Name)
			}
			return nil
		})
	},
}

var touchCmd = &cobra.Command{
	Use:   "touch NAME",
	Short: "Create an empty file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDirectory(func(dir *vfs.Directory) error {
			_, err := dir.Touch(args[0], vfs.PermRead|vfs.PermWrite)
			return err
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Remove a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDirectory(func(dir *vfs.Directory) error {
			return dir.Remove(args[0])
		})
	},
}

var chmodCmd = &cobra.Command{
	Use:   "chmod MODE NAME",
	Short: "Set a file's permission bits (e.g. rw-, r-x)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		perm, err := parsePerm(args[0])
		if err != nil {
			return err
		}
		return withDirectory(func(dir *vfs.Directory) error {
			_, err := dir.Chmod(args[1], perm)
			return err
		})
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv OLD NEW",
	Short: "Rename a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDirectory(func(dir *vfs.Directory) error {
			return dir.Rename(args[0], args[1])
		})
	},
}

var cpCmd = &cobra.Command{
	Use:   "cp SRC DST",
	Short: "Copy a file's contents",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDirectory(func(dir *vfs.Directory) error {
			return vfs.Copy(dir, args[0], args[1])
		})
	},
}

var catCmd = &cobra.Command{
	Use:   "cat NAME...",
	Short: "Print the concatenated contents of one or more files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDirectory(func(dir *vfs.Directory) error {
			buf, err := vfs.Concatenate(dir, args)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(buf)
			return err
		})
	},
}

var hdCmd = &cobra.Command{
	Use:   "hd NAME",
	Short: "Hex-dump a file's contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDirectory(func(dir *vfs.Directory) error {
			e, ok := dir.Find(args[0])
			if !ok {
				return fmt.Errorf("hd: %s: no such file", args[0])
			}
			buf := make([]byte, e.Size)
			if _, err := vfs.NewContent(dir, args[0]).ReadAt(buf, 0); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), vfs.HexDump(buf))
			return nil
		})
	},
}

// parsePerm accepts either an rwx-style string ("rw-") or an octal
// digit (the low three bits of "4"/"2"/"1" combined, e.g. "6" for
// rw-), matching the two notations spec.md's chmod command allows.
func parsePerm(s string) (vfs.Perm, error) {
	if len(s) == 3 {
		var perm vfs.Perm
		if s[0] == 'r' {
			perm |= vfs.PermRead
		}
		if s[1] == 'w' {
			perm |= vfs.PermWrite
		}
		if s[2] == 'x' {
			perm |= vfs.PermExec
		}
		return perm, nil
	}
	n, err := strconv.ParseUint(s, 8, 8)
	if err != nil {
		return 0, fmt.Errorf("chmod: invalid mode %q", s)
	}
	return vfs.Perm(n), nil
}

func init() {
	fsutilCmd.AddCommand(lsCmd, touchCmd, rmCmd, chmodCmd, mvCmd, cpCmd, catCmd, hdCmd)
}
