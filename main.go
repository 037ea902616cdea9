// Command pennos simulates a small multiprocessing kernel and a
// FAT-style file system on top of a single disk image file.
package main

import "github.com/go-pennos/pennos/cmd"

func main() {
	cmd.Execute()
}
