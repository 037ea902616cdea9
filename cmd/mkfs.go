package cmd

import (
	"fmt"

	"github.com/go-pennos/pennos/internal/block"
	"github.com/spf13/cobra"
)

var mkfsCmd = &cobra.Command{
	Use:   "mkfs",
	Short: "Format a new FAT image at --image",
	RunE: func(cmd *cobra.Command, args []string) error {
		fsCfg := Config.FileSystem
		dev, err := block.Format(fsCfg.ImagePath, fsCfg.FatBlocks, int(fsCfg.BlockSizeExponent))
		if err != nil {
			return err
		}
		defer dev.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "formatted %s: %d fat blocks, %d-byte blocks\n",
			fsCfg.ImagePath, dev.FatBlocks(), dev.BlockSize())
		return nil
	},
}
