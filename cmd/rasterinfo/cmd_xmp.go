package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-georaster/gif"
	"github.com/robert-malhotra/go-georaster/raster"
)

var cmdXMP = &cobra.Command{
	Use:   "xmp FILE",
	Short: "Print the XMP packet embedded in a GIF file",
	Args:  cobra.ExactArgs(1),
	RunE:  runXMP,
}

func init() {
	cmdMain.AddCommand(cmdXMP)
}

func runXMP(cmd *cobra.Command, args []string) error {
	ds, err := openDataset(args[0])
	if err != nil {
		return err
	}
	defer ds.Close()

	g, ok := ds.Dataset.(*gif.Dataset)
	if !ok {
		return fmt.Errorf("%w: %s files carry no XMP packet", raster.ErrNotSupported, ds.driver)
	}
	data, found, err := g.XMP()
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no XMP packet in %s", args[0])
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
