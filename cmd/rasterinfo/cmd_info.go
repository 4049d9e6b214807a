package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-georaster/raster"
)

var cmdInfo = &cobra.Command{
	Use:   "info FILE...",
	Short: "Describe one or more raster files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

var flagInfo = struct {
	Jobs  int
	Stats bool
}{}

func init() {
	cmdMain.AddCommand(cmdInfo)
	cmdInfo.Flags().IntVarP(&flagInfo.Jobs, "jobs", "j", 4, "Number of files inspected at once")
	cmdInfo.Flags().BoolVar(&flagInfo.Stats, "stats", false, "Compute the minimum and maximum of every band")
}

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	keyColor     = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func runInfo(cmd *cobra.Command, args []string) error {
	reports := make([]bytes.Buffer, len(args))
	errs := make([]error, len(args))

	var g errgroup.Group
	g.SetLimit(max(flagInfo.Jobs, 1))
	for i, path := range args {
		g.Go(func() error {
			errs[i] = describe(&reports[i], path)
			return nil
		})
	}
	_ = g.Wait()

	out := cmd.OutOrStdout()
	failed := 0
	for i := range args {
		if _, err := reports[i].WriteTo(out); err != nil {
			return err
		}
		if errs[i] != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", errorColor.Sprint("ERROR"), args[i], errs[i])
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

// describe writes the report of one file.
func describe(w io.Writer, path string) error {
	ds, err := openDataset(path)
	if err != nil {
		return err
	}
	defer ds.Close()

	headingColor.Fprintf(w, "=== %s ===\n", path)
	xsize, ysize := ds.Size()
	field(w, "Driver", ds.driver)
	field(w, "Size", fmt.Sprintf("%d x %d (%s pixels)", xsize, ysize, humanize.Comma(int64(xsize)*int64(ysize))))
	field(w, "Bands", fmt.Sprint(ds.BandCount()))

	for _, f := range ds.FileList() {
		size := "?"
		if st, err := os.Stat(f); err == nil {
			size = humanize.Bytes(uint64(st.Size()))
		}
		field(w, "File", fmt.Sprintf("%s (%s)", f, size))
	}

	if gt, ok := ds.GeoTransform(); ok {
		field(w, "Origin", fmt.Sprintf("(%g, %g)", gt[0], gt[3]))
		field(w, "Pixel size", fmt.Sprintf("(%g, %g)", gt[1], gt[5]))
	}
	if srs := ds.SpatialRef(); srs != nil {
		field(w, "Spatial ref", abbreviate(srs.WKT(), 72))
	}

	domains := []string{raster.DefaultDomain, raster.ImageStructureDomain}
	if lister, ok := ds.Dataset.(interface{ MetadataDomains() []string }); ok {
		domains = lister.MetadataDomains()
	}
	for _, domain := range domains {
		md := ds.Metadata(domain)
		if len(md) == 0 {
			continue
		}
		name := domain
		if name == raster.DefaultDomain {
			name = "default"
		}
		fmt.Fprintf(w, "Metadata (%s):\n", name)
		for _, k := range md.Keys() {
			fmt.Fprintf(w, "  %s=%s\n", keyColor.Sprint(k), abbreviate(md[k], 72))
		}
	}

	for n := 1; n <= ds.BandCount(); n++ {
		b, err := ds.Band(n)
		if err != nil {
			return err
		}
		describeBand(w, b)
	}
	return nil
}

func describeBand(w io.Writer, b raster.Band) {
	headingColor.Fprintf(w, "Band %d", b.Number())
	fmt.Fprintf(w, " %s %s, color %s", b.Kind(), b.DataType(), b.ColorInterp())
	if d := b.Description(); d != "" {
		fmt.Fprintf(w, ", %q", d)
	}
	fmt.Fprintln(w)

	if nd, ok := b.NoData(); ok {
		fmt.Fprintf(w, "  NoData=%g\n", nd)
	}
	if ct := b.ColorTable(); ct != nil {
		fmt.Fprintf(w, "  Color table: %d entries\n", len(ct))
	}
	if flagInfo.Stats {
		if lo, hi, err := raster.ComputeMinMax(b); err != nil {
			fmt.Fprintf(w, "  Min/Max: %v\n", err)
		} else {
			fmt.Fprintf(w, "  Min=%g Max=%g\n", lo, hi)
		}
	}
	md := b.Metadata()
	for _, k := range md.Keys() {
		fmt.Fprintf(w, "  %s=%s\n", keyColor.Sprint(k), abbreviate(md[k], 72))
	}
}

func field(w io.Writer, name, value string) {
	fmt.Fprintf(w, "%s: %s\n", keyColor.Sprint(name), value)
}

// abbreviate shortens s to n runes on one line.
func abbreviate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
