package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-georaster/lcp"
	"github.com/robert-malhotra/go-georaster/raster"
)

var cmdTranslate = &cobra.Command{
	Use:   "translate SRC DST",
	Short: "Convert a raster to a landscape file",
	Long: `Convert a raster to a landscape file.

Creation options are read from --options-file or, without it, from the
"lcp" section of the config file. Each --co KEY=VALUE then overrides them.

--band selects and orders the source bands written, counting from 1.`,
	Args: cobra.ExactArgs(2),
	RunE: runTranslate,
}

var flagTranslate = struct {
	Options     []string
	OptionsFile string
	Bands       []int
	Strict      bool
	Quiet       bool
}{}

func init() {
	cmdMain.AddCommand(cmdTranslate)
	flags := cmdTranslate.Flags()
	flags.StringArrayVarP(&flagTranslate.Options, "co", "o", nil, "Creation option KEY=VALUE (repeatable)")
	flags.StringVar(&flagTranslate.OptionsFile, "options-file", "", "YAML file of creation options")
	flags.IntSliceVarP(&flagTranslate.Bands, "band", "b", nil, "Source bands to write, in order (default all)")
	flags.BoolVar(&flagTranslate.Strict, "strict", false, "Fail instead of guessing the linear unit or converting samples")
	flags.BoolVarP(&flagTranslate.Quiet, "quiet", "q", false, "Do not report progress")
	bindFlags(flags, "strict")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	opts, err := creationOptions()
	if err != nil {
		return err
	}

	src, err := openDataset(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	var in raster.Dataset = src
	if len(flagTranslate.Bands) > 0 {
		if in, err = selectBands(src, flagTranslate.Bands); err != nil {
			return err
		}
	}

	progress := raster.NoProgress
	if !flagTranslate.Quiet {
		progress = textProgress(cmd.ErrOrStderr())
	}

	dst, err := lcp.CreateCopy(args[1], in,
		lcp.WithOptions(opts),
		lcp.WithStrict(settings.GetBool("strict")),
		lcp.WithLogger(log.Logger),
		lcp.WithProgress(progress))
	if err != nil {
		return err
	}
	return dst.Close()
}

// selectBands exposes the chosen bands of src as a new dataset. The bands
// are proxies, so src must stay open while the result is used.
func selectBands(src raster.Dataset, numbers []int) (raster.Dataset, error) {
	xsize, ysize := src.Size()
	sel := raster.NewMemDataset(xsize, ysize)
	for i, n := range numbers {
		b, err := src.Band(n)
		if err != nil {
			return nil, err
		}
		if err := sel.AttachBand(raster.NewProxyBand(b, i+1)); err != nil {
			return nil, err
		}
	}
	if gt, ok := src.GeoTransform(); ok {
		sel.SetGeoTransform(gt)
	}
	sel.SetSpatialRef(src.SpatialRef())
	sel.SetFileList(src.FileList())
	md := src.Metadata(raster.DefaultDomain)
	for _, k := range md.Keys() {
		sel.SetMetadataItem(raster.DefaultDomain, k, md[k])
	}
	return sel, nil
}

// creationOptions reads the options file or the config file, then applies
// the command line.
func creationOptions() (lcp.CreateOptions, error) {
	var opts lcp.CreateOptions
	switch {
	case flagTranslate.OptionsFile != "":
		f, err := os.Open(flagTranslate.OptionsFile)
		if err != nil {
			return opts, fmt.Errorf("%w: %w", raster.ErrConfig, err)
		}
		defer f.Close()
		if opts, err = lcp.LoadCreateOptions(f); err != nil {
			return opts, err
		}
	case settings.IsSet("lcp"):
		if err := settings.UnmarshalKey("lcp", &opts); err != nil {
			return opts, fmt.Errorf("%w: lcp section of config: %w", raster.ErrConfig, err)
		}
	}
	err := opts.Apply(flagTranslate.Options)
	return opts, err
}

// textProgress prints "0...10...20..." style progress.
func textProgress(w io.Writer) raster.ProgressFunc {
	last := -1
	return func(complete float64, _ string) bool {
		step := int(complete * 10)
		for last < step && last < 10 {
			last++
			if last == 10 {
				fmt.Fprintln(w, "100 - done.")
			} else {
				fmt.Fprintf(w, "%d...", last*10)
			}
		}
		return true
	}
}
