// Command rasterinfo inspects GIF and landscape rasters and converts
// rasters to landscape files.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cmdMain = &cobra.Command{
	Use:               "rasterinfo",
	Short:             "Inspect and convert raster files",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var flagMain = struct {
	Config   string
	LogLevel string
	NoColor  bool
}{}

// settings layers flags, GEORASTER_* environment variables and the
// optional config file.
var settings = viper.New()

func init() {
	flags := cmdMain.PersistentFlags()
	flags.StringVar(&flagMain.Config, "config", "", "Config file (YAML, TOML or JSON)")
	flags.StringVar(&flagMain.LogLevel, "log-level", "warn", "Log level: trace, debug, info, warn or error")
	flags.BoolVar(&flagMain.NoColor, "no-color", false, "Disable colored output")

	settings.SetEnvPrefix("GEORASTER")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	bindFlags(flags, "log-level", "no-color")
}

// bindFlags makes the named flags visible to settings under the same key.
func bindFlags(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		if err := settings.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	if flagMain.Config != "" {
		settings.SetConfigFile(flagMain.Config)
		if err := settings.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", flagMain.Config, err)
		}
	}

	if settings.GetBool("no-color") {
		color.NoColor = true
	}

	level, err := zerolog.ParseLevel(settings.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.Logger = newLogger(cmd.ErrOrStderr(), level)
	return nil
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: color.NoColor}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		os.Exit(1)
	}
}
