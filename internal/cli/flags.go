package cli

import (
	"fmt"
	"log"
	"strings"

	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Altius/demultiplex/internal/config"
	"github.com/Altius/demultiplex/internal/demux"
	"github.com/Altius/demultiplex/internal/extract"
)

// Flag names equal the config keys, so viper picks them up unchanged.

func extractFlags(fs *pflag.FlagSet) {
	fs.BoolP("in-read", "r", false, "extract the barcodes from the read")
	fs.String("format", "", "header format, one of "+strings.Join(extract.Formats(), ", "))
	fs.IntP("start", "s", 0, "start of the selection")
	fs.IntP("end", "e", 0, "end of the selection")
}

func distanceFlags(fs *pflag.FlagSet) {
	fs.IntP("mismatch", "m", 1, "number of mismatches")
	fs.BoolP("edit", "d", false, "use Levenshtein distance")
	fs.StringP("path", "p", ".", "output directory")
}

func resourceFlags(fs *pflag.FlagSet) {
	fs.Int("threads", 0, "classification workers, 0 for one per CPU")
	fs.Int("max-open", 0, "open output files, 0 for the process limit")
	fs.Int("chunk-size", 1000, "reads classified per batch")
	fs.Int("cache-size", 128, "reads buffered per output file")
	fs.Bool("allow-truncate", false, "stop at the end of the shortest input instead of failing")
}

func loadConfig(cmd *cobra.Command, cfgFile string) (*config.Config, error) {
	return config.Load(cmd.Flags(), cfgFile)
}

func newLogger(cmd *cobra.Command) *log.Logger {
	return log.New(cmd.ErrOrStderr(), "", 0)
}

func runOptions(c *config.Config, logger *log.Logger) demux.Options {
	return demux.Options{
		Path:          c.Path,
		Mismatches:    c.Mismatches,
		Edit:          c.Edit,
		Threads:       c.Threads,
		ChunkSize:     c.ChunkSize,
		MaxOpen:       c.MaxOpen,
		CacheSize:     c.CacheSize,
		AllowTruncate: c.AllowTruncate,
		Logger:        logger,
	}
}

// openBarcodes opens a barcode file, possibly compressed.
func openBarcodes(path string) (*xopen.Reader, error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("open barcodes %s: %w", path, err)
	}
	return r, nil
}

func report(logger *log.Logger, stats demux.Stats) {
	for _, l := range stats.Labels() {
		logger.Printf("%s\t%d", l, stats.Groups[l])
	}
	if stats.Ambiguous > 0 {
		logger.Printf("%d reads matched several barcodes equally well", stats.Ambiguous)
	}
}
