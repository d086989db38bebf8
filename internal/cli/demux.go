package cli

import (
	"github.com/spf13/cobra"

	"github.com/Altius/demultiplex/internal/config"
	"github.com/Altius/demultiplex/internal/demux"
)

func newDemuxCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demux BARCODES INPUT...",
		Short: "Demultiplex any number of files given a list of barcodes",
		Long: `Demultiplex any number of files given a list of barcodes.

BARCODES has one "name barcode" pair per line. Reads of all INPUT files
are taken in lock-step and written to {base}_{name}.{ext} in the output
directory; reads without a unique closest barcode go to {base}_UNKNOWN.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)
			logger.Println("Reading configuration")
			c, err := loadConfig(cmd, *cfgFile)
			if err != nil {
				return err
			}
			c.Barcodes, c.Inputs = args[0], args[1:]

			bf, err := openBarcodes(c.Barcodes)
			if err != nil {
				return err
			}
			entries, err := demux.ReadBarcodes(bf, c.Duplicates == config.DuplicatesError)
			bf.Close()
			if err != nil {
				return err
			}

			streams, err := demux.Open(c.Inputs)
			if err != nil {
				return err
			}
			defer streams.Close()

			logger.Println("Starting demux")
			stats, err := demux.Demultiplex(cmd.Context(), streams, entries, demux.DemuxOptions{
				Options: runOptions(c, logger),
				Extract: c.Extraction(),
				Expand:  c.Expand,
			})
			if err != nil {
				return err
			}
			report(logger, stats)
			logger.Println("done")
			return nil
		},
	}

	fs := cmd.Flags()
	extractFlags(fs)
	distanceFlags(fs)
	resourceFlags(fs)
	fs.String("duplicates", config.DuplicatesLast, `barcode listed twice: "last" name wins or "error"`)
	fs.Bool("expand", false, "precompute every barcode within the mismatch distance")
	return cmd
}
