package cli

import (
	"github.com/spf13/cobra"

	"github.com/Altius/demultiplex/internal/demux"
)

func newMatchCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match BARCODES INPUT...",
		Short: "Demultiplex one file given a list of barcode tuples",
		Long: `Demultiplex given a list of barcode tuples.

BARCODES has one "name fragment..." line per sample. A read belongs to a
sample when every fragment occurs in the read in the given order. Reads
of no sample go to {base}_UNKNOWN; with -f, reads of several samples go
to {base}_MULTIPLE instead of to each of them.`,
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
			sets, err := demux.ReadFragmentSets(bf)
			bf.Close()
			if err != nil {
				return err
			}

			streams, err := demux.Open(c.Inputs)
			if err != nil {
				return err
			}
			defer streams.Close()

			logger.Println("Starting match")
			stats, err := demux.Match(cmd.Context(), streams, sets, demux.MatchOptions{
				Options:        runOptions(c, logger),
				FilterMultiple: c.FilterMultiple,
				Directional:    c.Directional,
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
	distanceFlags(fs)
	resourceFlags(fs)
	fs.BoolP("filter-multiple", "f", false, "write multiple matches to separate files")
	fs.BoolP("directional", "D", false, "directional input data")
	return cmd
}
