package cli

import (
	"fmt"
	"io"

	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"

	"github.com/Altius/demultiplex/internal/demux"
	"github.com/Altius/demultiplex/internal/extract"
	"github.com/Altius/demultiplex/internal/seqio"
)

func newGuessCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guess INPUT",
		Short: "Retrieve the most frequent barcodes",
		Long: `Retrieve the most frequent barcodes of a FASTA/FASTQ file.

The first -n reads are sampled. By default the -t most frequent barcodes
are listed; with -f every barcode seen at least -t times is. Each output
line is "rank barcode count".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)
			c, err := loadConfig(cmd, *cfgFile)
			if err != nil {
				return err
			}
			c.Inputs = args

			r, err := seqio.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			e, err := extract.New(c.Extraction(), r.Header())
			if err != nil {
				return err
			}
			logger.Printf("barcode format: %v", e.Format())

			candidates, err := demux.Count(r, e, c.SampleSize, c.Threshold, c.UseFreq)
			if err != nil {
				return err
			}
			logger.Printf("%d reads sampled", r.Records())

			if c.Output == "-" {
				return writeCandidates(cmd.OutOrStdout(), candidates)
			}
			w, err := xopen.Wopen(c.Output)
			if err != nil {
				return fmt.Errorf("open %s: %w", c.Output, err)
			}
			if err := writeCandidates(w, candidates); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		},
	}

	fs := cmd.Flags()
	extractFlags(fs)
	fs.StringP("output", "o", "-", "output file")
	fs.IntP("sample-size", "n", 1000000, "sample size")
	fs.IntP("threshold", "t", 12, "threshold for the selection method")
	fs.BoolP("use-freq", "f", false, "select on frequency instead of a fixed amount")
	return cmd
}

func writeCandidates(w io.Writer, candidates []demux.Candidate) error {
	for i, c := range candidates {
		if _, err := fmt.Fprintf(w, "%d %s %d\n", i+1, c.Barcode, c.Count); err != nil {
			return err
		}
	}
	return nil
}
