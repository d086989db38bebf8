// Package cli is for command line interactions with demultiplex.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"
)

// Version of the demultiplex command.
const Version = "0.3.0"

// profiles are the root level profiling flags.
type profiles struct {
	cpu, mem string
	cpuFile  *os.File
}

func (p *profiles) start(*cobra.Command, []string) error {
	if p.cpu == "" {
		return nil
	}
	f, err := os.Create(p.cpu)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("could not start CPU profile: %w", err)
	}
	p.cpuFile = f
	return nil
}

func (p *profiles) stop() error {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
		p.cpuFile = nil
	}
	if p.mem == "" {
		return nil
	}
	f, err := os.Create(p.mem)
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer f.Close()
	runtime.GC() // get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	return nil
}

// newRootCmd builds the command tree around fresh flag state. Profiling
// is started by the command and stopped by execute.
func newRootCmd(prof *profiles) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "demultiplex",
		Short: "Split sequencing reads into files by barcode",
		Long: `Split FASTA/FASTQ reads into one file per sample.

"demultiplex guess" reports the most frequent barcodes of a file,
"demultiplex demux" routes every read to the closest known barcode and
"demultiplex match" routes reads by fragments found, in order, in the read.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: prof.start,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "read settings from a YAML, TOML or JSON `file`")
	rootCmd.PersistentFlags().StringVar(&prof.cpu, "cpuprofile", "", "write cpu profile to `file`")
	rootCmd.PersistentFlags().StringVar(&prof.mem, "memprofile", "", "write memory profile to `file`")

	rootCmd.AddCommand(
		newGuessCmd(&cfgFile),
		newDemuxCmd(&cfgFile),
		newMatchCmd(&cfgFile),
	)
	return rootCmd
}

// Execute runs the command line and exits on failure. An interrupt stops
// the run between chunks; output written so far is flushed.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var prof profiles
	if err := execute(ctx, newRootCmd(&prof), &prof); err != nil {
		stop()
		log.Fatalf("%v", err)
	}
}

// execute runs cmd and stops profiling whether or not it failed.
func execute(ctx context.Context, cmd *cobra.Command, prof *profiles) error {
	err := cmd.ExecuteContext(ctx)
	if perr := prof.stop(); err == nil {
		err = perr
	}
	return err
}
