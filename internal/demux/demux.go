// Package demux routes records of one or more lock-step input files into
// per-label output files.
//
// Demultiplex classifies each read by the closest known barcode, Match by
// ordered fragment alignment. Both read a chunk of record tuples, classify
// the chunk on several goroutines, then write it in input order, so the
// output never depends on the number of threads.
package demux

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"sync/atomic"

	"github.com/shenwei356/bio/seqio/fastx"
	"golang.org/x/sync/errgroup"

	"github.com/Altius/demultiplex/internal/barcode"
	"github.com/Altius/demultiplex/internal/extract"
)

// progressEvery is how often, in records, progress is logged.
const progressEvery = 1000000

// Options are shared by Demultiplex and Match.
type Options struct {
	Path       string // output directory
	Mismatches int
	Edit       bool // Levenshtein instead of Hamming distance

	Threads       int
	ChunkSize     int // record tuples classified per batch
	MaxOpen       int // open output files
	CacheSize     int // records buffered per output file
	AllowTruncate bool

	Logger *log.Logger
}

func (o *Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return o.Logger
}

// DemuxOptions configure Demultiplex.
type DemuxOptions struct {
	Options
	Extract extract.Options
	// Expand precomputes the substitution neighbourhood of every barcode.
	Expand bool
}

// Stats summarise a run.
type Stats struct {
	Records   int            // record tuples read
	Ambiguous int            // tuples whose barcode tied between labels
	Groups    map[string]int // tuples written per label
}

// Labels returns the labels of Groups in order.
func (s Stats) Labels() []string {
	labels := make([]string, 0, len(s.Groups))
	for l := range s.Groups {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// classifier returns the labels a tuple is written to.
type classifier func(records []*fastx.Record) []string

// Demultiplex writes every tuple of streams to the group of the closest
// barcode in entries, or to UNKNOWN.
func Demultiplex(ctx context.Context, streams Streams, entries []barcode.Entry, opts DemuxOptions) (Stats, error) {
	if len(streams) == 0 {
		return Stats{}, ErrNoInputs
	}
	extractor, err := extract.New(opts.Extract, streams[0].Header())
	if err != nil {
		return Stats{}, err
	}
	opts.logger().Printf("barcode format: %v", extractor.Format())

	var indexOpts []barcode.Option
	if opts.Expand && !opts.Edit {
		indexOpts = append(indexOpts, barcode.WithNeighbourhood(opts.Mismatches))
	}
	index := barcode.NewIndex(entries, indexOpts...)

	g, err := newGroups(opts.Path, streams, opts.MaxOpen, opts.CacheSize)
	if err != nil {
		return Stats{}, err
	}
	labels := []string{Unknown}
	for _, e := range entries {
		labels = append(labels, e.Label)
	}

	var ambiguous atomic.Int64
	routes := make(map[string][]string)
	for _, l := range labels {
		routes[l] = []string{l}
	}
	classify := func(records []*fastx.Record) []string {
		label, outcome := index.BestMatch(extractor.Get(records[0]), opts.Mismatches, opts.Edit)
		switch outcome {
		case barcode.Matched:
			return routes[label]
		case barcode.Ambiguous:
			ambiguous.Add(1)
		}
		return routes[Unknown]
	}

	stats, err := run(ctx, streams, g, labels, opts.Options, classify)
	stats.Ambiguous = int(ambiguous.Load())
	return stats, err
}

// run registers labels, streams every tuple through classify and flushes
// the output exactly once, also when streaming failed.
func run(ctx context.Context, streams Streams, g *groups, labels []string, opts Options, classify classifier) (Stats, error) {
	logger := opts.logger()
	stats := Stats{Groups: g.counts}

	err := func() error {
		for _, l := range labels {
			if err := g.register(l); err != nil {
				return err
			}
		}
		return stream(ctx, streams, g, opts, classify, &stats, logger)
	}()

	ferr := g.pool.FlushAll()
	logger.Printf("%d records, %d output groups", stats.Records, len(stats.Groups))
	return stats, errors.Join(err, ferr)
}

func stream(ctx context.Context, streams Streams, g *groups, opts Options, classify classifier, stats *Stats, logger *log.Logger) error {
	chunkSize := max(opts.ChunkSize, 1)
	threads := max(opts.Threads, 1)

	chunk := make([][]*fastx.Record, 0, chunkSize)
	routed := make([][]string, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk = chunk[:0]
		var readErr error
		for len(chunk) < chunkSize {
			records, err := streams.next(stats.Records+len(chunk), opts.AllowTruncate)
			if err != nil {
				readErr = err
				break
			}
			chunk = append(chunk, records)
		}

		if err := classifyChunk(chunk, routed, threads, classify); err != nil {
			return err
		}
		for i, records := range chunk {
			for _, label := range routed[i] {
				if err := g.write(label, records); err != nil {
					return err
				}
			}
			stats.Records++
			if stats.Records%progressEvery == 0 {
				logger.Printf("%d records", stats.Records)
			}
		}

		switch {
		case readErr == io.EOF:
			return nil
		case readErr != nil:
			return readErr
		}
	}
}

// classifyChunk fills routed[i] for every tuple of chunk, splitting the
// work into contiguous slices over at most threads goroutines.
func classifyChunk(chunk [][]*fastx.Record, routed [][]string, threads int, classify classifier) error {
	if len(chunk) == 0 {
		return nil
	}
	if threads == 1 || len(chunk) < 2*threads {
		for i, records := range chunk {
			routed[i] = classify(records)
		}
		return nil
	}

	var eg errgroup.Group
	eg.SetLimit(threads)
	step := (len(chunk) + threads - 1) / threads
	for lo := 0; lo < len(chunk); lo += step {
		lo := lo
		hi := min(lo+step, len(chunk))
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				routed[i] = classify(chunk[i])
			}
			return nil
		})
	}
	return eg.Wait()
}
