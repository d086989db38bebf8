package demux

import (
	"errors"
	"fmt"
	"io"

	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/Altius/demultiplex/internal/output"
	"github.com/Altius/demultiplex/internal/seqio"
)

// Labels of the groups that always exist.
const (
	Unknown  = "UNKNOWN"
	Multiple = "MULTIPLE"
)

// Streams are input files read in lock-step, e.g. paired-end reads.
type Streams []*seqio.Reader

// Open opens every path, closing the ones already open on failure.
func Open(paths []string) (Streams, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}
	streams := make(Streams, 0, len(paths))
	for _, p := range paths {
		s, err := seqio.Open(p)
		if err != nil {
			streams.Close()
			return nil, err
		}
		streams = append(streams, s)
	}
	return streams, nil
}

// Close closes every stream.
func (s Streams) Close() error {
	var errs []error
	for _, r := range s {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// next reads one record from every stream. It returns io.EOF when all
// streams ended together and a *DesyncError when only some did.
func (s Streams) next(complete int, allowTruncate bool) ([]*fastx.Record, error) {
	records := make([]*fastx.Record, len(s))
	ended := -1
	for i, r := range s {
		rec, err := r.Read()
		switch {
		case err == io.EOF:
			if ended < 0 {
				ended = i
			}
		case err != nil:
			return nil, err
		default:
			records[i] = rec
		}
	}
	if ended < 0 {
		return records, nil
	}
	for _, rec := range records {
		if rec != nil {
			if allowTruncate {
				return nil, io.EOF
			}
			return nil, &DesyncError{Stream: s[ended].Name, Records: complete}
		}
	}
	return nil, io.EOF
}

// outputName is the name output files of stream s are derived from.
func outputName(s *seqio.Reader) string {
	if s.Name == "-" {
		return "stdin." + s.Ext()
	}
	return s.Name
}

// groups maps labels to one output handle per stream.
type groups struct {
	dir     string
	names   []string
	pool    *output.Pool
	handles map[string][]*output.Handle
	owners  map[*output.Handle]string
	counts  map[string]int
}

func newGroups(dir string, streams Streams, maxOpen, cacheSize int) (*groups, error) {
	if err := output.Prepare(dir); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	pool, err := output.NewPool(maxOpen, cacheSize)
	if err != nil {
		return nil, err
	}
	g := &groups{
		dir:     dir,
		pool:    pool,
		handles: make(map[string][]*output.Handle),
		owners:  make(map[*output.Handle]string),
		counts:  make(map[string]int),
	}
	for _, s := range streams {
		g.names = append(g.names, outputName(s))
	}
	return g, nil
}

// register creates the handles of label unless it already has them.
func (g *groups) register(label string) error {
	if _, ok := g.handles[label]; ok {
		return nil
	}
	hs := make([]*output.Handle, len(g.names))
	for i, name := range g.names {
		h, err := g.pool.Acquire(output.Destination(g.dir, name, label))
		if err != nil {
			return err
		}
		// e.g. run1/r.fq and run2/r.fq, or inputs a_b.fq and a.fq with
		// labels c and b_c
		if prev, taken := g.owners[h]; taken {
			return fmt.Errorf("%w: %s for %s and %s", ErrOutputCollision, h.Path(), prev, label)
		}
		g.owners[h] = label
		hs[i] = h
	}
	g.handles[label] = hs
	g.counts[label] = 0
	return nil
}

// write sends records[i] to the label's handle for stream i.
func (g *groups) write(label string, records []*fastx.Record) error {
	if err := g.register(label); err != nil {
		return err
	}
	for i, h := range g.handles[label] {
		if err := h.Write(records[i]); err != nil {
			return err
		}
	}
	g.counts[label]++
	return nil
}
