package demux

import (
	"context"

	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/Altius/demultiplex/internal/align"
)

// MatchOptions configure Match.
type MatchOptions struct {
	Options
	// FilterMultiple sends reads matching more than one label to MULTIPLE
	// instead of to every matching label.
	FilterMultiple bool
	// Directional also tries the reverse complement of each read.
	Directional bool
}

// Match writes every tuple of streams to the groups of the labels whose
// fragments all align, in order, to the first read of the tuple. A label
// listed on several lines matches when any of its lines does.
func Match(ctx context.Context, streams Streams, sets []FragmentSet, opts MatchOptions) (Stats, error) {
	if len(streams) == 0 {
		return Stats{}, ErrNoInputs
	}
	indelCost := align.NoIndels
	if opts.Edit {
		indelCost = 1
	}

	g, err := newGroups(opts.Path, streams, opts.MaxOpen, opts.CacheSize)
	if err != nil {
		return Stats{}, err
	}
	labels := []string{Unknown, Multiple}
	for _, s := range sets {
		labels = append(labels, s.Label)
	}

	unknown, multiple := []string{Unknown}, []string{Multiple}
	classify := func(records []*fastx.Record) []string {
		reference := string(records[0].Seq.Seq)
		var rc string
		if opts.Directional {
			rc = align.ReverseComplement(reference)
		}

		var found []string
		for _, s := range sets {
			if contains(found, s.Label) {
				continue
			}
			if align.MatchesInOrder(reference, s.Fragments, opts.Mismatches, indelCost) ||
				opts.Directional && align.MatchesInOrder(rc, s.Fragments, opts.Mismatches, indelCost) {
				found = append(found, s.Label)
			}
		}

		switch {
		case len(found) == 0:
			return unknown
		case len(found) > 1 && opts.FilterMultiple:
			return multiple
		}
		return found
	}

	return run(ctx, streams, g, labels, opts.Options, classify)
}

func contains(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
