package demux

import (
	"io"
	"sort"

	"github.com/Altius/demultiplex/internal/extract"
	"github.com/Altius/demultiplex/internal/seqio"
)

// Candidate is a barcode seen while sampling a stream.
type Candidate struct {
	Barcode string
	Count   int
}

// Count samples the first sampleSize records of s (all of them when
// sampleSize is not positive) and returns the most frequent barcodes,
// most frequent first. With useFreq every barcode seen at least threshold
// times is returned, otherwise the threshold most frequent ones.
func Count(s *seqio.Reader, e *extract.Extractor, sampleSize, threshold int, useFreq bool) ([]Candidate, error) {
	barcodes := make(map[string]int)
	for i := 0; sampleSize <= 0 || i < sampleSize; i++ {
		record, err := s.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		barcodes[e.Get(record)]++
	}

	out := make([]Candidate, 0, len(barcodes))
	for bc, n := range barcodes {
		if useFreq && n < threshold {
			continue
		}
		out = append(out, Candidate{Barcode: bc, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Barcode < out[j].Barcode
	})
	if !useFreq && len(out) > threshold {
		out = out[:threshold]
	}
	return out, nil
}
