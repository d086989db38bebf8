// Package extract pulls the candidate barcode out of a record.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/shenwei356/bio/seqio/fastx"
)

// Format names a header convention.
type Format int

const (
	// Unknown reads the barcode from the sequence.
	Unknown Format = iota
	// Normal headers look like "@read#BARCODE/1".
	Normal
	// X headers (HiSeq X) end in ":BARCODE".
	X
	// UMI headers carry the barcode as the last ':' field of the read name.
	UMI
)

var formatNames = map[Format]string{
	Unknown: "unknown",
	Normal:  "normal",
	X:       "x",
	UMI:     "umi",
}

func (f Format) String() string {
	return formatNames[f]
}

// Formats lists the accepted format names.
func Formats() []string {
	return []string{"normal", "x", "umi", "unknown"}
}

var ErrUnknownFormat = errors.New("unknown header format")

// ParseFormat maps a name from Formats to its Format.
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Options configure an Extractor.
type Options struct {
	// Format is an explicit header format name; empty means probe.
	Format string
	// InRead takes the barcode from the sequence.
	InRead bool
	// Start and End select a 1-based, inclusive window of the barcode.
	// Zero means not given.
	Start int
	End   int
}

// Extractor returns the candidate barcode of a record.
type Extractor struct {
	format     Format
	start, end int
	window     bool
}

// New configures an Extractor. header is the first header line of the
// stream, used to probe the format when neither Format nor InRead is set.
func New(opts Options, header string) (*Extractor, error) {
	e := &Extractor{start: opts.Start, end: opts.End}
	if e.start != 0 {
		e.start--
	}
	e.window = opts.Start != 0 || opts.End != 0

	switch {
	case opts.Format != "":
		f, err := ParseFormat(opts.Format)
		if err != nil {
			return nil, err
		}
		e.format = f
	case opts.InRead:
		e.format = Unknown
	default:
		e.format = Guess(header)
	}
	return e, nil
}

// Format is the rule selected at setup.
func (e *Extractor) Format() Format {
	return e.format
}

// Get returns the candidate barcode of record.
func (e *Extractor) Get(record *fastx.Record) string {
	var s string
	switch e.format {
	case Normal:
		s = normal(string(record.ID))
	case X:
		s = lastField(string(record.Name), ":")
	case UMI:
		s = lastField(firstToken(record.Name), ":")
	default:
		s = string(record.Seq.Seq)
	}
	if !e.window {
		return s
	}
	return slice(s, e.start, e.end)
}

// normal returns the part between '#' and '/'.
func normal(id string) string {
	parts := strings.Split(id, "#")
	if len(parts) < 2 {
		return ""
	}
	return strings.Split(parts[1], "/")[0]
}

func lastField(s, sep string) string {
	return s[strings.LastIndex(s, sep)+1:]
}

func firstToken(name []byte) string {
	if i := bytes.IndexAny(name, " \t"); i >= 0 {
		return string(name[:i])
	}
	return string(name)
}

// slice cuts s[start:end] clamping out of range bounds. Negative bounds
// count from the end, and end == 0 means up to the end.
func slice(s string, start, end int) string {
	n := len(s)
	if end == 0 {
		end = n
	}
	start, end = clamp(start, n), clamp(end, n)
	if start >= end {
		return ""
	}
	return s[start:end]
}

func clamp(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}
