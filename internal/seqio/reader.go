// Package seqio opens FASTA/FASTQ record streams.
//
// Inputs go through xopen, so gzip, bzip2, xz and zstd files and stdin ("-")
// are read transparently, and through a Peeker, so the first header can be
// inspected before any record is parsed even when the source cannot seek.
package seqio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
)

// peekSize is how much of a stream may be inspected without consuming it.
const peekSize = 64 * 1024

// Peeker exposes the head of any stream without consuming it.
type Peeker struct {
	r *bufio.Reader
}

// NewPeeker wraps r.
func NewPeeker(r io.Reader) *Peeker {
	return &Peeker{r: bufio.NewReaderSize(r, peekSize)}
}

// Peek returns up to n bytes without advancing the stream. A short result
// is returned together with the error that stopped it (io.EOF for short
// inputs).
func (p *Peeker) Peek(n int) ([]byte, error) {
	if n > peekSize {
		n = peekSize
	}
	return p.r.Peek(n)
}

// FirstLine returns the first line of the stream, without its line ending.
func (p *Peeker) FirstLine() string {
	head, _ := p.Peek(peekSize)
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	return string(bytes.TrimRight(head, "\r"))
}

func (p *Peeker) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

// Reader is one record stream.
type Reader struct {
	// Name is the path the stream was opened from ("-" for stdin).
	Name string

	header string
	src    io.Closer
	fq     *fastx.Reader
	n      int
}

// Open opens path as a record stream.
func Open(path string) (*Reader, error) {
	src, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r, err := NewReader(path, src)
	if err != nil {
		src.Close()
		return nil, err
	}
	r.src = src
	return r, nil
}

// NewReader reads records from r. name is used for error messages and
// output naming only.
func NewReader(name string, r io.Reader) (*Reader, error) {
	peek := NewPeeker(r)
	rr := &Reader{Name: name, header: peek.FirstLine()}
	if head, _ := peek.Peek(1); len(head) == 0 {
		// empty stream, every Read is io.EOF
		return rr, nil
	}
	fq, err := fastx.NewReaderFromIO(seq.Unlimit, peek, fastx.DefaultIDRegexp)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	rr.fq = fq
	return rr, nil
}

// Header is the first line of the stream as it was before any record was
// read, including the leading '>' or '@'.
func (r *Reader) Header() string {
	return r.header
}

// Ext is the conventional file extension for the stream's format.
func (r *Reader) Ext() string {
	if len(r.header) > 0 && r.header[0] == '@' {
		return "fq"
	}
	return "fa"
}

// Records is the number of records read so far.
func (r *Reader) Records() int {
	return r.n
}

// Read returns the next record, or io.EOF. The record is a private copy
// and stays valid after further reads.
func (r *Reader) Read() (*fastx.Record, error) {
	if r.fq == nil {
		return nil, io.EOF
	}
	record, err := r.fq.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read %s record %d: %w", r.Name, r.n+1, err)
	}
	r.n++
	return record.Clone(), nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.src == nil {
		return nil
	}
	return r.src.Close()
}
