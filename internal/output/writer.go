package output

import (
	"container/list"
	"os"
	"path/filepath"
	"strings"

	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
)

// Handle writes records to one output file through its Pool.
// The file behind it may be closed and reopened between writes.
type Handle struct {
	pool    *Pool
	path    string
	cache   []*fastx.Record
	writer  *xopen.Writer
	elem    *list.Element
	created bool // the file exists and was truncated by this run
}

// Path is the destination file.
func (h *Handle) Path() string {
	return h.path
}

// Write buffers record, flushing once the buffer is full. The record must
// not be modified afterwards.
func (h *Handle) Write(record *fastx.Record) error {
	p := h.pool
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	h.cache = append(h.cache, record)
	if len(h.cache) == cap(h.cache) {
		return p.flush(h, false)
	}
	return nil
}

// Destination is the output path for records of input routed to label:
// {dir}/{base}_{label}.{ext}, where base and ext split the input file name
// at its first dot.
func Destination(dir, input, label string) string {
	base, ext, found := strings.Cut(filepath.Base(input), ".")
	name := base + "_" + label
	if found {
		name += "." + ext
	}
	return filepath.Join(dir, name)
}

// Prepare creates the output directory if it does not exist yet.
func Prepare(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
