// Package output writes records to many files while keeping only a bounded
// number of them open.
//
// A Pool hands out Handles by path. A Handle buffers records and only asks
// the pool for an OS file when its buffer is flushed. When the pool already
// holds its limit of open files, the least recently used one is closed;
// it is reopened in append mode the next time it is written to.
package output

import (
	"container/list"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
)

var (
	// ErrResourceExhausted means the pool cannot hold even one open file.
	ErrResourceExhausted = errors.New("output: cannot open any more files")
	// ErrPoolClosed is returned for any use after FlushAll.
	ErrPoolClosed = errors.New("output: pool closed")
)

// lineWidth 0 keeps sequences on one line.
const lineWidth = 0

// Pool owns every output file. It is safe for concurrent use.
type Pool struct {
	mu        sync.Mutex
	limit     int
	cacheSize int
	handles   map[string]*Handle
	order     []*Handle  // registration order
	open      *list.List // open handles, most recently used first
	opens     int
	closed    bool
}

// NewPool creates a pool that keeps at most limit files open. Each handle
// buffers up to cacheSize records between writes.
func NewPool(limit, cacheSize int) (*Pool, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit %d", ErrResourceExhausted, limit)
	}
	if cacheSize < 1 {
		cacheSize = 1
	}
	return &Pool{
		limit:     limit,
		cacheSize: cacheSize,
		handles:   make(map[string]*Handle),
		open:      list.New(),
	}, nil
}

// Acquire returns the handle for path, registering it on first use. No
// file is opened until records are flushed.
func (p *Pool) Acquire(path string) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	if h, ok := p.handles[path]; ok {
		return h, nil
	}
	h := &Handle{
		pool:  p,
		path:  path,
		cache: make([]*fastx.Record, 0, p.cacheSize),
	}
	p.handles[path] = h
	p.order = append(p.order, h)
	return h, nil
}

// Len is the number of registered handles.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}

// Opens counts every time a file was opened, reopens included.
func (p *Pool) Opens() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opens
}

// FlushAll writes out every buffered record, creates the files of handles
// that never received one, and closes everything. It runs once; later
// calls and any further use of the pool fail with ErrPoolClosed.
func (p *Pool) FlushAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}

	var errs []error
	for _, h := range p.order {
		if err := p.flush(h, true); err != nil {
			errs = append(errs, err)
		}
		if err := p.close(h); err != nil {
			errs = append(errs, err)
		}
	}
	p.closed = true
	return errors.Join(errs...)
}

// flush writes h's cache. create forces the file into existence even when
// there is nothing to write.
func (p *Pool) flush(h *Handle, create bool) error {
	if len(h.cache) == 0 && (h.created || !create) {
		return nil
	}
	if err := p.acquireFile(h); err != nil {
		return err
	}
	for _, record := range h.cache {
		record.FormatToWriter(h.writer, lineWidth)
	}
	clear(h.cache)
	h.cache = h.cache[:0]
	return nil
}

// acquireFile makes sure h has an open file, evicting the least recently
// used handle when the pool is full.
func (p *Pool) acquireFile(h *Handle) error {
	if h.writer != nil {
		p.open.MoveToFront(h.elem)
		return nil
	}
	for p.open.Len() >= p.limit {
		if err := p.close(p.open.Back().Value.(*Handle)); err != nil {
			return err
		}
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if h.created {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	w, err := xopen.WopenFile(h.path, flag, 0o644)
	if err != nil {
		if tooManyOpen(err) {
			return fmt.Errorf("%w: %s: %v", ErrResourceExhausted, h.path, err)
		}
		return fmt.Errorf("open %s: %w", h.path, err)
	}
	h.writer = w
	h.created = true
	h.elem = p.open.PushFront(h)
	p.opens++
	return nil
}

func (p *Pool) close(h *Handle) error {
	if h.writer == nil {
		return nil
	}
	p.open.Remove(h.elem)
	err := h.writer.Close()
	h.writer, h.elem = nil, nil
	if err != nil {
		return fmt.Errorf("close %s: %w", h.path, err)
	}
	return nil
}
