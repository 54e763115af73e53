package app

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/typographic/internal/engine"
	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/engine/transform"
	"github.com/dshills/typographic/internal/session"
)

// StdinName is the path that reads a document from standard input.
const StdinName = "-"

// Document is an open document file and the session annotating it.
type Document struct {
	// Path is the absolute file path, or StdinName.
	Path string

	// Name is the display name.
	Name string

	session *session.Session
}

// Session returns the session that owns the document's annotations.
func (d *Document) Session() *session.Session {
	return d.session
}

// Snapshot returns the current version of the document.
func (d *Document) Snapshot() session.Snapshot {
	return d.session.Current()
}

// Watchable reports whether the document has a file that can be watched.
func (d *Document) Watchable() bool {
	return d.Path != StdinName
}

// DocumentManager opens document files and keeps one session per file.
type DocumentManager struct {
	mu        sync.RWMutex
	engine    *engine.Engine
	parse     document.ParseOptions
	log       *zap.Logger
	readFile  func(string) ([]byte, error)
	documents map[string]*Document
	order     []string
}

// NewDocumentManager creates a manager whose sessions share eng.
func NewDocumentManager(eng *engine.Engine, parse document.ParseOptions, log *zap.Logger) *DocumentManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentManager{
		engine:    eng,
		parse:     parse,
		log:       log,
		readFile:  os.ReadFile,
		documents: make(map[string]*Document),
	}
}

// Open parses the file at path and opens a session for it. An already open
// path returns the existing document.
func (dm *DocumentManager) Open(path string) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &FileError{Op: "open", Path: path, Err: err}
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if doc, ok := dm.documents[absPath]; ok {
		return doc, nil
	}
	data, err := dm.readFile(absPath)
	if err != nil {
		return nil, &FileError{Op: "open", Path: path, Err: err}
	}
	return dm.add(absPath, filepath.Base(absPath), data)
}

// OpenReader parses a document read from r and registers it as StdinName.
func (dm *DocumentManager) OpenReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &FileError{Op: "read", Path: StdinName, Err: err}
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if _, ok := dm.documents[StdinName]; ok {
		return nil, &FileError{Op: "read", Path: StdinName, Err: errAlreadyOpen}
	}
	return dm.add(StdinName, "stdin", data)
}

var errAlreadyOpen = errors.New("already open")

func (dm *DocumentManager) add(path, name string, data []byte) (*Document, error) {
	root, err := document.Parse(data, dm.parse)
	if err != nil {
		return nil, &FileError{Op: "parse", Path: path, Err: err}
	}
	s, err := session.Open(dm.engine, root, session.WithLogger(dm.log.With(zap.String("path", path))))
	if err != nil {
		return nil, &FileError{Op: "open", Path: path, Err: err}
	}
	doc := &Document{Path: path, Name: name, session: s}
	dm.documents[path] = doc
	dm.order = append(dm.order, path)
	return doc, nil
}

// Get returns the document open at path.
func (dm *DocumentManager) Get(path string) (*Document, bool) {
	if path != StdinName {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, ok := dm.documents[path]
	return doc, ok
}

// All returns the open documents in the order they were opened.
func (dm *DocumentManager) All() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make([]*Document, 0, len(dm.order))
	for _, p := range dm.order {
		out = append(out, dm.documents[p])
	}
	return out
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}

// Reload re-reads the file of an open document and applies the difference
// to its session as one edit.
func (dm *DocumentManager) Reload(path string) (session.Snapshot, error) {
	doc, ok := dm.Get(path)
	if !ok {
		return session.Snapshot{}, &FileError{Op: "reload", Path: path, Err: ErrDocumentNotFound}
	}
	if !doc.Watchable() {
		return session.Snapshot{}, &FileError{Op: "reload", Path: path, Err: ErrNotWatchable}
	}
	data, err := dm.readFile(doc.Path)
	if err != nil {
		return session.Snapshot{}, &FileError{Op: "reload", Path: doc.Path, Err: err}
	}
	root, err := document.Parse(data, dm.parse)
	if err != nil {
		return session.Snapshot{}, &FileError{Op: "parse", Path: doc.Path, Err: err}
	}

	cur := doc.Snapshot()
	m, err := transform.Between(cur.Doc, root)
	if err != nil {
		return session.Snapshot{}, &FileError{Op: "reload", Path: doc.Path, Err: err}
	}
	dm.log.Debug("reloading document",
		zap.String("path", doc.Path),
		zap.String("changes", m.Summary()))

	snap, err := doc.session.Apply(session.Edit{Before: cur.Doc, Doc: root, Mapping: m})
	if err != nil {
		return session.Snapshot{}, &FileError{Op: "reload", Path: doc.Path, Err: err}
	}
	return snap, nil
}

// Close closes the session of the document at path and forgets it.
func (dm *DocumentManager) Close(path string) error {
	doc, ok := dm.Get(path)
	if !ok {
		return &FileError{Op: "close", Path: path, Err: ErrDocumentNotFound}
	}

	dm.mu.Lock()
	delete(dm.documents, doc.Path)
	for i, p := range dm.order {
		if p == doc.Path {
			dm.order = append(dm.order[:i], dm.order[i+1:]...)
			break
		}
	}
	dm.mu.Unlock()

	return doc.session.Close()
}

// CloseAll closes every open document.
func (dm *DocumentManager) CloseAll() error {
	var first error
	for _, doc := range dm.All() {
		if err := dm.Close(doc.Path); err != nil && first == nil {
			first = err
		}
	}
	return first
}
