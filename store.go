package vcr

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// pathLock serializes writes to one cassette file within the process.
type pathLock struct {
	mu   sync.Mutex
	refs int
}

var registry = struct {
	sync.Mutex
	locks map[string]*pathLock
}{locks: make(map[string]*pathLock)}

func acquirePath(path string) *pathLock {
	registry.Lock()
	defer registry.Unlock()
	l, ok := registry.locks[path]
	if !ok {
		l = &pathLock{}
		registry.locks[path] = l
	}
	l.refs++
	return l
}

func releasePath(path string) {
	registry.Lock()
	defer registry.Unlock()
	if l, ok := registry.locks[path]; ok {
		if l.refs--; l.refs <= 0 {
			delete(registry.locks, path)
		}
	}
}

// A Store owns the in-memory view of one cassette file.
//
// In ModeReplay the file is read once by OpenStore and never touched again;
// Lookup consumes interactions from the loaded sequence.
//
// In ModeRecord each Append rewrites the file under a lock shared by every
// Store open on the same path in this process, so concurrent recorders never
// lose each other's interactions. The file is replaced atomically, which
// means a crash leaves either the previous or the new cassette, never a
// partial one. Recording and replaying the same path at the same time, or
// recording it from several processes, is not supported.
type Store struct {
	path string
	mode Mode
	lock *pathLock

	mu           sync.Mutex
	interactions []Interaction
	consumed     []bool
	closed       bool
}

// OpenStore opens the cassette at path. In ModeReplay the file must exist.
// In ModeRecord a missing file, and any missing parent directories, are
// created; interactions already in the file are kept.
func OpenStore(path string, mode Mode) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &IOError{Op: "resolve", Path: path, Err: err}
	}
	s := &Store{path: abs, mode: mode}

	if mode == ModeReplay {
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, &IOError{Op: "read", Path: abs, Err: err}
		}
		if s.interactions, err = decodeFile(abs, data); err != nil {
			return nil, err
		}
		s.consumed = make([]bool, len(s.interactions))
		return s, nil
	}

	s.lock = acquirePath(abs)
	s.lock.mu.Lock()
	defer s.lock.mu.Unlock()
	if s.interactions, err = s.load(true); err != nil {
		releasePath(abs)
		return nil, err
	}
	return s, nil
}

// Path returns the absolute path of the cassette file.
func (s *Store) Path() string { return s.path }

// Mode returns the mode the Store was opened in.
func (s *Store) Mode() Mode { return s.mode }

// Interactions returns a copy of the in-memory sequence.
func (s *Store) Interactions() []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Interaction, len(s.interactions))
	for i, in := range s.interactions {
		out[i] = in.Clone()
	}
	return out
}

// Lookup returns the recorded interaction that answers req and marks it
// consumed, unless m.Reuse is set. It returns a *MismatchError when no
// eligible interaction matches.
func (s *Store) Lookup(req Request, m Matcher) (Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Interaction{}, ErrClosed
	}
	i := m.Find(req, s.interactions, s.consumed)
	if i == NoMatch {
		return Interaction{}, &MismatchError{
			Request:   req.Clone(),
			Exhausted: m.Exhausted(req, s.interactions),
		}
	}
	if !m.Reuse {
		if n := len(s.interactions) - len(s.consumed); n > 0 {
			s.consumed = append(s.consumed, make([]bool, n)...)
		}
		s.consumed[i] = true
	}
	return s.interactions[i].Clone(), nil
}

// Append adds in to the end of the cassette file and the in-memory view.
// The file is re-read first, so interactions appended by other Stores on the
// same path are preserved; the in-memory view then mirrors the file.
func (s *Store) Append(in Interaction) error {
	if s.mode != ModeRecord {
		return errors.New("vcr: append to a cassette opened for replay")
	}
	if s.isClosed() {
		return ErrClosed
	}

	s.lock.mu.Lock()
	defer s.lock.mu.Unlock()
	if s.isClosed() {
		return ErrClosed
	}

	current, err := s.load(false)
	if err != nil {
		return err
	}
	current = append(current, in.Clone())
	data, err := Encode(current)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return &IOError{Op: "write", Path: s.path, Err: err}
	}

	s.mu.Lock()
	s.interactions = current
	s.mu.Unlock()
	return nil
}

// Close marks the Store closed. Every Append is durable when it returns, so
// there is nothing left to flush; Close waits for an in-flight Append to
// finish before releasing the path.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.lock != nil {
		s.lock.mu.Lock()
		releasePath(s.path)
		s.lock.mu.Unlock()
	}
	return nil
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// load reads and decodes the cassette file. The caller must hold s.lock.
// A missing file is an empty cassette; if create is set, it is created.
func (s *Store) load(create bool) ([]Interaction, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if !create {
			return nil, nil
		}
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return nil, &IOError{Op: "create", Path: s.path, Err: err}
		}
		f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			return nil, &IOError{Op: "create", Path: s.path, Err: err}
		}
		if err := f.Close(); err != nil {
			return nil, &IOError{Op: "create", Path: s.path, Err: err}
		}
		return nil, nil
	}
	if err != nil {
		return nil, &IOError{Op: "read", Path: s.path, Err: err}
	}
	return decodeFile(s.path, data)
}

func decodeFile(path string, data []byte) ([]Interaction, error) {
	interactions, err := Decode(data)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return nil, err
	}
	return interactions, nil
}

// writeFileAtomic writes data to a temporary file in the same directory and
// renames it over path, keeping the permissions of an existing file.
func writeFileAtomic(path string, data []byte) error {
	dir, filename := filepath.Split(path)
	perm := fs.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	}
	f, err := os.CreateTemp(dir, "."+filename+".*.tmp")
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	if err == nil {
		err = f.Chmod(perm)
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(f.Name(), path)
	}
	if err != nil {
		os.Remove(f.Name())
	}
	return err
}
