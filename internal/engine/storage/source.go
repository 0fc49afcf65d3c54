package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Source reads the bytes behind unloaded units.
type Source interface {
	// Size returns the current length of path.
	Size(path string) (int64, error)
	// ReadAt fills p from path starting at off. A short read is an error.
	ReadAt(path string, p []byte, off int64) error
}

// FileSource reads from the local filesystem, keeping one open handle per
// path. It is safe for concurrent use.
type FileSource struct {
	mu    sync.Mutex
	files map[string]*os.File
}

// NewFileSource returns an empty FileSource.
func NewFileSource() *FileSource {
	return &FileSource{files: make(map[string]*os.File)}
}

// Size returns the length of path.
func (s *FileSource) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", path)
	}
	return info.Size(), nil
}

// ReadAt fills p from path starting at off.
func (s *FileSource) ReadAt(path string, p []byte, off int64) error {
	f, err := s.open(path)
	if err != nil {
		return err
	}
	_, err = io.ReadFull(io.NewSectionReader(f, off, int64(len(p))), p)
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func (s *FileSource) open(path string) (*os.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[path]; ok {
		return f, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s.files[path] = f
	return f, nil
}

// Close closes every open handle.
func (s *FileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for path, f := range s.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(s.files, path)
	}
	return errors.Join(errs...)
}
