package bitrie

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nyan233/bitrie/internal/sys"
)

// Storage is the random-access byte stream a disk-format index lives in.
type Storage interface {
	io.ReaderAt
	io.WriterAt
	Size() (int64, error)
	Truncate(size int64) error
	Sync() error
	Close() error
}

var (
	_ Storage = (*MemStorage)(nil)
	_ Storage = (*FileStorage)(nil)
)

// MemStorage keeps the stream in a growable byte slice.
type MemStorage struct {
	dat []byte
}

func NewMemStorage() *MemStorage {
	return new(MemStorage)
}

func (m *MemStorage) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= int64(len(m.dat)) {
		return 0, io.EOF
	}
	n = copy(p, m.dat[off:])
	if n < len(p) {
		err = io.EOF
	}
	return
}

func (m *MemStorage) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	end := int(off) + len(p)
	if end > cap(m.dat) {
		// grow in whole pages
		pageSize := sys.GetSysPageSize()
		newCap := max(2*cap(m.dat), (end+pageSize-1)/pageSize*pageSize)
		dat := make([]byte, len(m.dat), newCap)
		copy(dat, m.dat)
		m.dat = dat
	}
	if end > len(m.dat) {
		m.dat = m.dat[:end]
	}
	return copy(m.dat[off:], p), nil
}

func (m *MemStorage) Size() (int64, error) {
	return int64(len(m.dat)), nil
}

func (m *MemStorage) Truncate(size int64) error {
	if size < 0 {
		return fmt.Errorf("negative size %d", size)
	}
	if size <= int64(len(m.dat)) {
		m.dat = m.dat[:size]
		return nil
	}
	_, err := m.WriteAt(make([]byte, size-int64(len(m.dat))), int64(len(m.dat)))
	return err
}

func (m *MemStorage) Sync() error {
	return nil
}

func (m *MemStorage) Close() error {
	return nil
}

// Bytes returns the current stream contents. The slice aliases the storage.
func (m *MemStorage) Bytes() []byte {
	return m.dat
}

func (m *MemStorage) swap(o *MemStorage) {
	m.dat = o.dat
	o.dat = nil
}

// FileStorage is a file held under an exclusive advisory lock for as long as
// it is open.
type FileStorage struct {
	file *os.File
	path string
}

func OpenFileStorage(path string) (*FileStorage, error) {
	file, err := sys.OpenFile(path)
	if err != nil {
		return nil, err
	}
	err = sys.LockFile(file)
	if err != nil {
		_ = file.Close()
		if errors.Is(err, sys.ErrLocked) {
			return nil, fmt.Errorf("%w: %s", ErrStoreLocked, path)
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return &FileStorage{
		file: file,
		path: path,
	}, nil
}

func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) ReadAt(p []byte, off int64) (int, error) {
	return f.file.ReadAt(p, off)
}

func (f *FileStorage) WriteAt(p []byte, off int64) (int, error) {
	return f.file.WriteAt(p, off)
}

func (f *FileStorage) Size() (int64, error) {
	stat, err := f.file.Stat()
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

func (f *FileStorage) Truncate(size int64) error {
	return f.file.Truncate(size)
}

func (f *FileStorage) Sync() error {
	return f.file.Sync()
}

func (f *FileStorage) Close() (err error) {
	if f.file == nil {
		return nil
	}
	err = sys.UnlockFile(f.file)
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	f.file = nil
	return
}
