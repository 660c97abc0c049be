package vectorindex

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/roomlens/backend/internal/domain"
)

// fileMagic identifies the on-disk index format
var fileMagic = [4]byte{'R', 'L', 'X', '1'}

// Header limits checked before any row buffer is allocated
const (
	maxIndexDimension = 1 << 16
	maxIndexRows      = 1 << 24
)

// FileStore persists a FlatIndex as little-endian float32 rows:
// magic, uint32 dimension, uint32 row count, then row data.
type FileStore struct {
	path string
}

// NewFileStore creates an index store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the index file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the index. A missing file yields a nil index and no error.
func (s *FileStore) Load(ctx context.Context) (domain.VectorIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", s.path, err)
	}
	defer f.Close()

	index, err := ReadIndex(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", s.path, err)
	}
	return index, nil
}

// Save writes the index atomically by renaming a temporary file into place
func (s *FileStore) Save(index *FlatIndex) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".index-*")
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := WriteIndex(w, index); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}

	return os.Rename(tmp.Name(), s.path)
}

// WriteIndex encodes index to w
func WriteIndex(w io.Writer, index *FlatIndex) error {
	header := struct {
		Magic     [4]byte
		Dimension uint32
		Rows      uint32
	}{fileMagic, uint32(index.dimension), uint32(len(index.rows))}

	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write index header: %w", err)
	}

	row := make([]float32, index.dimension)
	for _, r := range index.rows {
		for i, v := range r {
			row[i] = float32(v)
		}
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return fmt.Errorf("failed to write index row: %w", err)
		}
	}
	return nil
}

// ReadIndex decodes an index written by WriteIndex
func ReadIndex(r io.Reader) (*FlatIndex, error) {
	var header struct {
		Magic     [4]byte
		Dimension uint32
		Rows      uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read index header: %w", err)
	}
	if header.Magic != fileMagic {
		return nil, fmt.Errorf("unrecognized index format %q", header.Magic[:])
	}
	if header.Dimension > maxIndexDimension {
		return nil, fmt.Errorf("index dimension %d exceeds limit %d", header.Dimension, maxIndexDimension)
	}
	if header.Rows > maxIndexRows {
		return nil, fmt.Errorf("index row count %d exceeds limit %d", header.Rows, maxIndexRows)
	}
	if header.Dimension == 0 && header.Rows > 0 {
		return nil, fmt.Errorf("index has %d rows but zero dimension", header.Rows)
	}

	index := NewFlatIndex(int(header.Dimension))
	row := make([]float32, header.Dimension)
	for i := uint32(0); i < header.Rows; i++ {
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("failed to read index row %d: %w", i, err)
		}
		if err := index.Add(row); err != nil {
			return nil, err
		}
	}
	return index, nil
}
