// Package pak provides reading functionality for Quake PAK archives.
package pak

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/Faultbox/bsp2svg/pkg/encoding"
)

const (
	pakMagic      = "PACK"
	headerSize    = 12
	entrySize     = 64
	entryNameSize = 56
)

// PAK archive errors.
var (
	ErrInvalidPAKMagic = errors.New("invalid PAK magic: expected 'PACK'")
	ErrTruncatedPAK    = errors.New("truncated PAK data")
	ErrFileNotFound    = errors.New("file not found in archive")
)

// Archive represents an opened PAK archive.
type Archive struct {
	file     *os.File
	size     int64
	header   Header
	fileList map[string]*Entry

	mu sync.Mutex // guards file against Close during Read
}

// Header contains the PAK directory location.
type Header struct {
	Magic       [4]byte
	TableOffset int32
	TableSize   int32
}

// Entry represents a file entry in the archive.
type Entry struct {
	Name   string
	Offset int32
	Size   int32
}

// Open opens a PAK archive for reading.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat: %w", err)
	}

	archive := &Archive{
		file:     file,
		size:     info.Size(),
		fileList: make(map[string]*Entry),
	}

	if err := archive.readHeader(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if err := archive.readFileTable(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading file table: %w", err)
	}

	return archive, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file != nil {
		err := a.file.Close()
		a.file = nil
		return err
	}
	return nil
}

func (a *Archive) readHeader() error {
	var raw [headerSize]byte
	if _, err := a.file.ReadAt(raw[:], 0); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncatedPAK, err)
	}

	copy(a.header.Magic[:], raw[0:4])
	a.header.TableOffset = int32(binary.LittleEndian.Uint32(raw[4:]))
	a.header.TableSize = int32(binary.LittleEndian.Uint32(raw[8:]))

	if string(a.header.Magic[:]) != pakMagic {
		return ErrInvalidPAKMagic
	}

	if a.header.TableOffset < headerSize || a.header.TableSize < 0 || a.header.TableSize%entrySize != 0 {
		return fmt.Errorf("%w: directory at %d size %d", ErrTruncatedPAK, a.header.TableOffset, a.header.TableSize)
	}
	if int64(a.header.TableOffset)+int64(a.header.TableSize) > a.size {
		return fmt.Errorf("%w: directory past end of file", ErrTruncatedPAK)
	}

	return nil
}

func (a *Archive) readFileTable() error {
	table := make([]byte, a.header.TableSize)
	if _, err := a.file.ReadAt(table, int64(a.header.TableOffset)); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncatedPAK, err)
	}

	for off := 0; off+entrySize <= len(table); off += entrySize {
		raw := table[off : off+entrySize]
		entry := &Entry{
			Name:   encoding.NormalizePath(encoding.FixedString(raw[:entryNameSize])),
			Offset: int32(binary.LittleEndian.Uint32(raw[entryNameSize:])),
			Size:   int32(binary.LittleEndian.Uint32(raw[entryNameSize+4:])),
		}

		if entry.Offset < 0 || entry.Size < 0 || int64(entry.Offset)+int64(entry.Size) > a.size {
			return fmt.Errorf("%w: entry %s out of bounds", ErrTruncatedPAK, entry.Name)
		}

		// Later entries shadow earlier ones with the same name.
		a.fileList[entry.Name] = entry
	}

	return nil
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.fileList))
	for path := range a.fileList {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of files in the archive.
func (a *Archive) Len() int {
	return len(a.fileList)
}

// Contains checks if a file exists.
func (a *Archive) Contains(path string) bool {
	_, ok := a.fileList[encoding.NormalizePath(path)]
	return ok
}

// Stat returns the directory entry for path.
func (a *Archive) Stat(path string) (*Entry, bool) {
	entry, ok := a.fileList[encoding.NormalizePath(path)]
	return entry, ok
}

// Read reads a file from the archive.
func (a *Archive) Read(path string) ([]byte, error) {
	entry, ok := a.fileList[encoding.NormalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return nil, fmt.Errorf("reading %s: archive closed", path)
	}

	data := make([]byte, entry.Size)
	if _, err := a.file.ReadAt(data, int64(entry.Offset)); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
