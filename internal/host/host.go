// Package host models file acquisition as a capability interface so the
// engine never depends on a specific platform's file source. Variants
// exist for the local filesystem and for arbitrary readers (pipes,
// stdin); other hosts implement Picker at the boundary.
package host

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Meta describes the picked file.
type Meta struct {
	Name     string
	Size     int64
	Modified time.Time
}

// File is a byte buffer plus its metadata.
type File struct {
	Meta Meta
	Data []byte
}

// ReadError reports a host I/O failure. It is surfaced to the user and
// not retried automatically.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Name, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Picker supplies file bytes and metadata to the engine.
type Picker interface {
	Pick(ctx context.Context, name string) (File, error)
}

// LocalPicker reads files from the local filesystem.
type LocalPicker struct{}

func (LocalPicker) Pick(ctx context.Context, path string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, &ReadError{Name: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, &ReadError{Name: path, Err: err}
	}
	return File{
		Meta: Meta{
			Name:     filepath.Base(path),
			Size:     info.Size(),
			Modified: info.ModTime(),
		},
		Data: data,
	}, nil
}

// ReaderPicker drains an io.Reader once; the pick name is fixed at
// construction. Useful for stdin and tests.
type ReaderPicker struct {
	Name string
	R    io.Reader
}

func (p ReaderPicker) Pick(ctx context.Context, _ string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	data, err := io.ReadAll(p.R)
	if err != nil {
		return File{}, &ReadError{Name: p.Name, Err: err}
	}
	return File{
		Meta: Meta{Name: p.Name, Size: int64(len(data)), Modified: time.Now()},
		Data: data,
	}, nil
}
