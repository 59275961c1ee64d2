package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalPicker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := LocalPicker{}.Pick(context.Background(), path)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if file.Meta.Name != "doc.txt" || file.Meta.Size != 5 {
		t.Fatalf("meta = %+v", file.Meta)
	}
	if string(file.Data) != "hello" {
		t.Fatalf("data = %q", file.Data)
	}
}

func TestLocalPickerMissingFile(t *testing.T) {
	_, err := LocalPicker{}.Pick(context.Background(), filepath.Join(t.TempDir(), "absent"))
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("err = %v, want *ReadError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err does not wrap os.ErrNotExist: %v", err)
	}
}

func TestReaderPicker(t *testing.T) {
	p := ReaderPicker{Name: "stdin", R: strings.NewReader("piped")}
	file, err := p.Pick(context.Background(), "ignored")
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if file.Meta.Name != "stdin" || string(file.Data) != "piped" {
		t.Fatalf("file = %+v", file)
	}
}

func TestPickHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (LocalPicker{}).Pick(ctx, "whatever"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
