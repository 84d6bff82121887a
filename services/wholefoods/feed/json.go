package feed

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	StoreFeedName   = "store_data.json"
	ProductFeedName = "product_data.json"
)

var ErrFeedClosed = errors.New("feed is closed")

// JSONFeed streams records into an indented json array. Records are written to
// `<path>.tmp` which replaces `path` on Close.
type JSONFeed struct {
	path   string
	file   *os.File
	w      *bufio.Writer
	count  int
	closed bool
}

func NewJSONFeed(path string) (*JSONFeed, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return nil, err
	}
	file, err := os.Create(path + ".tmp")
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(file)
	_, err = w.WriteString("[")
	if err != nil {
		file.Close()
		return nil, err
	}
	return &JSONFeed{path: path, file: file, w: w}, nil
}

func (f *JSONFeed) Path() string {
	return f.path
}

func (f *JSONFeed) Count() int {
	return f.count
}

func (f *JSONFeed) Write(record any) error {
	if f.closed {
		return ErrFeedClosed
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("    ", "    ")
	err := enc.Encode(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	sep := "\n    "
	if f.count > 0 {
		sep = ",\n    "
	}
	_, err = f.w.WriteString(sep)
	if err != nil {
		return err
	}
	_, err = f.w.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	if err != nil {
		return err
	}
	f.count++
	return nil
}

func (f *JSONFeed) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	tail := "\n]\n"
	if f.count == 0 {
		tail = "]\n"
	}
	_, err := f.w.WriteString(tail)
	if err == nil {
		err = f.w.Flush()
	}
	closeErr := f.file.Close()
	if err != nil || closeErr != nil {
		os.Remove(f.file.Name())
		return errors.Join(err, closeErr)
	}
	return os.Rename(f.file.Name(), f.path)
}
