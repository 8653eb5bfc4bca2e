package core

// streaming.go cleans up collection text on its way in.
//
// Exports saved by spreadsheet tools on Windows often start with a UTF-8 BOM
// and occasionally contain stray Latin-1 bytes. The readers here deal with
// both before the parser sees the text:
//
//   - BOMSkippingReader: drops a leading 0xEF 0xBB 0xBF
//   - CountingReader: tracks bytes read for upload progress logging
//   - ReadText: size-limited read into a string with invalid UTF-8 replaced
//
// Use WrapForStreaming for uploads and ReadText for whole-resource fetches.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DefaultMaxTextSize bounds ReadText when no explicit limit is given (100MB).
const DefaultMaxTextSize int64 = 100 << 20

// BOMSkippingReader wraps an io.Reader and skips a leading UTF-8 BOM.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := r.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // 0 if unknown
}

// NewCountingReader creates a counting reader with an optional total size.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{reader: r, Total: total}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if the total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}

// WrapForStreaming strips the BOM and counts bytes.
// The BOM must be removed before anything else looks at the data.
func WrapForStreaming(r io.Reader, totalSize int64) *CountingReader {
	return NewCountingReader(NewBOMSkippingReader(r), totalSize)
}

// ReadText reads at most limit bytes from r into a string with the BOM removed
// and invalid UTF-8 replaced by U+FFFD. Exceeding the limit is an error
// ("file too large"); whitespace-only content is ErrEmptyFile.
func ReadText(r io.Reader, limit int64) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxTextSize
	}

	data, err := io.ReadAll(io.LimitReader(NewBOMSkippingReader(r), limit+1))
	if err != nil {
		return "", fmt.Errorf("read collection: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("file too large: exceeds %d bytes", limit)
	}

	text := strings.ToValidUTF8(string(data), "\uFFFD")
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyFile
	}
	return text, nil
}
