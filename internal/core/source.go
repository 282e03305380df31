package core

// source.go reads an import body into memory.
//
// The body is wrapped so that the UTF-8 BOM is dropped and the byte count is
// capped. Reads happen in fixed-size chunks and the context is checked
// between chunks, so a cancelled request stops consuming input. Bytes that
// are not valid UTF-8 are decoded as UTF-16 when they start with a UTF-16
// byte order mark (Excel's "Unicode Text" export), and as Windows-1252, the
// encoding legacy Excel installs write CSV files in, otherwise. Content that
// sniffs as binary (spreadsheets, archives, images) is rejected before
// decoding.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrFileTooLarge is returned when the body exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnreadable wraps a failure of the underlying reader or decoder.
	ErrUnreadable = errors.New("file could not be read")
)

// readChunkSize is the buffer used between cancellation checks.
const readChunkSize = 32 * 1024

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader drops a leading UTF-8 BOM from the wrapped reader.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	pending []byte // bytes peeked during the BOM check that were not a BOM
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if !r.checked {
		r.checked = true

		var head [3]byte
		n, err := io.ReadFull(r.reader, head[:])
		switch {
		case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
			err = nil
		case err != nil:
			return 0, err
		}
		if n == 3 && bytes.Equal(head[:], utf8BOM) {
			n = 0
		}
		r.pending = append(r.pending, head[:n]...)
	}

	if len(r.pending) > 0 {
		copied := copy(p, r.pending)
		r.pending = r.pending[copied:]
		return copied, nil
	}

	return r.reader.Read(p)
}

// limitedReader fails with ErrFileTooLarge once more than limit bytes have
// been read. A limit of zero or less disables the check.
type limitedReader struct {
	reader io.Reader
	limit  int64
	read   int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.reader.Read(p)
	l.read += int64(n)
	if l.limit > 0 && l.read > l.limit {
		return n, ErrFileTooLarge
	}
	return n, err
}

// ReadSource reads r to the end and returns its contents as UTF-8 text bytes
// with any BOM removed. It fails with ErrFileTooLarge past limit bytes, with
// the context error when ctx is cancelled, or with ErrUnreadable.
func ReadSource(ctx context.Context, r io.Reader, limit int64) ([]byte, error) {
	src := &limitedReader{reader: NewBOMSkippingReader(r), limit: limit}

	var out bytes.Buffer
	buf := make([]byte, readChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := src.Read(buf)
		out.Write(buf[:n])

		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, ErrFileTooLarge) {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, limit)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
	}

	data := out.Bytes()
	if kind, binary := sniffBinary(data); binary {
		return nil, fmt.Errorf("%w: binary content (%s)", ErrUnreadable, kind)
	}
	return ToUTF8(data)
}

// sniffBinary reports whether data is something other than text, along with
// the detected MIME type.
func sniffBinary(data []byte) (string, bool) {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return "", false
		}
	}
	return detected.String(), true
}

// ToUTF8 returns data unchanged when it is valid UTF-8. Otherwise a UTF-16
// byte order mark selects UTF-16 and anything else is decoded as
// Windows-1252. Decoded text holding NUL characters is rejected: it is
// UTF-16 without a byte order mark or not text at all.
func ToUTF8(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(charmap.Windows1252.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if bytes.IndexByte(decoded, 0) >= 0 {
		return nil, fmt.Errorf("%w: unsupported text encoding", ErrUnreadable)
	}
	return decoded, nil
}
