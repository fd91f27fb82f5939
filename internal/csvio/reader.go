// Package csvio reads and writes suppression-list CSV files. Input
// files arrive from customer systems in whatever encoding their export
// tooling produced, so reading tries a configured list of encodings in
// order; output is always UTF-8.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dimchansky/utfbom"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrNoEncodingMatched is returned when every configured encoding fails
// to decode the file cleanly.
var ErrNoEncodingMatched = errors.New("no configured encoding matched the file")

// Attempt records one failed decode attempt, with the byte offset and
// line number of the first offending sequence.
type Attempt struct {
	Encoding string
	Offset   int64
	Line     int
	Err      error
}

// FileData is the outcome of a successful read: the decoded text, the
// encoding that produced it, and the attempts that failed before it.
type FileData struct {
	Path     string
	Encoding string
	Text     string
	Attempts []Attempt
}

// ReadFile decodes the file at path by trying each named encoding in
// order. The first encoding that decodes every byte cleanly wins;
// earlier failures are reported in FileData.Attempts. If all encodings
// fail, the error wraps ErrNoEncodingMatched.
func ReadFile(path string, encodings []string) (*FileData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	// The BOM, when present, is consumed here so the decoders below see
	// only payload bytes.
	sr, bom := utfbom.Skip(f)
	data, err := io.ReadAll(sr)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	fd := &FileData{Path: path}
	for _, name := range encodings {
		text, off, err := decode(data, name, bom)
		if err != nil {
			fd.Attempts = append(fd.Attempts, Attempt{
				Encoding: name,
				Offset:   off,
				Line:     lineAt(data, off),
				Err:      err,
			})
			continue
		}
		fd.Encoding = name
		fd.Text = text
		return fd, nil
	}

	return fd, fmt.Errorf("%s: %w (tried %s)", path, ErrNoEncodingMatched, strings.Join(encodings, ", "))
}

// decode converts data using the named encoding, or reports the offset
// of the first byte it cannot represent.
func decode(data []byte, name string, bom utfbom.Encoding) (string, int64, error) {
	utf16BOM := bom == utfbom.UTF16LittleEndian || bom == utfbom.UTF16BigEndian

	switch normalizeEncoding(name) {
	case "utf-8":
		// UTF-16 payload bytes often pass UTF-8 validation (ASCII runs
		// interleaved with NULs), so the BOM is authoritative here.
		if utf16BOM {
			return "", 0, fmt.Errorf("file carries a UTF-16 byte-order mark")
		}
		if off, ok := firstInvalidUTF8(data); !ok {
			return "", off, fmt.Errorf("invalid UTF-8 byte sequence")
		}
		return string(data), 0, nil

	case "utf-16":
		endian := unicode.LittleEndian
		if bom == utfbom.UTF16BigEndian {
			endian = unicode.BigEndian
		}
		if len(data)%2 != 0 {
			return "", int64(len(data) - 1), fmt.Errorf("odd byte count for UTF-16")
		}
		if bom != utfbom.UTF16LittleEndian && bom != utfbom.UTF16BigEndian {
			return "", 0, fmt.Errorf("no UTF-16 byte-order mark")
		}
		dec := unicode.UTF16(endian, unicode.IgnoreBOM).NewDecoder()
		text, err := dec.Bytes(data)
		if err != nil {
			return "", 0, fmt.Errorf("decoding UTF-16: %w", err)
		}
		if off := int64(bytes.IndexRune(text, utf8.RuneError)); off >= 0 {
			return "", off, fmt.Errorf("unpaired UTF-16 surrogate")
		}
		return string(text), 0, nil

	case "ascii":
		if utf16BOM {
			return "", 0, fmt.Errorf("file carries a UTF-16 byte-order mark")
		}
		for i, b := range data {
			if b > 0x7f {
				return "", int64(i), fmt.Errorf("byte 0x%02x is not ASCII", b)
			}
		}
		return string(data), 0, nil

	case "latin-1":
		if utf16BOM {
			return "", 0, fmt.Errorf("file carries a UTF-16 byte-order mark")
		}
		return decodeCharmap(data, charmap.ISO8859_1)

	case "windows-1252":
		if utf16BOM {
			return "", 0, fmt.Errorf("file carries a UTF-16 byte-order mark")
		}
		return decodeCharmap(data, charmap.Windows1252)

	default:
		return "", 0, fmt.Errorf("unsupported encoding %q", name)
	}
}

func decodeCharmap(data []byte, cm *charmap.Charmap) (string, int64, error) {
	// Single-byte charmaps can leave code points undefined. Checking the
	// source bytes directly keeps the reported offset in source terms;
	// an offset into the decoded text drifts once earlier high bytes
	// expand to multibyte runes.
	for i, b := range data {
		if cm.DecodeByte(b) == utf8.RuneError {
			return "", int64(i), fmt.Errorf("byte 0x%02x not defined in %s", b, cm.String())
		}
	}
	dec := cm.NewDecoder()
	text, err := dec.Bytes(data)
	if err != nil {
		return "", 0, fmt.Errorf("decoding %s: %w", cm.String(), err)
	}
	return string(text), 0, nil
}

// firstInvalidUTF8 returns (offset, false) at the first invalid byte,
// or (0, true) when the whole input is valid UTF-8.
func firstInvalidUTF8(data []byte) (int64, bool) {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return int64(i), false
		}
		i += size
	}
	return 0, true
}

// lineAt returns the 1-based line number containing byte offset off.
func lineAt(data []byte, off int64) int {
	if off > int64(len(data)) {
		off = int64(len(data))
	}
	return 1 + bytes.Count(data[:off], []byte{'\n'})
}

func normalizeEncoding(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return "utf-8"
	case "utf-16", "utf16", "utf-16le", "utf-16be":
		return "utf-16"
	case "ascii", "us-ascii":
		return "ascii"
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return "latin-1"
	case "windows-1252", "cp1252":
		return "windows-1252"
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}

// Rows parses the decoded text as CSV. Records may have varying field
// counts; the schema layer decides what each field means.
func (fd *FileData) Rows() ([][]string, error) {
	r := csv.NewReader(strings.NewReader(fd.Text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s as CSV: %w", fd.Path, err)
	}
	return rows, nil
}
