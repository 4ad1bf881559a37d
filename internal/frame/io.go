package frame

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ReadOptions configures delimited-file parsing.
type ReadOptions struct {
	Delimiter  rune   // default ','
	Encoding   string // "", "utf-8", "windows-1254", "iso-8859-9"
	MaxRows    int    // cap on data rows loaded (0 = unlimited), applied at load time
	TrimSpace  bool
	LazyQuotes bool
}

// Open loads a delimited file into a frame. A file absent at the given path
// is reported as ErrMissingInput.
func Open(path string, opts ReadOptions) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrMissingInput, "frame: %s", path)
		}
		return nil, eris.Wrapf(err, "frame: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	fr, err := ReadDelimited(f, opts)
	if err != nil {
		return nil, eris.Wrapf(err, "frame: read %s", path)
	}
	return fr, nil
}

// ReadDelimited parses delimited text into a frame. The first record is the
// header. Data rows shorter than the header are padded with the missing
// marker; longer rows are truncated to the header width.
func ReadDelimited(r io.Reader, opts ReadOptions) (*Frame, error) {
	dec, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(dec)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.Wrap(ErrEmptyResult, "frame: input has no header row")
	}
	if err != nil {
		return nil, eris.Wrap(err, "frame: read header")
	}
	if opts.TrimSpace {
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
	}
	// Strip a UTF-8 BOM left on the first column by spreadsheet exports.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	fr, err := New(header)
	if err != nil {
		return nil, err
	}

	for {
		if opts.MaxRows > 0 && fr.Len() >= opts.MaxRows {
			break
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "frame: read row")
		}
		if opts.TrimSpace {
			for i := range record {
				record[i] = strings.TrimSpace(record[i])
			}
		}
		if len(record) > len(header) {
			record = record[:len(header)]
		}
		if err := fr.AppendRow(record); err != nil {
			return nil, err
		}
	}
	return fr, nil
}

// WriteDelimited writes the frame as delimited text, header first.
func (f *Frame) WriteDelimited(w io.Writer, delimiter rune) error {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	if err := cw.Write(f.cols); err != nil {
		return eris.Wrap(err, "frame: write header")
	}
	for _, r := range f.rows {
		if err := cw.Write(r); err != nil {
			return eris.Wrap(err, "frame: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "frame: flush")
}

// WriteFile writes the frame to a delimited file, creating or truncating it.
func (f *Frame) WriteFile(path string, delimiter rune) error {
	out, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "frame: create %s", path)
	}
	defer out.Close() //nolint:errcheck

	if err := f.WriteDelimited(out, delimiter); err != nil {
		return eris.Wrapf(err, "frame: write %s", path)
	}
	return nil
}

// decodeReader wraps r with a charset decoder. Venue exports from Turkish
// tooling commonly arrive as windows-1254 or ISO-8859-9.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return r, nil
	case "windows-1254":
		return transform.NewReader(r, charmap.Windows1254.NewDecoder()), nil
	case "iso-8859-9", "latin-5":
		return transform.NewReader(r, charmap.ISO8859_9.NewDecoder()), nil
	default:
		return nil, eris.Errorf("frame: unsupported encoding %q", encoding)
	}
}
