package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/turbolytics/nasr-loader/internal"
)

// ErrMissingColumn is returned when a requested column is not in the header.
var ErrMissingColumn = errors.New("column not found in header")

// Dialect describes how a delimited file is encoded.
type Dialect struct {
	Encoding  string
	Delimiter rune
	Quote     rune
}

// Reader reads a delimited file with a header row.
type Reader struct {
	csv   *csv.Reader
	quote rune
}

func NewReader(r io.Reader, d Dialect) (*Reader, error) {
	enc, err := LookupEncoding(d.Encoding)
	if err != nil {
		return nil, err
	}
	if !ValidRune(d.Delimiter) || !ValidRune(d.Quote) {
		return nil, fmt.Errorf("invalid delimiter %q or quote %q", d.Delimiter, d.Quote)
	}
	if d.Delimiter == d.Quote {
		return nil, fmt.Errorf("delimiter and quote must differ, both are %q", d.Delimiter)
	}

	t := []transform.Transformer{unicode.BOMOverride(enc.NewDecoder())}

	// encoding/csv only knows '"'. Swapping the configured quote with '"'
	// is a bijection, so values are swapped back after parsing.
	if d.Quote != '"' {
		t = append(t, runes.Map(func(r rune) rune {
			return swap(r, d.Quote)
		}))
	}

	cr := csv.NewReader(transform.NewReader(r, transform.Chain(t...)))
	cr.Comma = swap(d.Delimiter, d.Quote)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	return &Reader{
		csv:   cr,
		quote: d.Quote,
	}, nil
}

func swap(r, quote rune) rune {
	switch r {
	case quote:
		return '"'
	case '"':
		return quote
	}
	return r
}

func (r *Reader) field(v string) string {
	if r.quote == '"' {
		return v
	}
	return strings.Map(func(c rune) rune {
		return swap(c, r.quote)
	}, v)
}

// ReadTable reads the header and every record, keeping only columns.
//
// Columns are matched against the header case-insensitively and come back
// lowercased, in header order. Values are kept as text with surrounding
// whitespace trimmed. An empty field is a nil value.
func (r *Reader) ReadTable(name string, columns []string) (*internal.Table, error) {
	header, err := r.csv.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: missing header row", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", name, err)
	}

	positions := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(r.field(h)))
		if _, ok := positions[h]; !ok {
			positions[h] = i
		}
	}

	wanted := make(map[int]bool, len(columns))
	var missing []string
	for _, c := range columns {
		pos, ok := positions[strings.ToLower(strings.TrimSpace(c))]
		if !ok {
			missing = append(missing, c)
			continue
		}
		wanted[pos] = true
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", name, ErrMissingColumn, strings.Join(missing, ", "))
	}

	var idx []int
	var out []string
	for i, h := range header {
		if !wanted[i] {
			continue
		}
		idx = append(idx, i)
		out = append(out, strings.ToLower(strings.TrimSpace(r.field(h))))
	}

	table := internal.NewTable(name, out)
	for {
		rec, err := r.csv.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(rec) > len(header) {
			line, _ := r.csv.FieldPos(0)
			return nil, fmt.Errorf(
				"%s: line %d: expected %d fields, saw %d",
				name, line, len(header), len(rec),
			)
		}

		values := make([]any, len(idx))
		for j, i := range idx {
			// short rows are padded with NULL
			if i >= len(rec) || rec[i] == "" {
				continue
			}
			values[j] = strings.TrimSpace(r.field(rec[i]))
		}
		if err := table.Append(values); err != nil {
			return nil, err
		}
	}

	return table, nil
}

// FirstRune returns the single rune in s, or an error.
func FirstRune(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("expected a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// ValidRune reports whether r can be used as a delimiter or quote.
// Line breaks and the replacement character cannot.
func ValidRune(r rune) bool {
	return r != 0 && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}
