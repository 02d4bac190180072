package csvfile

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// LookupEncoding resolves a character encoding label such as "utf-8",
// "latin-1" or "cp1252". IANA names are tried before WHATWG labels so that
// latin-1 resolves to ISO-8859-1 rather than windows-1252.
func LookupEncoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	label = strings.ReplaceAll(label, "_", "-")

	candidates := []string{label, strings.ReplaceAll(label, "-", "")}
	for _, c := range candidates {
		switch c {
		case "utf-8", "utf8", "utf-8-sig", "utf8-sig":
			return unicode.UTF8, nil
		}
		if enc, err := ianaindex.IANA.Encoding(c); err == nil && enc != nil {
			return enc, nil
		}
		if enc, err := htmlindex.Get(c); err == nil {
			return enc, nil
		}
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}
