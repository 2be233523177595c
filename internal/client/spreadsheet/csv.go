package spreadsheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var charmaps = map[string]*charmap.Charmap{
	"windows-1251": charmap.Windows1251,
	"cp1251":       charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"koi8-r":       charmap.KOI8R,
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		return r, nil
	}
	cm, ok := charmaps[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, encoding)
	}
	return transform.NewReader(r, cm.NewDecoder()), nil
}

func readCSV(r io.Reader, opts Options) ([][]string, error) {
	dr, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(dr)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = detectDelimiter(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

// detectDelimiter picks ';' when the first non-empty line has more semicolons
// than commas.
func detectDelimiter(data []byte) rune {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), MaxFileSize)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}
		return ','
	}
	return ','
}
