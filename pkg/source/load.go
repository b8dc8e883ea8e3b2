package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/nchiapol/lookat/pkg/cache"
	"github.com/nchiapol/lookat/pkg/errors"
	"github.com/nchiapol/lookat/pkg/observability"
)

// Loader opens tabular files as [Table] values, caching parsed tables.
type Loader struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *log.Logger
}

// LoaderOption configures a [Loader].
type LoaderOption func(*Loader)

// WithCache caches parsed tables in c.
func WithCache(c cache.Cache) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.cache = c
		}
	}
}

// WithTTL sets how long cached tables stay valid; zero keeps them forever.
func WithTTL(ttl time.Duration) LoaderOption {
	return func(l *Loader) { l.ttl = ttl }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader returns a loader without a cache unless one is given.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{cache: cache.NewNullCache(), logger: log.Default()}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Format is a supported file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat derives the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported file type %q (want .csv, .tsv or .xlsx)", filepath.Ext(path))
}

// Load reads path. The first row names the fields. Columns with a value
// that is not a number are dropped; empty cells become NaN. sheet selects
// a worksheet of a spreadsheet; empty means the first one.
func (l *Loader) Load(ctx context.Context, path, sheet string) (*Table, error) {
	start := time.Now()
	t, cached, err := l.load(ctx, path, sheet)
	events := 0
	if t != nil {
		events = t.Len()
	}
	observability.Source().OnSourceLoad(ctx, path, cached, events, time.Since(start), err)
	return t, err
}

func (l *Loader) load(ctx context.Context, path, sheet string) (*Table, bool, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "stat %s", path)
	}
	abs, _ := filepath.Abs(path)
	key := cache.SourceKey(abs, info.Size(), info.ModTime(), sheet)

	if data, hit, err := l.cache.Get(ctx, key); err == nil && hit {
		var t Table
		if err := json.Unmarshal(data, &t); err == nil {
			l.logger.Debug("source cache hit", "path", path, "events", t.Len())
			return &t, true, nil
		}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var records [][]string
	switch format {
	case FormatCSV, FormatTSV:
		records, err = readDelimited(path, format)
	case FormatXLSX:
		records, sheet, err = readSheet(path, sheet)
		if err == nil {
			name += ":" + sheet
		}
	}
	if err != nil {
		return nil, false, err
	}

	t, err := fromRecords(name, records, l.logger)
	if err != nil {
		return nil, false, err
	}
	if data, err := json.Marshal(t); err == nil {
		if err := l.cache.Set(ctx, key, data, l.ttl); err != nil {
			l.logger.Debug("source cache write failed", "path", path, "error", err)
		}
	}
	l.logger.Debug("loaded source", "path", path, "fields", len(t.fields), "events", t.Len())
	return t, false, nil
}

func readDelimited(path string, format Format) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'
	if format == FormatTSV {
		r.Comma = '\t'
	}
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", path)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readSheet(path, sheet string) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "open %s", path)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, "", errors.New(errors.ErrCodeInvalidFormat, "%s has no worksheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeNotFound, err, "read sheet %q of %s", sheet, path)
	}
	return rows, sheet, nil
}

// fromRecords turns a header row and data rows into a table.
func fromRecords(name string, records [][]string, logger *log.Logger) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%s is empty", name)
	}
	header := records[0]
	data := records[1:]

	var keep []int
	var fields []string
	for c, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			logger.Debug("dropping unnamed column", "source", name, "column", c)
			continue
		}
		if !numericColumn(data, c) {
			logger.Debug("dropping non-numeric column", "source", name, "field", h)
			continue
		}
		keep = append(keep, c)
		fields = append(fields, h)
	}
	t, err := NewTable(name, fields)
	if err != nil {
		return nil, err
	}
	for _, rec := range data {
		row := make([]float64, len(keep))
		for i, c := range keep {
			row[i] = parseCell(rec, c)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func cell(rec []string, c int) string {
	if c >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[c])
}

func numericColumn(data [][]string, c int) bool {
	for _, rec := range data {
		s := cell(rec, c)
		if s == "" {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return false
		}
	}
	return true
}

func parseCell(rec []string, c int) float64 {
	s := cell(rec, c)
	if s == "" {
		return math.NaN()
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// tableJSON is the cached form of a table. NaN has no JSON encoding, so
// missing values are stored as null.
type tableJSON struct {
	Name   string       `json:"name"`
	Fields []string     `json:"fields"`
	Rows   [][]*float64 `json:"rows"`
}

// MarshalJSON implements json.Marshaler.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{Name: t.name, Fields: t.fields, Rows: make([][]*float64, len(t.rows))}
	for i, r := range t.rows {
		row := make([]*float64, len(r))
		for j := range r {
			if !math.IsNaN(r[j]) {
				row[j] = &r[j]
			}
		}
		out.Rows[i] = row
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Table) UnmarshalJSON(data []byte) error {
	var in tableJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	nt, err := NewTable(in.Name, in.Fields)
	if err != nil {
		return err
	}
	for _, r := range in.Rows {
		if len(r) != len(in.Fields) {
			return errors.New(errors.ErrCodeInvalidFormat, "cached table %s: row has %d values, want %d", in.Name, len(r), len(in.Fields))
		}
		row := make([]float64, len(r))
		for j, v := range r {
			row[j] = math.NaN()
			if v != nil {
				row[j] = *v
			}
		}
		nt.rows = append(nt.rows, row)
	}
	*t = *nt
	return nil
}
