// Package source loads the case dataset from CSV exports, files and SQL tables.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dimchansky/utfbom"
	"github.com/go-gota/gota/dataframe"

	"github.com/case-dashboard/internal/domain"
)

// DefaultNAValues are the cell values read as null when none are configured
var DefaultNAValues = []string{
	"", "#N/A", "#NA", "N/A", "n/a", "NA", "<NA>", "NaN", "nan", "-NaN", "-nan",
	"NULL", "null", "None",
}

// Decoder turns CSV payloads into a Dataset.
// Header names are matched against the alias table case-insensitively;
// unmatched columns are kept in CaseRecord.Extra.
type Decoder struct {
	aliases  map[string]domain.Attribute
	naValues []string
	naSet    map[string]struct{}
}

// NewDecoder builds a decoder from a header alias table (header -> attribute
// name) and the set of cell values treated as null.
func NewDecoder(columns map[string]string, naValues []string) (*Decoder, error) {
	d := &Decoder{aliases: make(map[string]domain.Attribute)}
	for _, attr := range domain.Attributes {
		d.aliases[string(attr)] = attr
	}
	for header, target := range columns {
		attr, ok := domain.ParseAttribute(target)
		if !ok {
			return nil, fmt.Errorf("column %q maps to unknown attribute %q", header, target)
		}
		d.aliases[normalizeHeader(header)] = attr
	}

	if len(naValues) == 0 {
		naValues = DefaultNAValues
	}
	d.naValues = naValues
	d.naSet = make(map[string]struct{}, len(naValues))
	for _, v := range naValues {
		d.naSet[v] = struct{}{}
	}
	return d, nil
}

// Cell reports whether raw is a non-null value. Values are kept verbatim, so
// "A" and "A " are distinct categories.
func (d *Decoder) Cell(raw string) (string, bool) {
	if _, na := d.naSet[raw]; na {
		return "", false
	}
	return raw, true
}

// Decode reads a CSV payload with a header row.
// An empty payload or a header without rows yields an empty dataset.
func (d *Decoder) Decode(r io.Reader) (domain.Dataset, error) {
	// The spreadsheet export may start with a byte order mark
	reader := csv.NewReader(utfbom.SkipOnly(r))
	records, err := reader.ReadAll()
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) <= 1 {
		return domain.NewDataset([]domain.CaseRecord{}), nil
	}

	records[0] = dedupeHeader(records[0])

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.NaNValues(d.naValues),
	)
	if df.Err != nil {
		return domain.Dataset{}, fmt.Errorf("loading dataframe: %w", df.Err)
	}

	return d.fromDataFrame(df)
}

// fromDataFrame maps each column to its attribute setter, or to Extra when
// the header matches no attribute
func (d *Decoder) fromDataFrame(df dataframe.DataFrame) (domain.Dataset, error) {
	nrows := df.Nrow()
	out := make([]domain.CaseRecord, nrows)

	assigned := make(map[domain.Attribute]bool)
	for _, name := range df.Names() {
		col := df.Col(name)
		if col.Err != nil {
			return domain.Dataset{}, fmt.Errorf("reading column %q: %w", name, col.Err)
		}

		attr, known := d.aliases[normalizeHeader(name)]
		if known && assigned[attr] {
			known = false
		}
		if known {
			assigned[attr] = true
		}

		for i := 0; i < nrows; i++ {
			elem := col.Elem(i)
			if elem.IsNA() {
				if known {
					out[i].Set(attr, "", false)
				}
				continue
			}
			value, ok := d.Cell(elem.String())
			switch {
			case known:
				out[i].Set(attr, value, ok)
			case ok:
				if out[i].Extra == nil {
					out[i].Extra = make(map[string]string)
				}
				out[i].Extra[name] = value
			}
		}
	}

	return domain.NewDataset(out), nil
}

// dedupeHeader renames repeated column names to name.1, name.2, ... so the
// first occurrence keeps its name. The dataframe loader would otherwise
// rename every copy, including the first.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	next := make(map[string]int)
	for i, name := range header {
		candidate := name
		for seen[candidate] {
			next[name]++
			candidate = fmt.Sprintf("%s.%d", name, next[name])
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// wrapUnavailable tags a load failure with the source name
func wrapUnavailable(source string, err error) error {
	var unavailable *domain.DataUnavailableError
	if errors.As(err, &unavailable) {
		return err
	}
	return domain.NewDataUnavailableError(source, err)
}
