package core

// Column names the core reads. Every other column is carried through verbatim
// for display (Label, Format, Catalog#, condition grades, notes, date added).
const (
	ColArtist           = "Artist"
	ColTitle            = "Title"
	ColReleased         = "Released"
	ColCollectionFolder = "CollectionFolder"
	ColLabel            = "Label"
	ColFormat           = "Format"
	ColCatalog          = "Catalog#"
	ColMediaCondition   = "Collection Media Condition"
	ColSleeveCondition  = "Collection Sleeve Condition"
	ColNotes            = "Collection Notes"
	ColDateAdded        = "Date Added"
)

// UncategorizedFolder is substituted when a record has no CollectionFolder.
const UncategorizedFolder = "Uncategorized"

// MissingYear is the sort key for records without a numeric release year.
const MissingYear = 9999

// Header is the ordered list of trimmed column names from the first CSV line.
// Names are not required to be unique; a repeated name keeps the value of its
// last occurrence when a Record is built.
type Header []string

// Record is one parsed data row keyed by header column name.
// Records are treated as immutable once they are stored.
type Record map[string]string

// Get returns the raw value of a column, or "" if the column is absent.
func (r Record) Get(col string) string {
	return r[col]
}

// Artist returns the Artist column.
func (r Record) Artist() string { return r[ColArtist] }

// Title returns the Title column.
func (r Record) Title() string { return r[ColTitle] }

// Released returns the raw Released column (free text, may be empty).
func (r Record) Released() string { return r[ColReleased] }

// Folder returns the collection folder, or UncategorizedFolder when the
// column is missing or empty.
func (r Record) Folder() string {
	if f := r[ColCollectionFolder]; f != "" {
		return f
	}
	return UncategorizedFolder
}

// Year returns the numeric release year used for ordering.
// See parseYear for the accepted forms.
func (r Record) Year() int {
	return parseYear(r.Released())
}

// parseYear reads a leading integer the way a lenient year field is usually
// written: optional surrounding whitespace, an optional sign, then digits.
// Trailing text is ignored ("1973 (UK)" is 1973). No digits, or a value of
// zero, yields MissingYear.
func parseYear(s string) int {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}

	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	start := i
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		// Clamp absurd inputs instead of overflowing.
		if n < 1_000_000_000 {
			n = n*10 + int(s[i]-'0')
		}
		i++
	}
	if i == start || n == 0 {
		return MissingYear
	}
	if neg {
		return -n
	}
	return n
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
