// Package roster models the two attendee record sets, the master
// registration roster (NLC) and the session-signup export, as ordered
// CSV-backed tables. Column names are a contract with the downstream
// loader and must be preserved byte for byte.
package roster

import "strings"

// Engine-owned columns.
const (
	ColID             = "id"
	ColMatchType      = "match_type"
	ColMatchBy        = "match_by"
	ColMatchByComment = "match_by_comment"
	ColNLCID          = "nlc_id"
	ColExportID       = "export_id"
)

// Master (NLC) roster source columns.
const (
	MasterFirst = "Registrant - Person's Name - First Name"
	MasterLast  = "Registrant - Person's Name - Last Name"
	MasterEmail = "Registrant - Email"
)

// Export source columns.
const (
	ExportFirst        = "First Name"
	ExportLast         = "Last Name"
	ExportContactID    = "Flocknote ID"
	ExportConfirmation = "Confirmation Number"
	ExportGenderFlag   = "Gender Identity, Homosexuality, and Same Sex Attraction Dialogue"
	ExportContraFlag   = "Contraception/IVF/Abortion Dialogue"
	ExportImmigFlag    = "Immigration Dialogue"
	ExportSignedUpDate = "Signed Up Date"
)

// Denormalized export columns carried on matched master records.
const (
	DenormPrefix       = "export_"
	DenormContactID    = "export_Flocknote_ID"
	DenormFirst        = "export_First_Name"
	DenormLast         = "export_Last_Name"
	DenormConfirmation = "export_Confirmation_Number"
	DenormGenderFlag   = "export_Gender_Identity_Dialogue"
	DenormContraFlag   = "export_Contraception_Dialogue"
	DenormImmigFlag    = "export_Immigration_Dialogue"
	DenormSignedUpDate = "export_Signed_Up_Date"
)

// Match classifications.
const (
	MatchTypeExact    = "exact_match"
	MatchTypePossible = "possible_match"
)

// MatchColumns are the engine-owned annotation columns on the master roster.
var MatchColumns = []string{ColMatchType, ColMatchByComment}

// DenormColumns lists the denormalized export columns in output order.
var DenormColumns = []string{
	DenormContactID,
	DenormFirst,
	DenormLast,
	DenormConfirmation,
	DenormGenderFlag,
	DenormContraFlag,
	DenormImmigFlag,
	DenormSignedUpDate,
}

// DenormSource maps each denormalized master column to the export column
// it is copied from.
var DenormSource = map[string]string{
	DenormContactID:    ExportContactID,
	DenormFirst:        ExportFirst,
	DenormLast:         ExportLast,
	DenormConfirmation: ExportConfirmation,
	DenormGenderFlag:   ExportGenderFlag,
	DenormContraFlag:   ExportContraFlag,
	DenormImmigFlag:    ExportImmigFlag,
	DenormSignedUpDate: ExportSignedUpDate,
}

// Record is a single row, addressed by column name. Values not covered
// by the owning table's header set are ignored on write.
type Record struct {
	values map[string]string
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Get returns the raw cell value for a column, or "" when absent.
func (r *Record) Get(column string) string {
	return r.values[column]
}

// Trimmed returns the cell value with surrounding whitespace removed.
func (r *Record) Trimmed(column string) string {
	return strings.TrimSpace(r.values[column])
}

// Set stores a cell value.
func (r *Record) Set(column, value string) {
	r.values[column] = value
}

// SetDefault stores a value only when the column has none yet.
func (r *Record) SetDefault(column, value string) {
	if _, ok := r.values[column]; !ok {
		r.values[column] = value
	}
}

// Has reports whether the record carries any value for a column.
func (r *Record) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	values := make(map[string]string, len(r.values))
	for k, v := range r.values {
		values[k] = v
	}
	return &Record{values: values}
}

// Table is an ordered record set with a fixed header row. Row order is
// significant: the companion resolver depends on the original export
// order, and index construction preserves insertion order.
type Table struct {
	Headers []string
	Rows    []*Record
}

// NewTable creates an empty table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: append([]string(nil), headers...)}
}

// HasHeader reports whether the table carries the given column.
func (t *Table) HasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// PrependHeader inserts a column at the front of the header row if not
// already present.
func (t *Table) PrependHeader(name string) {
	if t.HasHeader(name) {
		return
	}
	t.Headers = append([]string{name}, t.Headers...)
}

// AppendHeaders adds columns at the end of the header row, skipping any
// already present. Existing columns the engine does not own are never
// removed or reordered.
func (t *Table) AppendHeaders(names ...string) {
	for _, name := range names {
		if !t.HasHeader(name) {
			t.Headers = append(t.Headers, name)
		}
	}
}

// Append adds a row to the table.
func (t *Table) Append(r *Record) {
	t.Rows = append(t.Rows, r)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
