package excel

// RawRowData represents a row of raw spreadsheet data as header -> cell pairs
type RawRowData map[string]string

// ExcelData represents the complete tabular dataset
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether a header matches name, ignoring case and surrounding space.
func (d *ExcelData) HasColumn(name string) bool {
	_, ok := d.column(name)
	return ok
}

// column resolves name to the header spelling used in the file.
func (d *ExcelData) column(name string) (string, bool) {
	for _, h := range d.Headers {
		if normalizeHeader(h) == normalizeHeader(name) {
			return h, true
		}
	}
	return "", false
}
