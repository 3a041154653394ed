package models

// Row is one record read from a tabular source.
type Row struct {
	Line   int
	Fields []string
}
