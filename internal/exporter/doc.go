// Package exporter renders a record view back to CSV text for
// re-export from the dashboard table. The column subset, header row,
// and always-quoted string fields are a fixed contract with the table
// widget and with external spreadsheet tools.
package exporter
