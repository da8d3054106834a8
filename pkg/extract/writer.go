package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteTable emits one output table as CSV. Rows arrive pre-formatted
// in cohort order, so identical inputs always produce byte-identical
// output files.
func WriteTable(w io.Writer, columns []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing output header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing output row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Formatting helpers for nullable cells; nil renders as the empty cell.

func FormatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func FormatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func FormatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
