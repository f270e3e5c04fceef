package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
)

// Formatter writes command results either as aligned text or as JSON.
type Formatter struct {
	Writer   io.Writer
	JSONMode bool
}

// Field is one labelled value of a KeyValue block.
type Field struct {
	Key   string
	Value string
}

func New(w io.Writer, jsonMode bool) *Formatter {
	return &Formatter{
		Writer:   w,
		JSONMode: jsonMode,
	}
}

// Table renders rows under headers. In JSON mode each row becomes an object
// keyed by header.
func (f *Formatter) Table(headers []string, rows [][]string) error {
	if f.JSONMode {
		return f.tableAsJSON(headers, rows)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return err
	}

	separators := make([]string, len(headers))
	for i, h := range headers {
		separators[i] = strings.Repeat("-", len(h))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(separators, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func (f *Formatter) tableAsJSON(headers []string, rows [][]string) error {
	result := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				obj[header] = row[i]
			} else {
				obj[header] = ""
			}
		}
		result = append(result, obj)
	}
	return f.JSON(result)
}

// KeyValue renders a single record as "Key: value" lines, or as one JSON
// object in JSON mode.
func (f *Formatter) KeyValue(fields []Field) error {
	if f.JSONMode {
		obj := make(map[string]string, len(fields))
		for _, field := range fields {
			obj[field.Key] = field.Value
		}
		return f.JSON(obj)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 0, 1, ' ', 0)
	for _, field := range fields {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", field.Key, field.Value); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Print writes data as indented JSON in JSON mode and with %v otherwise.
func (f *Formatter) Print(data any) error {
	if f.JSONMode {
		return f.JSON(data)
	}
	_, err := fmt.Fprintf(f.Writer, "%v\n", data)
	return err
}

// JSON writes data as indented JSON regardless of mode.
func (f *Formatter) JSON(data any) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Amount formats a monetary value with two decimals, followed by the
// currency code when one is given.
func Amount(v float64, currency string) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// Rate formats an exchange rate with four decimals.
func Rate(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}
