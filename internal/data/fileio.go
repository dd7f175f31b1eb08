package data

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadFile loads observations from a whitespace-delimited text file.
// Every line carries D+1 fields, the D input coordinates followed by the
// observed value; D is inferred from the first line. File-borne
// observations all belong to output index zero.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	defer f.Close()

	var ds *Dataset
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if ds == nil {
			if len(fields) < 2 {
				return nil, fmt.Errorf("data: %s:%d: need at least one input and one output field", path, line)
			}
			ds, err = New(len(fields) - 1)
			if err != nil {
				return nil, err
			}
		} else if len(fields) != ds.dim+1 {
			return nil, fmt.Errorf("data: %s:%d: expected %d fields, got %d",
				path, line, ds.dim+1, len(fields))
		}

		vals := make([]float64, len(fields))
		for i, field := range fields {
			vals[i], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("data: %s:%d: %w", path, line, err)
			}
		}
		ds.data = append(ds.data, Datum{X: vals[:ds.dim], Y: vals[ds.dim]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	if ds == nil {
		return nil, fmt.Errorf("data: %s: empty file", path)
	}
	if ds.Len() > 0 {
		ds.pmax = 0
	}

	// Bulk-loaded lines arrive in file order.
	if !ds.sorted() {
		ds.Sort()
	}
	return ds, nil
}

// WriteFile writes the observations to a text file in the same layout
// ReadFile accepts. Output indices are not written.
func (ds *Dataset) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := range ds.data {
		for d := 0; d < ds.dim; d++ {
			fmt.Fprintf(w, "%e ", ds.data[i].X[d])
		}
		fmt.Fprintf(w, "%e\n", ds.data[i].Y)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	return nil
}
