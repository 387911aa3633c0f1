package sweep

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/san-kum/gwdetect/internal/power"
)

// Table is a results table: one row per scenario, in input order.
type Table []power.Result

// Get returns the row for a run identifier.
func (t Table) Get(id string) (power.Result, bool) {
	for _, r := range t {
		if r.ID == id {
			return r, true
		}
	}
	return power.Result{}, false
}

// Failed returns the rows whose error column is non-empty, preserving
// input order.
func (t Table) Failed() Table {
	var failed Table
	for _, r := range t {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

func csvHeader() []string {
	header := []string{"id"}
	header = append(header, power.FieldNames()...)
	return append(header, "seed", "power", "detected", "nsims", "p_value", "cached", "elapsed_ms", "error")
}

// WriteCSV writes the table with one row per run.
func (t Table) WriteCSV(out io.Writer) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader()); err != nil {
		return err
	}

	for _, r := range t {
		row := []string{r.ID}
		for _, name := range power.FieldNames() {
			v, err := r.Field(name)
			if err != nil {
				return err
			}
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		row = append(row,
			strconv.FormatInt(r.Seed, 10),
			strconv.FormatFloat(r.Power, 'f', 2, 64),
			strconv.Itoa(r.Detected),
			strconv.Itoa(r.NSims),
			strconv.FormatFloat(r.PValue, 'g', 6, 64),
			strconv.FormatBool(r.Cached),
			strconv.FormatFloat(float64(r.Elapsed)/float64(time.Millisecond), 'f', 3, 64),
			r.Err,
		)
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// SaveCSV writes the table to a file.
func (t Table) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return t.WriteCSV(f)
}

// WriteJSON writes the table as indented JSON.
func (t Table) WriteJSON(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// ReadCSV parses a table previously written by WriteCSV.
func ReadCSV(in io.Reader) (Table, error) {
	r := csv.NewReader(in)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sweep: empty results file")
	}

	want := len(csvHeader())
	if len(records[0]) != want {
		return nil, fmt.Errorf("sweep: results file has %d columns, want %d", len(records[0]), want)
	}

	table := make(Table, 0, len(records)-1)
	for _, rec := range records[1:] {
		res, err := parseRow(rec)
		if err != nil {
			return nil, err
		}
		table = append(table, res)
	}
	return table, nil
}

func parseRow(rec []string) (power.Result, error) {
	var res power.Result
	res.ID = rec[0]

	fields := power.FieldNames()
	vals := make([]float64, len(fields))
	for i := range fields {
		v, err := strconv.ParseFloat(rec[1+i], 64)
		if err != nil {
			return res, fmt.Errorf("sweep: bad %s for run %q: %w", fields[i], res.ID, err)
		}
		vals[i] = v
	}
	res.InitialConc = vals[0]
	res.TargetConc = vals[1]
	res.Slope = vals[2]
	res.NoiseSD = vals[3]
	res.SamplingYears = vals[4]
	res.SamplesPerYear = vals[5]
	res.ImplementationYears = vals[6]

	off := 1 + len(fields)
	seed, err := strconv.ParseInt(rec[off], 10, 64)
	if err != nil {
		return res, fmt.Errorf("sweep: bad seed for run %q: %w", res.ID, err)
	}
	res.Seed = seed

	if res.Power, err = strconv.ParseFloat(rec[off+1], 64); err != nil {
		return res, fmt.Errorf("sweep: bad power for run %q: %w", res.ID, err)
	}
	if res.Detected, err = strconv.Atoi(rec[off+2]); err != nil {
		return res, fmt.Errorf("sweep: bad detected for run %q: %w", res.ID, err)
	}
	if res.NSims, err = strconv.Atoi(rec[off+3]); err != nil {
		return res, fmt.Errorf("sweep: bad nsims for run %q: %w", res.ID, err)
	}
	if res.PValue, err = strconv.ParseFloat(rec[off+4], 64); err != nil {
		return res, fmt.Errorf("sweep: bad p_value for run %q: %w", res.ID, err)
	}
	if res.Cached, err = strconv.ParseBool(rec[off+5]); err != nil {
		return res, fmt.Errorf("sweep: bad cached for run %q: %w", res.ID, err)
	}
	ms, err := strconv.ParseFloat(rec[off+6], 64)
	if err != nil {
		return res, fmt.Errorf("sweep: bad elapsed_ms for run %q: %w", res.ID, err)
	}
	res.Elapsed = time.Duration(ms * float64(time.Millisecond))
	res.Err = rec[off+7]

	return res, nil
}
