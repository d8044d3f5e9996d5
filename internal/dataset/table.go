// Package dataset holds the in-memory sample table and the loader and
// cleaning steps that build it from simulation result files.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrColumnNotFound is returned when an operation names a column the table lacks.
	ErrColumnNotFound = errors.New("column not found")
	// ErrNotNumeric is returned when a numeric operation targets a text column.
	ErrNotNumeric = errors.New("column is not numeric")
)

// Column is one named column. Raw keeps the cell text as read. Values holds the
// parsed number per row (NaN when missing) and is only set for numeric columns.
type Column struct {
	Name    string
	Raw     []string
	Values  []float64
	Numeric bool
}

// Missing reports whether row i holds no usable value.
func (c *Column) Missing(i int) bool {
	if c.Numeric {
		return math.IsNaN(c.Values[i])
	}
	return isMissing(c.Raw[i])
}

// Source records a file that contributed rows to a table.
type Source struct {
	Path string `yaml:"path"`
	Rate int    `yaml:"rate,omitempty"`
	Rows int    `yaml:"rows"`
}

// Table is a column-oriented sample table: one row per simulation observation.
// Rows have no identity beyond their position.
type Table struct {
	Name    string
	Sources []Source

	opt   LoadOptions
	cols  []*Column
	index map[string]int
	rows  int
}

// FromRecords builds a table from a header row followed by data rows, inferring
// which columns are numeric.
func FromRecords(name string, records [][]string, opt LoadOptions) *Table {
	if len(records) == 0 {
		return &Table{Name: name, opt: opt, index: map[string]int{}}
	}
	t := newTable(name, records[0], opt)
	for _, rec := range records[1:] {
		t.appendRow(rec)
	}
	t.inferTypes()
	return t
}

func newTable(name string, header []string, opt LoadOptions) *Table {
	t := &Table{Name: name, opt: opt, index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		// duplicate headers get a numeric suffix, first occurrence keeps its name
		base, n := h, 1
		for {
			if _, dup := t.index[h]; !dup {
				break
			}
			h = base + "." + strconv.Itoa(n)
			n++
		}
		t.addColumn(h)
	}
	return t
}

func (t *Table) addColumn(name string) *Column {
	c := &Column{Name: name}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, c)
	return c
}

func (t *Table) appendRow(rec []string) {
	for j, c := range t.cols {
		v := ""
		if j < len(rec) {
			v = strings.TrimSpace(rec[j])
		}
		c.Raw = append(c.Raw, v)
	}
	t.rows++
}

// inferTypes marks a column numeric when every non-missing cell parses.
func (t *Table) inferTypes() {
	for _, c := range t.cols {
		vals := make([]float64, len(c.Raw))
		numeric := true
		for i, s := range c.Raw {
			v, ok := parseCell(s, t.opt)
			if !ok {
				numeric = false
				break
			}
			vals[i] = v
		}
		if numeric {
			c.Values = vals
			c.Numeric = true
		} else {
			c.Values = nil
			c.Numeric = false
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.rows == 0 }

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// NumericColumns returns the names of numeric columns in table order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.cols {
		if c.Numeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column. The returned column is owned by the table.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Float returns a copy of the named numeric column.
func (t *Table) Float(name string) ([]float64, error) {
	c, err := t.numeric(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(c.Values))
	copy(out, c.Values)
	return out, nil
}

// Matrix returns the named numeric columns as a rows x len(names) matrix.
func (t *Table) Matrix(names []string) (*mat.Dense, error) {
	if t.rows == 0 || len(names) == 0 {
		return nil, fmt.Errorf("matrix of %d rows x %d columns: table is empty", t.rows, len(names))
	}
	cols := make([]*Column, len(names))
	for j, n := range names {
		c, err := t.numeric(n)
		if err != nil {
			return nil, err
		}
		cols[j] = c
	}
	m := mat.NewDense(t.rows, len(names), nil)
	for j, c := range cols {
		m.SetCol(j, c.Values)
	}
	return m, nil
}

func (t *Table) numeric(name string) (*Column, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	if !c.Numeric {
		return nil, fmt.Errorf("%w: %s", ErrNotNumeric, name)
	}
	return c, nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Name:    t.Name,
		Sources: append([]Source(nil), t.Sources...),
		opt:     t.opt,
		index:   make(map[string]int, len(t.cols)),
		rows:    t.rows,
	}
	for _, c := range t.cols {
		nc := out.addColumn(c.Name)
		nc.Raw = append([]string(nil), c.Raw...)
		if c.Numeric {
			nc.Values = append([]float64(nil), c.Values...)
			nc.Numeric = true
		}
	}
	return out
}

// keep retains the rows whose mask entry is true.
func (t *Table) keep(mask []bool) {
	n := 0
	for _, k := range mask {
		if k {
			n++
		}
	}
	for _, c := range t.cols {
		raw := make([]string, 0, n)
		var vals []float64
		if c.Numeric {
			vals = make([]float64, 0, n)
		}
		for i, k := range mask {
			if !k {
				continue
			}
			raw = append(raw, c.Raw[i])
			if c.Numeric {
				vals = append(vals, c.Values[i])
			}
		}
		c.Raw, c.Values = raw, vals
	}
	t.rows = n
}

// Concat stacks tables row-wise. Columns are the union of all inputs in
// first-seen order; cells a table does not have are missing. A column stays
// numeric only if it is numeric in every input that has it.
func Concat(name string, tables ...*Table) *Table {
	out := &Table{Name: name, index: map[string]int{}}
	first := true
	for _, t := range tables {
		if t == nil {
			continue
		}
		if first {
			out.opt = t.opt
			first = false
		}
		for _, c := range t.cols {
			if !out.Has(c.Name) {
				out.addColumn(c.Name).Numeric = true
			}
		}
	}
	for _, oc := range out.cols {
		for _, t := range tables {
			if t == nil {
				continue
			}
			if c, ok := t.Column(oc.Name); ok && !c.Numeric {
				oc.Numeric = false
			}
		}
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, oc := range out.cols {
			c, ok := t.Column(oc.Name)
			switch {
			case ok:
				oc.Raw = append(oc.Raw, c.Raw...)
				if oc.Numeric {
					oc.Values = append(oc.Values, c.Values...)
				}
			default:
				for i := 0; i < t.rows; i++ {
					oc.Raw = append(oc.Raw, "")
					if oc.Numeric {
						oc.Values = append(oc.Values, math.NaN())
					}
				}
			}
		}
		out.rows += t.rows
		out.Sources = append(out.Sources, t.Sources...)
	}
	return out
}
