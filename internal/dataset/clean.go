package dataset

import (
	"fmt"
	"math"
)

// CoerceNumeric converts the named columns to numeric in place. Cells that do
// not parse become missing.
func (t *Table) CoerceNumeric(names ...string) error {
	for _, n := range names {
		if _, ok := t.Column(n); !ok {
			return fmt.Errorf("coerce: %w: %s", ErrColumnNotFound, n)
		}
	}
	for _, n := range names {
		c, _ := t.Column(n)
		if c.Numeric {
			continue
		}
		vals := make([]float64, len(c.Raw))
		for i, s := range c.Raw {
			v, ok := parseCell(s, t.opt)
			if !ok {
				v = math.NaN()
			}
			vals[i] = v
		}
		c.Values = vals
		c.Numeric = true
	}
	return nil
}

// DropMissing removes rows with a missing value in any column and returns the
// number of rows removed.
func (t *Table) DropMissing() int {
	mask := make([]bool, t.rows)
	kept := 0
	for i := range mask {
		mask[i] = true
		for _, c := range t.cols {
			if c.Missing(i) {
				mask[i] = false
				break
			}
		}
		if mask[i] {
			kept++
		}
	}
	dropped := t.rows - kept
	if dropped > 0 {
		t.keep(mask)
	}
	return dropped
}

// DropColumns removes the named columns, ignoring names the table does not have.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	cols := t.cols[:0]
	for _, c := range t.cols {
		if !drop[c.Name] {
			cols = append(cols, c)
		}
	}
	t.cols = cols
	t.index = make(map[string]int, len(cols))
	for i, c := range cols {
		t.index[c.Name] = i
	}
}

// FilterAbove returns a new table with the rows whose value in col is strictly
// greater than threshold. Missing values never pass.
func (t *Table) FilterAbove(col string, threshold float64) (*Table, error) {
	c, err := t.numeric(col)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	mask := make([]bool, t.rows)
	for i, v := range c.Values {
		mask[i] = v > threshold
	}
	out := t.Clone()
	out.keep(mask)
	return out, nil
}

// Select returns a new table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	out := &Table{
		Name:    t.Name,
		Sources: append([]Source(nil), t.Sources...),
		opt:     t.opt,
		index:   make(map[string]int, len(names)),
		rows:    t.rows,
	}
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, fmt.Errorf("select: %w: %s", ErrColumnNotFound, n)
		}
		nc := out.addColumn(n)
		nc.Raw = append([]string(nil), c.Raw...)
		if c.Numeric {
			nc.Values = append([]float64(nil), c.Values...)
			nc.Numeric = true
		}
	}
	return out, nil
}
