package cif

import (
	"github.com/cockroachdb/errors"
)

var ErrForeignKey = errors.New("foreign key does not match exactly one row")

// Category is one _name. For items, every field has one value. For a
// loop, every field has one value per row.
type Category struct {
	Fields []string
	Loop   bool
	Values map[string][]string
}

func newCategory(loop bool) *Category {
	return &Category{Loop: loop, Values: make(map[string][]string)}
}

// Len is the number of rows. Items count as one row.
func (c *Category) Len() int {
	if len(c.Fields) == 0 {
		return 0
	}
	return len(c.Values[c.Fields[0]])
}

// Scalar returns the first value of a field.
func (c *Category) Scalar(field string) (string, bool) {
	v := c.Values[field]
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Column returns all the values of a field.
func (c *Category) Column(field string) ([]string, bool) {
	v, ok := c.Values[field]
	return v, ok
}

// Row returns row i as field to value.
func (c *Category) Row(i int) map[string]string {
	ret := make(map[string]string, len(c.Fields))
	for _, f := range c.Fields {
		ret[f] = c.Values[f][i]
	}
	return ret
}

// RowByID finds the one row whose id field is id.
func (c *Category) RowByID(id string) (map[string]string, error) {
	ids, ok := c.Values["id"]
	if !ok {
		return nil, errors.Wrap(ErrForeignKey, "no id field")
	}
	found := -1
	for i, v := range ids {
		if v != id {
			continue
		}
		if found >= 0 {
			return nil, errors.Wrapf(ErrForeignKey, "id %s in rows %d and %d", id, found+1, i+1)
		}
		found = i
	}
	if found < 0 {
		return nil, errors.Wrapf(ErrForeignKey, "no row with id %s", id)
	}
	return c.Row(found), nil
}

// Dataset is one data_ block. Names has the categories in the order
// they were seen.
type Dataset struct {
	Names      []string
	Categories map[string]*Category
}

func newDataset() *Dataset {
	return &Dataset{Categories: make(map[string]*Category)}
}

// Category returns nil if there is no such category.
func (ds *Dataset) Category(name string) *Category { return ds.Categories[name] }

// AddItem sets one item. The category must not be a loop and the field
// must be new.
func (ds *Dataset) AddItem(cat, field, value string) error {
	c, ok := ds.Categories[cat]
	if !ok {
		c = newCategory(false)
		ds.Categories[cat] = c
		ds.Names = append(ds.Names, cat)
	}
	if c.Loop {
		return errors.Newf("%s is a loop, not a set of items", cat)
	}
	if _, ok := c.Values[field]; ok {
		return errors.Newf("%s.%s given twice", cat, field)
	}
	c.Fields = append(c.Fields, field)
	c.Values[field] = []string{value}
	return nil
}

// AddLoop adds a whole loop. cols[i] holds the values of fields[i].
func (ds *Dataset) AddLoop(cat string, fields []string, cols [][]string) error {
	if _, ok := ds.Categories[cat]; ok {
		return errors.Newf("category %s given twice", cat)
	}
	if len(fields) != len(cols) {
		return errors.Newf("%s: %d fields, %d columns", cat, len(fields), len(cols))
	}
	c := newCategory(true)
	for i, f := range fields {
		if _, ok := c.Values[f]; ok {
			return errors.Newf("%s.%s given twice", cat, f)
		}
		if i > 0 && len(cols[i]) != len(cols[0]) {
			return errors.Newf("%s: columns of different length", cat)
		}
		c.Fields = append(c.Fields, f)
		c.Values[f] = cols[i]
	}
	ds.Categories[cat] = c
	ds.Names = append(ds.Names, cat)
	return nil
}

// Data is a whole file. The dataset before any data_ line is called "".
type Data struct {
	Names    []string
	Datasets map[string]*Dataset
}

func NewData() *Data {
	return &Data{Datasets: make(map[string]*Dataset)}
}

// Dataset returns the named dataset, or nil.
func (d *Data) Dataset(name string) *Dataset { return d.Datasets[name] }

// AddDataset adds an empty dataset. name is the full label, like
// "data_1ABC", or "".
func (d *Data) AddDataset(name string) (*Dataset, error) {
	if _, ok := d.Datasets[name]; ok {
		return nil, errors.Newf("data block %q given twice", name)
	}
	ds := newDataset()
	d.Datasets[name] = ds
	d.Names = append(d.Names, name)
	return ds, nil
}
