package querybuilder

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Conflict renders the ON CONFLICT tail of an insert. With DoNothing unset,
// every model column except Target and Keep is overwritten from EXCLUDED;
// Coalesce columns keep the stored value when the new one is NULL.
type Conflict struct {
	Target    []string
	DoNothing bool
	Keep      []string
	Coalesce  []string
	Returning string
}

// InsertModel builds an INSERT from the exported db-tagged fields of model.
// A nil conflict renders a plain insert.
func InsertModel(table string, model any, conflict *Conflict) (string, []any, error) {
	if strings.TrimSpace(table) == "" {
		return "", nil, errors.New("insert table is required")
	}
	cols, vals, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}

	var w sqlWriter
	w.WriteString("INSERT INTO " + table + " (")
	w.join(cols)
	w.WriteString(") VALUES (")
	for i, v := range vals {
		if i > 0 {
			w.WriteString(", ")
		}
		w.bind(v)
	}
	w.WriteString(")")

	if conflict != nil {
		if err := conflict.write(&w, table, cols); err != nil {
			return "", nil, err
		}
	}
	return w.String(), w.args, nil
}

func (c *Conflict) write(w *sqlWriter, table string, cols []string) error {
	if len(c.Target) == 0 {
		return errors.New("conflict target is required")
	}
	w.WriteString(" ON CONFLICT (")
	w.join(c.Target)
	w.WriteString(")")

	if c.DoNothing {
		w.WriteString(" DO NOTHING")
	} else {
		updates := make([]string, 0, len(cols))
		for _, col := range cols {
			if slices.Contains(c.Target, col) || slices.Contains(c.Keep, col) {
				continue
			}
			if slices.Contains(c.Coalesce, col) {
				updates = append(updates, fmt.Sprintf("%s = COALESCE(EXCLUDED.%s, %s.%s)", col, col, table, col))
				continue
			}
			updates = append(updates, col+" = EXCLUDED."+col)
		}
		if len(updates) == 0 {
			return errors.New("conflict update has no columns")
		}
		w.WriteString(" DO UPDATE SET ")
		w.join(updates)
	}

	if c.Returning != "" {
		w.WriteString(" RETURNING " + c.Returning)
	}
	return nil
}

func modelColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer && !value.IsNil() {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a non-nil struct, got %T", model)
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if col = strings.TrimSpace(col); col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model %s has no db columns", typ.Name())
	}
	return cols, vals, nil
}
