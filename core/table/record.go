package table

import (
	"fmt"

	"github.com/spf13/cast"
)

// Record is one row of a table: a flat mapping from column keys to values.
// Keys are read verbatim; "membership.type" is a key, not a path.
type Record map[string]interface{}

// Get returns the value stored under key, nil when absent.
func (r Record) Get(key string) interface{} {
	return r[key]
}

// stringify returns the display form of a raw cell value. Only nil is blank: 0 and false are shown.
func stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}
