package core

import "strings"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ParseOrdering parses a comma separated list of fields, "-" prefixed for descending order.
// eg: "last_name,-created_at"
func ParseOrdering(raw string) []DBOrdering {
	var orderings []DBOrdering
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = strings.TrimSpace(field[1:]) // drop "-"
		}
		if field == "" {
			continue
		}
		orderings = append(orderings, DBOrdering{Field: field, Ascending: !descending})
	}
	return orderings
}

// CleanOrdering only keeps the orderings on `allowed` fields and maps them to their column names.
// Orderings are interpolated in SQL queries: never skip this step for user input.
func CleanOrdering(orderings []DBOrdering, allowed map[string]string) []DBOrdering {
	cleaned := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if col, ok := allowed[ord.Field]; ok {
			cleaned = append(cleaned, DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	return cleaned
}

// WithTieBreaker appends an ascending order on the unique `field` unless ordering already uses it.
// Rows sharing every other key then come back in the same order on each page.
func WithTieBreaker(ordering []DBOrdering, field string) []DBOrdering {
	for _, ord := range ordering {
		if ord.Field == field {
			return ordering
		}
	}
	out := make([]DBOrdering, 0, len(ordering)+1)
	out = append(out, ordering...)
	return append(out, DBOrdering{Field: field, Ascending: true})
}
