package dataclient

import (
	"net/url"
	"strconv"
	"strings"
)

// Query accumulates PostgREST-style filter parameters:
// select=cols, col=eq.value, price=gte.N, id=in.(1,2,3), order=col.desc.
type Query struct {
	vals url.Values
}

// Select starts a query with the given column projection.
func Select(cols string) Query {
	q := Query{vals: url.Values{}}
	q.vals.Set("select", cols)
	return q
}

// Where starts a filter-only query (updates and deletes).
func Where() Query {
	return Query{vals: url.Values{}}
}

func (q Query) Eq(col, value string) Query {
	q.vals.Add(col, "eq."+value)
	return q
}

// Gte and Lte use Add so both bounds of a range land on the same column.
func (q Query) Gte(col, value string) Query {
	q.vals.Add(col, "gte."+value)
	return q
}

func (q Query) Lte(col, value string) Query {
	q.vals.Add(col, "lte."+value)
	return q
}

func (q Query) In(col string, values []string) Query {
	q.vals.Add(col, "in.("+strings.Join(values, ",")+")")
	return q
}

func (q Query) OrderDesc(col string) Query {
	q.vals.Set("order", col+".desc")
	return q
}

func (q Query) OrderAsc(col string) Query {
	q.vals.Set("order", col+".asc")
	return q
}

// Values returns the accumulated parameters.
func (q Query) Values() url.Values {
	return q.vals
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
