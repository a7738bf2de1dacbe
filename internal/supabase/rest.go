package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Query describes a PostgREST read.
type Query struct {
	Select  string
	Filters url.Values // column -> "op.value", e.g. "id" -> "eq.42"
	Order   string     // e.g. "captured_at.desc"
	Limit   int
}

func (q Query) values() url.Values {
	v := url.Values{}
	for k, vals := range q.Filters {
		for _, val := range vals {
			v.Add(k, val)
		}
	}
	if q.Select != "" {
		v.Set("select", q.Select)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Eq builds an equality filter for Query.Filters.
func Eq(column, value string) url.Values {
	return url.Values{column: {"eq." + value}}
}

// Select reads rows of table into out (a pointer to a slice).
func (c *Client) Select(ctx context.Context, token, table string, q Query, out any) error {
	return c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/rest/v1/" + table,
		query:   q.values(),
		token:   token,
		jsonOut: out,
	})
}

// Insert adds row to table. When out is non-nil the inserted rows are
// returned, projected to columns.
func (c *Client) Insert(ctx context.Context, token, table string, row any, columns string, out any) error {
	q := url.Values{}
	h := http.Header{}
	if out != nil {
		h.Set("Prefer", "return=representation")
		if columns != "" {
			q.Set("select", columns)
		}
	} else {
		h.Set("Prefer", "return=minimal")
	}
	return c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/rest/v1/" + table,
		query:   q,
		token:   token,
		header:  h,
		jsonIn:  row,
		jsonOut: out,
	})
}

// Upsert inserts row or merges it into the existing row matching onConflict.
func (c *Client) Upsert(ctx context.Context, token, table, onConflict string, row any) error {
	h := http.Header{}
	h.Set("Prefer", "resolution=merge-duplicates,return=minimal")
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/" + table,
		query:  url.Values{"on_conflict": {onConflict}},
		token:  token,
		header: h,
		jsonIn: row,
	})
}

// Update patches the rows matched by filters and decodes the affected rows,
// projected to columns, into out.
func (c *Client) Update(ctx context.Context, token, table string, filters url.Values, patch any, columns string, out any) error {
	q := Query{Filters: filters, Select: columns}.values()
	h := http.Header{}
	h.Set("Prefer", "return=representation")
	return c.do(ctx, request{
		method:  http.MethodPatch,
		path:    "/rest/v1/" + table,
		query:   q,
		token:   token,
		header:  h,
		jsonIn:  patch,
		jsonOut: out,
	})
}
