// Package content defines the typed table contract shared by every content
// row (profile, projects, skills, certifications) and the change events the
// store emits when a row is written.
package content

import (
	"context"
	"errors"
)

const (
	TableProfile        = "profile"
	TableProjects       = "projects"
	TableSkills         = "skills"
	TableCertifications = "certifications"
)

// Tables lists every content table in a stable order.
var Tables = []string{TableProfile, TableProjects, TableSkills, TableCertifications}

var ErrUnknownColumn = errors.New("unknown column")

// Record is implemented by value by every row type. T is the row type
// itself, so WithKey/WithImage return modified copies.
type Record[T any] interface {
	Key() int64
	WithKey(id int64) T
	Image() string
	WithImage(url string) T
	Validate() error
}

type Order struct {
	Column string
	Desc   bool
}

// Query is a select over one table: equality filters, ordering, limit.
// Column names are checked against the table's column list by the store.
type Query struct {
	Eq    map[string]any
	Order []Order
	Limit uint64
}

func (q Query) WithEq(column string, value any) Query {
	eq := make(map[string]any, len(q.Eq)+1)
	for k, v := range q.Eq {
		eq[k] = v
	}
	eq[column] = value
	q.Eq = eq
	return q
}

// Table is the generic table client: select, insert, update, delete and
// upsert keyed on the integer primary key.
type Table[T any] interface {
	Name() string
	Select(ctx context.Context, q Query) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Insert(ctx context.Context, row T) (T, error)
	Update(ctx context.Context, id int64, row T) (T, error)
	Delete(ctx context.Context, id int64) error
	Upsert(ctx context.Context, row T) (T, error)
}
