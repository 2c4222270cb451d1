package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryOption mutates a query before it is executed.
type QueryOption func(*gorm.DB) *gorm.DB

type Operator string

const (
	EQ  Operator = "="
	NEQ Operator = "<>"
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
	IN  Operator = "IN"
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// ApplyOperator adds a WHERE clause for each condition.
// Unknown operators are ignored.
func ApplyOperator(conds ...Condition) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range conds {
			switch c.Operator {
			case EQ, NEQ, GT, GTE, LT, LTE:
				db = db.Where(fmt.Sprintf("%s %s ?", c.Field, c.Operator), c.Value)
			case IN:
				db = db.Where(fmt.Sprintf("%s IN ?", c.Field), c.Value)
			}
		}
		return db
	}
}

type QuerySortBy struct {
	SortBy  string
	OrderBy string
	Allow   map[string]bool
}

// WithSortBy orders by SortBy when it is in Allow, falling back to created_at.
// Calling it more than once appends tie-breakers.
func WithSortBy(s QuerySortBy) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		column := "created_at"
		if s.SortBy != "" && s.Allow[s.SortBy] {
			column = s.SortBy
		}

		return db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: column},
			Desc:   strings.EqualFold(s.OrderBy, "desc"),
		})
	}
}

func WithLimit(limit int) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	}
}
