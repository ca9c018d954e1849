package ports

import "gomediate/domain/ratings"

// TabularSource yields an untyped tabular read of a ratings export.
// Adapters own file formats and sheets; typing against the schema happens
// in the domain via ratings.ParseTable.
type TabularSource interface {
	Read() (*ratings.RawTable, error)
}
