package app

import (
	"log"
	"strings"

	"gomediate/domain/core"
	"gomediate/domain/ratings"
	"gomediate/ports"
)

// LoadTable reads the source and types it against the schema.
func LoadTable(source ports.TabularSource, schema ratings.Schema) (*ratings.RawTable, *ratings.Table, error) {
	raw, err := source.Read()
	if err != nil {
		return nil, nil, err
	}
	tbl, err := ratings.ParseTable(raw, schema)
	if err != nil {
		return nil, nil, err
	}
	if len(tbl.MissingColumns) > 0 {
		names := make([]string, len(tbl.MissingColumns))
		for i, f := range tbl.MissingColumns {
			names[i] = f.String()
		}
		log.Printf("[Loader] optional columns absent, fields all-missing: %s", strings.Join(names, ", "))
	}
	return raw, tbl, nil
}

// modelingFields are the optional columns estimation cannot run without.
// The parser degrades them to missing values; the services refuse instead.
func modelingFields() []ratings.Field {
	return []ratings.Field{
		ratings.FieldApprovalFY,
		ratings.FieldClosingFY,
		ratings.FieldVolume,
		ratings.FieldFCS,
	}
}

func requireColumns(tbl *ratings.Table, fields ...ratings.Field) error {
	var missing []string
	for _, f := range fields {
		if !tbl.HasColumn(f) {
			missing = append(missing, f.String())
		}
	}
	if len(missing) > 0 {
		return core.NewMissingColumnsError(missing)
	}
	return nil
}
