package core

import "github.com/google/uuid"

// FilePlan is the pending write set of one validated file. Plans are built
// for every file of a batch before anything is committed.
type FilePlan struct {
	File          string
	SeriesID      uuid.UUID
	SeriesCode    int
	Instructions  []UpsertInstruction
	Periods       []int
	RowsProcessed int
}

// PlanFile resolves every row of a parsed file and turns it into upsert
// instructions for series. Each instruction replaces the whole values map of
// its observation; entities absent from the file are left untouched.
//
// If any row names an entity the resolver cannot match, the file fails as a
// whole with an ErrUnresolvedEntity BatchError listing up to
// MaxUnresolvedNames distinct names.
func PlanFile(file DecodedFile, series Series, table *Table, resolver *Resolver) (*FilePlan, error) {
	plan := &FilePlan{
		File:          file.Name,
		SeriesID:      series.ID,
		SeriesCode:    series.Code,
		Instructions:  make([]UpsertInstruction, 0, len(table.Rows)),
		Periods:       append([]int(nil), table.Periods...),
		RowsProcessed: len(table.Rows),
	}

	var unresolved []string
	seen := make(map[string]bool)

	for _, row := range table.Rows {
		entity, ok := resolver.Resolve(row.EntityName)
		if !ok {
			if !seen[row.EntityName] {
				seen[row.EntityName] = true
				unresolved = append(unresolved, row.EntityName)
			}
			continue
		}
		plan.Instructions = append(plan.Instructions, UpsertInstruction{
			SeriesID: series.ID,
			EntityID: entity.ID,
			Values:   copyValues(row.Values),
		})
	}

	if len(unresolved) > 0 {
		err := &BatchError{
			Kind: ErrUnresolvedEntity,
			File: file.Name,
			Code: file.Code,
		}
		if len(unresolved) > MaxUnresolvedNames {
			err.Names = unresolved[:MaxUnresolvedNames]
			err.More = true
		} else {
			err.Names = unresolved
		}
		return nil, err
	}

	return plan, nil
}

// Instructions flattens the plans of a batch, in file order, into the single
// write set that is committed together.
func Instructions(plans []*FilePlan) []UpsertInstruction {
	n := 0
	for _, p := range plans {
		n += len(p.Instructions)
	}
	all := make([]UpsertInstruction, 0, n)
	for _, p := range plans {
		all = append(all, p.Instructions...)
	}
	return all
}

func copyValues(values map[int]*float64) map[int]*float64 {
	out := make(map[int]*float64, len(values))
	for k, v := range values {
		if v == nil {
			out[k] = nil
			continue
		}
		f := *v
		out[k] = &f
	}
	return out
}
