package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_SearchColumnNames(t *testing.T) {
	tests := []struct {
		name     string
		columns  map[string]Strategy
		expected []string
	}{
		{
			name: "ranged columns expand to _from and _to",
			columns: map[string]Strategy{
				"age":    OpenRange,
				"number": ClosedRange,
			},
			expected: []string{"age_from", "age_to", "number_from", "number_to"},
		},
		{
			name: "plain columns pass through",
			columns: map[string]Strategy{
				"name": MatchPartial,
				"area": Including,
				"sex":  MatchFull,
			},
			expected: []string{"area", "name", "sex"},
		},
		{
			name: "mixed",
			columns: map[string]Strategy{
				"name": MatchPartial,
				"age":  OpenRange,
			},
			expected: []string{"age_from", "age_to", "name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sch := newSchema("users", Definition{Columns: tt.columns})
			assert.Equal(t, tt.expected, sch.SearchColumnNames())
		})
	}
}

func TestSchema_AccessorsReturnCopies(t *testing.T) {
	sch := newSchema("users", Definition{
		Columns:      map[string]Strategy{"name": MatchFull},
		DefaultOrder: []string{"name ASC", "id DESC"},
		EagerLoad:    []string{"posts"},
	})

	order := sch.DefaultOrder()
	order[0] = "mutated"
	assert.Equal(t, []string{"name ASC", "id DESC"}, sch.DefaultOrder())

	eager := sch.EagerLoad()
	eager[0] = "mutated"
	assert.Equal(t, []string{"posts"}, sch.EagerLoad())

	columns := sch.Columns()
	columns["name"] = Including
	strat, ok := sch.Strategy("name")
	require.True(t, ok)
	assert.Equal(t, MatchFull, strat)
}

func TestSchema_FinderDefault(t *testing.T) {
	sch := newSchema("users", Definition{Columns: map[string]Strategy{"name": MatchFull}})
	assert.Equal(t, "all", sch.Finder())

	sch = newSchema("users", Definition{
		Columns: map[string]Strategy{"name": MatchFull},
		Finder:  "first",
	})
	assert.Equal(t, "first", sch.Finder())
}
