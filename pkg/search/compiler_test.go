package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/recordsearch/pkg/schema"
)

// allowAllChecker accepts every column so compilation tests can register
// arbitrary schemas without a backing store.
type allowAllChecker struct{}

func (allowAllChecker) HasColumn(ctx context.Context, typeID, column string) (bool, error) {
	return true, nil
}

func mustSchema(t *testing.T, typeID string, def schema.Definition) *schema.Schema {
	t.Helper()
	reg := schema.NewRegistry(allowAllChecker{})
	require.NoError(t, reg.Register(context.Background(), typeID, def))
	sch, ok := reg.Lookup(typeID)
	require.True(t, ok)
	return sch
}

func TestCompilePartialAndOpenRange(t *testing.T) {
	sch := mustSchema(t, "users", schema.Definition{
		Columns: map[string]schema.Strategy{
			"name": schema.MatchPartial,
			"age":  schema.OpenRange,
		},
	})

	criteria := NewCriteria().Set("name", "Tom").Set("age_from", 22)
	cond, err := Compile(sch, criteria, nil)
	require.NoError(t, err)

	assert.Equal(t, "((name) LIKE ?) AND (? <= (age))", cond.Expr)
	assert.Equal(t, []any{"%Tom%", 22}, cond.Params)
}

func TestCompileClosedRangeSingleBound(t *testing.T) {
	sch := mustSchema(t, "items", schema.Definition{
		Columns: map[string]schema.Strategy{"number": schema.ClosedRange},
	})

	t.Run("lower bound closes on itself", func(t *testing.T) {
		cond, err := Compile(sch, NewCriteria().Set("number_from", 5), nil)
		require.NoError(t, err)
		assert.Equal(t, "(? <= (number)) AND ((number) <= ?)", cond.Expr)
		assert.Equal(t, []any{5, 5}, cond.Params)
	})

	t.Run("upper bound closes on itself", func(t *testing.T) {
		cond, err := Compile(sch, NewCriteria().Set("number_to", 9), nil)
		require.NoError(t, err)
		assert.Equal(t, "(? <= (number)) AND ((number) <= ?)", cond.Expr)
		assert.Equal(t, []any{9, 9}, cond.Params)
	})

	t.Run("both bounds", func(t *testing.T) {
		cond, err := Compile(sch, NewCriteria().Set("number_from", 5).Set("number_to", 9), nil)
		require.NoError(t, err)
		assert.Equal(t, "(? <= (number)) AND ((number) <= ?)", cond.Expr)
		assert.Equal(t, []any{5, 9}, cond.Params)
	})

	t.Run("both bounds blank", func(t *testing.T) {
		cond, err := Compile(sch, NewCriteria().Set("number", []any{nil, ""}), nil)
		require.NoError(t, err)
		assert.True(t, cond.Empty())
		assert.Empty(t, cond.Params)
	})

	t.Run("non-pair value", func(t *testing.T) {
		_, err := Compile(sch, NewCriteria().Set("number", 5), nil)
		assert.True(t, IsInvalidRangeValue(err))
	})
}

func TestCompileOpenRangeSides(t *testing.T) {
	sch := mustSchema(t, "users", schema.Definition{
		Columns: map[string]schema.Strategy{"age": schema.OpenRange},
	})

	tests := []struct {
		name       string
		criteria   *Criteria
		wantExpr   string
		wantParams []any
	}{
		{
			name:       "lower only",
			criteria:   NewCriteria().Set("age_from", 22),
			wantExpr:   "(? <= (age))",
			wantParams: []any{22},
		},
		{
			name:       "upper only",
			criteria:   NewCriteria().Set("age_to", 65),
			wantExpr:   "((age) <= ?)",
			wantParams: []any{65},
		},
		{
			name:       "both sides",
			criteria:   NewCriteria().Set("age_from", 22).Set("age_to", 65),
			wantExpr:   "(? <= (age)) AND ((age) <= ?)",
			wantParams: []any{22, 65},
		},
		{
			name:       "pair supplied directly",
			criteria:   NewCriteria().Set("age", []any{22, 65}),
			wantExpr:   "(? <= (age)) AND ((age) <= ?)",
			wantParams: []any{22, 65},
		},
		{
			name:       "both sides blank",
			criteria:   NewCriteria().Set("age", []any{nil, nil}),
			wantExpr:   "",
			wantParams: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := Compile(sch, tt.criteria, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantExpr, cond.Expr)
			assert.Equal(t, tt.wantParams, cond.Params)
		})
	}

	t.Run("non-pair value", func(t *testing.T) {
		_, err := Compile(sch, NewCriteria().Set("age", "young"), nil)
		assert.True(t, IsInvalidRangeValue(err))
	})
}

func TestCompileIncluding(t *testing.T) {
	sch := mustSchema(t, "shops", schema.Definition{
		Columns: map[string]schema.Strategy{"area": schema.Including},
	})

	cond, err := Compile(sch, NewCriteria().Set("area", []int{1, 2, 3}), nil)
	require.NoError(t, err)

	assert.Equal(t, "((area) IN (?))", cond.Expr)
	require.Len(t, cond.Params, 1)
	assert.Equal(t, []int{1, 2, 3}, cond.Params[0])
}

func TestCompileMatchFull(t *testing.T) {
	sch := mustSchema(t, "users", schema.Definition{
		Columns: map[string]schema.Strategy{"email": schema.MatchFull},
	})

	cond, err := Compile(sch, NewCriteria().Set("email", "tom@example.com"), nil)
	require.NoError(t, err)

	assert.Equal(t, "((email) = ?)", cond.Expr)
	assert.Equal(t, []any{"tom@example.com"}, cond.Params)
}

func TestCompileAliasTarget(t *testing.T) {
	sch := mustSchema(t, "users", schema.Definition{
		Columns: map[string]schema.Strategy{"full_name": schema.MatchPartial},
		Aliases: map[string]string{"full_name": "first_name || ' ' || last_name"},
	})

	cond, err := Compile(sch, NewCriteria().Set("full_name", "Tom"), nil)
	require.NoError(t, err)

	assert.Equal(t, "((first_name || ' ' || last_name) LIKE ?)", cond.Expr)
	assert.Equal(t, []any{"%Tom%"}, cond.Params)
}

func TestCompileSkipsBlankValues(t *testing.T) {
	sch := mustSchema(t, "users", schema.Definition{
		Columns: map[string]schema.Strategy{
			"name":  schema.MatchPartial,
			"email": schema.MatchFull,
		},
	})

	cond, err := Compile(sch, NewCriteria().Set("name", "  ").Set("email", "tom@example.com"), nil)
	require.NoError(t, err)

	assert.Equal(t, "((email) = ?)", cond.Expr)
	assert.Equal(t, []any{"tom@example.com"}, cond.Params)
}

func TestCompileUnknownColumn(t *testing.T) {
	sch := mustSchema(t, "users", schema.Definition{
		Columns: map[string]schema.Strategy{"name": schema.MatchPartial},
	})

	// An unknown key fails even when the other keys are valid, and even
	// when its value is blank.
	_, err := Compile(sch, NewCriteria().Set("name", "Tom").Set("unknown_field", 1), nil)
	require.Error(t, err)
	assert.True(t, IsUnknownSearchColumn(err))
	assert.Contains(t, err.Error(), "unknown_field")

	_, err = Compile(sch, NewCriteria().Set("unknown_field", nil), nil)
	assert.True(t, IsUnknownSearchColumn(err))
}

func TestCompileRawCondition(t *testing.T) {
	sch := mustSchema(t, "users", schema.Definition{
		Columns: map[string]schema.Strategy{"name": schema.MatchPartial},
	})

	t.Run("raw alone", func(t *testing.T) {
		raw := &RawCondition{Expr: "sex = ?", Params: []any{"male"}}
		cond, err := Compile(sch, NewCriteria(), raw)
		require.NoError(t, err)
		assert.Equal(t, "(sex = ?)", cond.Expr)
		assert.Equal(t, []any{"male"}, cond.Params)
	})

	t.Run("raw parameters follow compiled parameters", func(t *testing.T) {
		raw := &RawCondition{Expr: "sex = ? AND active = ?", Params: []any{"male", true}}
		cond, err := Compile(sch, NewCriteria().Set("name", "Tom"), raw)
		require.NoError(t, err)
		assert.Equal(t, "((name) LIKE ?) AND (sex = ? AND active = ?)", cond.Expr)
		assert.Equal(t, []any{"%Tom%", "male", true}, cond.Params)
	})

	t.Run("blank raw expression ignored", func(t *testing.T) {
		cond, err := Compile(sch, NewCriteria().Set("name", "Tom"), &RawCondition{Expr: "  "})
		require.NoError(t, err)
		assert.Equal(t, "((name) LIKE ?)", cond.Expr)
	})
}

func TestCompileEmptyCriteria(t *testing.T) {
	sch := mustSchema(t, "users", schema.Definition{
		Columns: map[string]schema.Strategy{"name": schema.MatchPartial},
	})

	for _, criteria := range []*Criteria{nil, NewCriteria()} {
		cond, err := Compile(sch, criteria, nil)
		require.NoError(t, err)
		assert.True(t, cond.Empty())
		assert.Empty(t, cond.Params)
	}
}

func TestCompileDeterministicOrder(t *testing.T) {
	sch := mustSchema(t, "users", schema.Definition{
		Columns: map[string]schema.Strategy{
			"name": schema.MatchPartial,
			"age":  schema.OpenRange,
			"city": schema.MatchFull,
		},
	})
	criteria := NewCriteria().Set("city", "Tokyo").Set("age_to", 65).Set("name", "Tom")

	first, err := Compile(sch, criteria, nil)
	require.NoError(t, err)
	assert.Equal(t, "((city) = ?) AND ((age) <= ?) AND ((name) LIKE ?)", first.Expr)

	for i := 0; i < 10; i++ {
		again, err := Compile(sch, criteria, nil)
		require.NoError(t, err)
		assert.Equal(t, first.Expr, again.Expr)
		assert.Equal(t, first.Params, again.Params)
	}
}
