package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allOperators = []Operator{
	OpEqual, OpNotEqual, OpMin, OpMax, OpLike, OpILike, OpIn, OpNotIn,
	OpDateMin, OpDateMax, OpDateEqual, OpBetween, OpNotBetween,
}

func TestBuildConditionBlankValueIsEmpty(t *testing.T) {
	for _, op := range allOperators {
		c := BuildCondition(op, "status", "")
		assert.True(t, c.IsEmpty(), "operator %s should ignore blank value", op)
	}
}

func TestParseOperator(t *testing.T) {
	for _, op := range allOperators {
		got, ok := ParseOperator(op.String())
		require.True(t, ok)
		assert.Equal(t, op, got)
	}

	got, ok := ParseOperator("PWhatever")
	assert.False(t, ok)
	assert.Equal(t, OpEqual, got)
}

func TestBuildCondition(t *testing.T) {
	c := BuildCondition(OpMin, "rating", "3")
	require.False(t, c.IsEmpty())
	assert.Equal(t, []any{3.0}, c.Args)

	c = BuildCondition(OpLike, "title", "printer")
	assert.Equal(t, []any{"%printer%"}, c.Args)

	c = BuildCondition(OpIn, "status", "PENDING, CLOSED,,")
	assert.Equal(t, []any{"PENDING", "CLOSED"}, c.Args)

	c = BuildCondition(OpDateMin, "created_at", "2024-03-01")
	require.False(t, c.IsEmpty())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), c.Args[0])

	c = BuildCondition(OpBetween, "age", "18,65")
	assert.Equal(t, []any{18.0, 65.0}, c.Args)

	c = BuildCondition(OpNotBetween, "age", "1,2,3")
	assert.Equal(t, []any{1.0, 2.0}, c.Args)
}

func TestBuildConditionDegradesOnBadInput(t *testing.T) {
	cases := []struct {
		op    Operator
		value string
	}{
		{OpBetween, "18"},
		{OpBetween, "18,"},
		{OpNotBetween, ",65"},
		{OpBetween, "a,b"},
		{OpMin, "three"},
		{OpMax, "NaN?"},
		{OpDateMax, "yesterday"},
		{OpIn, ", ,"},
	}
	for _, tc := range cases {
		c := BuildCondition(tc.op, "age", tc.value)
		assert.True(t, c.IsEmpty(), "%s %q should be empty", tc.op, tc.value)
	}
}

func TestAllOfSkipsEmpty(t *testing.T) {
	assert.Nil(t, AllOf(nil, Condition{}))

	eq := Equal("user_id", int64(7))
	assert.Equal(t, eq, AllOf(nil, eq))

	g, ok := AnyOf(eq, IsNull("assigned_to")).(Group)
	require.True(t, ok)
	assert.Equal(t, Or, g.Logic)
	assert.Len(t, g.Terms, 2)
}
