package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticketsResolver() Resolver {
	return TableResolver("tickets", nil)
}

func TestCompileAndOrGroups(t *testing.T) {
	values, err := url.ParseQuery("PMin_rating=3&OR_PEqual_status=CLOSED")
	require.NoError(t, err)

	desc, err := Compile(values, testDefaults)
	require.NoError(t, err)

	want := Group{Logic: And, Terms: []Predicate{
		Group{Logic: And, Terms: []Predicate{Condition{Column: "rating", Op: OpMin, Args: []any{3.0}}}},
		Group{Logic: Or, Terms: []Predicate{Condition{Column: "status", Op: OpEqual, Args: []any{"CLOSED"}}}},
	}}
	assert.Equal(t, want, desc.Where)

	sql, args, err := ToSqlizer(desc.Where, ticketsResolver()).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "((`tickets`.`rating` >= ?) AND (`tickets`.`status` = ?))", sql)
	assert.Equal(t, []any{3.0, "CLOSED"}, args)
}

func TestCompilePagination(t *testing.T) {
	cases := []struct {
		query         string
		offset, limit int
	}{
		{"", 0, 5},
		{"offset=10&limit=20", 10, 20},
		{"offset=abc&limit=xyz", 0, 5},
		{"offset=-4&limit=-1", 0, 5},
		{"limit=0", 0, 5},
		{"limit=1000", 0, 100},
	}
	for _, tc := range cases {
		values, _ := url.ParseQuery(tc.query)
		desc, err := Compile(values, testDefaults)
		require.NoError(t, err)
		assert.Equal(t, tc.offset, desc.Offset, tc.query)
		assert.Equal(t, tc.limit, desc.Limit, tc.query)
	}
}

func TestCompileSkipsInvalidAndBlank(t *testing.T) {
	values := url.Values{
		"bad column":   {"x"},
		"title":        {""},
		"PBetween_age": {"18"},
		"language":     {"fr"},
		"sort_by":      {"title"},
	}
	desc, err := Compile(values, testDefaults)
	require.NoError(t, err)
	assert.Nil(t, desc.Where)
	assert.Equal(t, "FR", desc.Language)
	assert.Equal(t, []Order{{"title", Desc}}, desc.Order)
}

func TestCompileMultipleValuesAndDottedPaths(t *testing.T) {
	values := url.Values{
		"priority":          {"HIGH", "URGENT"},
		"PILike_user.email": {"Example.COM"},
		"PNotIn_status":     {"CLOSED,RESOLVED"},
		"PUnknown_category": {"BUG"},
	}
	desc, err := Compile(values, testDefaults)
	require.NoError(t, err)

	sql, args, err := ToSqlizer(desc.Where, ticketsResolver()).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"(LOWER(`user`.`email`) LIKE LOWER(?) AND `tickets`.`status` NOT IN (?,?) AND `tickets`.`category` = ? AND `tickets`.`priority` = ? AND `tickets`.`priority` = ?)",
		sql)
	assert.Equal(t, []any{"%Example.COM%", "CLOSED", "RESOLVED", "BUG", "HIGH", "URGENT"}, args)
}

func TestParseKey(t *testing.T) {
	col, op, or := ParseKey("OR_PLike_title")
	assert.Equal(t, "title", col)
	assert.Equal(t, OpLike, op)
	assert.True(t, or)

	col, op, or = ParseKey("priority")
	assert.Equal(t, "priority", col)
	assert.Equal(t, OpEqual, op)
	assert.False(t, or)

	col, op, _ = ParseKey("created_at")
	assert.Equal(t, "created_at", col)
	assert.Equal(t, OpEqual, op)
}

func TestCompileRejectsBadDefaults(t *testing.T) {
	_, err := Compile(url.Values{}, Defaults{})
	assert.Error(t, err)
}

func TestDescriptorScope(t *testing.T) {
	values, _ := url.ParseQuery("status=PENDING")
	desc, err := Compile(values, testDefaults)
	require.NoError(t, err)

	scoped := desc.Scope(Equal("user_id", int64(9)))
	sql, args, err := ToSqlizer(scoped.Where, ticketsResolver()).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "((`tickets`.`status` = ?) AND `tickets`.`user_id` = ?)", sql)
	assert.Equal(t, []any{"PENDING", int64(9)}, args)

	_, stillGroup := desc.Where.(Group)
	assert.True(t, stillGroup)
}

func TestToSqlizerRanges(t *testing.T) {
	resolve := ticketsResolver()
	cases := []struct {
		cond Condition
		sql  string
	}{
		{BuildCondition(OpBetween, "age", "1,2"), "`tickets`.`age` BETWEEN ? AND ?"},
		{BuildCondition(OpNotBetween, "age", "1,2"), "`tickets`.`age` NOT BETWEEN ? AND ?"},
		{BuildCondition(OpMax, "age", "9"), "`tickets`.`age` <= ?"},
		{BuildCondition(OpNotEqual, "age", "9"), "`tickets`.`age` <> ?"},
		{BuildCondition(OpLike, "title", "x"), "`tickets`.`title` LIKE ?"},
		{IsNull("assigned_to"), "`tickets`.`assigned_to` IS NULL"},
	}
	for _, tc := range cases {
		sql, _, err := ToSqlizer(tc.cond, resolve).ToSql()
		require.NoError(t, err)
		assert.Equal(t, tc.sql, sql)
	}
}

func TestResolverDropsUnknownColumns(t *testing.T) {
	resolve := TableResolver("tickets", func(relation, column string) bool {
		return relation == "" && column == "status"
	})
	pred := AllOf(Equal("status", "PENDING"), Equal("secret", "x"))
	sql, _, err := ToSqlizer(pred, resolve).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(`tickets`.`status` = ?)", sql)

	assert.Nil(t, ToSqlizer(Equal("secret", "x"), resolve))
	assert.Equal(t, []string{"`tickets`.`status` DESC"}, OrderBy([]Order{{"status", Desc}, {"secret", Asc}}, resolve))
}
