package obs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatementInfo(t *testing.T) {
	tests := []struct {
		sql   string
		op    string
		table string
	}{
		{"SELECT id, name FROM menu_items\nWHERE id = $1", "SELECT", "menu_items"},
		{"select count(*) from menu_items where category_id = $1", "SELECT", "menu_items"},
		{"INSERT INTO menu_item_add_ons (item_id, id) VALUES ($1, $2)", "INSERT", "menu_item_add_ons"},
		{"UPDATE menu_items SET category_id = $2 WHERE id = ANY($1)", "UPDATE", "menu_items"},
		{"DELETE FROM public.categories WHERE id = $1", "DELETE", "categories"},
		{`SELECT id FROM "payment_methods"`, "SELECT", "payment_methods"},
		{"SELECT 1", "SELECT", ""},
		{"   ", "", ""},
	}
	for _, tt := range tests {
		op, table := statementInfo(tt.sql)
		require.Equal(t, tt.op, op, tt.sql)
		require.Equal(t, tt.table, table, tt.sql)
	}
}

func TestStatementAttributesTagStore(t *testing.T) {
	attrs := statementAttributes("SELECT id FROM menu_item_variations", "SELECT", "menu_item_variations")
	values := map[string]string{}
	for _, kv := range attrs {
		values[string(kv.Key)] = kv.Value.Emit()
	}
	require.Equal(t, "catalog", values["kedai.store"])
	require.Equal(t, "menu_item_variations", values["db.sql.table"])
	require.Equal(t, "SELECT menu_item_variations", spanName("SELECT", "menu_item_variations"))
	require.Equal(t, "pgx query", spanName("", ""))

	unknown := statementAttributes("SELECT 1", "SELECT", "")
	for _, kv := range unknown {
		require.NotEqual(t, "kedai.store", string(kv.Key))
	}
}

func TestTruncateSQL(t *testing.T) {
	long := "SELECT " + strings.Repeat("x", 400)
	out := truncateSQL(long)
	require.Len(t, out, maxStatementLen+3)
	require.True(t, strings.HasSuffix(out, "..."))
	require.Equal(t, "SELECT 1", truncateSQL("  SELECT 1\n"))
}
