package executor

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for round-trip tests
)

func TestExpandListParams(t *testing.T) {
	tests := []struct {
		name           string
		expr           string
		params         []any
		expectedExpr   string
		expectedParams []any
		wantErr        bool
	}{
		{
			name:           "no lists pass through",
			expr:           "((name) LIKE ?) AND (? <= (age))",
			params:         []any{"%Tom%", 22},
			expectedExpr:   "((name) LIKE ?) AND (? <= (age))",
			expectedParams: []any{"%Tom%", 22},
		},
		{
			name:           "slice expands into IN list",
			expr:           "((area) IN (?))",
			params:         []any{[]int{1, 2, 3}},
			expectedExpr:   "((area) IN (?, ?, ?))",
			expectedParams: []any{1, 2, 3},
		},
		{
			name:           "mixed scalar and list",
			expr:           "((sex) = ?) AND ((area) IN (?))",
			params:         []any{"male", []any{10, 20}},
			expectedExpr:   "((sex) = ?) AND ((area) IN (?, ?))",
			expectedParams: []any{"male", 10, 20},
		},
		{
			name:           "empty expression",
			expr:           "",
			params:         nil,
			expectedExpr:   "",
			expectedParams: nil,
		},
		{
			name:    "placeholder and parameter counts must match",
			expr:    "(a = ?) AND (b = ?)",
			params:  []any{1},
			wantErr: true,
		},
		{
			name:    "empty list is rejected",
			expr:    "((area) IN (?))",
			params:  []any{[]int{}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, params, err := expandListParams(tt.expr, tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedExpr, expr)
			assert.Equal(t, tt.expectedParams, params)
		})
	}
}

func TestRebind(t *testing.T) {
	assert.Equal(t,
		"SELECT * FROM users WHERE ((name) LIKE $1) AND ($2 <= (age))",
		rebind("SELECT * FROM users WHERE ((name) LIKE ?) AND (? <= (age))"),
	)
	assert.Equal(t, "SELECT * FROM users", rebind("SELECT * FROM users"))
}

func TestSQLExecutor_BuildSelect(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    Query
		expected string
	}{
		{
			name:    "postgres rebinds placeholders",
			dialect: Postgres,
			query: Query{
				Table:      "users",
				Conditions: "((name) LIKE ?) AND (? <= (age))",
				Params:     []any{"%Tom%", 22},
				Order:      "name ASC",
			},
			expected: "SELECT * FROM users WHERE ((name) LIKE $1) AND ($2 <= (age)) ORDER BY name ASC",
		},
		{
			name:    "sqlite keeps question marks",
			dialect: SQLite,
			query: Query{
				Table:      "users",
				Conditions: "((name) LIKE ?)",
				Params:     []any{"%Tom%"},
			},
			expected: "SELECT * FROM users WHERE ((name) LIKE ?)",
		},
		{
			name:    "no conditions matches all records",
			dialect: SQLite,
			query: Query{
				Table: "users",
				Order: "name ASC, id DESC",
			},
			expected: "SELECT * FROM users ORDER BY name ASC, id DESC",
		},
		{
			name:    "first finder limits to one row",
			dialect: SQLite,
			query: Query{
				Table:  "users",
				Finder: FinderFirst,
			},
			expected: "SELECT * FROM users LIMIT 1",
		},
		{
			name:    "pagination options pass through",
			dialect: SQLite,
			query: Query{
				Table:  "users",
				Finder: FinderAll,
				Extra:  map[string]any{"limit": 10, "offset": 20},
			},
			expected: "SELECT * FROM users LIMIT 10 OFFSET 20",
		},
		{
			name:    "lock option appends FOR UPDATE",
			dialect: Postgres,
			query: Query{
				Table: "users",
				Extra: map[string]any{"lock": true},
			},
			expected: "SELECT * FROM users FOR UPDATE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &SQLExecutor{dialect: tt.dialect}
			stmt, _, err := e.buildSelect(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stmt)
		})
	}
}

func TestSQLExecutor_BuildSelectUnknownFinder(t *testing.T) {
	e := &SQLExecutor{dialect: SQLite}
	_, _, err := e.buildSelect(Query{Table: "users", Finder: "last"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last")
}

func TestSQLExecutor_FindWithSQLMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	exec, err := NewSQLExecutor(db, Postgres)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "name", "age"}).
		AddRow(int64(1), "Tom", int64(25)).
		AddRow(int64(2), "Tommy", int64(30))

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM users WHERE ((name) LIKE $1) AND ($2 <= (age)) ORDER BY name ASC",
	)).WithArgs("%Tom%", 22).WillReturnRows(rows)

	records, err := exec.Find(context.Background(), Query{
		Table:      "users",
		Conditions: "((name) LIKE ?) AND (? <= (age))",
		Params:     []any{"%Tom%", 22},
		Order:      "name ASC",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Tom", records[0]["name"])
	assert.Equal(t, int64(25), records[0]["age"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLExecutor_FindUnregisteredRelation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	exec, err := NewSQLExecutor(db, Postgres)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, err = exec.Find(context.Background(), Query{
		Table:     "users",
		EagerLoad: []string{"posts"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `relation "posts"`)
}

func TestSQLExecutor_MySQLDialect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	exec, err := NewSQLExecutor(db, MySQL)
	require.NoError(t, err)
	ctx := context.Background()

	// MySQL keeps ?-placeholders as-is.
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM users WHERE ((name) LIKE ?)",
	)).WithArgs("%Tom%").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Tom"))

	records, err := exec.Find(ctx, Query{
		Table:      "users",
		Conditions: "((name) LIKE ?)",
		Params:     []any{"%Tom%"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT column_name FROM information_schema.columns WHERE table_name = ? AND table_schema = DATABASE()",
	)).WithArgs("users").WillReturnRows(
		sqlmock.NewRows([]string{"column_name"}).AddRow("id").AddRow("name"))

	ok, err := exec.HasColumn(ctx, "users", "name")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func setupSQLiteDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			age INTEGER NOT NULL
		);
		INSERT INTO users (name, age) VALUES ('Tom', 25), ('Jerry', 18), ('Tommy', 31);
	`)
	require.NoError(t, err)
	return db
}

func TestSQLExecutor_SQLiteRoundTrip(t *testing.T) {
	exec, err := NewSQLExecutor(setupSQLiteDB(t), SQLite)
	require.NoError(t, err)
	ctx := context.Background()

	records, err := exec.Find(ctx, Query{
		Table:      "users",
		Conditions: "((name) LIKE ?) AND (? <= (age))",
		Params:     []any{"%Tom%", 22},
		Order:      "name ASC",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Tom", records[0]["name"])
	assert.Equal(t, "Tommy", records[1]["name"])
}

func TestSQLExecutor_SQLiteINExpansion(t *testing.T) {
	exec, err := NewSQLExecutor(setupSQLiteDB(t), SQLite)
	require.NoError(t, err)

	records, err := exec.Find(context.Background(), Query{
		Table:      "users",
		Conditions: "((age) IN (?))",
		Params:     []any{[]int{18, 31}},
		Order:      "age ASC",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Jerry", records[0]["name"])
	assert.Equal(t, "Tommy", records[1]["name"])
}

func TestSQLExecutor_SQLiteHasColumn(t *testing.T) {
	exec, err := NewSQLExecutor(setupSQLiteDB(t), SQLite)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := exec.HasColumn(ctx, "users", "name")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = exec.HasColumn(ctx, "users", "nickname")
	require.NoError(t, err)
	assert.False(t, ok)

	// Second lookup is served from the LRU cache.
	ok, err = exec.HasColumn(ctx, "users", "age")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLExecutor_RelationLoader(t *testing.T) {
	loaded := false
	exec, err := NewSQLExecutor(setupSQLiteDB(t), SQLite,
		WithRelation("posts", func(_ context.Context, records []Record) error {
			loaded = true
			for _, r := range records {
				r["posts"] = []string{}
			}
			return nil
		}),
	)
	require.NoError(t, err)

	records, err := exec.Find(context.Background(), Query{
		Table:     "users",
		EagerLoad: []string{"posts"},
		Finder:    FinderFirst,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, loaded)
	assert.Contains(t, records[0], "posts")
}

func TestNewSQLExecutor_UnsupportedDialect(t *testing.T) {
	_, err := NewSQLExecutor(nil, Dialect("oracle"))
	assert.Error(t, err)
}
