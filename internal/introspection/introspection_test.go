package introspection

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relq/internal/entity"
	"relq/internal/logging"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func expectSchemaQueries(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM INFORMATION_SCHEMA\.TABLES`).
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).
			AddRow("articles").
			AddRow("users"))

	// articles
	mock.ExpectQuery(`FROM INFORMATION_SCHEMA\.COLUMNS`).
		WithArgs("shop", "articles").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE"}).
			AddRow("id", "bigint", "NO").
			AddRow("author_id", "bigint", "NO").
			AddRow("title", "varchar", "YES").
			AddRow("data", "json", "YES"))
	mock.ExpectQuery(`CONSTRAINT_NAME = 'PRIMARY'`).
		WithArgs("shop", "articles").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id"))
	mock.ExpectQuery(`REFERENCED_TABLE_NAME IS NOT NULL`).
		WithArgs("shop", "articles").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME", "CONSTRAINT_NAME"}).
			AddRow("author_id", "users", "id", "fk_articles_author"))

	// users
	mock.ExpectQuery(`FROM INFORMATION_SCHEMA\.COLUMNS`).
		WithArgs("shop", "users").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE"}).
			AddRow("id", "bigint", "NO").
			AddRow("name", "varchar", "NO").
			AddRow("tags", "set", "YES"))
	mock.ExpectQuery(`CONSTRAINT_NAME = 'PRIMARY'`).
		WithArgs("shop", "users").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id"))
	mock.ExpectQuery(`REFERENCED_TABLE_NAME IS NOT NULL`).
		WithArgs("shop", "users").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME", "CONSTRAINT_NAME"}))
}

func TestInspectDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()
	expectSchemaQueries(mock)

	schema, err := InspectDatabase(context.Background(), db, "shop", Options{})
	require.NoError(t, err)
	require.Len(t, schema.Entities, 2)

	article, ok := schema.ByTable("articles")
	require.True(t, ok)
	assert.Equal(t, "article", article.Name())
	require.Len(t, article.Columns(), 4)
	assert.True(t, article.Columns()[0].PrimaryKey)
	assert.False(t, article.Columns()[0].Nullable)
	assert.Equal(t, entity.Structured, article.Columns()[3].Type)
	assert.True(t, article.Columns()[3].Nullable)

	user, ok := schema.ByTable("users")
	require.True(t, ok)
	assert.Equal(t, "user", user.Name())
	assert.Equal(t, entity.Array, user.Columns()[2].Type)

	require.Len(t, article.Relationships(), 1)
	toOne := article.Relationships()[0]
	assert.Equal(t, "author", toOne.Name)
	assert.False(t, toOne.ToMany)
	assert.Same(t, user, toOne.Target)

	require.Len(t, user.Relationships(), 1)
	toMany := user.Relationships()[0]
	assert.Equal(t, "articles", toMany.Name)
	assert.True(t, toMany.ToMany)
	assert.Same(t, article, toMany.Target)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspectDatabase_RegisteredProperties(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()
	expectSchemaQueries(mock)

	schema, err := InspectDatabase(context.Background(), db, "shop", Options{
		Properties: map[string][]string{"users": {"display_name"}},
		Computed: map[string][]entity.ComputedProperty{
			"users": {{Name: "tag_count", Expr: "LENGTH(tags) - LENGTH(REPLACE(tags, ',', '')) + 1"}},
		},
	})
	require.NoError(t, err)

	user, ok := schema.ByTable("users")
	require.True(t, ok)
	assert.Equal(t, []string{"display_name"}, user.Properties())
	require.Len(t, user.Computed(), 1)
	assert.Equal(t, "tag_count", user.Computed()[0].Name)
}

func TestInspectDatabase_SkipsForeignKeyToUnknownTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	mock.ExpectQuery(`FROM INFORMATION_SCHEMA\.TABLES`).
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("orders"))
	mock.ExpectQuery(`FROM INFORMATION_SCHEMA\.COLUMNS`).
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE"}).
			AddRow("id", "bigint", "NO").
			AddRow("customer_id", "bigint", "NO"))
	mock.ExpectQuery(`CONSTRAINT_NAME = 'PRIMARY'`).
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id"))
	// The customers table is outside the inspected database.
	mock.ExpectQuery(`REFERENCED_TABLE_NAME IS NOT NULL`).
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME", "CONSTRAINT_NAME"}).
			AddRow("customer_id", "customers", "id", "fk_orders_customer"))

	ctx := logging.WithLogger(context.Background(), &logging.Logger{Logger: testLogger()})
	schema, err := InspectDatabase(ctx, db, "shop", Options{})
	require.NoError(t, err)

	order, ok := schema.ByTable("orders")
	require.True(t, ok)
	assert.Empty(t, order.Relationships())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspectDatabase_DisambiguatesParallelForeignKeys(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	mock.ExpectQuery(`FROM INFORMATION_SCHEMA\.TABLES`).
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).
			AddRow("articles").
			AddRow("users"))
	mock.ExpectQuery(`FROM INFORMATION_SCHEMA\.COLUMNS`).
		WithArgs("shop", "articles").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE"}).
			AddRow("id", "bigint", "NO").
			AddRow("author_id", "bigint", "NO").
			AddRow("editor_id", "bigint", "YES"))
	mock.ExpectQuery(`CONSTRAINT_NAME = 'PRIMARY'`).
		WithArgs("shop", "articles").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id"))
	mock.ExpectQuery(`REFERENCED_TABLE_NAME IS NOT NULL`).
		WithArgs("shop", "articles").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME", "CONSTRAINT_NAME"}).
			AddRow("author_id", "users", "id", "fk_articles_author").
			AddRow("editor_id", "users", "id", "fk_articles_editor"))
	mock.ExpectQuery(`FROM INFORMATION_SCHEMA\.COLUMNS`).
		WithArgs("shop", "users").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE"}).
			AddRow("id", "bigint", "NO"))
	mock.ExpectQuery(`CONSTRAINT_NAME = 'PRIMARY'`).
		WithArgs("shop", "users").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id"))
	mock.ExpectQuery(`REFERENCED_TABLE_NAME IS NOT NULL`).
		WithArgs("shop", "users").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME", "CONSTRAINT_NAME"}))

	schema, err := InspectDatabase(context.Background(), db, "shop", Options{})
	require.NoError(t, err)

	user, ok := schema.ByTable("users")
	require.True(t, ok)
	names := make([]string, 0, 2)
	for _, rel := range user.Relationships() {
		names = append(names, rel.Name)
	}
	assert.ElementsMatch(t, []string{"author_articles", "editor_articles"}, names)
}

func TestClassifyType(t *testing.T) {
	logger := testLogger()
	assert.Equal(t, entity.Structured, classifyType("json", logger))
	assert.Equal(t, entity.Structured, classifyType("JSON", logger))
	assert.Equal(t, entity.Array, classifyType("set", logger))
	assert.Equal(t, entity.Plain, classifyType("varchar", logger))
	assert.Equal(t, entity.Plain, classifyType("bigint", logger))
	assert.Equal(t, entity.Plain, classifyType("", logger))
}
