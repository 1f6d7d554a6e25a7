// Package introspection discovers entity metadata from a MySQL-family
// information_schema: tables, columns with their value-type classification
// and nullability, primary keys, and FK-derived relationships. Its output
// is the entity descriptors the schema registry is built from; the
// registry itself never touches the database.
package introspection

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"relq/internal/entity"
	"relq/internal/logging"
	"relq/internal/naming"
)

// Queryer provides query access for schema introspection.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Options customizes how descriptors are built.
type Options struct {
	// Namer derives entity and relationship names; nil uses defaults.
	Namer *naming.Namer
	// Properties registers simple properties per table name. They are
	// application-level attributes the database cannot know about.
	Properties map[string][]string
	// Computed registers computed properties per table name.
	Computed map[string][]entity.ComputedProperty
}

// Schema is the set of introspected entities, addressable by table name.
type Schema struct {
	Entities []*entity.Entity
	byTable  map[string]*entity.Entity
}

// ByTable returns the entity mapped to a table name.
func (s *Schema) ByTable(table string) (*entity.Entity, bool) {
	e, ok := s.byTable[table]
	return e, ok
}

// InspectDatabase reads the information_schema of one database and builds
// entity descriptors for its base tables. Each table is read exactly once;
// relationships are derived from foreign keys after all tables are loaded.
// Warnings go to the context logger (see logging.WithLogger).
func InspectDatabase(ctx context.Context, db Queryer, databaseName string, opts Options) (*Schema, error) {
	ctx, span := startSpan(ctx, "introspection.inspect_database",
		attribute.String("db.name", databaseName),
	)
	defer span.End()

	namer := opts.Namer
	if namer == nil {
		namer = naming.Default()
	}
	logger := logging.FromContext(ctx).Logger

	tables, err := getTables(ctx, db, databaseName)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}

	type tableMeta struct {
		name    string
		columns []entity.Column
		fks     []foreignKey
	}

	metas := make([]tableMeta, 0, len(tables))
	for _, table := range tables {
		columns, err := getColumns(ctx, db, databaseName, table, logger)
		if err != nil {
			recordSpanError(span, err)
			return nil, fmt.Errorf("failed to get columns for %s: %w", table, err)
		}
		pks, err := getPrimaryKeys(ctx, db, databaseName, table)
		if err != nil {
			recordSpanError(span, err)
			return nil, fmt.Errorf("failed to get primary keys for %s: %w", table, err)
		}
		for i := range columns {
			for _, pk := range pks {
				if columns[i].Name == pk {
					columns[i].PrimaryKey = true
					break
				}
			}
		}
		fks, err := getForeignKeys(ctx, db, databaseName, table)
		if err != nil {
			recordSpanError(span, err)
			return nil, fmt.Errorf("failed to get foreign keys for %s: %w", table, err)
		}
		metas = append(metas, tableMeta{name: table, columns: columns, fks: fks})
	}

	schema := &Schema{byTable: make(map[string]*entity.Entity, len(metas))}
	for _, meta := range metas {
		e := entity.New(entity.Definition{
			Name:       namer.EntityName(meta.name),
			Table:      meta.name,
			Columns:    meta.columns,
			Properties: opts.Properties[meta.name],
			Computed:   opts.Computed[meta.name],
		})
		schema.Entities = append(schema.Entities, e)
		schema.byTable[meta.name] = e
	}

	// Count FKs per (source, target) pair: a second FK to the same target
	// needs a disambiguated reverse-relationship name.
	fkCount := make(map[string]map[string]int)
	for _, meta := range metas {
		for _, fk := range meta.fks {
			if fkCount[meta.name] == nil {
				fkCount[meta.name] = make(map[string]int)
			}
			fkCount[meta.name][fk.referencedTable]++
		}
	}

	rels := make(map[string][]entity.Relationship)
	for _, meta := range metas {
		for _, fk := range meta.fks {
			target, ok := schema.byTable[fk.referencedTable]
			if !ok {
				logger.Warn("skipping foreign key to unknown table",
					slog.String("table", meta.name),
					slog.String("referenced_table", fk.referencedTable),
					slog.String("constraint", fk.constraintName),
				)
				continue
			}
			rels[meta.name] = append(rels[meta.name], entity.Relationship{
				Name:   namer.ManyToOneName(fk.columnName),
				Target: target,
				ToMany: false,
			})
			isOnlyFK := fkCount[meta.name][fk.referencedTable] == 1
			rels[fk.referencedTable] = append(rels[fk.referencedTable], entity.Relationship{
				Name:   namer.OneToManyName(meta.name, fk.columnName, isOnlyFK),
				Target: schema.byTable[meta.name],
				ToMany: true,
			})
		}
	}
	for table, e := range schema.byTable {
		if err := e.BindRelationships(rels[table]); err != nil {
			recordSpanError(span, err)
			return nil, fmt.Errorf("failed to bind relationships for %s: %w", table, err)
		}
	}

	return schema, nil
}

func getTables(ctx context.Context, db Queryer, databaseName string) ([]string, error) {
	ctx, span := startSpan(ctx, "introspection.get_tables",
		attribute.String("db.name", databaseName),
	)
	defer span.End()

	query := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ?
		AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`

	rows, err := db.QueryContext(ctx, query, databaseName)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		tables = append(tables, tableName)
	}
	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return tables, nil
}

func getColumns(ctx context.Context, db Queryer, databaseName, tableName string, logger *slog.Logger) ([]entity.Column, error) {
	ctx, span := startSpan(ctx, "introspection.get_columns",
		attribute.String("db.name", databaseName),
		attribute.String("db.table", tableName),
	)
	defer span.End()

	query := `
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`

	rows, err := db.QueryContext(ctx, query, databaseName, tableName)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var columns []entity.Column
	for rows.Next() {
		var name, dataType, isNullable string
		if err := rows.Scan(&name, &dataType, &isNullable); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		columns = append(columns, entity.Column{
			Name:     name,
			Type:     classifyType(dataType, logger),
			Nullable: strings.EqualFold(isNullable, "YES"),
		})
	}
	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return columns, nil
}

// classifyType maps an information_schema data type to a value-type class.
// JSON columns are nested documents; SET columns behave as arrays.
func classifyType(dataType string, logger *slog.Logger) entity.TypeClass {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "json":
		return entity.Structured
	case "set":
		return entity.Array
	case "":
		logger.Warn("column has empty data type, treating as plain")
		return entity.Plain
	default:
		return entity.Plain
	}
}

func getPrimaryKeys(ctx context.Context, db Queryer, databaseName, tableName string) ([]string, error) {
	ctx, span := startSpan(ctx, "introspection.get_primary_keys",
		attribute.String("db.name", databaseName),
		attribute.String("db.table", tableName),
	)
	defer span.End()

	query := `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME = ?
		AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION
	`

	rows, err := db.QueryContext(ctx, query, databaseName, tableName)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var primaryKeys []string
	for rows.Next() {
		var columnName string
		if err := rows.Scan(&columnName); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		primaryKeys = append(primaryKeys, columnName)
	}
	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return primaryKeys, nil
}

type foreignKey struct {
	columnName       string
	referencedTable  string
	referencedColumn string
	constraintName   string
}

func getForeignKeys(ctx context.Context, db Queryer, databaseName, tableName string) ([]foreignKey, error) {
	ctx, span := startSpan(ctx, "introspection.get_foreign_keys",
		attribute.String("db.name", databaseName),
		attribute.String("db.table", tableName),
	)
	defer span.End()

	query := `
		SELECT COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME, CONSTRAINT_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ?
			AND TABLE_NAME = ?
			AND REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY CONSTRAINT_NAME, ORDINAL_POSITION
	`

	rows, err := db.QueryContext(ctx, query, databaseName, tableName)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var foreignKeys []foreignKey
	for rows.Next() {
		var fk foreignKey
		if err := rows.Scan(&fk.columnName, &fk.referencedTable, &fk.referencedColumn, &fk.constraintName); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		foreignKeys = append(foreignKeys, fk)
	}
	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return foreignKeys, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("relq/introspection")
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
