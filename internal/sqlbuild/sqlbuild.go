// Package sqlbuild turns compiled query clauses into executable SELECT
// statements. It consumes the clause results read-only and never reaches
// back into schema metadata: a compiled clause is explicit enough to
// build from directly.
package sqlbuild

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"relq/internal/bags"
	"relq/internal/clauses"
	"relq/internal/registry"
	"relq/internal/sqlutil"
)

// Query is a built SQL statement with bound args.
type Query struct {
	SQL  string
	Args []interface{}
}

// Select builds the SELECT for a compiled query object against the
// registry's entity (or alias).
func Select(reg *registry.Registry, c *clauses.Compiled) (Query, error) {
	if c.Count {
		return countQuery(reg, c)
	}

	columns, err := resultColumns(reg, c)
	if err != nil {
		return Query{}, err
	}
	builder := sq.Select(columns...).
		From(fromClause(reg)).
		PlaceholderFormat(sq.Question)

	builder, err = applyGroup(builder, reg, c.Group)
	if err != nil {
		return Query{}, err
	}
	builder, err = applySort(builder, reg, c.Sort)
	if err != nil {
		return Query{}, err
	}
	builder = applyLimit(builder, c.Limit)

	sqlText, args, err := builder.ToSql()
	if err != nil {
		return Query{}, fmt.Errorf("failed to build select: %w", err)
	}
	return Query{SQL: sqlText, Args: args}, nil
}

// countQuery reformulates the query as a COUNT(*). Ordering and limits are
// dropped: a count inspects the whole filtered result set.
func countQuery(reg *registry.Registry, c *clauses.Compiled) (Query, error) {
	if c.Group.IsEmpty() {
		sqlText, args, err := sq.Select("COUNT(*)").
			From(fromClause(reg)).
			PlaceholderFormat(sq.Question).
			ToSql()
		if err != nil {
			return Query{}, fmt.Errorf("failed to build count: %w", err)
		}
		return Query{SQL: sqlText, Args: args}, nil
	}

	// A grouped query counts its groups, so the grouped form becomes a
	// subquery.
	columns, err := resultColumns(reg, c)
	if err != nil {
		return Query{}, err
	}
	inner := sq.Select(columns...).
		From(fromClause(reg)).
		PlaceholderFormat(sq.Question)
	inner, err = applyGroup(inner, reg, c.Group)
	if err != nil {
		return Query{}, err
	}
	sqlText, args, err := sq.Select("COUNT(*)").
		FromSelect(inner, "grouped").
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		return Query{}, fmt.Errorf("failed to build grouped count: %w", err)
	}
	return Query{SQL: sqlText, Args: args}, nil
}

func fromClause(reg *registry.Registry) string {
	table := sqlutil.QuoteIdentifier(reg.Entity().Table())
	if alias := reg.AliasName(); alias != "" {
		return table + " AS " + sqlutil.QuoteIdentifier(alias)
	}
	return table
}

// resultColumns picks the select list: aggregate expressions replace the
// projected columns when aggregation was requested.
func resultColumns(reg *registry.Registry, c *clauses.Compiled) ([]string, error) {
	if !c.Aggregate.IsEmpty() {
		return aggregateColumns(reg, c.Aggregate)
	}
	return selectColumns(reg, c.Projection), nil
}

// selectColumns renders the projection's compiled columns. An empty
// compiled-column list falls back to the primary key so the statement
// stays well-formed.
func selectColumns(reg *registry.Registry, p *clauses.ProjectionResult) []string {
	refs := p.CompiledColumns()
	if len(refs) == 0 {
		for _, ref := range reg.PrimaryKey.Iterate() {
			refs = append(refs, ref)
		}
	}
	cols := make([]string, 0, len(refs))
	for _, ref := range refs {
		cols = append(cols, columnSQL(ref))
	}
	if len(cols) == 0 {
		cols = append(cols, "*")
	}
	return cols
}

// columnSQL renders one attribute handle as a selectable expression.
func columnSQL(ref bags.Ref) string {
	switch ref.Kind {
	case bags.KindStructuredPath:
		base := sqlutil.QuoteQualified(ref.Column.Qualifier(), ref.Column.Name)
		expr := fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(%s, %s))", base, sqlutil.JSONPath(ref.Path))
		return expr + " AS " + sqlutil.QuoteIdentifier(ref.Name)
	case bags.KindComputed:
		return "(" + ref.Expr + ") AS " + sqlutil.QuoteIdentifier(ref.Name)
	default:
		return sqlutil.QuoteQualified(ref.Column.Qualifier(), ref.Column.Name)
	}
}

// aggregateColumns renders validated aggregate expressions as labeled
// select-list entries.
func aggregateColumns(reg *registry.Registry, a *clauses.AggregateResult) ([]string, error) {
	cols := make([]string, 0, len(a.Entries))
	for _, entry := range a.Entries {
		expr, err := aggregateExpr(reg, entry)
		if err != nil {
			return nil, err
		}
		cols = append(cols, expr+" AS "+sqlutil.QuoteIdentifier(entry.Label))
	}
	return cols, nil
}

func aggregateExpr(reg *registry.Registry, entry clauses.AggregateEntry) (string, error) {
	// The integer operand of $sum counts rows: SUM(N) over M rows is N*M.
	if entry.Constant != nil {
		if *entry.Constant == 1 {
			return "COUNT(*)", nil
		}
		return fmt.Sprintf("COUNT(*) * %d", *entry.Constant), nil
	}
	operand, err := orderExpr(reg, entry.Name)
	if err != nil {
		return "", err
	}
	switch entry.Operator {
	case "":
		return operand, nil
	case clauses.OpMin:
		return "MIN(" + operand + ")", nil
	case clauses.OpMax:
		return "MAX(" + operand + ")", nil
	case clauses.OpSum:
		return "SUM(" + operand + ")", nil
	case clauses.OpAvg:
		return "AVG(" + operand + ")", nil
	default:
		return "", fmt.Errorf("unsupported aggregate operator %q", entry.Operator)
	}
}

// orderExpr renders one sort key. The clause compiler has already
// guaranteed the name resolves against columns or computed properties.
func orderExpr(reg *registry.Registry, name string) (string, error) {
	_, _, ref, err := reg.Sortable().Get(name)
	if err != nil {
		return "", err
	}
	switch ref.Kind {
	case bags.KindStructuredPath:
		base := sqlutil.QuoteQualified(ref.Column.Qualifier(), ref.Column.Name)
		return fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(%s, %s))", base, sqlutil.JSONPath(ref.Path)), nil
	case bags.KindComputed:
		return "(" + ref.Expr + ")", nil
	default:
		return sqlutil.QuoteQualified(ref.Column.Qualifier(), ref.Column.Name), nil
	}
}

func applySort(builder sq.SelectBuilder, reg *registry.Registry, s *clauses.SortResult) (sq.SelectBuilder, error) {
	for _, entry := range s.Entries {
		expr, err := orderExpr(reg, entry.Name)
		if err != nil {
			return builder, err
		}
		dir := " ASC"
		if entry.Direction < 0 {
			dir = " DESC"
		}
		builder = builder.OrderBy(expr + dir)
	}
	return builder, nil
}

func applyGroup(builder sq.SelectBuilder, reg *registry.Registry, g *clauses.GroupResult) (sq.SelectBuilder, error) {
	for _, entry := range g.Entries {
		expr, err := orderExpr(reg, entry.Name)
		if err != nil {
			return builder, err
		}
		builder = builder.GroupBy(expr)
	}
	return builder, nil
}

func applyLimit(builder sq.SelectBuilder, l *clauses.LimitResult) sq.SelectBuilder {
	if l.Skip != nil {
		builder = builder.Offset(uint64(*l.Skip))
	}
	if l.Limit != nil {
		builder = builder.Limit(uint64(*l.Limit))
	}
	return builder
}
