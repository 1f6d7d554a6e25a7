// Command relq introspects a MySQL-family database and compiles
// declarative query objects into SQL against the discovered schema.
package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/pflag"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"relq/internal/clauses"
	"relq/internal/config"
	"relq/internal/entity"
	"relq/internal/introspection"
	"relq/internal/logging"
	"relq/internal/naming"
	"relq/internal/registry"
	"relq/internal/sqlbuild"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
	Commit  = "none"
)

func main() {
	if err := run(); err != nil {
		slog.Error("relq error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	pflag.Bool("version", false, "Print version and exit")
	pflag.Bool("describe", false, "Print the discovered schema and exit")
	pflag.String("entity", "", "Entity name to compile queries against")
	pflag.String("query", "", "Inline JSON query object")
	pflag.String("query-file", "", "Path to JSON query object file (use @- for stdin)")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if showVersion, _ := pflag.CommandLine.GetBool("version"); showVersion {
		fmt.Printf("relq %s (%s)\n", Version, Commit)
		return nil
	}

	logger := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	slog.SetDefault(logger.Logger)

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbLogger := logger.WithFields(slog.String("database", cfg.Database.Database))
	ctx = logging.WithLogger(ctx, dbLogger)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	schema, err := introspection.InspectDatabase(ctx, db, cfg.Database.Database, introspection.Options{
		Namer: naming.New(cfg.Naming),
	})
	if err != nil {
		return fmt.Errorf("failed to introspect database: %w", err)
	}
	dbLogger.Info("schema discovered", slog.Int("entities", len(schema.Entities)))

	if describe, _ := pflag.CommandLine.GetBool("describe"); describe {
		return describeSchema(os.Stdout, schema)
	}

	entityName, _ := pflag.CommandLine.GetString("entity")
	if entityName == "" {
		return fmt.Errorf("no entity selected: pass --entity or --describe")
	}
	var target *entity.Entity
	for _, e := range schema.Entities {
		if e.Name() == entityName {
			target = e
			break
		}
	}
	if target == nil {
		return fmt.Errorf("unknown entity %q; run with --describe to list entities", entityName)
	}

	query, err := readQueryObject()
	if err != nil {
		return err
	}

	catalog := registry.NewCatalog()
	reusable, err := clauses.NewReusable(catalog.ForEntity(target), clauses.Settings{})
	if err != nil {
		return err
	}
	compiled, err := reusable.Compile(query)
	if err != nil {
		return fmt.Errorf("failed to compile query: %w", err)
	}

	built, err := sqlbuild.Select(reusable.Registry(), compiled)
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	fmt.Println(built.SQL)
	if len(built.Args) > 0 {
		args, err := json.Marshal(built.Args)
		if err != nil {
			return err
		}
		fmt.Printf("-- args: %s\n", args)
	}
	return nil
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := otelsql.Open("mysql", cfg.Database.DSN(),
		otelsql.WithAttributes(semconv.DBSystemMySQL),
		otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.Pool.MaxOpen)
	db.SetMaxIdleConns(cfg.Database.Pool.MaxIdle)
	db.SetConnMaxLifetime(cfg.Database.Pool.MaxLifetime)
	return db, nil
}

// readQueryObject parses the request query object from --query or
// --query-file; with neither set, the empty query compiles to defaults.
func readQueryObject() (map[string]any, error) {
	inline, _ := pflag.CommandLine.GetString("query")
	filePath, _ := pflag.CommandLine.GetString("query-file")
	if inline != "" && filePath != "" {
		return nil, fmt.Errorf("pass only one of --query and --query-file")
	}

	var raw []byte
	switch {
	case inline != "":
		raw = []byte(inline)
	case filePath == "@-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read query from stdin: %w", err)
		}
		raw = data
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read query file: %w", err)
		}
		raw = data
	default:
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var query map[string]any
	if err := dec.Decode(&query); err != nil {
		return nil, fmt.Errorf("invalid query object: %w", err)
	}
	return query, nil
}

func describeSchema(w io.Writer, schema *introspection.Schema) error {
	for _, e := range schema.Entities {
		fmt.Fprintf(w, "%s (table %s)\n", e.Name(), e.Table())
		for _, col := range e.Columns() {
			flags := ""
			if col.PrimaryKey {
				flags += " pk"
			}
			if col.Nullable {
				flags += " null"
			}
			fmt.Fprintf(w, "  %s %s%s\n", col.Name, col.Type, flags)
		}
		for _, rel := range e.Relationships() {
			card := "one"
			if rel.ToMany {
				card = "many"
			}
			fmt.Fprintf(w, "  %s -> %s (%s)\n", rel.Name, rel.Target.Name(), card)
		}
		fmt.Fprintln(w)
	}
	return nil
}
