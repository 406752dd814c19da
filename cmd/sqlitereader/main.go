// Command sqlitereader is the CLI driver for the read-only SQLite file
// decoder: `sqlitereader <db-path> .dbinfo|.tables|"<SELECT ...>"`.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/nsaritzky-labs/sqlitereader/internal/engine"
	"github.com/nsaritzky-labs/sqlitereader/internal/format"
	"github.com/nsaritzky-labs/sqlitereader/internal/logging"
	"github.com/nsaritzky-labs/sqlitereader/internal/sqlfront"
)

// CLI is the command-line interface: a database path and a single
// command-or-SQL positional argument, per spec.md §6.
var CLI struct {
	DBPath  string `arg:"" help:"Path to the SQLite database file" type:"existingfile"`
	Command string `arg:"" help:".dbinfo, .tables, or a SELECT statement"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("sqlitereader"),
		kong.Description("Read-only query engine over a SQLite database file"),
		kong.UsageOnError(),
	)
	if err := run(CLI.DBPath, CLI.Command); err != nil {
		logging.Default().Error(err.Error())
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	kctx.Exit(0)
}

func run(dbPath, command string) error {
	ctx := context.Background()

	eng, err := engine.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer eng.Close()

	switch command {
	case ".dbinfo":
		fmt.Println(format.DBInfo(eng.PageSize(), eng.SchemaObjectCount()))
		return nil

	case ".tables":
		fmt.Println(format.TableNames(eng.TableNames()))
		return nil

	default:
		return runSelect(ctx, eng, command)
	}
}

func runSelect(ctx context.Context, eng *engine.Engine, sql string) error {
	query, err := sqlfront.ParseSelect(sql)
	if err != nil {
		return err
	}
	if query.IsCount {
		count, err := eng.Count(ctx, query.Table)
		if err != nil {
			return err
		}
		fmt.Println(format.Count(count))
		return nil
	}

	rows, err := eng.Select(ctx, query)
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Println(format.Row(row.Values))
	}
	return nil
}
