package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/inventory-reorder/pkg/config"
	"github.com/angelmondragon/inventory-reorder/pkg/db"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
	"github.com/angelmondragon/inventory-reorder/pkg/migrate"
)

const usage = `usage: migrate [-dir path] <command> [arg]

commands:
  up               apply every pending migration
  down             roll back the latest migration
  to <version>     migrate up or down to version
  version          print the applied version
  status           list migrations and their state
  create <name>    write an empty migration into -dir (default %s)
  validate         check filenames and goose markers in -dir
`

func main() {
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set")
	flag.Usage = func() { fmt.Fprintf(flag.CommandLine.Output(), usage, migrate.SourceDir) }
	flag.Parse()

	command, arg := flag.Arg(0), flag.Arg(1)
	if command == "" {
		flag.Usage()
		os.Exit(2)
	}

	// create and validate only touch files.
	switch command {
	case "create":
		if arg == "" {
			fail("create needs a migration name")
		}
		path, err := migrate.CreateSQLMigration(dirOr(*dir, migrate.SourceDir), arg)
		check(err)
		fmt.Println("created", path)
		return
	case "validate":
		check(migrate.ValidateDir(dirOr(*dir, migrate.SourceDir)))
		fmt.Println("migrations ok")
		return
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	check(err)
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "command": command})

	client, err := db.New(ctx, cfg.DB, logg)
	check(err)
	defer func() {
		if err := client.Close(); err != nil {
			logg.Error(ctx, "closing database", err)
		}
	}()
	sqlDB, err := client.DB().DB()
	check(err)

	var source fs.FS = migrate.Migrations()
	if *dir != "" {
		source = migrate.Dir(*dir)
	}
	runner, err := migrate.NewRunner(sqlDB, migrate.DialectFor(client.Dialect()), source, logg)
	check(err)

	switch command {
	case "up":
		err = runner.Up(ctx)
	case "down":
		err = runner.Down(ctx)
	case "to":
		target, perr := strconv.ParseInt(arg, 10, 64)
		if perr != nil {
			fail("to needs a numeric version, got %q", arg)
		}
		err = runner.To(ctx, target)
	case "version":
		var v int64
		if v, err = runner.Version(ctx); err == nil {
			fmt.Println(v)
		}
	case "status":
		err = printStatus(ctx, runner)
	default:
		flag.Usage()
		os.Exit(2)
	}
	check(err)
}

func printStatus(ctx context.Context, runner *migrate.Runner) error {
	statuses, err := runner.Status(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, st := range statuses {
		applied := "-"
		if !st.AppliedAt.IsZero() {
			applied = st.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", st.Source.Version, st.State, applied, st.Source.Path)
	}
	return tw.Flush()
}

func dirOr(dir, fallback string) string {
	if dir == "" {
		return fallback
	}
	return dir
}

func check(err error) {
	if err != nil {
		fail("%v", err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "migrate: "+format+"\n", args...)
	os.Exit(1)
}
