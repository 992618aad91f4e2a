package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"gradebook/internal/config"
	apierrors "gradebook/internal/errors"
	"gradebook/internal/exporter"
	"gradebook/internal/infrastructure"
	"gradebook/internal/roster"
	"gradebook/internal/services"
	"gradebook/internal/storage"
	"gradebook/internal/tabular"
)

const usage = `usage: journal <command> [flags]

commands:
  import <file>                       load a csv, txt or xlsx journal
  list                                print the roster
  stats                               print per-class statistics
  export -format csv|txt|xlsx -out D  write journal.<format> into D
  add -name N -class C [-grade S=V]   add a student
  delete -index N                     remove the student at N
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", apierrors.NewConfigError("failed to load configuration", err))
		return 1
	}
	logger := infrastructure.NewLogger(cfg.Logging.Level, stderr)
	ctx = infrastructure.EnsureTraceID(ctx)

	journal, closeFn, err := openJournal(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer closeFn()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "import":
		err = runImport(ctx, journal, rest, stdout)
	case "list":
		err = runList(ctx, journal, stdout)
	case "stats":
		err = runStats(ctx, journal, stdout)
	case "export":
		err = runExport(ctx, journal, cfg, rest, stdout, logger)
	case "add":
		err = runAdd(ctx, journal, rest, stdout)
	case "delete":
		err = runDelete(ctx, journal, rest, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// openJournal opens the configured slot and restores the roster from it.
func openJournal(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services.JournalService, func(), error) {
	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, nil, err
	}
	cfg.Storage.Dir = config.Resolve(paths.ExecutableDir, cfg.Storage.Dir)
	cfg.Storage.SQLitePath = config.Resolve(paths.ExecutableDir, cfg.Storage.SQLitePath)

	slot, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, nil, err
	}

	store := roster.NewStore(slot, cfg.Storage.Key, logger)
	journal := services.NewJournalService(store, nil, nil, nil, logger)
	journal.Load(ctx)

	return journal, func() {
		if err := slot.Close(); err != nil {
			infrastructure.WithError(logger, err).Warn("failed to close storage")
		}
	}, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func runImport(ctx context.Context, journal *services.JournalService, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("import takes exactly one file")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := journal.Import(ctx, f.Name(), f)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Data successfully loaded: %d students, subjects: %s\n",
		result.Records, strings.Join(result.Subjects, ", "))
	if result.Coerced > 0 || result.Dropped > 0 {
		fmt.Fprintf(stdout, "ungraded values: %d, skipped rows: %d\n", result.Coerced, result.Dropped)
	}
	return nil
}

// runList prints the roster in the tab-separated journal layout.
func runList(ctx context.Context, journal *services.JournalService, stdout io.Writer) error {
	snap := journal.List(ctx)
	if snap.Empty() {
		fmt.Fprintln(stdout, "No data")
		return nil
	}
	return exporter.WriteText(stdout, snap)
}

func runStats(ctx context.Context, journal *services.JournalService, stdout io.Writer) error {
	report, err := journal.Statistics(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, table := range report.PerSubject {
		fmt.Fprintf(tw, "%s\n", table.Subject)
		fmt.Fprintln(tw, "class\tcount\tmean\tmedian\t5\t4\t3\t2\t1")
		for _, s := range table.Classes {
			fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%d\t%d\t%d\t%d\t%d\n",
				s.Label, s.Count, s.Mean, s.Median,
				s.CountOf(5), s.CountOf(4), s.CountOf(3), s.CountOf(2), s.CountOf(1))
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprintln(tw, "overall")
	fmt.Fprintln(tw, "subject\tcount\tmean\tmedian")
	for _, s := range report.Overall {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\n", s.Label, s.Count, s.Mean, s.Median)
	}
	return tw.Flush()
}

func runExport(ctx context.Context, journal *services.JournalService, cfg *config.Config, args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := newFlagSet("export")
	name := fs.String("format", string(tabular.FormatCSV), "csv, txt or xlsx")
	out := fs.String("out", "", "output directory (defaults to the exports directory)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := tabular.ParseFormat(*name)
	if err != nil {
		return err
	}

	dir := *out
	if dir == "" {
		paths, err := config.GetPaths(cfg.Paths)
		if err != nil {
			return err
		}
		dir = paths.ExportsDir
	}

	path, err := journal.ExportFile(ctx, format, exporter.NewFileWriter(dir, logger))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Exported to %s\n", path)
	return nil
}

// gradeFlags collects repeated -grade subject=value flags.
type gradeFlags map[string]string

func (g gradeFlags) String() string {
	parts := make([]string, 0, len(g))
	for k, v := range g {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (g gradeFlags) Set(value string) error {
	subject, grade, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(subject) == "" {
		return fmt.Errorf("grade must look like subject=value, got %q", value)
	}
	g[strings.TrimSpace(subject)] = strings.TrimSpace(grade)
	return nil
}

func runAdd(ctx context.Context, journal *services.JournalService, args []string, stdout io.Writer) error {
	fs := newFlagSet("add")
	name := fs.String("name", "", "full name")
	class := fs.String("class", "", "class label, e.g. 10Б")
	grades := gradeFlags{}
	fs.Var(grades, "grade", "subject=value, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	index, err := journal.Create(ctx, roster.Input{FullName: *name, ClassLabel: *class, Grades: grades})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Student added at index %d\n", index)
	return nil
}

func runDelete(ctx context.Context, journal *services.JournalService, args []string, stdout io.Writer) error {
	fs := newFlagSet("delete")
	index := fs.Int("index", -1, "row index")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := journal.Delete(ctx, *index); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Student %d deleted\n", *index)
	return nil
}
