package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erazemk/zbirka/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// cli is the state shared by all commands of one invocation.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	flagConfigDir string
	flagDB        string
	flagRemote    string
	flagToken     string
	flagOutput    string
	flagLog       string
	flagVerbose   bool

	configDir string
	cfg       *viper.Viper
	closeLog  func()
}

// run executes the command line and returns the process exit code.
func run(args []string, in io.Reader, out, errOut io.Writer) int {
	c := &cli{in: in, out: out, errOut: errOut}
	root := c.newRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	if c.closeLog != nil {
		c.closeLog()
	}
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

func (c *cli) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "zbirka",
		Short:         "Catalogue a personal collection",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&c.flagDB, "db", "", "SQLite database path (default: zbirka.db in the data dir)")
	pf.StringVar(&c.flagRemote, "remote", "", "server URL; when set, commands act on the server")
	pf.StringVar(&c.flagToken, "token", "", "bearer token for --remote")
	pf.StringVarP(&c.flagOutput, "output", "o", string(formatTable), "output format: table, json or yaml")
	pf.StringVar(&c.flagLog, "log", "", "log file path")
	pf.BoolVarP(&c.flagVerbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(
		c.newInitCmd(),
		c.newServeCmd(),
		c.newLoginCmd(),
		c.newLogoutCmd(),
		c.newListCmd(),
		c.newFilterCmd(),
		c.newExportCmd(),
		c.newShowCmd(),
		c.newAddCmd(),
		c.newUpdateCmd(),
		c.newDeleteCmd(),
		c.newRestoreCmd(),
		c.newPhotoCmd(),
	)
	return root
}

// setup resolves the config directory, loads config.yaml and installs the
// logger. The serve command installs its own logger.
func (c *cli) setup(cmd *cobra.Command) error {
	if _, err := parseFormat(c.flagOutput); err != nil {
		return err
	}

	dir, err := paths.ResolveConfigDir(c.flagConfigDir)
	if err != nil {
		return fmt.Errorf("resolving config dir: %w", err)
	}
	c.configDir = dir

	c.cfg, err = loadConfig(dir)
	if err != nil {
		return err
	}
	for key, flag := range map[string]string{
		cfgKeyDB:     "db",
		cfgKeyRemote: "remote",
		cfgKeyToken:  "token",
		cfgKeyLog:    "log",
	} {
		if err := c.cfg.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}

	if cmd.Name() == "serve" {
		return nil
	}

	level := slog.LevelWarn
	if c.flagVerbose {
		level = slog.LevelDebug
	}
	c.closeLog, err = setupLogger(c.errOut, c.errOut, level, "")
	return err
}

// dbPath is the configured database, or zbirka.db in the data directory.
func (c *cli) dbPath() (string, error) {
	if p := c.cfg.GetString(cfgKeyDB); p != "" {
		return filepath.Abs(p)
	}
	dir, err := paths.ResolveDataDir("")
	if err != nil {
		return "", fmt.Errorf("resolving data dir: %w", err)
	}
	return filepath.Join(dir, paths.DatabaseFile), nil
}

// usageError marks a malformed command line.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// args wraps a cobra argument validator so its failures count as user errors.
func args(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := validate(cmd, a); err != nil {
			return usageError{err}
		}
		return nil
	}
}

var errNotInitialized = errors.New(`no database; run "zbirka init" first`)
