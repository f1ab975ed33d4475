package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bucketfs/bucketfs/internal/adapter"
	"github.com/bucketfs/bucketfs/internal/logging"
)

var errNotExist = errors.New("no such file or directory")

// action runs a command against an open session. args have had any s3:// scheme
// stripped.
type action func(ctx context.Context, c *cli, s *session, args []string) error

type command struct {
	summary string
	// synopsis describes the positional arguments.
	synopsis string
	minArgs  int
	maxArgs  int
	// bind registers command-specific flags and returns the action.
	bind func(fs *flag.FlagSet) action
}

func simple(a action) func(*flag.FlagSet) action {
	return func(*flag.FlagSet) action { return a }
}

var commands = map[string]command{
	"ls": {
		summary:  "List directory contents as JSON lines",
		synopsis: "[dir]",
		minArgs:  0,
		maxArgs:  1,
		bind: func(fs *flag.FlagSet) action {
			recursive := fs.Bool("r", false, "List recursively")
			return func(ctx context.Context, c *cli, s *session, args []string) error {
				return runList(ctx, c, s, args, *recursive)
			}
		},
	},
	"stat":       {summary: "Print metadata for a path", synopsis: "<path>", minArgs: 1, maxArgs: 1, bind: simple(runStat)},
	"cat":        {summary: "Write file contents to stdout", synopsis: "<path>", minArgs: 1, maxArgs: 1, bind: simple(runCat)},
	"mkdir":      {summary: "Create a directory marker", synopsis: "<dir>", minArgs: 1, maxArgs: 1, bind: simple(runMkdir)},
	"rm":         {summary: "Delete a file", synopsis: "<path>", minArgs: 1, maxArgs: 1, bind: simple(runRemove)},
	"rmdir":      {summary: "Delete a directory and everything under it", synopsis: "<dir>", minArgs: 1, maxArgs: 1, bind: simple(runRemoveDir)},
	"cp":         {summary: "Copy a file, keeping its visibility", synopsis: "<src> <dst>", minArgs: 2, maxArgs: 2, bind: simple(runCopy)},
	"mv":         {summary: "Rename a file", synopsis: "<src> <dst>", minArgs: 2, maxArgs: 2, bind: simple(runRename)},
	"exists":     {summary: "Report whether a file or directory exists", synopsis: "<path>", minArgs: 1, maxArgs: 1, bind: simple(runExists)},
	"visibility": {summary: "Get or set the visibility of a file", synopsis: "<path> [public|private]", minArgs: 1, maxArgs: 2, bind: simple(runVisibility)},
	"put": {
		summary:  "Upload a local file, or stdin when the source is -",
		synopsis: "<local-file|-> <path>",
		minArgs:  2,
		maxArgs:  2,
		bind: func(fs *flag.FlagSet) action {
			update := fs.Bool("update", false, "Use update semantics (same storage effect as write)")
			return func(ctx context.Context, c *cli, s *session, args []string) error {
				return runPut(ctx, c, s, args, *update)
			}
		},
	},
}

func (c *cli) runCommand(ctx context.Context, name string, cmd command, args []string) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	g := registerGlobalFlags(fs)
	act := cmd.bind(fs)

	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage: bucketfs %s [options] %s\n\n%s.\n\nOptions:\n", name, cmd.synopsis, cmd.summary)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	rest := fs.Args()
	if len(rest) < cmd.minArgs || len(rest) > cmd.maxArgs {
		fs.Usage()
		return fmt.Errorf("%w: expected arguments %s", errUsage, cmd.synopsis)
	}

	paths, urlBucket, err := resolvePaths(rest)
	if err != nil {
		return err
	}

	ctx, s, err := c.openSession(ctx, g, urlBucket)
	if err != nil {
		return err
	}
	defer s.close()

	err = act(ctx, c, s, paths)
	if err != nil {
		s.logger.Debugf("command failed", logging.Err(err, logging.Fields{"command": name}))
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}

func runList(ctx context.Context, c *cli, s *session, args []string, recursive bool) error {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}
	entries, err := s.fs.ListContents(ctx, dir, recursive)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := printJSON(c.stdout, entry); err != nil {
			return err
		}
	}
	return nil
}

func runStat(ctx context.Context, c *cli, s *session, args []string) error {
	m, ok, err := s.fs.GetMetadata(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", args[0], errNotExist)
	}
	return printJSON(c.stdout, m)
}

func runCat(ctx context.Context, c *cli, s *session, args []string) error {
	m, err := s.fs.ReadStream(ctx, args[0])
	if err != nil {
		return err
	}
	if m.Stream == nil {
		return fmt.Errorf("%s: is a directory", args[0])
	}
	defer m.Stream.Close()

	_, err = io.Copy(c.stdout, m.Stream)
	return err
}

func runPut(ctx context.Context, c *cli, s *session, args []string, update bool) error {
	cfg, err := s.writeConfig()
	if err != nil {
		return err
	}

	src, dst := args[0], args[1]
	var r io.Reader
	if src == "-" {
		r = c.stdin
	} else {
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var m adapter.Metadata
	if update {
		m, err = s.fs.UpdateStream(ctx, dst, r, cfg)
	} else {
		m, err = s.fs.WriteStream(ctx, dst, r, cfg)
	}
	if err != nil {
		return err
	}
	return printJSON(c.stdout, m)
}

func runMkdir(ctx context.Context, c *cli, s *session, args []string) error {
	cfg, err := s.writeConfig()
	if err != nil {
		return err
	}
	m, err := s.fs.CreateDir(ctx, args[0], cfg)
	if err != nil {
		return err
	}
	return printJSON(c.stdout, m)
}

func runRemove(ctx context.Context, _ *cli, s *session, args []string) error {
	return s.fs.Delete(ctx, args[0])
}

func runRemoveDir(ctx context.Context, _ *cli, s *session, args []string) error {
	return s.fs.DeleteDir(ctx, args[0])
}

func runCopy(ctx context.Context, _ *cli, s *session, args []string) error {
	return s.fs.Copy(ctx, args[0], args[1])
}

func runRename(ctx context.Context, _ *cli, s *session, args []string) error {
	return s.fs.Rename(ctx, args[0], args[1])
}

func runExists(ctx context.Context, c *cli, s *session, args []string) error {
	ok, err := s.fs.Has(ctx, args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, ok)
	return err
}

func runVisibility(ctx context.Context, c *cli, s *session, args []string) error {
	if len(args) == 1 {
		rec, err := s.fs.GetVisibility(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(c.stdout, rec)
	}

	v, ok := adapter.ParseVisibility(args[1])
	if !ok {
		return fmt.Errorf("%w: visibility must be public or private, got %q", errUsage, args[1])
	}
	rec, err := s.fs.SetVisibility(ctx, args[0], v)
	if err != nil {
		return err
	}
	return printJSON(c.stdout, rec)
}
