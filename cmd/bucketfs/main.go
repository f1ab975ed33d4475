package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/bucketfs/bucketfs/internal/config"
	"github.com/bucketfs/bucketfs/internal/objectstore"
	"github.com/bucketfs/bucketfs/internal/objectstore/s3"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// errUsage marks errors caused by a malformed command line.
var errUsage = errors.New("usage error")

// backendOpener builds the storage backend for a loaded configuration.
type backendOpener func(ctx context.Context, cfg *config.Config) (objectstore.Backend, error)

// cli carries the process streams and the backend factory so commands can be run
// against an in-memory backend in tests.
type cli struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	openBackend backendOpener
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	c := &cli{
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		openBackend: openS3Backend,
	}
	code := c.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func openS3Backend(ctx context.Context, cfg *config.Config) (objectstore.Backend, error) {
	return s3.New(ctx, s3.Config{
		Region:            cfg.ObjectStore.Region,
		Endpoint:          cfg.ObjectStore.Endpoint,
		AccessKeyID:       cfg.ObjectStore.AccessKey,
		SecretAccessKey:   cfg.ObjectStore.SecretKey,
		UsePathStyle:      cfg.ObjectStore.UsePathStyle,
		UploadPartSize:    cfg.ObjectStore.UploadPartSizeBytes,
		UploadConcurrency: cfg.ObjectStore.UploadConcurrency,
	})
}

func (c *cli) run(ctx context.Context, args []string) int {
	// Handle version flag before subcommand parsing
	if len(args) > 0 && (args[0] == "--version" || args[0] == "-version") {
		fmt.Fprintf(c.stdout, "bucketfs version %s (built %s)\n", version, buildTime)
		return exitOK
	}

	if len(args) < 1 {
		c.printUsage()
		return exitUsage
	}

	name := args[0]
	switch name {
	case "version":
		fmt.Fprintf(c.stdout, "bucketfs version %s (built %s, commit %s)\n", version, buildTime, gitCommit)
		return exitOK
	case "help", "-h", "--help":
		c.printUsage()
		return exitOK
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(c.stderr, "unknown command: %s\n\n", name)
		c.printUsage()
		return exitUsage
	}

	err := c.runCommand(ctx, name, cmd, args[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(c.stderr, "bucketfs %s: %v\n", name, err)
		return exitUsage
	default:
		fmt.Fprintf(c.stderr, "bucketfs %s: %v\n", name, err)
		return exitFailure
	}
}

func (c *cli) printUsage() {
	names := make([]string, 0, len(commands))
	width := 0
	for name := range commands {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Usage: bucketfs <command> [options] [args]\n\nCommands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, name, commands[name].summary)
	}
	fmt.Fprintf(&b, "  %-*s  %s\n", width, "version", "Print version information")
	b.WriteString("\nPaths are relative to the configured prefix. An s3://bucket/key argument\nselects the bucket when -bucket is not given.\n\n")
	b.WriteString("Run 'bucketfs <command> -h' for more information on a command.\n")
	fmt.Fprint(c.stdout, b.String())
}
