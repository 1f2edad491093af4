// CLAUDE:SUMMARY CLI entry point for blockdoc: one-shot import and paste cleanup, HTTP daemon, and MCP over stdio.
// Command blockdoc imports .docx and .pdf files into block documents.
//
// Usage:
//
//	blockdoc import [-config blockdoc.yaml] report.docx   # document JSON on stdout
//	blockdoc clean [-text|-markdown] pasted.html         # cleaned markup on stdout
//	blockdoc serve [-config blockdoc.yaml] [-addr :8086] [-db drafts.db]
//	blockdoc mcp [-config blockdoc.yaml]                 # MCP tools over stdio
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/blockdoc/dbopen"
	"github.com/hazyhaar/blockdoc/docimport"
	"github.com/hazyhaar/blockdoc/drafts"
	"github.com/hazyhaar/blockdoc/httpapi"
	"github.com/hazyhaar/blockdoc/sanitize"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "import":
		err = cmdImport(ctx, os.Args[2:])
	case "clean":
		err = cmdClean(os.Args[2:], os.Stdin, os.Stdout)
	case "serve":
		err = cmdServe(ctx, os.Args[2:])
	case "mcp":
		err = cmdMCP(ctx, os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("blockdoc: fatal", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `blockdoc: import Word and PDF documents into block documents

usage:
  blockdoc import [-config file] [-log-level l] <file.docx|file.pdf>
  blockdoc clean  [-text|-markdown] <file.html|->
  blockdoc serve  [-config file] [-addr :8086] [-db path] [-log-level l]
  blockdoc mcp    [-config file] [-log-level l]

import  Prints the document JSON with its derived name.
clean   Cleans word-processor HTML; -text prints plain text, -markdown Markdown.
serve   Runs the HTTP API (import, clean, drafts).
mcp     Serves the blockdoc_* tools over stdio.

environment: BLOCKDOC_ADDR, BLOCKDOC_DB, LOG_LEVEL
`)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadConfig(path string, logger *slog.Logger) (*httpapi.Config, error) {
	cfg, err := httpapi.LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger
	cfg.Import.Logger = logger
	return cfg, nil
}

func cmdImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", "", "path to blockdoc.yaml")
	logLevel := fs.String("log-level", env("LOG_LEVEL", "warn"), "log level: debug, info, warn, error")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("import requires exactly one file")
	}

	logger := newLogger(*logLevel)
	cfg, err := loadConfig(*configPath, logger)
	if err != nil {
		return err
	}
	imp, err := docimport.New(cfg.Import)
	if err != nil {
		return fmt.Errorf("init importer: %w", err)
	}

	res, err := imp.ImportNamed(ctx, docimport.LocalFile(fs.Arg(0)))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func cmdClean(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	asText := fs.Bool("text", false, "print plain text")
	asMarkdown := fs.Bool("markdown", false, "print Markdown")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("clean requires one file, or - for stdin")
	}
	if *asText && *asMarkdown {
		return errors.New("-text and -markdown are exclusive")
	}

	in := stdin
	if name := fs.Arg(0); name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var out string
	switch {
	case *asText:
		out = sanitize.PlainText(string(data))
	case *asMarkdown:
		if out, err = sanitize.Markdown(string(data)); err != nil {
			return err
		}
	default:
		out = sanitize.Clean(string(data))
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

func cmdServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to blockdoc.yaml")
	addr := fs.String("addr", "", "listen address (overrides config and BLOCKDOC_ADDR)")
	dbPath := fs.String("db", "", "SQLite drafts database (overrides config and BLOCKDOC_DB)")
	logLevel := fs.String("log-level", env("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	fs.Parse(args)

	logger := newLogger(*logLevel)
	cfg, err := loadConfig(*configPath, logger)
	if err != nil {
		return err
	}
	cfg.Listen = env("BLOCKDOC_ADDR", cfg.Listen)
	cfg.DBPath = env("BLOCKDOC_DB", cfg.DBPath)
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	imp, err := docimport.New(cfg.Import)
	if err != nil {
		return fmt.Errorf("init importer: %w", err)
	}

	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll(), dbopen.WithMigrations(drafts.Migrations...))
	if err != nil {
		return fmt.Errorf("drafts db: %w", err)
	}
	defer db.Close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpapi.NewServer(*cfg, imp, drafts.NewStore(db)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("blockdoc: listening", "addr", cfg.Listen, "db", cfg.DBPath, "auth", cfg.Auth.Enabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("blockdoc: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func cmdMCP(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	configPath := fs.String("config", "", "path to blockdoc.yaml")
	logLevel := fs.String("log-level", env("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	fs.Parse(args)

	logger := newLogger(*logLevel)
	cfg, err := loadConfig(*configPath, logger)
	if err != nil {
		return err
	}
	imp, err := docimport.New(cfg.Import)
	if err != nil {
		return fmt.Errorf("init importer: %w", err)
	}

	srv := mcp.NewServer(&mcp.Implementation{Name: "blockdoc", Version: version}, nil)
	imp.RegisterMCP(srv)
	logger.Info("blockdoc: mcp on stdio")
	return srv.Run(ctx, &mcp.StdioTransport{})
}
