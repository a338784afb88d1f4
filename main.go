package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lexandro/stylecache-mcp/index"
	"github.com/lexandro/stylecache-mcp/pass"
	"github.com/lexandro/stylecache-mcp/server"
	"github.com/lexandro/stylecache-mcp/style"
	"github.com/lexandro/stylecache-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// extensionList is a repeatable CLI flag for extensions stripped from keys.
type extensionList []string

func (e *extensionList) String() string { return strings.Join(*e, ", ") }
func (e *extensionList) Set(value string) error {
	if !strings.HasPrefix(value, ".") {
		value = "." + value
	}
	*e = append(*e, value)
	return nil
}

func main() {
	// Parse CLI flags
	var rootDir string
	var workers int
	var sassSyntax string
	var stylesDir string
	var refreshInterval time.Duration
	var logLevel string
	var logFile string
	var stripExtensions extensionList

	flag.StringVar(&rootDir, "root", "", "Stylesheet source root (default: current working directory)")
	flag.IntVar(&workers, "workers", pass.DefaultWorkers, "Number of parallel compile workers")
	flag.StringVar(&sassSyntax, "sass-syntax", "never", "Indented syntax for .sass files: never|extension")
	flag.StringVar(&stylesDir, "styles-dir", style.DefaultConventionalDir, "Relative directory name stripped from keys")
	flag.Var(&stripExtensions, "strip-ext", "Extension stripped from keys (repeatable, default .scss)")
	flag.DurationVar(&refreshInterval, "refresh-interval", 0, "Recompile when sources change, checked at this interval (0 disables)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: stylecache-mcp.log in the root)")
	flag.Parse()

	if rootDir == "" {
		var err error
		rootDir, err = os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
			os.Exit(1)
		}
	}

	syntaxPolicy, err := style.ParseSyntaxPolicy(sassSyntax)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(stripExtensions) == 0 {
		stripExtensions = style.DefaultStripExtensions
	}

	if logFile == "" {
		logFile = filepath.Join(rootDir, "stylecache-mcp.log")
	}

	// Never log to stdout - stdout is for MCP stdio
	logger := setupLogger(logLevel, logFile)

	logger.Info("starting stylecache-mcp",
		"root", rootDir,
		"workers", workers,
		"sassSyntax", syntaxPolicy.String(),
		"stripExtensions", stripExtensions.String(),
	)

	startTime := time.Now()

	store := index.NewStore()
	cssIndex, err := index.NewCSSIndex()
	if err != nil {
		logger.Error("failed to create css index", "error", err)
		os.Exit(1)
	}
	defer cssIndex.Close()

	runner := pass.NewRunner(pass.Options{
		Root:            rootDir,
		Workers:         workers,
		ConventionalDir: stylesDir,
		StripExtensions: stripExtensions,
		Compiler:        style.NewLibSass(style.LibSassOptions{IndentedSyntax: syntaxPolicy}),
		Store:           store,
		CSSIndex:        cssIndex,
		Logger:          logger,
	})

	// Initial pass; the cache is usable even if every file failed
	result := runner.Run()
	logger.Info("initial compile complete",
		"entries", result.Entries,
		"totalSize", result.TotalSize,
		"duration", time.Since(startTime),
	)

	if refreshInterval > 0 {
		stop := make(chan struct{})
		defer close(stop)
		go runPeriodicRefresh(refreshInterval, runner, logger, stop)
	}

	getHandler := &tools.GetHandler{Store: store, Logger: logger}
	keysHandler := &tools.KeysHandler{Store: store, Logger: logger}
	searchHandler := &tools.SearchHandler{CSSIndex: cssIndex, Logger: logger}
	statusHandler := &tools.StatusHandler{
		Store:      store,
		CSSIndex:   cssIndex,
		LastResult: runner.LastResult,
		StartTime:  startTime,
		RootDir:    rootDir,
		Logger:     logger,
	}
	recompileHandler := &tools.RecompileHandler{DoRecompile: runner.Run, Logger: logger}

	mcpServer := server.Setup(getHandler, keysHandler, searchHandler, statusHandler, recompileHandler)

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
