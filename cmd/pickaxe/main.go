// Command pickaxe 运行 Pickaxe worker、MCP 服务器和一次性的工具选择
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hatchet-dev/pickaxe/pkg/core/config"
	"github.com/hatchet-dev/pickaxe/pkg/otel"
	"github.com/hatchet-dev/pickaxe/pkg/pickaxe"
	"github.com/hatchet-dev/pickaxe/pkg/protocols/mcp"
	"github.com/hatchet-dev/pickaxe/pkg/tools/builtin"
	"github.com/hatchet-dev/pickaxe/pkg/workflow/store"
)

// Version 构建时通过 -ldflags 注入
var Version = "0.1.0"

const usage = `Pickaxe - tool selection and execution for durable agents

Usage:
  pickaxe [-C dir] [-config file] <command> [flags]

Commands:
  worker                  Start the worker with the builtin toolbox
  run [-max-tools N] <prompt>
                          Pick and run builtin tools for a prompt
  mcp [-http addr]        Serve tools and toolboxes over MCP (stdio by default)
  runs [-limit N] [-task name] [-status s]
                          List stored runs
  version                 Show version

Global flags:
  -C dir                  Change to dir before doing anything
  -config file            YAML or JSON config file (default: pickaxe.yaml if present)

Environment variables with the PICKAXE_ prefix override the config file,
e.g. PICKAXE_LLM_API_KEY, PICKAXE_STORE_DRIVER=sqlite.
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("pickaxe", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	dir := global.String("C", "", "change to `dir` before running")
	configPath := global.String("config", "", "config `file`")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return nil
	}

	if *dir != "" {
		home, _ := os.UserHomeDir()
		target, warning, err := resolveWorkDir(*dir, home)
		if err != nil {
			return err
		}
		if warning != "" {
			fmt.Fprintln(stderr, warnStyle.Render("Warning: "+warning))
		}
		if err := os.Chdir(target); err != nil {
			return err
		}
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "Hatchet Pickaxe v%s\n", Version)
		return nil
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "worker":
		return runWorker(ctx, cfg)
	case "run":
		return runPrompt(ctx, cfg, cmdArgs, stdout, stderr)
	case "mcp":
		return runMCP(ctx, cfg, cmdArgs, stderr)
	case "runs":
		return listRuns(ctx, cfg, cmdArgs, stdout, stderr)
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// loadConfig 未指定配置文件时尝试当前目录下的 pickaxe.yaml
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		if _, err := os.Stat("pickaxe.yaml"); err == nil {
			path = "pickaxe.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return *cfg, nil
}

// newClient 按配置创建客户端并注册内置工具箱
func newClient(ctx context.Context, cfg config.Config) (*pickaxe.Pickaxe, *pickaxe.Toolbox, error) {
	px, _, err := pickaxe.FromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	box, err := px.Toolbox(pickaxe.ToolboxOptions{Tools: builtin.Defaults()})
	if err != nil {
		_ = px.Close(context.Background())
		return nil, nil, err
	}
	return px, box, nil
}

func runWorker(ctx context.Context, cfg config.Config) error {
	px, box, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer px.Close(context.Background())

	px.Logger().Info("worker ready", "worker", cfg.Worker.Name, "toolbox", box.Key())
	return px.Start(ctx)
}

func runPrompt(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	maxTools := fs.Int("max-tools", 1, "maximum number of tools to run")
	if err := fs.Parse(args); err != nil {
		return err
	}
	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		return fmt.Errorf("usage: pickaxe run [-max-tools N] <prompt>")
	}

	px, box, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer px.Close(context.Background())

	results, err := box.PickAndRunAll(ctx, pickaxe.PickOptions{Prompt: prompt, MaxTools: *maxTools})
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, renderResults(box.Key(), results))
	return nil
}

func runMCP(ctx context.Context, cfg config.Config, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("http", "", "serve MCP over HTTP on `addr` instead of stdio")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// stdio 模式下 stdout 只能输出协议消息
	if *addr == "" && cfg.Observability.Exporter == config.ExporterStdout {
		cfg.Observability.Exporter = config.ExporterNone
	}

	px, _, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer px.Close(context.Background())

	server, err := mcp.FromPickaxe(px, mcp.WithVersion(Version), mcp.WithLogger(px.Logger()))
	if err != nil {
		return err
	}

	if *addr != "" {
		return serveHTTP(ctx, *addr, server, px.Logger())
	}
	if err := server.Run(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func listRuns(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int("limit", 20, "maximum number of runs to list")
	task := fs.String("task", "", "only list runs of this task")
	status := fs.String("status", "", "only list runs with this status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.Store.Driver == config.StoreMemory {
		fmt.Fprintln(stderr, warnStyle.Render("Warning: the memory store keeps no runs between processes; set store.driver to sqlite"))
	}

	runs, err := store.New(cfg.Store)
	if err != nil {
		return err
	}
	defer runs.Close()

	list, err := runs.List(ctx, store.Filter{
		Task:   *task,
		Status: store.Status(*status),
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, renderRuns(list))
	return nil
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger otel.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mcp http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
