package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"portfolio-terminal/internal/config"
	"portfolio-terminal/internal/content"
	"portfolio-terminal/internal/prefs"
	"portfolio-terminal/internal/server"
	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/view"
	"portfolio-terminal/internal/web"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "A themed portfolio served over SSH",
		Long:          "portfolio serves a personal portfolio as a terminal UI over SSH, with an optional HTTP preview.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newRenderCmd(), newThemesCmd())
	return root
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Formatter:       log.LogfmtFormatter,
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "portfolio",
	})
}

func newServeCmd() *cobra.Command {
	var (
		httpAddr    string
		contentPath string
		port        int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the SSH server (and HTTP preview when configured)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("http") {
				cfg.HTTPAddr = httpAddr
			}
			if cmd.Flags().Changed("content") {
				cfg.ContentPath = contentPath
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			logger := newLogger(os.Stderr, cfg.LogLevel)
			log.SetDefault(logger)

			store, err := content.NewStore(cfg.ContentPath, logger)
			if err != nil {
				return fmt.Errorf("load content: %w", err)
			}

			deps := server.Dependencies{
				Logger:  logger,
				Content: store,
				Prefs:   prefs.NewFileStore(cfg.PrefsPath),
				Watcher: store,
			}
			if cfg.HTTPAddr != "" {
				deps.HTTP = web.NewHandler(store, logger).Routes()
			}

			runtime, err := server.New(cfg, deps)
			if err != nil {
				return fmt.Errorf("build ssh server: %w", err)
			}
			if err := runtime.Run(cmd.Context()); err != nil {
				return fmt.Errorf("run ssh server: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "HTTP preview address, empty disables (overrides PORTFOLIO_HTTP_ADDR)")
	cmd.Flags().StringVar(&contentPath, "content", "", "content YAML file (overrides PORTFOLIO_CONTENT_PATH)")
	cmd.Flags().IntVar(&port, "port", 0, "SSH port (overrides PORTFOLIO_SSH_PORT)")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		page        string
		themeName   string
		width       int
		ansi        bool
		contentPath string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print a page to stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := view.ParseName(page)
			if err != nil {
				return err
			}
			th, err := theme.Parse(themeName)
			if err != nil {
				return err
			}
			store, err := content.NewStore(contentPath, log.New(io.Discard))
			if err != nil {
				return fmt.Errorf("load content: %w", err)
			}
			out, err := web.Render(store, name, th, width, ansi)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&page, "view", string(view.NameHome), "page to render (home, opensource)")
	cmd.Flags().StringVar(&themeName, "theme", string(theme.NameDark), "theme name")
	cmd.Flags().IntVar(&width, "width", 80, "render width in columns")
	cmd.Flags().BoolVar(&ansi, "ansi", false, "keep colour escapes")
	cmd.Flags().StringVar(&contentPath, "content", "", "content YAML file (default: embedded)")
	return cmd
}

func newThemesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List the available themes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if asJSON {
				rows := map[theme.Name]map[theme.Token]string{}
				for _, name := range theme.Names() {
					th, err := theme.Get(name)
					if err != nil {
						return err
					}
					rows[name] = th.Tokens()
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			for _, name := range theme.Names() {
				if _, err := fmt.Fprintf(out, "%-6s toggles to %s\n", name, theme.Toggle(name)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print tokens as JSON")
	return cmd
}
