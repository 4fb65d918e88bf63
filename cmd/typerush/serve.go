package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saurabhk79/TypeRush/internal/config"
	"github.com/saurabhk79/TypeRush/internal/generator"
	"github.com/saurabhk79/TypeRush/internal/server"
	"github.com/saurabhk79/TypeRush/internal/store"
	"github.com/saurabhk79/TypeRush/internal/wordlist"
)

var (
	serveAddr      string
	serveEphemeral bool
	serveEnvFile   string
	serveDB        string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the score and ghost API server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config and environment)")
	cmd.Flags().BoolVar(&serveEphemeral, "ephemeral", false, "keep scores in memory only")
	cmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "dotenv file to load")
	cmd.Flags().StringVar(&serveDB, "db", "", "database path (default: XDG data dir)")
	return cmd
}

func runServeCmd(_ *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings, err := config.ResolveServer(fileCfg.Server, serveEnvFile)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		settings.Addr = serveAddr
	}

	var repo server.Repository
	if serveEphemeral {
		repo = store.NewMemory()
	} else {
		path := serveDB
		if path == "" {
			path = config.DefaultDBPath()
		}
		st, err := store.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		repo = st
	}

	text := generator.NewProvider(nil, wordlist.Default(), generator.Options{})
	srv := server.New(repo, text, server.Config{
		RateRPS:   settings.RateRPS,
		RateBurst: settings.RateBurst,
		Logger:    log.New(os.Stderr, "", log.LstdFlags),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, settings.Addr)
}
