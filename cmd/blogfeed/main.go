package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emilythestrangee/blogfeed/backend/internal/cache"
	"github.com/emilythestrangee/blogfeed/backend/internal/config"
	"github.com/emilythestrangee/blogfeed/backend/internal/database"
	"github.com/emilythestrangee/blogfeed/backend/internal/groups"
	"github.com/emilythestrangee/blogfeed/backend/internal/logger"
	"github.com/emilythestrangee/blogfeed/backend/internal/server"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config and the environment and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openDB loads the config and connects. The caller must Close the service.
func openDB() (database.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

var rootCmd = &cobra.Command{
	Use:          "blogfeed",
	Short:        "Social blogging backend",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := database.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		store, closeStore, err := server.NewCacheStore(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		defer closeStore()

		images, err := server.NewMediaStore(ctx, cfg.Media)
		if err != nil {
			return err
		}

		pages := cache.NewPageCache(store, cfg.Cache.TTL)
		httpServer := server.New(cfg, db, pages, images).HTTPServer()

		errCh := make(chan error, 1)
		go func() {
			logger.Log.WithField("addr", httpServer.Addr).Info("server starting")
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	},
}

// group command
var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <slug>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		if title == "" {
			title = args[0]
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		group, err := groups.NewService(db.GetDB()).Create(cmd.Context(), title, args[0], description)
		if err != nil {
			return fmt.Errorf("creating group: %w", err)
		}

		fmt.Printf("Created group %q (id %d)\n", group.Slug, group.ID)
		return nil
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete a group, keeping its posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := groups.NewService(db.GetDB()).Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("deleting group: %w", err)
		}

		fmt.Printf("Deleted group %q\n", args[0])
		return nil
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		list, err := groups.NewService(db.GetDB()).List(cmd.Context())
		if err != nil {
			return err
		}

		if len(list) == 0 {
			fmt.Println("No groups.")
			return nil
		}
		for _, g := range list {
			fmt.Printf("%-4d %-20s %s\n", g.ID, g.Slug, g.Title)
		}
		return nil
	},
}

// cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the global feed page cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached feed page",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Cache.Backend != "redis" {
			fmt.Println("The memory cache lives inside the server process; restart it to clear.")
			return nil
		}

		store, closeStore, err := server.NewCacheStore(cmd.Context(), cfg.Cache)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := cache.NewPageCache(store, cfg.Cache.TTL).Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}

		fmt.Println("Page cache cleared.")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")

	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(groupCmd)
	groupCmd.AddCommand(groupCreateCmd)
	groupCreateCmd.Flags().StringP("title", "t", "", "Group title (defaults to the slug)")
	groupCreateCmd.Flags().StringP("description", "d", "", "Group description")
	groupCmd.AddCommand(groupDeleteCmd)
	groupCmd.AddCommand(groupListCmd)

	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
