package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dockside/receiving/internal/cli"
	"github.com/dockside/receiving/internal/offline"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the offline cache",
		Long:  `Install, inspect and clear the versioned offline cache of static assets and API responses.`,
	}

	cmd.AddCommand(cacheInstallCmd())
	cmd.AddCommand(cacheStatusCmd())
	cmd.AddCommand(cachePurgeCmd())

	return cmd
}

func cacheInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Precache the static assets and activate this version",
		Long: `Download every static asset into a cache generation named after cache.version,
then make it current and delete every other generation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			base, err := url.Parse(cfg.Backend.URL)
			if err != nil {
				return fmt.Errorf("invalid backend url: %w", err)
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Cache install interrupted; the active cache is unchanged")
			ctx, stop := handler.HandleInterrupts(cmd.Context())
			defer stop()

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("failed to close cache", "error", closeErr)
				}
			}()

			workers, _ := cmd.Flags().GetInt("concurrency")
			policy := cfg.Policy()
			installer := &offline.Installer{
				Store:       store,
				Policy:      policy,
				Client:      &http.Client{Timeout: cfg.Backend.Timeout},
				BaseURL:     base,
				Concurrency: workers,
			}

			bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(policy.Assets()), "Caching assets...")
			err = installer.Install(ctx, func(_, _ int, path string) {
				bar.Describe("[cyan][bold]" + path + "[reset]")
				_ = bar.Add(1)
			})
			if err != nil {
				return err
			}

			removed, err := installer.Activate(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Activated %s with %d asset(s)", policy.Version, len(policy.Assets()))))
			if len(removed) > 0 {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Deleted %d stale generation(s)", len(removed))))
			}
			return nil
		},
	}
	cmd.Flags().Int("concurrency", 4, "parallel downloads")
	return cmd
}

func cacheStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List cache generations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			gens, err := store.ListGenerations(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(gens) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("Cache is empty. Run 'receiving cache install'."))
				return nil
			}

			rows := make([][]string, len(gens))
			for i, g := range gens {
				state := ""
				if g.Active {
					state = "active"
				}
				if g.Name != cfg.Cache.Version {
					state += " (stale)"
				}
				rows[i] = []string{g.Name, strconv.Itoa(g.Entries), g.InstalledAt.Local().Format(time.DateTime), state}
			}
			return printTable(out, []string{"Version", "Entries", "Installed", "State"}, rows)
		},
	}
}

func cachePurgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every cached response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Purge(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess("Offline cache cleared"))

			if session, _ := cmd.Flags().GetBool("session"); session {
				base, err := url.Parse(cfg.Backend.URL)
				if err != nil {
					return fmt.Errorf("invalid backend url: %w", err)
				}
				if err := store.ClearCookies(ctx, base.Host); err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess("Stored session cleared"))
			}
			return nil
		},
	}
	cmd.Flags().Bool("session", false, "also forget the stored login session")
	return cmd
}
