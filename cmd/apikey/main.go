// Command apikey manages bearer tokens for the dashboard API.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/ganot/shipdash/internal/sqlite"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	dbPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "apikey",
		Short:        "Manage shipdash API keys",
		SilenceUsage: true,
	}

	defaultDB := os.Getenv("SHIPDASH_DB_PATH")
	if defaultDB == "" {
		defaultDB = "shipdash.db"
	}
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", defaultDB, "path to the SQLite database")

	rootCmd.AddCommand(
		newCreateCmd(opts),
		newRevokeCmd(opts),
		newListCmd(opts),
	)

	return rootCmd
}

func openKeys(opts *options) (*sqlite.APIKeyRepository, func(), error) {
	if dir := filepath.Dir(opts.dbPath); dir != "." && opts.dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("prepare database path: %w", err)
		}
	}
	db, err := sqlite.New(opts.dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return sqlite.NewAPIKeyRepository(db), func() { _ = db.Close() }, nil
}

func newCreateCmd(opts *options) *cobra.Command {
	var tenantID, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new key for a tenant and print it once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, closeDB, err := openKeys(opts)
			if err != nil {
				return err
			}
			defer closeDB()

			token, err := keys.Create(cmd.Context(), tenantID, description)
			if err != nil {
				return fmt.Errorf("create key: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "default", "tenant the key belongs to")
	cmd.Flags().StringVar(&description, "description", "", "free-form note stored with the key")
	return cmd
}

func newRevokeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <token>",
		Short: "Revoke a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, closeDB, err := openKeys(opts)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := keys.Revoke(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("revoke key: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "revoked")
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List key hashes for a tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, closeDB, err := openKeys(opts)
			if err != nil {
				return err
			}
			defer closeDB()

			list, err := keys.List(cmd.Context(), tenantID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "HASH\tCREATED\tLAST USED\tDESCRIPTION")
			for _, k := range list {
				lastUsed := "-"
				if k.LastUsed != nil {
					lastUsed = k.LastUsed.Format(time.RFC3339)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", k.Hash[:12], k.CreatedAt.Format(time.RFC3339), lastUsed, k.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "default", "tenant to list")
	return cmd
}
