// brentdash is the command line client for the dashboard API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/petrodata/brentdash/brent"
	"github.com/petrodata/brentdash/dump"
	"github.com/petrodata/brentdash/env"
	"github.com/petrodata/brentdash/httpclient"
	"github.com/petrodata/brentdash/logging"
	"github.com/petrodata/brentdash/objectstore"
	"github.com/petrodata/brentdash/tokenstore"
)

var (
	baseURL string
	timeout time.Duration
	token   string
	debug   bool
)

func main() {
	root := &cobra.Command{
		Use:           "brentdash",
		Short:         "Query the Brent crude dashboard API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if debug {
				level = slog.LevelDebug
			}
			logging.Init(logging.Config{DebugMode: debug, LogLevel: level})
		},
	}

	root.PersistentFlags().StringVar(&baseURL, "base-url",
		env.GetDefault("BRENT_API_URL", "http://localhost:5000/api"), "API root URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", brent.DefaultTimeout, "per-request timeout")
	root.PersistentFlags().StringVar(&token, "token", "", "bearer token; default comes from the token file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log requests")

	root.AddCommand(
		healthCmd(), pricesCmd(), eventsCmd(), changePointsCmd(),
		metricsCmd(), seasonalityCmd(), eventImpactCmd(), configCmd(),
		exportCmd(), archiveCmd(), loginCmd(), logoutCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func tokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".brentdash-token"
	}
	return filepath.Join(home, ".brentdash", "token")
}

func tokens(ctx context.Context) tokenstore.Source {
	if token != "" {
		return tokenstore.Static(token)
	}
	if addr := env.GetDefault("VAULT_ADDR", ""); addr != "" {
		source, err := tokenstore.NewVaultSource(ctx, tokenstore.VaultConfig{
			Address:   addr,
			RoleId:    env.GetRequired("VAULT_ROLE_ID"),
			SecretId:  env.GetRequired("VAULT_SECRET_ID"),
			MountPath: env.GetDefault("VAULT_MOUNT", "secret"),
			SecretKey: env.GetDefault("VAULT_SECRET_KEY", "brentdash"),
			Field:     env.GetDefault("VAULT_FIELD", "api_token"),
		})
		if err != nil {
			slog.Warn("cannot use vault token source", "err", err)
			return tokenstore.None
		}
		return source
	}
	return tokenstore.NewFileStore(tokenFile())
}

func newClient(ctx context.Context) *brent.Client {
	return brent.New(brent.Config{
		BaseURL:    baseURL,
		HTTPClient: httpclient.New("brentdash_cli", "api", timeout),
		Tokens:     tokens(ctx),
		Timeout:    timeout,
	})
}

// fetch runs a typed call and prints the result with spew, which keeps
// pointer fields like the moving averages readable.
func fetch[T any](call func(ctx context.Context, c *brent.Client) (*T, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		v, err := call(ctx, newClient(ctx))
		if err != nil {
			return err
		}
		dump.This(v)
		return nil
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API health",
		RunE: fetch(func(ctx context.Context, c *brent.Client) (*brent.Health, error) {
			return c.Health(ctx)
		}),
	}
}

func pricesCmd() *cobra.Command {
	var filter brent.PriceFilter
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Fetch the price series",
		RunE: fetch(func(ctx context.Context, c *brent.Client) (*brent.PriceSeries, error) {
			return c.Prices(ctx, filter)
		}),
	}
	cmd.Flags().StringVar(&filter.StartDate, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filter.EndDate, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "keep only the newest N points")
	cmd.Flags().StringVar(&filter.Resample, "resample", "", "weekly or monthly")
	return cmd
}

func eventsCmd() *cobra.Command {
	var filter brent.EventFilter
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Fetch market events",
		RunE: fetch(func(ctx context.Context, c *brent.Client) (*brent.EventList, error) {
			return c.Events(ctx, filter)
		}),
	}
	cmd.Flags().StringVar(&filter.Category, "category", "", "event category")
	cmd.Flags().StringVar(&filter.MinImpact, "min-impact", "", "minimum impact magnitude")
	cmd.Flags().StringVar(&filter.StartDate, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filter.EndDate, "end", "", "end date (YYYY-MM-DD)")
	return cmd
}

func changePointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-points",
		Short: "Fetch detected change points",
		RunE: fetch(func(ctx context.Context, c *brent.Client) (*brent.ChangePointList, error) {
			return c.ChangePoints(ctx)
		}),
	}
}

func metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Fetch dashboard metrics",
		RunE: fetch(func(ctx context.Context, c *brent.Client) (*brent.Metrics, error) {
			return c.Metrics(ctx)
		}),
	}
}

func seasonalityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seasonality",
		Short: "Fetch seasonality analysis",
		RunE: fetch(func(ctx context.Context, c *brent.Client) (*brent.Seasonality, error) {
			return c.Seasonality(ctx)
		}),
	}
}

func eventImpactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event-impact <name>",
		Short: "Analyze one event's price impact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			impact, err := newClient(ctx).EventImpact(ctx, args[0])
			if err != nil {
				return err
			}
			dump.This(impact)
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Fetch the dashboard configuration",
		RunE: fetch(func(ctx context.Context, c *brent.Client) (*brent.DashboardConfig, error) {
			return c.DashboardConfig(ctx)
		}),
	}
}

func exportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <prices|events>",
		Short: "Download a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			blob, err := newClient(ctx).ExportBlob(ctx, args[0], format)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = os.Stdout.Write(blob)
				return err
			}
			return os.WriteFile(out, blob, 0o644)
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or json")
	cmd.Flags().StringVar(&out, "out", "", "write to file instead of stdout")
	return cmd
}

func archiveCmd() *cobra.Command {
	var format string
	var keep time.Duration
	cmd := &cobra.Command{
		Use:   "archive <prices|events>",
		Short: "Export a dataset and store it in the object store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := objectstore.NewMinio(ctx,
				env.GetDefault("MINIO_BUCKET", "brentdash-exports"),
				env.GetRequired("MINIO_ENDPOINT"),
				env.GetRequired("MINIO_ACCESS_KEY"),
				env.GetRequired("MINIO_SECRET_KEY"),
			)
			if err != nil {
				return err
			}

			name, err := newClient(ctx).ArchiveExport(ctx, store, args[0], format, keep)
			if err != nil {
				return err
			}
			fmt.Println(name)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or json")
	cmd.Flags().DurationVar(&keep, "keep", 30*24*time.Hour, "how long the archive should live")
	return cmd
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <token>",
		Short: "Save a bearer token for later runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := tokenFile()
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return err
			}
			return tokenstore.NewFileStore(path).Save(args[0])
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tokenstore.NewFileStore(tokenFile()).Forget()
		},
	}
}
