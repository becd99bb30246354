package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/brojonat/tipjar/client"
	"github.com/urfave/cli/v2"
)

func listTipsCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List indexed tips from the tipjar service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "network",
				Usage: "Network to query (mainnet or devnet)",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of tips to return",
				Value:   50,
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Number of tips to skip",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output tips as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			cl := newServiceClient(c)

			tips, err := cl.ListTips(context.Background(), client.ListTipsOptions{
				Network: c.String("network"),
				Limit:   c.Int("limit"),
				Offset:  c.Int("offset"),
			})
			if err != nil {
				return fmt.Errorf("failed to list tips: %w", err)
			}

			if c.Bool("json") {
				data, err := json.MarshalIndent(tips, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal tips: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			if len(tips) == 0 {
				fmt.Println("No tips found.")
				return nil
			}
			for _, t := range tips {
				ts := time.UnixMilli(t.TimestampMS).UTC()
				fmt.Printf("%s  %-13s %8.4f SOL  %s\n",
					ts.Format(time.RFC3339),
					t.TipperShort,
					t.AmountSOL,
					t.Message,
				)
			}
			return nil
		},
	}
}

func getTipCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get a single indexed tip by its record address",
		ArgsUsage: "RECORD_ADDRESS",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("record address is required")
			}

			cl := newServiceClient(c)
			t, err := cl.GetTip(context.Background(), c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("failed to get tip: %w", err)
			}

			data, err := json.MarshalIndent(t, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal tip: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server health",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
				Value: 5 * time.Second,
			},
		},
		Action: func(c *cli.Context) error {
			serverURL := c.String("server-url")
			if serverURL == "" {
				return fmt.Errorf("server-url is required (set SERVER_URL env var or use --server-url)")
			}

			httpClient := &http.Client{Timeout: c.Duration("timeout")}
			cl := client.NewClient(serverURL, httpClient, nil)

			if err := cl.Health(context.Background()); err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			fmt.Printf("✓ Server is healthy\n")
			fmt.Printf("  URL: %s\n", serverURL)
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			fmt.Printf("tipjar CLI\n")
			fmt.Printf("  Version: %s\n", version)
			fmt.Printf("  Commit:  %s\n", commit)
			fmt.Printf("  Built:   %s\n", date)
			return nil
		},
	}
}

// newServiceClient builds an HTTP client for the tipjar service using the
// global --server-url flag.
func newServiceClient(c *cli.Context) *client.Client {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	return client.NewClient(c.String("server-url"), nil, logger)
}
