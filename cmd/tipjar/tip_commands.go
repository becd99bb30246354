package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brojonat/tipjar/service/solana"
	"github.com/brojonat/tipjar/service/tip"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"
)

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "Send a tip from a local keypair",
		Description: fmt.Sprintf(`Signs and submits a tip transaction, then blocks until the network
finalizes it. Preset amounts: %v SOL.`, tip.AmountPresets),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "keypair",
				Aliases: []string{"k"},
				Usage:   "Path to a Solana keygen JSON keypair file",
				EnvVars: []string{"SOLANA_KEYPAIR"},
				Value:   os.ExpandEnv("$HOME/.config/solana/id.json"),
			},
			&cli.StringFlag{
				Name:    "recipient",
				Usage:   "Tip recipient address",
				EnvVars: []string{"TIP_RECIPIENT_ADDRESS"},
				Value:   "GsJYonU5Kz4MJBHZ5UFx9oyStBpXXswnZcFUorktj2yZ",
			},
			&cli.Float64Flag{
				Name:     "amount",
				Aliases:  []string{"a"},
				Usage:    "Tip amount in SOL",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "message",
				Aliases:  []string{"m"},
				Usage:    fmt.Sprintf("Tip message (max %d characters)", tip.MaxMessageLength),
				Required: true,
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Value:   90 * time.Second,
				Usage:   "How long to wait for finalization",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output result as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			programID, err := solanago.PublicKeyFromBase58(c.String("program"))
			if err != nil {
				return fmt.Errorf("invalid program address: %w", err)
			}
			recipient, err := solanago.PublicKeyFromBase58(c.String("recipient"))
			if err != nil {
				return fmt.Errorf("invalid recipient address: %w", err)
			}

			// Create logger (errors only, stdout stays clean for output)
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError,
			}))

			rpcClient := solana.NewRPCClient(c.String("rpc-url"))
			chain := solana.NewClient(rpcClient, programID, "cli", nil, logger)

			wallet, err := solana.NewKeypairWalletFromFile(c.String("keypair"), chain, logger)
			if err != nil {
				return fmt.Errorf("failed to load keypair: %w", err)
			}

			ctx := context.Background()
			session := tip.NewSession().BeginConnect()
			tipper, err := wallet.Connect(ctx)
			if err != nil {
				return fmt.Errorf("failed to connect wallet: %w", err)
			}
			session = session.ConnectSucceeded(tipper)

			req := tip.Request{
				Tipper:    tipper,
				AmountSOL: c.Float64("amount"),
				Message:   c.String("message"),
				Timestamp: time.Now().Unix(),
			}

			if !c.Bool("json") {
				fmt.Fprintf(os.Stderr, "Sending %.4f SOL tip from %s...\n", req.AmountSOL, session.WalletShort)
			}

			pipeline := tip.NewPipeline(wallet, chain, programID, recipient, c.Duration("timeout"), nil, logger)
			aggregator := tip.NewAggregator(chain, nil, logger)

			session, sig, err := runTipSession(ctx, session, pipeline, aggregator, req, logger)
			if err != nil {
				return fmt.Errorf("tip submission failed: %w", err)
			}

			if c.Bool("json") {
				data, err := json.MarshalIndent(map[string]interface{}{
					"signature":  sig.String(),
					"tipper":     tipper.String(),
					"amount_sol": req.AmountSOL,
					"message":    req.Message,
					"timestamp":  req.Timestamp,
					"feed":       session.Feed,
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal result: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Println("✓ Tip confirmed")
			fmt.Printf("Signature:  %s\n", sig.String())
			fmt.Printf("Tipper:     %s\n", tipper.String())
			fmt.Printf("Amount:     %.4f SOL\n", req.AmountSOL)
			fmt.Printf("Message:    %s\n", req.Message)
			if len(session.Feed) > 0 {
				fmt.Println("\nRecent tips:")
				shown := session.Feed
				if len(shown) > 5 {
					shown = shown[:5]
				}
				for _, t := range shown {
					printDisplayTip(t)
				}
			}
			return nil
		},
	}
}

// runTipSession drives one submission through the session state machine:
// guard against an in-flight submit, run the pipeline, and on confirmation
// reload the feed so the new tip is visible in the returned snapshot.
func runTipSession(ctx context.Context, session tip.Session, pipeline *tip.Pipeline, aggregator *tip.Aggregator, req tip.Request, logger *slog.Logger) (tip.Session, solanago.Signature, error) {
	session, err := session.BeginSubmit()
	if err != nil {
		return session, solanago.Signature{}, err
	}

	sig, err := pipeline.Submit(ctx, req)
	session = session.SettleSubmit()
	if err != nil {
		return session, sig, err
	}

	feed, skipped, err := aggregator.LoadAll(ctx)
	if err != nil {
		// The tip is already confirmed; a failed reload keeps the old feed.
		logger.Warn("failed to reload tip history after confirmation", "error", err)
		return session, sig, nil
	}
	if skipped > 0 {
		logger.Warn("skipped malformed tip records during reload", "skipped", skipped)
	}
	return session.WithFeed(feed), sig, nil
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Read the tip history directly from the chain",
		Description: `Fetches all tip record accounts owned by the program, decodes them,
and prints the feed most recent first. Malformed accounts are skipped.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of tips to print (0 = all)",
			},
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "jq expression; only tips for which it yields true are printed (e.g. '.amount_sol >= 1')",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output tips as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			programID, err := solanago.PublicKeyFromBase58(c.String("program"))
			if err != nil {
				return fmt.Errorf("invalid program address: %w", err)
			}

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError,
			}))

			// Compile jq filter if given
			var jqCode *gojq.Code
			if expr := c.String("filter"); expr != "" {
				query, err := gojq.Parse(expr)
				if err != nil {
					return fmt.Errorf("failed to parse jq filter %q: %w", expr, err)
				}
				jqCode, err = gojq.Compile(query)
				if err != nil {
					return fmt.Errorf("failed to compile jq filter %q: %w", expr, err)
				}
			}

			rpcClient := solana.NewRPCClient(c.String("rpc-url"))
			chain := solana.NewClient(rpcClient, programID, "cli", nil, logger)
			aggregator := tip.NewAggregator(chain, nil, logger)

			tips, skipped, err := aggregator.LoadAll(context.Background())
			if err != nil {
				return fmt.Errorf("failed to load tip history: %w", err)
			}
			if skipped > 0 {
				fmt.Fprintf(os.Stderr, "warning: skipped %d malformed record(s)\n", skipped)
			}

			if jqCode != nil {
				tips, err = filterTips(tips, jqCode)
				if err != nil {
					return err
				}
			}

			if limit := c.Int("limit"); limit > 0 && len(tips) > limit {
				tips = tips[:limit]
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
				printDisplayTip(t)
			}
			return nil
		},
	}
}

// filterTips keeps the tips for which the compiled jq expression yields true.
// Each tip is round-tripped through JSON so the filter sees the same field
// names as the --json output.
func filterTips(tips []tip.DisplayTip, code *gojq.Code) ([]tip.DisplayTip, error) {
	out := make([]tip.DisplayTip, 0, len(tips))
	for _, t := range tips {
		data, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tip: %w", err)
		}
		var doc interface{}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tip: %w", err)
		}

		iter := code.Run(doc)
		v, ok := iter.Next()
		if !ok {
			continue
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq filter error: %w", err)
		}
		if matched, isBool := v.(bool); isBool && matched {
			out = append(out, t)
		}
	}
	return out, nil
}

func printDisplayTip(t tip.DisplayTip) {
	ts := time.UnixMilli(t.TimestampMillis).UTC()
	fmt.Printf("%s  %-13s %8.4f SOL  %s\n",
		ts.Format(time.RFC3339),
		t.TipperShort,
		t.AmountSOL,
		t.Message,
	)
}
