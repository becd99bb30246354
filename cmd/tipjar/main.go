package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "tipjar",
		Usage: "Solana on-chain tipping CLI",
		Description: `A command-line tool for sending tips and browsing the tip feed.

Use this CLI to send a tip from a local keypair, read the tip history
directly from the chain, or query the indexed feed served by the tipjar
service.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			sendCommand(),
			historyCommand(),
			// Indexed feed commands (HTTP API)
			{
				Name:  "tips",
				Usage: "Indexed tip feed commands",
				Subcommands: []*cli.Command{
					listTipsCommand(),
					getTipCommand(),
				},
			},
			// Server utility commands
			{
				Name:  "server",
				Usage: "Server utility commands",
				Subcommands: []*cli.Command{
					healthCommand(),
					versionCommand(),
				},
			},
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server-url",
				Usage:   "Tipjar server URL",
				EnvVars: []string{"SERVER_URL"},
				Value:   "http://localhost:8080",
			},
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Solana RPC endpoint URL",
				EnvVars: []string{"SOLANA_RPC_URL"},
				Value:   "https://api.devnet.solana.com",
			},
			&cli.StringFlag{
				Name:    "program",
				Usage:   "Tip program address",
				EnvVars: []string{"TIP_PROGRAM_ADDRESS"},
				Value:   "4K6LtuL5hK9FGADBNgiw5cXyk3RPPz3LeLwq7M8xUzUS",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
