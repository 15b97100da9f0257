package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := NewApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// NewApp assembles the command tree.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:  "toyecdsa",
		Usage: "ECDSA on small educational curves",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML settings file; flags override its values",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "seed for generator and ephemeral selection (default: crypto/rand)",
			},
			&cli.StringFlag{Name: "a", Usage: "curve coefficient a"},
			&cli.StringFlag{Name: "b", Usage: "curve coefficient b"},
			&cli.StringFlag{Name: "n", Usage: "curve modulus n (should be prime)"},
			&cli.StringFlag{Name: "private", Usage: "private scalar d in [1, n-1]"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "console or json"},
		},
		Commands: []*cli.Command{
			SignCommand(),
			VerifyCommand(),
			DemoCommand(),
			PointsCommand(),
		},
	}
}
