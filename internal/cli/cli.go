// Package cli parses mxslink's command-line surface: spec.md §4.H/§6's
// order-flexible bare-word grammar, <program> [port] [direct] [help],
// with no dashes and no fixed word order.
package cli

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI is the resolved configuration handed to bootstrap.
type CLI struct {
	Port   string
	Direct bool
	Help   bool
}

// argv is the only shape kong actually parses here: the grammar's bare
// words don't map onto kong's dashed-flag model, so kong's job is just
// tokenizing argv into a positional word list (grounded on
// seruman-hauntty/cmd/ht/main.go's kong.New/struct-tag style) — the words
// themselves are resolved by Parse below.
type argv struct {
	Tokens []string `arg:"" optional:"" help:"Bare words, any order: a serial port name hint, \"direct\" to bypass MXS decoding, \"help\" to print usage."`
}

// Parse tokenizes args (typically os.Args[1:]) and resolves spec.md
// §4.H's bare words: "direct" and "help" are recognized wherever they
// appear in argv; the first remaining word is taken as the port hint.
func Parse(args []string) CLI {
	var raw argv
	parser, err := kong.New(&raw,
		kong.Name("mxslink"),
		kong.Description("Interactive terminal bridge to an MXS-framed serial device."),
	)
	if err != nil {
		panic(err)
	}
	if _, err := parser.Parse(args); err != nil {
		parser.Printf("%s", err)
		parser.Exit(1)
	}

	var cli CLI
	for _, tok := range raw.Tokens {
		switch tok {
		case "direct":
			cli.Direct = true
		case "help":
			cli.Help = true
		default:
			if cli.Port == "" {
				cli.Port = tok
			}
		}
	}

	if cli.Help {
		fmt.Fprintln(os.Stdout, "usage: mxslink [port] [direct] [help]")
		os.Exit(0)
	}

	return cli
}
