package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/flowave-io/exprinput/internal/cli"
	"github.com/flowave-io/exprinput/pkg/log"
)

const version = "0.1.0"

func printHelp() {
	fmt.Print(`Exprinput reads one expression at a prompt and turns its value into text.

Usage: exprinput [global options] <subcommand> [args]

Available commands:
  help     Show this help output
  version  Show the current exprinput version
  console  Prompt for an expression and paste or print its value
  history  Print the saved history of a context
`)
}

func main() {
	flag.Usage = printHelp
	flagHelp := flag.Bool("help", false, "Show help")
	flag.Parse()

	args := flag.Args()

	if *flagHelp || len(args) == 0 || args[0] == "help" {
		printHelp()
		os.Exit(0)
	}

	switch args[0] {
	case "version":
		fmt.Println("exprinput", version)
		os.Exit(0)
	case "console":
		if err := cli.RunConsoleCommand(args[1:], version); err != nil {
			log.Fatal("console:", err)
			os.Exit(1)
		}
		os.Exit(0)
	case "history":
		os.Exit(historyCmd(args[1:]))
	}

	fmt.Fprintln(os.Stderr, "Unknown command: ", args[0])
	printHelp()
	os.Exit(1)
}
