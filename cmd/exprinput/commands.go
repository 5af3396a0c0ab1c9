package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/flowave-io/exprinput/internal/config"
	"github.com/flowave-io/exprinput/internal/history"
)

func historyCmd(args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	configPath := fs.String("config", config.DefaultConfigPath(), "path to the config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: exprinput history [-config <path>] <context>")
		return 2
	}
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	opts := history.Options{CacheRoot: cfg.CacheDir, Component: cfg.Component, Context: fs.Arg(0)}
	if err := printHistory(os.Stdout, opts); err != nil {
		fmt.Fprintln(os.Stderr, "History error:", err)
		return 1
	}
	return 0
}

func printHistory(w io.Writer, opts history.Options) error {
	entries, err := history.Load(opts)
	if err != nil {
		return err
	}
	for i, e := range entries {
		fmt.Fprintf(w, "%5d  %s\n", i+1, e)
	}
	return nil
}
