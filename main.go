package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var verbose bool

var command = &cobra.Command{
	Use:           "masp source [source...] [-o output]",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.PersistentFlags().GetString("output")
		preprocessOnly, _ := cmd.PersistentFlags().GetBool("preprocess")
		copySource, _ := cmd.PersistentFlags().GetBool("source-copy")
		commentChar, _ := cmd.PersistentFlags().GetString("comment-char")
		includePaths, _ := cmd.PersistentFlags().GetStringSlice("include-path")
		defines, _ := cmd.PersistentFlags().GetStringSlice("define")
		alternate, _ := cmd.PersistentFlags().GetBool("alternate")
		configPath, _ := cmd.PersistentFlags().GetString("config")

		if configPath == "" {
			configPath = DefaultConfigPath()
		}
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}

		if !cmd.PersistentFlags().Changed("comment-char") && cfg.CommentChar != "" {
			commentChar = cfg.CommentChar
		}
		if commentChar == "" {
			commentChar = ";"
		}
		if len(commentChar) != 1 {
			return fmt.Errorf("--comment-char must be exactly one character, got %q", commentChar)
		}

		symbols := make(map[string]string, len(cfg.Symbols)+len(defines))
		for k, v := range cfg.Symbols {
			symbols[k] = v
		}
		for _, d := range defines {
			name, value, _ := strings.Cut(d, "=")
			symbols[name] = value
		}

		var out *os.File
		if output == "" || output == "-" {
			out = os.Stdout
		} else {
			out, err = os.Create(output)
			if err != nil {
				return fmt.Errorf("masp: cannot create %s: %w", output, err)
			}
			defer out.Close()
		}
		w := bufio.NewWriter(out)
		defer w.Flush()

		allIncludePaths := append(append([]string(nil), cfg.IncludePaths...), includePaths...)

		engine := NewEngine(Options{
			Output:            w,
			ErrOutput:         os.Stderr,
			CopySource:        copySource,
			CommentChar:       commentChar[0],
			IncludePaths:      allIncludePaths,
			Alternate:         alternate || cfg.Alternate,
			PredefinedSymbols: symbols,
		})

		if verbose {
			fmt.Fprintf(os.Stderr, "masp: processing %d source file(s)\n", len(args))
		}

		if err := engine.Run(args); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
		_ = preprocessOnly // preprocessing is the only mode masp implements; the flag exists for command-line compatibility with callers that always pass it.
		return nil
	},
}

func init() {
	command.PersistentFlags().StringP("output", "o", "", "output file (default: stdout)")
	command.PersistentFlags().BoolP("preprocess", "p", true, "run in preprocess-only mode")
	command.PersistentFlags().BoolP("source-copy", "s", false, "emit each source line as a leading comment above its translation")
	command.PersistentFlags().StringP("comment-char", "c", ";", "comment character used to prefix source-copy lines")
	command.PersistentFlags().StringSliceP("include-path", "I", nil, "additional directory to search for .INCLUDE files")
	command.PersistentFlags().StringSliceP("define", "D", nil, "predefine a symbol as name=value (or name, for an empty value)")
	command.PersistentFlags().Bool("alternate", false, "start in ALTERNATE mode (expand .byte string literals into byte lists)")
	command.PersistentFlags().String("config", "", "path to a masp config file (default: platform config directory)")
	command.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "if set, increase verbosity level")
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "masp: fatal: %v\n", r)
			os.Exit(1)
		}
	}()
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
