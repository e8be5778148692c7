package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/masmgr/declmine/internal/classify"
	"github.com/urfave/cli/v2"
)

// ClassifyCmd returns the classify command.
func ClassifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Print the declaration type and indentation of each matching line",
		ArgsUsage: "[file] (default: stdin)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Also print lines that are not declarations",
			},
		},
		Action: classifyAction,
	}
}

func classifyAction(c *cli.Context) error {
	var in io.Reader = c.App.Reader
	if in == nil {
		in = os.Stdin
	}
	if c.NArg() > 0 {
		f, err := os.Open(c.Args().First())
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	return classifyLines(in, outWriter(c), c.Bool("all"))
}

// classifyLines writes "declaration_type<TAB>indentation<TAB>line" for every
// declaration in r. Lines that are not valid UTF-8 are skipped.
func classifyLines(r io.Reader, w io.Writer, all bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	bw := bufio.NewWriter(w)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if !utf8.ValidString(line) {
			continue
		}

		kind, ok := classify.Declaration(line)
		switch {
		case ok:
			fmt.Fprintf(bw, "%s\t%d\t%s\n", kind, classify.Indentation(line), line)
		case all:
			fmt.Fprintf(bw, "-\t-\t%s\n", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return bw.Flush()
}
