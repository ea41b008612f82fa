package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"
)

const (
	promptText      = "Enter your code for analysis: "
	emptyInputText  = "Empty input! Please provide code."
	noInputProvided = "no code provided"
)

var errNoInput = errors.New(noInputProvided)

// promptForCode asks for one line of code, re-prompting while the trimmed
// input is blank. End of input before any code returns errNoInput.
func promptForCode(in *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, promptText)
	for {
		line, err := in.ReadString('\n')
		code := strings.TrimSpace(line)
		if code != "" {
			return code, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return "", errNoInput
			}
			return "", err
		}
		fmt.Fprintln(out, emptyInputText)
		fmt.Fprint(out, promptText)
	}
}

// promptCommand is the default action: analyze one prompted line of code
func promptCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	code, err := promptForCode(bufio.NewReader(c.App.Reader), c.App.Writer)
	if err != nil {
		if errors.Is(err, errNoInput) {
			return cli.Exit("Error: "+noInputProvided, exitUsage)
		}
		return err
	}

	analyzer, cleanup, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := analyzer.Analyze(code)
	if err != nil {
		if werr := writeFailure(c.App.Writer, cfg, "", err); werr != nil {
			return werr
		}
		return errFailed
	}
	return writeResult(c.App.Writer, cfg, res)
}
