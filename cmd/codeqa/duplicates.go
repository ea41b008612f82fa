package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codeqa/internal/analysis"
	"github.com/standardbeagle/codeqa/internal/config"
	"github.com/standardbeagle/codeqa/internal/display"
	qaerrors "github.com/standardbeagle/codeqa/internal/errors"
	"github.com/standardbeagle/codeqa/internal/types"
)

// duplicatesReport is the JSON form of one scanned input
type duplicatesReport struct {
	Path       string                `json:"path"`
	Algorithm  string                `json:"algorithm"`
	Threshold  float64               `json:"threshold"`
	Duplicates []types.DuplicatePair `json:"duplicates"`
}

// duplicatesCommand reports repeated lines without parsing, so any text works
func duplicatesCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	metric, err := analysis.NewSimilarityMetric(cfg.Duplicates.Algorithm)
	if err != nil {
		return err
	}
	detector := analysis.NewDuplicateDetectorWith(cfg.Duplicates.Threshold, metric)

	inputs := c.Args().Slice()
	if len(inputs) == 0 {
		inputs = []string{stdinPath}
	}

	var errs []error
	var reports []duplicatesReport
	reporter := display.NewReporter(c.App.Writer, false)
	for i, input := range inputs {
		text, err := readInput(input, c.App.Reader)
		if err != nil {
			errs = append(errs, err)
			fmt.Fprintf(c.App.ErrWriter, "Error: %v\n", err)
			continue
		}

		pairs := detector.Detect(text)
		if cfg.Output.Format == config.FormatJSON {
			reports = append(reports, duplicatesReport{
				Path:       input,
				Algorithm:  metric.Name(),
				Threshold:  detector.Threshold(),
				Duplicates: pairs,
			})
			continue
		}

		if len(inputs) > 1 {
			if i > 0 {
				fmt.Fprintln(c.App.Writer)
			}
			fmt.Fprintf(c.App.Writer, "==> %s <==\n", input)
		}
		reporter.RepeatedCode(pairs)
	}

	if cfg.Output.Format == config.FormatJSON {
		if err := display.WriteJSON(c.App.Writer, reports); err != nil {
			return err
		}
	}
	if qaerrors.NewMultiError(errs).ErrorOrNil() != nil {
		return errFailed
	}
	return nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == stdinPath {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", qaerrors.NewFileError("read", path, err)
		}
		return string(content), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", qaerrors.NewFileError("read", path, err)
	}
	return string(content), nil
}
