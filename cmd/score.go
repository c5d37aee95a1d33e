package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/review-risk/internal/model"
	"github.com/sells-group/review-risk/internal/pipeline"
)

var (
	scoreInput  string
	scoreFormat string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score venues from a scraped dataset file",
	Long: `Score one or more venues from a Google Maps dataset export without
scraping. The input is a JSON document holding a single place object or an
array of them, in the layout the reviews actor produces. Use --input - to
read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("score"); err != nil {
			return err
		}
		if scoreFormat != "json" && scoreFormat != "text" {
			return eris.Errorf("score: unknown format %q", scoreFormat)
		}

		data, err := readInput(cmd.InOrStdin(), scoreInput)
		if err != nil {
			return err
		}

		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		reports, err := scorePlaces(cmd.Context(), env.Pipeline, data)
		if err != nil {
			return err
		}
		return writeReports(cmd.OutOrStdout(), reports, scoreFormat)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreInput, "input", "", "dataset JSON file, or - for stdin")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "text", "output format: json or text")
	_ = scoreCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(scoreCmd)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return data, eris.Wrap(err, "score: read stdin")
	}
	data, err := os.ReadFile(path)
	return data, eris.Wrapf(err, "score: read %s", path)
}

// scorePlaces scores every place in a dataset. A malformed review batch
// fails the whole run.
func scorePlaces(ctx context.Context, p *pipeline.Pipeline, data []byte) ([]pipeline.Report, error) {
	places, err := model.DecodePlaces(data)
	if err != nil {
		return nil, eris.Wrap(err, "score: decode dataset")
	}

	reports := make([]pipeline.Report, 0, len(places))
	for i, place := range places {
		res, err := p.RunPlace(ctx, place)
		if err != nil {
			return nil, eris.Wrapf(err, "score: place %d (%s)", i, place.Title)
		}
		zap.L().Debug("venue scored",
			zap.String("place", place.Title),
			zap.Float64("score", res.Score.FinalScore),
		)
		reports = append(reports, pipeline.BuildReport(place, res))
	}
	return reports, nil
}

func writeReports(w io.Writer, reports []pipeline.Report, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return eris.Wrap(enc.Encode(reports), "score: encode reports")
	}

	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, pipeline.FormatReport(r)); err != nil {
			return err
		}
	}
	return nil
}
