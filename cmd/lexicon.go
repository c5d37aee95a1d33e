package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/review-risk/internal/features"
	"github.com/sells-group/review-risk/internal/lexicon"
)

var (
	lexiconPath string
	lexiconText string
)

var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Validate the keyword lexicon and show tier sizes",
	Long: `Load the keyword lexicon (JSON or YAML) and print how many keywords each
tier holds. With --text, also segment the text and print the keyword counts
per risk tier.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("lexicon"); err != nil {
			return err
		}

		path := lexiconPath
		if path == "" {
			path = cfg.Lexicon.Path
		}
		lex, err := lexicon.Load(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printTierSizes(out, path, lex)

		if lexiconText == "" {
			return nil
		}
		tok, err := newTokenizer(lex, cfg.Lexicon)
		if err != nil {
			return err
		}
		printCounts(out, features.NewClassifier(lex, tok).Classify(lexiconText))
		return nil
	},
}

func init() {
	lexiconCmd.Flags().StringVar(&lexiconPath, "path", "", "lexicon file (default from config)")
	lexiconCmd.Flags().StringVar(&lexiconText, "text", "", "sample review text to classify")
	rootCmd.AddCommand(lexiconCmd)
}

func printTierSizes(w io.Writer, path string, lex *lexicon.Lexicon) {
	fmt.Fprintf(w, "%s\n", path)
	for _, t := range []lexicon.Tier{lexicon.HighRisk, lexicon.MediumRisk, lexicon.LowRisk, lexicon.Positive} {
		fmt.Fprintf(w, "  %-12s %d\n", t, lex.Size(t))
	}
}

func printCounts(w io.Writer, c features.KeywordCounts) {
	fmt.Fprintf(w, "high=%d medium=%d low=%d risk_sum=%d\n", c.High, c.Medium, c.Low, c.RiskSum())
}
