package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"property-quote/internal/quote/answers"
	"property-quote/internal/quote/catalog"
	"property-quote/internal/quote/generator"
	"property-quote/internal/quote/rating"
	"property-quote/internal/quote/validator"
)

type options struct {
	answersPath string
	jsonOutput  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "quotectl",
		Short:        "Inspect and price property quote answer sets offline",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.answersPath, "answers", "a", "",
		`answers file: JSON array of {"questionId": ..., "value": ...}; "-" reads stdin`)
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of a table")

	root.AddCommand(
		newQuestionsCmd(opts),
		newRateCmd(opts),
		newValidateCmd(opts),
	)
	return root
}

func newQuestionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List the active question sequence for the answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := catalog.New()
			set, err := loadAnswers(cmd, opts.answersPath)
			if err != nil {
				return err
			}
			set = generator.Prune(c, set)
			seq := generator.Generate(c, set)

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), seq)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tTYPE\tPROMPT")
			for _, q := range seq {
				mark := " "
				if set.Has(q.ID) {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, q.ID, q.Type, q.Prompt)
			}
			return tw.Flush()
		},
	}
}

func newRateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rate",
		Short: "Compute the premium breakdown for the answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := catalog.New()
			set, err := loadAnswers(cmd, opts.answersPath)
			if err != nil {
				return err
			}

			b, err := rating.NewEngine(c).Quote(set)
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), b)
			}
			return printBreakdown(cmd.OutOrStdout(), b)
		},
	}
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate every active question; exits non-zero when any fails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := catalog.New()
			set, err := loadAnswers(cmd, opts.answersPath)
			if err != nil {
				return err
			}
			set = generator.Prune(c, set)
			failures := validator.ValidateSet(generator.Generate(c, set), set)

			if opts.jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), failures); err != nil {
					return err
				}
			} else {
				for _, f := range failures {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", f.QuestionID, f.Message, f.Kind)
				}
			}

			if len(failures) > 0 {
				return fmt.Errorf("%d of the active questions failed validation", len(failures))
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "all active questions are valid")
			return nil
		},
	}
}

// loadAnswers reads the answers file; an empty path yields an empty set.
func loadAnswers(cmd *cobra.Command, path string) (answers.Set, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return answers.NewSet(), nil
	case "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return answers.Set{}, fmt.Errorf("read answers: %w", err)
	}

	var set answers.Set
	if err := json.Unmarshal(data, &set); err != nil {
		return answers.Set{}, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return set, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBreakdown(w io.Writer, b rating.Breakdown) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "category\t%s\t\n", b.Category)
	fmt.Fprintf(tw, "table base\t%.2f\t\n", b.TableBase)

	keys := make([]string, 0, len(b.Items))
	for k := range b.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%.2f\t\n", k, b.Items[k])
	}

	fmt.Fprintf(tw, "risk units (%d)\t%.2f\t\n", b.RiskUnits, b.RiskUnitsTotal)
	fmt.Fprintf(tw, "declared value units\t%.2f\t\n", b.DeclaredValueUnits)
	fmt.Fprintf(tw, "subtotal\t%.2f\t\n", b.Subtotal)
	for _, a := range b.Discounts {
		fmt.Fprintf(tw, "  - %s\t%.2f\t\n", a.Label, a.Amount)
	}
	for _, a := range b.Surcharges {
		fmt.Fprintf(tw, "  + %s\t%.2f\t\n", a.Label, a.Amount)
	}
	for _, a := range b.Riders {
		fmt.Fprintf(tw, "  + %s\t%.2f\t\n", a.Label, a.Amount)
	}
	fmt.Fprintf(tw, "frequency %s\tx%.4g\t\n", b.Frequency, b.FrequencyMultiplier)
	if b.FloorApplied {
		fmt.Fprintf(tw, "minimum premium applied\t%.2f\t\n", rating.MinimumPremium)
	}
	fmt.Fprintf(tw, "total\t%.2f\t\n", b.Total)
	return tw.Flush()
}
