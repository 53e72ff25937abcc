package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terra-clan/unicorn-emporium/internal/quiz"
)

func newAcademyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "academy",
		Short: "AI security academy modules and progress",
		Long: `Read the AI security academy modules and track which ones you have
completed.

Available subcommands:
  modules  - List modules with completion marks
  show     - Print a module
  complete - Mark a module as completed
  progress - Show overall completion`,
	}

	cmd.AddCommand(
		newAcademyModulesCmd(a),
		newAcademyShowCmd(a),
		newAcademyCompleteCmd(a),
		newAcademyProgressCmd(a),
	)
	return cmd
}

func newAcademyModulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List modules with completion marks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tDONE\tTITLE")
			for _, m := range a.loader.ListModules() {
				done := ""
				if a.tracker.IsComplete(m.ID) {
					done = "x"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", m.ID, done, m.Title)
			}
			return tw.Flush()
		},
	}
}

func newAcademyShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <module-id>",
		Short: "Print a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseModuleID(args[0])
			if err != nil {
				return err
			}
			m, ok := a.loader.GetModule(id)
			if !ok {
				return fmt.Errorf("module %d not found", id)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Module %d: %s\n\n", m.ID, m.Title)
			if m.Summary != "" {
				fmt.Fprintf(out, "%s\n\n", m.Summary)
			}
			fmt.Fprintln(out, strings.TrimSpace(m.Content))
			if a.tracker.IsComplete(m.ID) {
				fmt.Fprintln(out, "\nCompleted.")
			}
			return nil
		},
	}
}

func newAcademyCompleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <module-id>",
		Short: "Mark a module as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseModuleID(args[0])
			if err != nil {
				return err
			}
			if _, ok := a.loader.GetModule(id); !ok {
				return fmt.Errorf("module %d not found", id)
			}

			a.tracker.MarkComplete(id)
			fmt.Fprintf(cmd.OutOrStdout(), "Module %d completed. Progress: %d%%\n", id, a.tracker.CompletionPercentage())
			return nil
		},
	}
}

func newAcademyProgressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show overall completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pct := a.tracker.CompletionPercentage()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d%% (%d of %d modules)\n",
				progressBar(pct, 20), pct, a.tracker.Count(), a.tracker.Total())
			return nil
		},
	}
}

func newQuizCmd(a *app) *cobra.Command {
	var answers string

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Take the academy certification quiz",
		Long: `Take the academy certification quiz one question at a time.
Type the number of your chosen option and press enter.

Use --answers to score a full answer sheet without prompting, for example
--answers 1,3,2,4 (option numbers start at 1, 0 leaves a question unanswered).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seq := quiz.NewSequencer(a.loader.Questions())
			seq.Start()

			var err error
			if cmd.Flags().Changed("answers") {
				err = answerSheet(seq, answers)
			} else {
				err = answerInteractive(cmd.OutOrStdout(), a.in, seq)
			}
			if err != nil {
				return err
			}

			result := seq.Result()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Score: %d%% (%d of %d correct)\n", result.Score, result.Correct, result.Total)
			if result.Passed {
				fmt.Fprintln(out, "Passed! You are certified in AI security.")
			} else {
				fmt.Fprintf(out, "Not passed. %d%% is required, run quiz again to retake.\n", quiz.PassThreshold)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&answers, "answers", "", "Comma separated option numbers, one per question")
	return cmd
}

// answerSheet feeds 1-based option numbers to seq and finishes the attempt
func answerSheet(seq *quiz.Sequencer, sheet string) error {
	var picks []string
	if strings.TrimSpace(sheet) != "" {
		picks = strings.Split(sheet, ",")
	}
	if len(picks) > seq.Total() {
		return fmt.Errorf("%d answers given for %d questions", len(picks), seq.Total())
	}

	for {
		state := seq.State()
		if !state.Active {
			return nil
		}
		if i := state.CurrentQuestion; i < len(picks) {
			n, err := strconv.Atoi(strings.TrimSpace(picks[i]))
			if err != nil {
				return fmt.Errorf("answer %d: invalid option %q", i+1, picks[i])
			}
			if n > 0 {
				if err := seq.SelectAnswer(n - 1); err != nil {
					return fmt.Errorf("answer %d: %w", i+1, err)
				}
			}
		}
		if _, err := seq.Advance(); err != nil {
			return err
		}
	}
}

// answerInteractive prompts for each question on out and reads option
// numbers from in. End of input leaves the remaining questions unanswered.
func answerInteractive(out io.Writer, in io.Reader, seq *quiz.Sequencer) error {
	scanner := bufio.NewScanner(in)
	total := seq.Total()

	for {
		q, ok := seq.Question()
		if !ok {
			return nil
		}
		state := seq.State()

		fmt.Fprintf(out, "\nQuestion %d of %d\n%s\n", state.CurrentQuestion+1, total, q.Question)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}

		for {
			fmt.Fprintf(out, "Answer [1-%d]: ", len(q.Options))
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read answer: %w", err)
				}
				break
			}
			n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
			if err != nil || seq.SelectAnswer(n-1) != nil {
				fmt.Fprintln(out, "Please enter one of the option numbers.")
				continue
			}
			break
		}

		if _, err := seq.Advance(); err != nil {
			return err
		}
	}
}

func parseModuleID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid module id %q", s)
	}
	return id, nil
}
