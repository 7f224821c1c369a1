package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sciencehub/sciencehub-api/internal/profanity"
)

// errMatchFound makes `check` exit non-zero without printing an error.
var errMatchFound = errors.New("denylisted word found")

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profanity",
		Short: "Redact, check and count denylisted words",
		Long: `profanity runs the same filter the API applies to posts, comments and
profiles. Text is taken from the arguments, or from stdin when none are given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("denylist", "", "YAML denylist to use instead of the embedded one")

	cmd.AddCommand(newRedactCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newCountCmd())
	cmd.AddCommand(newTermsCmd())

	return cmd
}

func newRedactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redact [text...]",
		Short: "Print the text with denylisted words masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, text, err := prepare(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), f.Redact(text))
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [text...]",
		Short: "Exit with status 1 when the text contains a denylisted word",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, text, err := prepare(cmd, args)
			if err != nil {
				return err
			}
			if f.ContainsMatch(text) {
				fmt.Fprintln(cmd.OutOrStdout(), "match")
				return errMatchFound
			}
			fmt.Fprintln(cmd.OutOrStdout(), "clean")
			return nil
		},
	}
}

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count [text...]",
		Short: "Print the number of denylisted word occurrences",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, text, err := prepare(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), f.CountMatches(text))
			return nil
		},
	}
}

func newTermsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "terms",
		Short: "List the loaded terms, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := loadFilter(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range f.Terms() {
				fmt.Fprintln(out, t)
			}
			return nil
		},
	}
}

func loadFilter(cmd *cobra.Command) (*profanity.Filter, error) {
	path, err := cmd.Flags().GetString("denylist")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return profanity.Default(), nil
	}
	d, err := profanity.LoadDenylistFile(path)
	if err != nil {
		return nil, err
	}
	return profanity.NewFromDenylist(d)
}

func prepare(cmd *cobra.Command, args []string) (*profanity.Filter, string, error) {
	f, err := loadFilter(cmd)
	if err != nil {
		return nil, "", err
	}
	if len(args) > 0 {
		return f, strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, "", fmt.Errorf("read stdin: %w", err)
	}
	return f, strings.TrimRight(string(data), "\r\n"), nil
}
