package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tactica/internal/expr"
	"github.com/roach88/tactica/internal/rules"
	"github.com/roach88/tactica/internal/tactics"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                    `json:"valid"`
	Rules  []RuleSummary           `json:"rules,omitempty"`
	Errors []rules.ValidationError `json:"errors,omitempty"`
}

// RuleSummary describes one valid rule.
type RuleSummary struct {
	Name   string `json:"name"`
	Hash   string `json:"hash"`
	Source string `json:"source"`
	Line   int    `json:"line,omitempty"`
	Expr   string `json:"expr"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <rules-path>",
		Short: "Validate rule files",
		Long: `Load, validate and compile a rule file or every rule file under a
directory.

Checks YAML/CUE syntax, rule names, expression shape, references and
reference cycles, then compiles each rule against the tactics leaves and
CEL environment so unknown leaves, bad leaf arguments and CEL errors are
caught too.

Exit codes:
  0 - All rules valid
  1 - One or more rules invalid
  2 - Command error (path not found, no rule files)

Examples:
  tactica validate ./rules
  tactica validate ./rules/move.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	rs, err := rules.LoadPath(path)
	if err != nil {
		var le *rules.LoadError
		if !errors.As(err, &le) {
			return outputValidateError(formatter, rules.ErrCodeGeneric, err.Error(), ExitCommandError)
		}
		switch le.Code {
		case rules.ErrCodeNotFound, rules.ErrCodeNoFiles, rules.ErrCodeScanError:
			return outputValidateError(formatter, le.Code, le.Message, ExitCommandError)
		}
		// Syntax and duplicate errors are problems in the rules themselves.
		return outputValidationErrors(formatter, []rules.ValidationError{{
			Field:   "load",
			Message: le.Message,
			Code:    le.Code,
			Source:  le.File,
			Line:    le.Line,
		}})
	}

	formatter.VerboseLog("Loaded %d rule(s) from %s", len(rs), path)

	if errs := rules.Validate(rs); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	set, err := compileForValidation(rs)
	if err != nil {
		return outputValidationErrors(formatter, []rules.ValidationError{compileValidationError(rs, err)})
	}

	summaries := make([]RuleSummary, 0, len(rs))
	for _, r := range rs {
		prog, _ := set.Get(r.Name)
		formatter.VerboseLog("Validated rule: %s (%s)", r.Name, r.Where())
		summaries = append(summaries, RuleSummary{
			Name:   r.Name,
			Hash:   r.Hash,
			Source: r.Source,
			Line:   r.Line,
			Expr:   prog.String(),
		})
	}
	return outputValidateSuccess(formatter, summaries)
}

// compileForValidation compiles rs against a placeholder board so that
// board-bound leaves such as hostile resolve.
func compileForValidation(rs []rules.Rule) (*rules.Set[*tactics.Actor, *tactics.Cell], error) {
	board, err := tactics.NewBoard(1, 1)
	if err != nil {
		return nil, err
	}
	binding, err := tactics.CELBinding()
	if err != nil {
		return nil, err
	}
	return rules.Compile(rs, tactics.Leaves(board), binding)
}

// compileValidationError converts a compile failure into a validation error
// pointing at the failing node.
func compileValidationError(rs []rules.Rule, err error) rules.ValidationError {
	var ce *expr.CompileError
	if !errors.As(err, &ce) {
		return rules.ValidationError{Field: "compile", Message: err.Error(), Code: rules.ErrCodeGeneric}
	}
	ve := rules.ValidationError{Field: ce.Path, Message: ce.Message, Code: string(ce.Code)}
	// The node path starts with the name of the rule that holds it.
	for _, r := range rs {
		if ce.Path == r.Name || strings.HasPrefix(ce.Path, r.Name+".") {
			ve.Rule, ve.Source, ve.Line = r.Name, r.Source, r.Line
			break
		}
	}
	return ve
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, summaries []RuleSummary) error {
	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Rules: summaries})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ %d rule(s) valid\n", len(summaries))
	if formatter.Verbose {
		for _, s := range summaries {
			fmt.Fprintf(w, "  %s [%s] %s\n", s.Name, s.Hash[:12], s.Expr)
		}
	}
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string, exitCode int) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(exitCode, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []rules.ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		if err := formatter.Failure(ValidationResult{Valid: false, Errors: errs}, errs[0].Code, errs[0].Message); err != nil {
			return err
		}
		return exitErr
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(w, "%s:%d\n", err.Source, err.Line)
		}
		fmt.Fprintf(w, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return exitErr
}
