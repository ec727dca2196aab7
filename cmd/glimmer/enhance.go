package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/glimmerlabs/glimmer/internal/audit"
	"github.com/glimmerlabs/glimmer/internal/config"
	"github.com/glimmerlabs/glimmer/internal/element"
	"github.com/glimmerlabs/glimmer/internal/logger"
	"github.com/glimmerlabs/glimmer/internal/media"
	"github.com/glimmerlabs/glimmer/internal/probe"
	"github.com/glimmerlabs/glimmer/internal/rewrite"
	"github.com/glimmerlabs/glimmer/internal/tui"
	"github.com/glimmerlabs/glimmer/pkg/diff"
)

type enhanceOptions struct {
	ConfigPath     string
	InputPath      string
	OutputPath     string
	Profile        string
	ShowDiff       bool
	Probe          bool
	Verbose        bool
	NonInteractive bool
}

var enhanceCmdRunner = runEnhance

func newEnhanceCmd(root *rootFlags) *cobra.Command {
	opts := enhanceOptions{}

	cmd := &cobra.Command{
		Use:   "enhance [file]",
		Short: "Enhance the media elements of an HTML document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.InputPath = args[0]
			}
			opts.Verbose = root.verbose
			// The TUI renders on stdout, so it only runs when the document
			// and the diff are routed elsewhere.
			interactive := term.IsTerminal(int(os.Stdout.Fd())) && opts.OutputPath != "" && !opts.ShowDiff
			opts.NonInteractive = !interactive

			if err := validateEnhanceOptions(opts); err != nil {
				return err
			}

			return enhanceCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	cmd.MarkFlagRequired("config") //nolint:errcheck
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "Write the enhanced document to a file instead of stdout")
	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "Restrict the pass to one configured profile")
	cmd.Flags().BoolVar(&opts.ShowDiff, "diff", false, "Print a unified diff of the pass instead of the document")
	cmd.Flags().BoolVar(&opts.Probe, "probe", false, "Probe media sources over HTTP to drive load-dependent plugins")

	return cmd
}

func runEnhance(opts enhanceOptions) error {
	cfg, err := config.ParseConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return err
	}

	original, inputLabel, err := readInput(opts.InputPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var loader element.Loader
	if opts.Probe {
		prober, err := probe.NewProber(probe.Options{Log: log})
		if err != nil {
			return err
		}
		loader = prober.Loader()
	}

	rewriter, err := rewrite.New(rewrite.Options{
		Config:  cfg,
		Profile: opts.Profile,
		Loader:  loader,
		Log:     log,
	})
	if err != nil {
		return err
	}

	modelState := tui.NewModel(cfg, opts.NonInteractive)
	interactive := !opts.NonInteractive

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	if interactive {
		program = tea.NewProgram(modelState)
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	}

	var out bytes.Buffer
	report, execErr := rewriter.Enhance(ctx, bytes.NewReader(original), &out)

	if report != nil {
		dispatchTuiMessage(interactive, program, &modelState, tui.PassStartMsg{Targets: report.Targets})
		for _, pipeline := range report.Pipelines {
			dispatchTuiMessage(interactive, program, &modelState, tui.PipelineCompleteMsg{Report: pipeline})
		}
	}

	if execErr == nil {
		cloud := media.Cloud{BaseURL: cfg.Cloud.BaseURL, Space: cfg.Cloud.Space}
		results, _ := audit.Run(bytes.NewReader(out.Bytes()), cloud)
		for _, result := range results {
			dispatchTuiMessage(interactive, program, &modelState, tui.AuditMsg{Passed: result.Passed, Message: auditLabel(result)})
		}
	}

	if interactive {
		if program != nil {
			program.Send(tea.QuitMsg{})
		}
		<-done
		if programErr != nil {
			return programErr
		}
	} else {
		fmt.Fprintln(os.Stderr, modelState.View())
	}

	if execErr != nil {
		return execErr
	}

	if err := writeOutput(opts, original, inputLabel, out.Bytes()); err != nil {
		return err
	}

	if report.Failed > 0 {
		return fmt.Errorf("enhancement finished with %d failed pipeline(s)", report.Failed)
	}

	return nil
}

// readInput loads the document from the given path, or from stdin when the
// path is empty or "-".
func readInput(path string) ([]byte, string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}
	return data, path, nil
}

// writeOutput routes the enhanced document to the output file or stdout.
// With --diff the document is replaced on stdout by the unified diff.
func writeOutput(opts enhanceOptions, original []byte, inputLabel string, enhanced []byte) error {
	if opts.OutputPath != "" {
		if err := os.WriteFile(opts.OutputPath, enhanced, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	switch {
	case opts.ShowDiff:
		unified := diff.Unified(original, enhanced, inputLabel, inputLabel+" (enhanced)")
		if unified == "" {
			fmt.Fprintln(os.Stderr, "no changes")
			return nil
		}
		if _, err := os.Stdout.WriteString(unified); err != nil {
			return fmt.Errorf("write diff: %w", err)
		}
	case opts.OutputPath == "":
		if _, err := os.Stdout.Write(enhanced); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
	}

	return nil
}

func auditLabel(result audit.Result) string {
	if result.Passed {
		return fmt.Sprintf("%s passed", result.Check)
	}
	return result.Message
}

func dispatchTuiMessage(interactive bool, program *tea.Program, state *tui.Model, msg tea.Msg) {
	if interactive {
		if program != nil {
			program.Send(msg)
		}
		return
	}

	updated, _ := state.Update(msg)
	if m, ok := updated.(tui.Model); ok {
		*state = m
	}
}
