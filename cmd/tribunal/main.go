// Command tribunal runs the historical court pipeline from the terminal:
// it takes a topic request, conducts the trial and writes the verdict file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/tribunal"
	"github.com/hupe1980/tribunal/config"
	"github.com/hupe1980/tribunal/core"
	"github.com/hupe1980/tribunal/court"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		reportsDir string
		maxRounds  int
		provider   string
		modelName  string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "tribunal [topic request]",
		Short: "Put a historical figure on trial and write a verdict report",
		Long: `Tribunal researches a historical topic with two opposing workers, iterates
until both sides present enough evidence (or the round cap is hit) and writes
a three-section verdict report to the reports directory.`,
		Example: `  tribunal "Tell me about Leonardo da Vinci"
  tribunal --provider openai --reports-dir ./reports "Napoleon Bonaparte"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if reportsDir != "" {
				cfg.ReportsDir = reportsDir
			}
			if maxRounds > 0 {
				cfg.MaxRounds = maxRounds
			}
			if provider != "" {
				cfg.Provider = provider
			}
			if modelName != "" {
				cfg.Model = modelName
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runTrial(cmd.Context(), cfg, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&reportsDir, "reports-dir", "", "directory for verdict files")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 0, "cap on deliberation rounds")
	cmd.Flags().StringVar(&provider, "provider", "", "model backend (anthropic or openai)")
	cmd.Flags().StringVar(&modelName, "model", "", "provider-specific model identifier")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func runTrial(ctx context.Context, cfg config.Config, request string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	trib, err := tribunal.New(cfg, func(o *tribunal.Options) {
		o.SynthesizeWithModel = true
	})
	if err != nil {
		return err
	}

	sessionID := core.NewID()

	runID, events, errs, err := trib.Try(ctx, sessionID, request)
	if err != nil {
		return err
	}

	fmt.Printf("Trial started (run %s)\n", runID)

	var topic string
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if t := topicFromEvent(ev); t != "" {
				topic = t
				fmt.Printf("Topic under trial: %s\n", topic)
			}
		case runErr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if runErr != nil {
				return runErr
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if topic == "" {
		return fmt.Errorf("trial finished without settling on a topic")
	}

	fmt.Printf("Verdict written to %s\n", filepath.Join(cfg.ReportsDir, court.ReportFilename(topic)))

	return nil
}

// topicFromEvent extracts the topic from a state delta, if the event set one.
func topicFromEvent(ev core.Event) string {
	if v, ok := ev.Actions.StateDelta[core.StateTopic]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}
