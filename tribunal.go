// Package tribunal provides a high-level façade over the historical court
// pipeline. Most applications interact with this package by:
//  1. Creating a Tribunal via New() (optionally overriding the model, stores
//     or logger)
//  2. Starting a trial asynchronously (Try) or synchronously (TrySync) with
//     the user's topic request
//  3. Reading the verdict file from the configured reports directory
//
// The façade wires the model backend, the retry policy, the court pipeline
// and the runner together from a config.Config. All defaults are safe for
// local development; production deployments typically supply durable stores
// and a structured logger.
package tribunal

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/tribunal/artifact"
	"github.com/hupe1980/tribunal/config"
	"github.com/hupe1980/tribunal/core"
	"github.com/hupe1980/tribunal/court"
	"github.com/hupe1980/tribunal/logging"
	"github.com/hupe1980/tribunal/model"
	"github.com/hupe1980/tribunal/model/anthropic"
	"github.com/hupe1980/tribunal/model/openai"
	"github.com/hupe1980/tribunal/runner"
	"github.com/hupe1980/tribunal/session"
	"github.com/hupe1980/tribunal/tool"
)

// Options configures a Tribunal instance.
type Options struct {
	// Model overrides the backend constructed from Config. Retry wrapping is
	// still applied.
	Model model.Model
	// LookupTool overrides the knowledge lookup given to the investigation
	// workers.
	LookupTool tool.Tool
	// SynthesizeWithModel routes the scribe's synthesis through the model.
	SynthesizeWithModel bool

	// Stores (default to in-memory implementations if not provided).
	SessionStore  core.SessionStore
	ArtifactStore core.ArtifactStore

	// Logger defaults to a slog logger per the config's level and format.
	Logger logging.Logger
}

// Tribunal is the high-level façade aggregating the pipeline and runner.
type Tribunal struct {
	cfg    config.Config
	runner *runner.Runner
	logger logging.Logger
}

// New creates a Tribunal from a configuration with optional overrides.
func New(cfg config.Config, optFns ...func(o *Options)) (*Tribunal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := Options{
		SessionStore:  session.NewInMemoryStore(),
		ArtifactStore: artifact.NewInMemoryStore(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewSlogLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, nil)
	}

	llm := opts.Model
	if llm == nil {
		var err error
		if llm, err = buildModel(cfg); err != nil {
			return nil, err
		}
	}

	llm = model.WithRetry(llm, func(o *model.RetryOptions) {
		o.Attempts = cfg.RetryAttempts
		o.Backoff = cfg.RetryBackoff
	})

	root, err := court.New(llm, func(o *court.Options) {
		o.ReportsDir = cfg.ReportsDir
		o.MaxRounds = cfg.MaxRounds
		o.LookupTool = opts.LookupTool
		o.SynthesizeWithModel = opts.SynthesizeWithModel
	})
	if err != nil {
		return nil, err
	}

	run := runner.New(root, func(o *runner.Options) {
		o.MaxModelCalls = cfg.MaxModelCalls
		o.SessionStore = opts.SessionStore
		o.ArtifactStore = opts.ArtifactStore
		o.Logger = logger
	})

	return &Tribunal{cfg: cfg, runner: run, logger: logger}, nil
}

// buildModel constructs the configured provider backend.
func buildModel(cfg config.Config) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			if cfg.APIKey != "" {
				o.APIKey = cfg.APIKey
			}
		}), nil
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.APIKey != "" {
				o.APIKey = cfg.APIKey
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// Config returns the configuration this Tribunal was built from.
func (t *Tribunal) Config() config.Config { return t.cfg }

// Runner exposes the underlying runner, mainly for store inspection in tests.
func (t *Tribunal) Runner() *runner.Runner { return t.runner }

// Try starts an asynchronous trial for the given user request and returns
// the run ID plus event and error channels.
func (t *Tribunal) Try(
	ctx context.Context,
	sessionID string,
	request string,
) (string, <-chan core.Event, <-chan error, error) {
	return t.runner.Run(ctx, sessionID, core.NewUserText(request))
}

// TrySync runs a trial to completion, accumulating all emitted events.
func (t *Tribunal) TrySync(
	ctx context.Context,
	sessionID string,
	request string,
) (string, []core.Event, error) {
	runID, eventsCh, errorsCh, err := t.Try(ctx, sessionID, request)
	if err != nil {
		return "", nil, err
	}

	var events []core.Event
	for {
		select {
		case <-ctx.Done():
			// Context cancelled; return events collected so far
			return runID, events, ctx.Err()

		case event, ok := <-eventsCh:
			if !ok {
				// Events channel closed, check for a terminal error
				select {
				case err := <-errorsCh:
					return runID, events, err
				default:
					return runID, events, nil
				}
			}
			events = append(events, event)

		case err := <-errorsCh:
			if err != nil {
				return runID, events, err
			}
		}
	}
}
