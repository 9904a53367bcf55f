package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/option"

	"github.com/oshokin/setup-package/internal/client/drive"
	"github.com/oshokin/setup-package/internal/client/googleauth"
	"github.com/oshokin/setup-package/internal/client/schemagen"
	"github.com/oshokin/setup-package/internal/client/sheets"
	"github.com/oshokin/setup-package/internal/config"
	"github.com/oshokin/setup-package/internal/domain/setup"
	"github.com/oshokin/setup-package/internal/logger"
	"github.com/oshokin/setup-package/internal/prompt"
	"github.com/oshokin/setup-package/internal/repository/receipt"
	"github.com/oshokin/setup-package/internal/service/installer"
	"github.com/oshokin/setup-package/internal/service/resolver"
)

var errPromptInputNotSet = errors.New("interactive mode needs an input stream")

// Options are inputs accepted by the bootstrap entry points.
type Options struct {
	// ConfigPath is the optional path to the settings file.
	ConfigPath string
	// Overrides adjust loaded settings before validation.
	Overrides []config.Override
	// Identifier selects the mapping row; ignored in global mode.
	Identifier string
	// Interactive prompts for the identifier when it is empty.
	Interactive bool
	// Input and Output are used by the interactive prompt.
	Input  io.Reader
	Output io.Writer
	// ClientOptions replace credential lookup for the Google clients.
	ClientOptions []option.ClientOption
	// Source, Store and Generator replace the default adapters when set.
	Source    resolver.RowSource
	Store     installer.FileStore
	Generator installer.Generator
}

// Resolve loads settings and returns the version selected for opts.Identifier.
func Resolve(ctx context.Context, opts *Options) (string, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "setup-package")

	cfg, err := config.Load(opts.ConfigPath, opts.Overrides...)
	if err != nil {
		return "", err
	}

	return newSession(cfg, opts).resolve(ctx)
}

// Run resolves the version and installs it into the content root.
func Run(ctx context.Context, opts *Options) (*installer.Result, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "setup-package")

	cfg, err := config.Load(opts.ConfigPath, opts.Overrides...)
	if err != nil {
		return nil, err
	}

	s := newSession(cfg, opts)

	version, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}

	store, err := s.fileStore(ctx)
	if err != nil {
		return nil, err
	}

	generator := opts.Generator
	if generator == nil {
		generator = schemagen.NewPython(cfg.Python)
	}

	return installer.Run(ctx, &installer.Options{
		Version:   version,
		Config:    cfg,
		Store:     store,
		Generator: generator,
		Receipts:  receipt.NewRootRepository(cfg.ContentRoot),
	})
}

// Status returns the receipt of the last successful installation.
func Status(ctx context.Context, opts *Options) (*setup.Receipt, error) {
	cfg, err := config.Load(opts.ConfigPath, opts.Overrides...)
	if err != nil {
		return nil, err
	}

	return receipt.NewRootRepository(cfg.ContentRoot).Load(ctx)
}

// session holds the settings and lazily created clients of one invocation.
type session struct {
	cfg           *config.Config
	opts          *Options
	clientOptions []option.ClientOption
}

func newSession(cfg *config.Config, opts *Options) *session {
	return &session{
		cfg:           cfg,
		opts:          opts,
		clientOptions: opts.ClientOptions,
	}
}

// resolve picks the identifier and runs the resolver.
func (s *session) resolve(ctx context.Context) (string, error) {
	identifier, err := s.identifier(ctx)
	if err != nil {
		return "", err
	}

	var source resolver.RowSource

	// The source is only built when a lookup can happen, so a missing
	// identifier is reported before any credential or network access.
	if identifier != "" && s.cfg.UsesSheet() {
		if source, err = s.rowSource(ctx); err != nil {
			return "", err
		}
	}

	version, err := resolver.Resolve(ctx, identifier, s.cfg, source)
	if err != nil {
		logger.ErrorKV(ctx, "Setup aborted, version could not be resolved", "identifier", identifier, "error", err)
		return "", err
	}

	return version, nil
}

// identifier returns the configured identifier or asks for one.
func (s *session) identifier(ctx context.Context) (string, error) {
	identifier := strings.TrimSpace(s.opts.Identifier)
	if identifier != "" || s.cfg.GlobalMode || !s.opts.Interactive {
		return identifier, nil
	}

	if s.opts.Input == nil {
		return "", errPromptInputNotSet
	}

	output := s.opts.Output
	if output == nil {
		output = io.Discard
	}

	return prompt.Identifier(ctx, s.opts.Input, output, prompt.DefaultQuestion)
}

func (s *session) rowSource(ctx context.Context) (resolver.RowSource, error) {
	if s.opts.Source != nil {
		return s.opts.Source, nil
	}

	clientOptions, err := s.googleOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", setup.ErrSourceUnavailable, err)
	}

	client, err := sheets.New(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", setup.ErrSourceUnavailable, err)
	}

	return client, nil
}

func (s *session) fileStore(ctx context.Context) (installer.FileStore, error) {
	if s.opts.Store != nil {
		return s.opts.Store, nil
	}

	clientOptions, err := s.googleOptions(ctx)
	if err != nil {
		return nil, err
	}

	client, err := drive.New(ctx, clientOptions...)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// googleOptions returns the client options, looking up credentials once.
func (s *session) googleOptions(ctx context.Context) ([]option.ClientOption, error) {
	if s.clientOptions != nil {
		return s.clientOptions, nil
	}

	clientOptions, err := googleauth.ClientOptions(ctx, s.cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	s.clientOptions = clientOptions

	return clientOptions, nil
}
