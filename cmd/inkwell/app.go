package main

import (
	"encoding/json"

	"github.com/inkwell-press/inkwell"
	"github.com/inkwell-press/inkwell/config/provider"
	"github.com/inkwell-press/inkwell/log"
)

// CliArgs Command-line options
type CliArgs struct {
	ConfigFile *string
	DumpConfig *bool
}

// Application application runtime
type Application struct {
	*inkwell.Container
	args   *CliArgs
	logger *log.Logger
}

// NewApplication application factory
func NewApplication(args *CliArgs, logger *log.Logger) (*Application, error) {
	cfg, err := provider.NewJsonProvider(*args.ConfigFile)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		panic("logger is nil")
	}
	return &Application{
		Container: inkwell.NewContainer(cfg),
		args:      args,
		logger:    logger,
	}, nil
}

// Build assembles the runtime from configuration.
func (a *Application) Build() {
	a.logger.Info("loading configuration")

	cfg := NewConfig()
	a.AbortFatal(a.Config.Get(cfg))
	a.AbortFatal(cfg.Validate())

	// reconfigure the global logger from file settings
	a.AbortFatal(log.Configure(cfg.Log))

	a.logger.Info("initializing api")
	server, err := NewApiServer(cfg)
	a.AbortFatal(err)

	inkwell.RegisterDestructor(func() error {
		return server.Stop(a.Context)
	})

	go func() {
		a.logger.Infof("running api server at %s:%d", cfg.Api.Host, cfg.Api.Port)
		a.AbortFatal(server.Start())
	}()
}

func DumpDefaultConfig() (string, error) {
	cfg := NewConfig()
	serialized, err := json.MarshalIndent(cfg, "", "  ")
	return string(serialized), err
}
