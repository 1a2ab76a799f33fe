package inkwell

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/inkwell-press/inkwell/config"
	"github.com/inkwell-press/inkwell/log"
)

// RuntimeFn is a non-blocking startup function executed by Run; it
// receives the Container as its argument.
type RuntimeFn func(app interface{}) error

// Container is the application runtime: a config provider plus the
// root context cancelled on shutdown.
type Container struct {
	Config    config.ConfigProvider
	Context   context.Context
	CancelCtx context.CancelFunc
}

// NewContainer creates a runtime container with the given config
// provider and a fresh application context.
func NewContainer(cfg config.ConfigProvider) *Container {
	ctx, cancelFn := context.WithCancel(context.Background())
	return &Container{
		Config:    cfg,
		Context:   ctx,
		CancelCtx: cancelFn,
	}
}

// GetContext returns the application context.
func (c *Container) GetContext() context.Context {
	return c.Context
}

// Run executes the startup functions in order, then blocks until an os
// signal arrives or the application context is cancelled; either way the
// registered destructors run and the process exits.
func (c *Container) Run(mainFn ...RuntimeFn) {
	monitor := make(chan os.Signal, 1)
	signal.Notify(monitor, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for _, fn := range mainFn {
		if err := fn(c); err != nil {
			c.Terminate(err)
		}
	}

	for {
		select {
		case <-monitor:
			log.New("runtime").Info("shutting down")
			c.CancelCtx()

		case <-c.Context.Done():
			signal.Stop(monitor)
			c.Terminate(nil)
		}
	}
}

// AbortFatal terminates the application when err is non-nil.
func (c *Container) AbortFatal(err error) {
	if err != nil {
		c.Terminate(err)
	}
}

// Terminate cancels the application context, runs the registered
// destructors and exits to the operating system.
func (c *Container) Terminate(err error) {
	retCode := 0
	if err != nil {
		retCode = -1
	}
	if c.Context != nil && c.CancelCtx != nil && !errors.Is(c.Context.Err(), context.Canceled) {
		c.CancelCtx()
	}
	Shutdown(err)
	os.Exit(retCode)
}
