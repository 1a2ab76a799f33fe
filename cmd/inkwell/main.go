package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/inkwell-press/inkwell/log"
)

// command-line args
var cliArgs = &CliArgs{
	ConfigFile: flag.String("c", "config.json", "Config file"),
	DumpConfig: flag.Bool("d", false, "Dump sample config file"),
}

func main() {
	log.Configure(log.NewDefaultConfig())
	logger := log.New("inkwell")

	flag.Parse()

	// if DumpConfig, show sample config file and exit
	if *cliArgs.DumpConfig {
		cfg, _ := DumpDefaultConfig()
		fmt.Println(cfg)
		os.Exit(0)
	}

	logger.Info("initializing application")

	app, err := NewApplication(cliArgs, logger)
	if err != nil {
		logger.Error(err, "initialization failed")
		os.Exit(-1)
	}

	app.Build()
	app.Run()
}
