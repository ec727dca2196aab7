package main

import (
	"github.com/spf13/cobra"

	"github.com/glimmerlabs/glimmer/internal/config"
	"github.com/glimmerlabs/glimmer/internal/element"
	"github.com/glimmerlabs/glimmer/internal/logger"
	"github.com/glimmerlabs/glimmer/internal/probe"
	"github.com/glimmerlabs/glimmer/internal/server"
)

type serveOptions struct {
	ConfigPath string
	Addr       string
	Probe      bool
	Verbose    bool
}

var serveCmdRunner = runServe

func newServeCmd(root *rootFlags) *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the enhancement engine over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose

			if err := validateConfigPath(opts.ConfigPath); err != nil {
				return err
			}

			return serveCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	cmd.MarkFlagRequired("config") //nolint:errcheck
	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "Listen address")
	cmd.Flags().BoolVar(&opts.Probe, "probe", false, "Probe media sources over HTTP to drive load-dependent plugins")

	return cmd
}

func runServe(opts serveOptions) error {
	cfg, err := config.ParseConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level})
	if err != nil {
		return err
	}

	var loader element.Loader
	if opts.Probe {
		prober, err := probe.NewProber(probe.Options{Log: log})
		if err != nil {
			return err
		}
		loader = prober.Loader()
	}

	return server.New(opts.Addr, cfg, loader, log).Run()
}
