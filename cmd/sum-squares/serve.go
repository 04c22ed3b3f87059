package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/chemandante/sum-squares/internal/sum-squares/server"
	sumsquares "github.com/chemandante/sum-squares/pkg/sum-squares"
)

func newServeCmd(c *cli) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve decompositions over HTTP",
		Long: `Start an HTTP server answering GET /v1/decompositions/:arity/:n.

Prometheus metrics are exposed on /metrics. The server shuts down
gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if !c.verbose {
				gin.SetMode(gin.ReleaseMode)
			}
			config := c.config
			if listen != "" {
				config = config.Clone().WithListen(listen)
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			engine, err := sumsquares.NewEngine(config,
				sumsquares.WithLogger(c.logger),
				sumsquares.WithRegisterer(reg))
			if err != nil {
				return err
			}

			srv, err := server.New(config, engine, reg, c.logger.Named("http"))
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides server.listen)")
	return cmd
}
