package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/baustructura/bau-geo/internal/config"
	"github.com/baustructura/bau-geo/internal/logging"
	"github.com/baustructura/bau-geo/internal/marker"
	"github.com/baustructura/bau-geo/internal/route"
	"github.com/baustructura/bau-geo/internal/server"
)

// Options defines all CLI flags and env vars for the bau-geo server.
// Flags: --host, --port, --data-dir, --config
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_CONFIG
type Options struct {
	Host    string `doc:"Host to bind to" default:"0.0.0.0"`
	Port    int    `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir string `doc:"Directory for route snapshots and databases" default:".data"`
	Config  string `doc:"Optional YAML config file" short:"c"`
}

func newServer(opts *Options) (*server.Server, zerolog.Logger, func(), error) {
	app, err := config.Load(opts.Config)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	log, logCloser, err := logging.New(logging.Options{
		Level:  app.Log.Level,
		Format: app.Log.Format,
		File:   app.Log.File,
	})
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	srv, err := server.New(server.Config{
		Host:    opts.Host,
		Port:    fmt.Sprintf("%d", opts.Port),
		DataDir: opts.DataDir,
		App:     app,
		Logger:  log,
	})
	if err != nil {
		logCloser.Close()
		return nil, log, nil, err
	}
	cleanup := func() {
		if err := srv.Close(); err != nil {
			log.Error().Err(err).Msg("server close failed")
		}
		logCloser.Close()
	}
	return srv, log, cleanup, nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		var (
			srv     *server.Server
			log     zerolog.Logger
			cleanup func()
			httpSrv *http.Server
		)

		hooks.OnStart(func() {
			var err error
			srv, log, cleanup, err = newServer(opts)
			if err != nil {
				fatal("Error starting server: %v", err)
			}
			srv.Start()

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("bau-geo API server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s\n", opts.DataDir)
			fmt.Println()
			fmt.Printf("  Editor:  %s/editor\n", baseURL)
			fmt.Printf("  Routes:  %s/editor/routes\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			httpSrv = &http.Server{Addr: addr, Handler: srv, ReadHeaderTimeout: 10 * time.Second}
			log.Info().Str("addr", addr).Msg("listening")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("server error")
			}
		})

		hooks.OnStop(func() {
			if httpSrv == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("shutdown failed")
			}
			cleanup()
		})
	})

	cli.Root().Use = "baugeo"
	cli.Root().Short = "Route planning map editor for construction sites"
	cli.Root().Version = "1.0.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv, _, cleanup, err := newServer(opts)
			if err != nil {
				fatal("Error creating server: %v", err)
			}
			defer cleanup()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fatal("Error marshaling spec: %v", err)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// distance subcommand: route length of "lat,lng" points without a server.
	// Flag parsing is done by hand so negative coordinates are not read as
	// shorthand flags.
	distanceCmd := &cobra.Command{
		Use:                "distance LAT,LNG LAT,LNG [LAT,LNG...]",
		Short:              "Print the leg and total lengths of a route",
		DisableFlagParsing: true,
		Example: `  baugeo distance 48.137,11.575 48.145,11.558 48.152,11.590 --optimize
  baugeo distance -33.8688,151.2093 -37.8136,144.9631`,
		Run: func(cmd *cobra.Command, args []string) {
			markers, optimize, help, err := parseDistanceArgs(args)
			if help {
				_ = cmd.Help()
				return
			}
			if err != nil {
				fatal("%v", err)
			}
			if optimize {
				order := route.Optimize(markers)
				sorted := make([]marker.Marker, len(order))
				for i, idx := range order {
					sorted[i] = markers[idx]
				}
				fmt.Printf("Order: %v\n", order)
				markers = sorted
			}
			for i, d := range route.Segments(markers) {
				fmt.Printf("  %d -> %d: %8.3f km\n", i+1, i+2, d/1000)
			}
			fmt.Printf("Total:   %8.3f km\n", route.TotalDistance(markers)/1000)
		},
	}
	distanceCmd.Flags().Bool("optimize", false, "Reorder the points with the nearest-neighbour heuristic first")
	cli.Root().AddCommand(distanceCmd)

	cli.Run()
}

// parseDistanceArgs reads the points and flags of the distance command.
// Everything after "--" is a point.
func parseDistanceArgs(args []string) (markers []marker.Marker, optimize, help bool, err error) {
	points := false
	for _, arg := range args {
		if !points {
			switch arg {
			case "--":
				points = true
				continue
			case "--optimize":
				optimize = true
				continue
			case "-h", "--help":
				return nil, false, true, nil
			}
		}
		p, perr := marker.ParsePosition(arg)
		if perr != nil {
			return nil, false, false, fmt.Errorf("invalid point %q: %w", arg, perr)
		}
		markers = append(markers, marker.Marker{Position: p})
	}
	if len(markers) < 2 {
		return nil, false, false, fmt.Errorf("need at least 2 points, got %d", len(markers))
	}
	return markers, optimize, false, nil
}
