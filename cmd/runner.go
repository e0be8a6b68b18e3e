package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"github.com/vic3r/spotify-search/internal/formatter"
	"github.com/vic3r/spotify-search/internal/rpc"
	"github.com/vic3r/spotify-search/internal/server"
	"github.com/vic3r/spotify-search/internal/services"
	"github.com/vic3r/spotify-search/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	catalog    services.Catalog
	aggregator *services.Aggregator
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Catalog    services.Catalog // test double injection, defaults to the real client
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		catalog:    opts.Catalog,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, searchCommand, tracksCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reloads config from the --config flag when it points at a file.
func (r *Runner) loadConfig(cmd *cli.Command) {
	path := cmd.String("config")
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warnf("failed to load config from %s: %v", path, err)
		return
	}
	r.config = config
}

// buildServices constructs the catalog client and aggregation engine once.
func (r *Runner) buildServices() error {
	if r.catalog == nil {
		catalog, err := services.NewSpotifyService(r.config, r.httpClient, r.logger)
		if err != nil {
			return err
		}
		r.catalog = catalog
	}
	if r.aggregator == nil {
		r.aggregator = services.NewAggregator(r.catalog, r.logger)
	}
	return nil
}

// Serve runs the HTTP and gRPC front-ends until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)
	if err := r.config.Validate(); err != nil {
		return err
	}
	if err := r.buildServices(); err != nil {
		return err
	}

	httpAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	grpcAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.GRPCPort)

	handlers := server.NewHandlers(r.catalog, r.aggregator, r.logger)
	httpServer := server.New(httpAddr, handlers, r.logger)
	grpcService := rpc.NewCatalogSearchService(r.aggregator, r.logger)
	grpcServer := rpc.NewServer(grpcAddr, grpcService, r.logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// either front-end failing stops the other
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(gctx) })
	g.Go(func() error { return grpcServer.Run(gctx) })

	return g.Wait()
}

// Search performs a one-off catalog search and prints the results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: a search query is required", shared.ErrInvalidInput)
	}

	r.loadConfig(cmd)
	if err := r.buildServices(); err != nil {
		return err
	}

	limit := int(cmd.Int("limit"))
	offset := int(cmd.Int("offset"))
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	var items []services.TrackWithFeatures

	if cmd.Bool("features") {
		result, err := r.aggregator.SearchWithFeatures(ctx, query, limit, offset)
		if err != nil {
			return err
		}
		items = result.Items
	} else {
		result, err := r.catalog.SearchTracks(ctx, query, limit, offset)
		if err != nil {
			return err
		}
		items = make([]services.TrackWithFeatures, len(result.Items))
		for i, t := range result.Items {
			items[i] = services.TrackWithFeatures{Track: t}
		}
	}

	if useJSON {
		return r.writeJSON(items, pretty)
	}

	fmt.Fprint(r.output, formatter.RenderTable(items))
	return nil
}

// Tracks fetches tracks by id with audio features and embeddings.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("ids")

	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one track id required", shared.ErrInvalidInput)
	}

	r.loadConfig(cmd)
	if err := r.buildServices(); err != nil {
		return err
	}

	joined, err := r.aggregator.GetTracksWithFeatures(ctx, ids)
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(joined, cmd.Bool("pretty"))
	case cmd.Bool("csv"):
		data, err := formatter.ExportToCSV(joined)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	default:
		fmt.Fprint(r.output, formatter.RenderTable(joined))
		return nil
	}
}

// Setup writes a starter config file at the --config path.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	fmt.Fprintf(r.output, "Created %s. Fill in the spotify credentials before serving.\n", path)
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	encoder := json.NewEncoder(r.output)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}
