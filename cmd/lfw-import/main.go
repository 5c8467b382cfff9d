// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	log "github.com/sirupsen/logrus"

	"github.com/veeakker/lfw-import/internal/common"
	"github.com/veeakker/lfw-import/internal/config"
	"github.com/veeakker/lfw-import/internal/graph"
	"github.com/veeakker/lfw-import/internal/loader"
	"github.com/veeakker/lfw-import/internal/market"
	"github.com/veeakker/lfw-import/internal/opentelemetry"
	"github.com/veeakker/lfw-import/internal/server"
	"github.com/veeakker/lfw-import/internal/storage"
)

type HarvestCmd struct{}
type ServeCmd struct{}

type ImportArgs struct {
	// Subcommands that can be run
	Harvest *HarvestCmd `arg:"subcommand:harvest" help:"run one full catalog harvest and exit"`
	Serve   *ServeCmd   `arg:"subcommand:serve" help:"run the http service that triggers harvests"`

	// Flags that can be set to config particular services / operations
	config.SparqlConfig
	config.MarketConfig
	config.MinioConfig
	config.ServerConfig
	config.HarvestConfig

	// Flags that can be set which affect all operations
	LogLevel     string `arg:"--log-level" default:"INFO"`
	LogAsJson    bool   `arg:"--log-as-json" help:"output logs in json for log aggregation"`
	FilesDir     string `arg:"--files-dir,env:FILES_DIR" help:"directory for downloaded files when s3 is disabled" default:"/share"`
	CfgPath      string `arg:"--cfg" help:"path to a yaml config file overriding the flag defaults"`
	UseOtel      bool   `arg:"--use-otel"`
	OtelEndpoint string `arg:"--otel-endpoint" help:"OpenTelemetry endpoint"`
}

// ToStructuredConfig converts the args to a structured config
// that can be used for more config isolation
func (a ImportArgs) ToStructuredConfig() config.ImportConfig {
	return config.ImportConfig{
		Sparql:  a.SparqlConfig,
		Market:  a.MarketConfig,
		Minio:   a.MinioConfig,
		Server:  a.ServerConfig,
		Harvest: a.HarvestConfig,
	}
}

type ImportRunner struct {
	args ImportArgs
}

func NewImportRunner(cliArgs []string) ImportRunner {
	args := ImportArgs{}
	const dummyBinaryName = "lfw-import" // go-arg needs some binary name in front of the args
	os.Args = append([]string{dummyBinaryName}, cliArgs...)

	parser := arg.MustParse(&args)
	subCmd := parser.Subcommand()
	if subCmd == nil || subCmd == "" {
		log.Error("no subcommand provided")
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	return ImportRunner{
		args: args,
	}
}

// newLoader wires the triplestore, marketplace and file storage clients
// from the resolved config
func newLoader(conf config.ImportConfig, filesDir string, httpClient *http.Client) (*loader.Loader, graph.Store, error) {
	graphClient := graph.NewClientWithHTTP(conf.Sparql, httpClient)

	var files storage.FileStorage
	if conf.Minio.Enabled {
		minioStorage, err := storage.NewMinioFileStorage(conf.Minio)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to set up s3 storage: %w", err)
		}
		if err := minioStorage.MakeDefaultBucket(); err != nil {
			return nil, nil, fmt.Errorf("failed to make default bucket: %w", err)
		}
		files = minioStorage
	} else {
		localStorage, err := storage.NewLocalFileStorage(filesDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to set up local storage: %w", err)
		}
		files = localStorage
	}

	marketClient := market.NewClientWithHTTP(conf.Market, httpClient)
	if conf.Market.CachePages {
		marketClient = marketClient.WithCache(files)
	}

	return loader.New(graphClient, marketClient, files, conf.Sparql.Graph), graphClient, nil
}

// initTelemetry wires tracing and metrics when telemetry is requested.
// Returns whether anything was initialized so the caller can defer shutdown.
func initTelemetry(args ImportArgs) bool {
	if !args.UseOtel && args.OtelEndpoint == "" {
		return false
	}
	endpoint := args.OtelEndpoint
	if endpoint == "" {
		endpoint = opentelemetry.DefaultTracingEndpoint
	}
	opentelemetry.InitTracer("lfw-import", endpoint)
	opentelemetry.InitMetrics(endpoint)
	return true
}

func (r ImportRunner) Run(ctx context.Context, httpClient *http.Client) error {
	if err := common.InitLogging(r.args.LogLevel, r.args.LogAsJson); err != nil {
		return err
	}

	if initTelemetry(r.args) {
		defer opentelemetry.Shutdown()
	}

	conf := r.args.ToStructuredConfig()
	if r.args.CfgPath != "" {
		fileConf, err := config.ReadImportConfig(".", r.args.CfgPath, conf)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", r.args.CfgPath, err)
		}
		conf = fileConf
	}

	harvestLoader, store, err := newLoader(conf, r.args.FilesDir, httpClient)
	if err != nil {
		return err
	}

	switch {
	case r.args.Harvest != nil:
		return harvestLoader.RunHarvest(ctx)
	case r.args.Serve != nil:
		return serve(ctx, conf, harvestLoader, store)
	default:
		return fmt.Errorf("unknown lfw-import subcommand")
	}
}

// serve runs the http service, optionally kicking off a delayed harvest
// so a fresh deployment converges without waiting for an operator
func serve(ctx context.Context, conf config.ImportConfig, harvestLoader *loader.Loader, store graph.Store) error {
	if conf.Harvest.OnStart {
		delay := time.Duration(conf.Harvest.StartDelaySeconds) * time.Second
		log.Infof("scheduling startup harvest in %s", delay)
		go func() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			if err := harvestLoader.RunHarvest(ctx); err != nil {
				log.Errorf("startup harvest failed: %v", err)
			}
		}()
	}

	return server.New(harvestLoader, chooseAuthorizer(conf, store), conf.Server.Port).ListenAndServe(ctx)
}

// harvests mutate the store, so the endpoint demands an administrator
// session unless --require-admin is explicitly switched off
func chooseAuthorizer(conf config.ImportConfig, store graph.Store) server.Authorizer {
	if !conf.Server.RequireAdmin {
		return server.AllowAll{}
	}
	return server.GraphAuthorizer{Store: store, GraphURI: conf.Sparql.Graph}
}

func main() {
	if err := NewImportRunner(os.Args[1:]).Run(context.Background(), common.NewRetryableHTTPClient()); err != nil {
		log.Fatal(err)
	}
}
