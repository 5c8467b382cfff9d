// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// The top level config for all import operations
type ImportConfig struct {
	Sparql  SparqlConfig
	Market  MarketConfig
	Minio   MinioConfig
	Server  ServerConfig
	Harvest HarvestConfig
}

// The config for sparql and graph interactions
type SparqlConfig struct {
	Endpoint string `arg:"--endpoint,env:SPARQL_ENDPOINT" help:"url of the SPARQL endpoint" default:"http://127.0.0.1:8890/sparql"`
	// the named graph all application triples live in
	Graph        string `arg:"--graph" help:"named graph to reconcile into" default:"http://mu.semte.ch/application"`
	Authenticate bool   `arg:"--sparql-auth" help:"use basic auth when talking to the SPARQL endpoint"`
	Username     string `arg:"--sparql-user,env:SPARQL_USERNAME"`
	Password     string `arg:"--sparql-password,env:SPARQL_PASSWORD"`
}

// The config for the upstream marketplace API
type MarketConfig struct {
	BaseUrl       string `arg:"--market-url,env:MARKET_URL" help:"base url of the marketplace API" default:"https://api.localfoodworks.eu"`
	StoreId       string `arg:"--store-id,env:MARKET_STORE_ID" help:"store to harvest" default:"veeakker"`
	PickupPointId string `arg:"--pickup-point-id,env:MARKET_PICKUP_POINT_ID" help:"pickup point whose assortment is harvested" default:"oostende"`
	// when set, raw API pages are also written to storage for inspection
	CachePages bool `arg:"--cache-pages" help:"persist fetched API payloads into storage"`
}

// The config for minio/s3 backed file storage
type MinioConfig struct {
	Address   string `arg:"--address" help:"The address of the s3 server" default:"127.0.0.1"`
	Port      int    `arg:"--port" default:"9000"`
	Accesskey string `arg:"--s3-access-key,env:S3_ACCESS_KEY" help:"Access Key (i.e. username)" default:"minioadmin"`
	Secretkey string `arg:"--s3-secret-key,env:S3_SECRET_KEY" help:"Secret Key (i.e. password)" default:"minioadmin"`
	Bucket    string `arg:"--bucket" help:"The s3 bucket used for downloaded files" default:"veeakker"`
	Region    string `arg:"--region" help:"region for the s3 server"`
	SSL       bool   `arg:"--ssl" help:"Use SSL when connecting to s3"`
	// when false, files are kept on the local filesystem instead of s3
	Enabled bool `arg:"--use-s3" help:"store downloaded files in s3 rather than on disk"`
}

// The config for the admin http server
type ServerConfig struct {
	Port int `arg:"--serve-port" default:"8080"`
	// when set, triggering a harvest demands an administrator session
	RequireAdmin bool `arg:"--require-admin" default:"true" help:"require an administrator session to trigger harvests"`
}

// The config for harvest scheduling
type HarvestConfig struct {
	// run one harvest shortly after the service starts
	OnStart bool `arg:"--harvest-on-start" help:"schedule a harvest when the service starts"`
	// seconds to wait before the startup harvest kicks off
	StartDelaySeconds int `arg:"--harvest-start-delay" default:"300" help:"delay in seconds before the startup harvest"`
}

func fileNameWithoutExtTrimSuffix(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// setBaseValues registers the resolved flag/env config as viper defaults,
// so a partial file only overrides the keys it names
func setBaseValues(v *viper.Viper, base ImportConfig) {
	v.SetDefault("sparql.endpoint", base.Sparql.Endpoint)
	v.SetDefault("sparql.graph", base.Sparql.Graph)
	v.SetDefault("sparql.authenticate", base.Sparql.Authenticate)
	v.SetDefault("sparql.username", base.Sparql.Username)
	v.SetDefault("sparql.password", base.Sparql.Password)

	v.SetDefault("market.baseurl", base.Market.BaseUrl)
	v.SetDefault("market.storeid", base.Market.StoreId)
	v.SetDefault("market.pickuppointid", base.Market.PickupPointId)
	v.SetDefault("market.cachepages", base.Market.CachePages)

	v.SetDefault("minio.address", base.Minio.Address)
	v.SetDefault("minio.port", base.Minio.Port)
	v.SetDefault("minio.accesskey", base.Minio.Accesskey)
	v.SetDefault("minio.secretkey", base.Minio.Secretkey)
	v.SetDefault("minio.bucket", base.Minio.Bucket)
	v.SetDefault("minio.region", base.Minio.Region)
	v.SetDefault("minio.ssl", base.Minio.SSL)
	v.SetDefault("minio.enabled", base.Minio.Enabled)

	v.SetDefault("server.port", base.Server.Port)
	v.SetDefault("server.requireadmin", base.Server.RequireAdmin)

	v.SetDefault("harvest.onstart", base.Harvest.OnStart)
	v.SetDefault("harvest.startdelayseconds", base.Harvest.StartDelaySeconds)
}

// ReadImportConfig reads a yaml config file into an ImportConfig.
// Values present in the file override the base config; keys absent from
// the file keep the base values.
func ReadImportConfig(cfgPath, filename string, base ImportConfig) (ImportConfig, error) {
	v := viper.New()
	setBaseValues(v, base)

	v.SetConfigName(fileNameWithoutExtTrimSuffix(filename))
	v.AddConfigPath(cfgPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return ImportConfig{}, err
	}

	var config ImportConfig
	if err := v.UnmarshalExact(&config); err != nil {
		return ImportConfig{}, err
	}

	return config, nil
}
