// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package opentelemetry

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	metricInterfaces "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

var MeterProvider *metric.MeterProvider
var HarvestHistogram metricInterfaces.Float64Histogram
var FailureCounter metricInterfaces.Int64Counter

const DefaultMetricCollectorEndpoint = "localhost:5317"

func InitMetrics(endpoint string) {
	if endpoint == "" {
		endpoint = DefaultMetricCollectorEndpoint
	}
	metricExporter, err := otlpmetricgrpc.New(
		context.Background(),
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(), // Remove if using TLS
	)
	if err != nil {
		log.Fatal(err)
	}
	MeterProvider = metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter,
			metric.WithInterval(10*time.Millisecond))),
	)

	// Register as global meter provider so that it can be used via otel.Meter
	// and accessed using otel.GetMeterProvider.
	otel.SetMeterProvider(MeterProvider)

	HarvestHistogram, err = MeterProvider.Meter("lfw-import").Float64Histogram("harvest_rate",
		metricInterfaces.WithDescription("Time to harvest the full catalog"),
	)
	if err != nil {
		log.Fatal(err)
	}

	FailureCounter, err = MeterProvider.Meter("lfw-import").Int64Counter("total_product_failures")
	if err != nil {
		log.Fatal(err)
	}
}

func CountProductFailure(productId int64) {
	if MeterProvider == nil {
		return
	}

	FailureCounter.Add(context.Background(), 1,
		metricInterfaces.WithAttributes(
			attribute.Int64("product_id", productId),
		),
	)
}

func RecordHarvestDuration(jobUri string, seconds float64) {
	if MeterProvider == nil {
		return
	}

	HarvestHistogram.Record(context.Background(), seconds, metricInterfaces.WithAttributes(
		attribute.String("job", jobUri)))
}
