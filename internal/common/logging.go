// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// InitLogging configures the global logger from a level name.
// When jsonOutput is set, logs are emitted as JSON for log collectors.
func InitLogging(levelName string, jsonOutput bool) error {
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level %s: %w", levelName, err)
	}
	log.SetLevel(level)
	if jsonOutput {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return nil
}
