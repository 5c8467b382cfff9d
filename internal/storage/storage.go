// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

// Package storage persists the files the harvest pulls down: product
// images referenced from the graph and, optionally, raw API payloads
// kept for inspection.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// a path delimited by /
type objectPath = string

// FileStorage stores harvested files under an id-addressed path
type FileStorage interface {
	// Store saves the contents from the reader into a named destination
	Store(objectPath, io.Reader) error
	// Get returns a reader to the stored file
	Get(objectPath) (io.ReadCloser, error)
	// Exists returns true if the file exists
	Exists(objectPath) (bool, error)
	// Remove removes the file
	Remove(objectPath) error
}

// Files stored on the local filesystem; the default for
// single-node deployments and for tests
type LocalFileStorage struct {
	baseDir string
}

// NewLocalFileStorage roots the storage at dir, creating it when missing.
// An empty dir falls back to a fresh temporary directory.
func NewLocalFileStorage(dir string) (*LocalFileStorage, error) {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "lfw-import-")
		if err != nil {
			return nil, err
		}
		return &LocalFileStorage{baseDir: tmp}, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalFileStorage{baseDir: dir}, nil
}

// Store saves the contents from the reader into a file named after `object`
func (l *LocalFileStorage) Store(name string, reader io.Reader) error {

	if l.baseDir == "" {
		return fmt.Errorf("baseDir is empty")
	}

	destPath := filepath.Join(l.baseDir, name)

	log.Tracef("saving data to %s", destPath)

	// Make sure directory exists
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}

	destFile, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer func() { _ = destFile.Close() }()

	_, err = io.Copy(destFile, reader)
	return err
}

// Get returns a reader to the stored file
func (l *LocalFileStorage) Get(object string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(l.baseDir, object))
}

// Exists checks if the file Exists
func (l *LocalFileStorage) Exists(object string) (bool, error) {
	_, err := os.Stat(filepath.Join(l.baseDir, object))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (l *LocalFileStorage) Remove(object string) error {
	err := os.Remove(filepath.Join(l.baseDir, object))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// DiscardFileStorage stores nothing and is useful for testing
type DiscardFileStorage struct{}

func (DiscardFileStorage) Store(string, io.Reader) error {
	return nil
}

func (DiscardFileStorage) Get(string) (io.ReadCloser, error) {
	return nil, os.ErrNotExist
}

func (DiscardFileStorage) Exists(string) (bool, error) {
	return false, nil
}

func (DiscardFileStorage) Remove(string) error {
	return nil
}

var _ FileStorage = DiscardFileStorage{}
var _ FileStorage = &LocalFileStorage{}
