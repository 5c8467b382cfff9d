// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"

	"github.com/veeakker/lfw-import/internal/config"
)

// Wrapper to allow us to extend the minio client struct with new methods
type MinioFileStorage struct {
	// Base client for accessing minio
	Client *minio.Client
	// Default bucket to use for operations.
	// Specified here to avoid having to pass it as a parameter to every operation
	// since we are only using one bucket
	DefaultBucket string
}

var _ FileStorage = &MinioFileStorage{}

// Set up minio and initialize client
func NewMinioFileStorage(mcfg config.MinioConfig) (*MinioFileStorage, error) {

	var endpoint string

	if mcfg.Port == 0 {
		endpoint = mcfg.Address
	} else {
		endpoint = fmt.Sprintf("%s:%d", mcfg.Address, mcfg.Port)
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(mcfg.Accesskey, mcfg.Secretkey, ""),
		Secure: mcfg.SSL,
	}
	if mcfg.Region != "" {
		opts.Region = mcfg.Region
	} else {
		log.Info("Minio client created with no region set")
	}

	minioClient, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, err
	}

	return &MinioFileStorage{Client: minioClient, DefaultBucket: mcfg.Bucket}, nil
}

// Create the default bucket if it is missing
func (m *MinioFileStorage) MakeDefaultBucket() error {
	exists, err := m.Client.BucketExists(context.Background(), m.DefaultBucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.Client.MakeBucket(context.Background(), m.DefaultBucket, minio.MakeBucketOptions{})
}

func (m *MinioFileStorage) Store(object string, reader io.Reader) error {
	// size -1 streams the object in parts since we do not know the length up front
	_, err := m.Client.PutObject(context.Background(), m.DefaultBucket, object, reader, -1, minio.PutObjectOptions{})
	return err
}

func (m *MinioFileStorage) Get(object string) (io.ReadCloser, error) {
	return m.Client.GetObject(context.Background(), m.DefaultBucket, object, minio.GetObjectOptions{})
}

func (m *MinioFileStorage) Exists(object string) (bool, error) {
	_, err := m.Client.StatObject(context.Background(), m.DefaultBucket, object, minio.StatObjectOptions{})
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *MinioFileStorage) Remove(object string) error {
	opts := minio.RemoveObjectOptions{
		GovernanceBypass: true,
	}
	return m.Client.RemoveObject(context.Background(), m.DefaultBucket, object, opts)
}
