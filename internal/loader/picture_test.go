// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veeakker/lfw-import/internal/graph"
	"github.com/veeakker/lfw-import/internal/vocab"
)

const testImageURL = "https://images.localfoodworks.eu/products/cheese.jpg"

func TestEnsurePictureSkipsUnchangedImage(t *testing.T) {
	store := &graph.MockStore{
		AskResponses: []graph.MockAsk{
			{Contains: testImageURL, Result: true},
		},
	}
	marketAPI := &fakeMarket{}
	files := &recordingStorage{}
	loader := New(store, marketAPI, files, testGraph)

	err := loader.ensurePicture(context.Background(), vocab.ProductBase+"p1", testImageURL)
	require.NoError(t, err)

	require.Empty(t, marketAPI.downloads, "an unchanged image must not be downloaded again")
	require.Empty(t, files.stored)
	require.Empty(t, store.Updates)
}

func TestEnsurePictureReplacesChangedImage(t *testing.T) {
	productURI := vocab.ProductBase + "p1"
	oldFile := vocab.FileBase + "old-file"
	store := &graph.MockStore{
		SelectResponses: []graph.MockSelect{
			{Contains: vocab.Thumbnail, Bindings: []graph.Binding{
				{"file": oldFile, "share": vocab.ShareBase + "images/old.jpg"},
			}},
		},
	}
	marketAPI := &fakeMarket{images: map[string][]byte{testImageURL: []byte("jpeg bytes")}}
	files := &recordingStorage{}
	loader := New(store, marketAPI, files, testGraph)

	err := loader.ensurePicture(context.Background(), productURI, testImageURL)
	require.NoError(t, err)

	require.Equal(t, []string{testImageURL}, marketAPI.downloads)
	require.Len(t, files.stored, 1)
	require.Contains(t, files.stored[0], "images/")
	require.Contains(t, files.stored[0], ".jpg")

	// the old pair is deleted before the new one is inserted
	deletions := store.UpdatesContaining(oldFile)
	require.NotEmpty(t, deletions)
	require.Contains(t, deletions[0], "DELETE WHERE")

	insertions := store.UpdatesContaining(vocab.ShareBase + files.stored[0])
	require.Len(t, insertions, 1)
	require.Contains(t, insertions[0], "INSERT DATA")
	require.Contains(t, insertions[0], vocab.FileDataObject)
	require.Contains(t, insertions[0], "cheese.jpg")
}

func TestEnsurePictureRemovesWhenURLIsEmpty(t *testing.T) {
	productURI := vocab.ProductBase + "p1"
	oldFile := vocab.FileBase + "old-file"
	store := &graph.MockStore{
		SelectResponses: []graph.MockSelect{
			{Contains: vocab.Thumbnail, Bindings: []graph.Binding{{"file": oldFile}}},
		},
	}
	marketAPI := &fakeMarket{}
	loader := newTestLoader(store, marketAPI)

	err := loader.ensurePicture(context.Background(), productURI, "")
	require.NoError(t, err)

	require.Empty(t, marketAPI.downloads)
	require.NotEmpty(t, store.UpdatesContaining(oldFile))
	for _, statement := range store.AllUpdateStatements() {
		require.NotContains(t, statement, "INSERT")
	}
}

func TestEnsurePictureNoopWithoutOldOrNewImage(t *testing.T) {
	store := &graph.MockStore{}
	loader := newTestLoader(store, &fakeMarket{})

	err := loader.ensurePicture(context.Background(), vocab.ProductBase+"p1", "")
	require.NoError(t, err)
	require.Empty(t, store.Updates)
}

func TestFileNameFromURL(t *testing.T) {
	name, extension, err := fileNameFromURL("https://cdn.example.org/a/b/photo.jpeg?size=400")
	require.NoError(t, err)
	require.Equal(t, "photo.jpeg", name)
	require.Equal(t, "jpeg", extension)

	name, extension, err = fileNameFromURL("https://cdn.example.org/raw-image")
	require.NoError(t, err)
	require.Equal(t, "raw-image", name)
	require.Empty(t, extension)
}
