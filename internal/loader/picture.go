// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/veeakker/lfw-import/internal/graph"
	"github.com/veeakker/lfw-import/internal/vocab"
)

// the full predicate allowlist of a logical file node
var filePredicates = []string{
	vocab.RdfType,
	vocab.MuUUID,
	vocab.FileUrl,
	vocab.FileName,
	vocab.Format,
	vocab.FileExtension,
	vocab.Created,
}

// the full predicate allowlist of a physical share node
var sharePredicates = []string{
	vocab.RdfType,
	vocab.MuUUID,
	vocab.DataSource,
}

// ensurePicture converges the product thumbnail to the payload image url.
// An unchanged url is a full no-op, which is what keeps repeat harvests
// from re-downloading every image. Any change replaces the whole
// file/share pair; an empty url just removes it.
func (l *Loader) ensurePicture(ctx context.Context, productURI, imageURL string) error {
	if imageURL != "" {
		urlTerm, err := graph.LiteralTerm(imageURL)
		if err != nil {
			return err
		}
		unchanged, err := l.store.Ask(ctx, fmt.Sprintf(
			"ASK WHERE { GRAPH <%s> { <%s> <%s> ?file . ?file <%s> %s } }",
			l.graphURI, productURI, vocab.Thumbnail, vocab.FileUrl, urlTerm))
		if err != nil {
			return err
		}
		if unchanged {
			log.Tracef("thumbnail of %s still points at %s", productURI, imageURL)
			return nil
		}
	}

	if err := l.removePicture(ctx, productURI); err != nil {
		return err
	}
	if imageURL == "" {
		return nil
	}
	return l.insertPicture(ctx, productURI, imageURL)
}

// removePicture deletes the thumbnail edge and both file nodes, scoped to
// their predicate allowlists so curated triples on the same nodes survive
func (l *Loader) removePicture(ctx context.Context, productURI string) error {
	query := fmt.Sprintf(`SELECT ?file ?share WHERE { GRAPH <%s> {
  <%s> <%s> ?file .
  OPTIONAL { ?share <%s> ?file }
} } LIMIT 1`,
		l.graphURI, productURI, vocab.Thumbnail, vocab.DataSource)

	bindings, err := l.store.Select(ctx, query)
	if err != nil {
		return err
	}
	if len(bindings) == 0 {
		return nil
	}

	groups := []graph.PropertyGroup{
		{Subject: productURI, Predicates: []string{vocab.Thumbnail}},
	}
	if fileURI := bindings[0]["file"]; fileURI != "" {
		groups = append(groups, graph.PropertyGroup{Subject: fileURI, Predicates: filePredicates})
	}
	if shareURI := bindings[0]["share"]; shareURI != "" {
		groups = append(groups, graph.PropertyGroup{Subject: shareURI, Predicates: sharePredicates})
	}

	return l.store.Update(ctx, graph.ReplacementStatements(l.graphURI, groups...)...)
}

// insertPicture downloads the image and writes a fresh file/share pair
func (l *Loader) insertPicture(ctx context.Context, productURI, imageURL string) error {
	filename, extension, err := fileNameFromURL(imageURL)
	if err != nil {
		return err
	}

	content, err := l.market.DownloadBytes(ctx, imageURL)
	if err != nil {
		return fmt.Errorf("failed to download thumbnail %s: %w", imageURL, err)
	}

	fileId := uuid.NewString()
	storedName := fileId
	if extension != "" {
		storedName = fileId + "." + extension
	}
	objectPath := "images/" + storedName
	if err := l.files.Store(objectPath, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("failed to store thumbnail %s: %w", imageURL, err)
	}

	format := http.DetectContentType(content)
	fileURI := vocab.FileBase + fileId
	shareId := uuid.NewString()
	shareURI := vocab.ShareBase + objectPath

	builder := newTripleBuilder()
	builder.iri(productURI, vocab.Thumbnail, fileURI)
	builder.iri(fileURI, vocab.RdfType, vocab.FileDataObject)
	builder.literal(fileURI, vocab.MuUUID, fileId)
	builder.literal(fileURI, vocab.FileUrl, imageURL)
	builder.literal(fileURI, vocab.FileName, filename)
	builder.literal(fileURI, vocab.Format, format)
	builder.literal(fileURI, vocab.FileExtension, extension)
	builder.literal(fileURI, vocab.Created, time.Now())
	builder.iri(shareURI, vocab.RdfType, vocab.FileDataObject)
	builder.literal(shareURI, vocab.MuUUID, shareId)
	builder.iri(shareURI, vocab.DataSource, fileURI)
	triples, err := builder.build()
	if err != nil {
		return err
	}

	log.Debugf("stored new thumbnail for %s at %s", productURI, objectPath)
	return l.store.Update(ctx, graph.InsertDataStatement(l.graphURI, triples))
}

// fileNameFromURL derives a filename and extension from the trailing
// path segment of the image url
func fileNameFromURL(imageURL string) (filename, extension string, err error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid image url %s: %w", imageURL, err)
	}
	filename = path.Base(parsed.Path)
	if dot := strings.LastIndex(filename, "."); dot >= 0 && dot < len(filename)-1 {
		extension = filename[dot+1:]
	}
	return filename, extension, nil
}
