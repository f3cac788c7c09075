// SPDX-License-Identifier: Apache-2.0

// Package ingest turns source documents into text the pipeline can feed to
// its first agent, and exports finished transcripts back to document formats.
package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dlanger/typecast/pkg/errors"
	"github.com/dlanger/typecast/pkg/infotype"
)

// Extract reads the document at path and returns its text tagged SourceText.
// The format is chosen by file extension; plain text, markdown, PDF and
// docx are supported.
func Extract(path string) (infotype.Value, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", ".md", ".markdown":
		text, err = extractPlain(path)
	case ".pdf":
		text, err = extractPDF(path)
	case ".docx":
		text, err = extractDocx(path)
	default:
		return infotype.Value{}, errors.Newf(errors.CodeUnsupportedFormat,
			"unsupported document format %q", filepath.Ext(path)).
			WithStage(errors.StageExtract).
			WithContext("path", path)
	}
	if err != nil {
		return infotype.Value{}, errors.AsError(err).
			WithStage(errors.StageExtract).
			WithContext("path", path)
	}
	if strings.TrimSpace(text) == "" {
		return infotype.Value{}, errors.Newf(errors.CodeExtraction,
			"document %s contains no extractable text", filepath.Base(path)).
			WithStage(errors.StageExtract).
			WithContext("path", path)
	}
	return infotype.Text(infotype.SourceText, text), nil
}

func extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.New(errors.CodeExtraction, "read document", err)
	}
	return string(data), nil
}
