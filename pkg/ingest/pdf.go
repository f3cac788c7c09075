package ingest

import (
	"bytes"

	"github.com/ledongthuc/pdf"

	"github.com/dlanger/typecast/pkg/errors"
)

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", errors.New(errors.CodeExtraction, "open pdf", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", errors.New(errors.CodeExtraction, "extract pdf text", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", errors.New(errors.CodeExtraction, "read pdf text", err)
	}
	return buf.String(), nil
}
