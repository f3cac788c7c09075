package ingest

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"

	"github.com/dlanger/typecast/pkg/errors"
)

// extractDocx pulls paragraph text out of word/document.xml. Only the text
// runs matter here; styling, tables and headers are ignored.
func extractDocx(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", errors.New(errors.CodeExtraction, "open docx archive", err)
	}
	defer archive.Close()

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.Newf(errors.CodeExtraction, "docx archive has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", errors.New(errors.CodeExtraction, "open docx document part", err)
	}
	defer rc.Close()

	return readDocumentXML(rc)
}

func readDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.New(errors.CodeExtraction, "parse docx xml", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
