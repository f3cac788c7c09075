package ingest

import (
	"strings"

	"github.com/gomutex/godocx"

	"github.com/dlanger/typecast/pkg/errors"
)

const (
	exportFont     = "Georgia"
	exportFontSize = 12
	exportTitle    = 16
)

// WriteTranscriptDocx writes a finished transcript as a styled docx, one
// paragraph per transcript line with speaker labels in bold.
func WriteTranscriptDocx(title, transcript, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return errors.New(errors.CodeRender, "create docx document", err)
	}

	p := doc.AddParagraph("")
	p.AddText(title).Font(exportFont).Size(exportTitle).Bold(true)
	doc.AddParagraph("")

	for _, line := range strings.Split(transcript, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		p := doc.AddParagraph("")
		speaker, rest, ok := splitSpeakerLine(trimmed)
		if ok {
			p.AddText(speaker+": ").Font(exportFont).Size(exportFontSize).Bold(true)
			trimmed = rest
		}
		p.AddText(trimmed).Font(exportFont).Size(exportFontSize).Color("000000")
	}

	if err := doc.SaveTo(outputPath); err != nil {
		return errors.New(errors.CodeRender, "save docx document", err)
	}
	return nil
}

// splitSpeakerLine peels a leading [Speaker] marker off a transcript line.
func splitSpeakerLine(line string) (speaker, rest string, ok bool) {
	if !strings.HasPrefix(line, "[") {
		return "", line, false
	}
	end := strings.Index(line, "]")
	if end <= 1 {
		return "", line, false
	}
	return line[1:end], strings.TrimSpace(line[end+1:]), true
}
