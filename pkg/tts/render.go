package tts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dlanger/typecast/pkg/agent"
	"github.com/dlanger/typecast/pkg/errors"
	"github.com/dlanger/typecast/pkg/execx"
)

const (
	segmentDirName = "podcast_segments"
	finalFileName  = "final_podcast.mp3"
)

// Renderer converts transcripts into podcast audio files.
type Renderer struct {
	synth  Synthesizer
	runner execx.Runner
	hosts  []agent.Host
	logger *slog.Logger
}

// NewRenderer builds a renderer. The runner is used to invoke ffmpeg for the
// final concatenation.
func NewRenderer(synth Synthesizer, runner execx.Runner, hosts []agent.Host, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{synth: synth, runner: runner, hosts: hosts, logger: logger}
}

// Render splits the transcript, synthesizes one audio file per segment under
// outDir/podcast_segments, and concatenates them into final_podcast.mp3.
// It returns the path of the final file.
func (r *Renderer) Render(ctx context.Context, transcript, outDir string) (string, error) {
	segments := Split(transcript)
	if len(segments) == 0 {
		return "", errors.Newf(errors.CodeRender, "transcript has no speaker segments").
			WithStage(errors.StageRender)
	}

	segDir := filepath.Join(outDir, segmentDirName)
	if err := os.MkdirAll(segDir, 0o755); err != nil {
		return "", errors.New(errors.CodeRender, "create segments directory", err).
			WithStage(errors.StageRender)
	}

	var files []string
	for i, seg := range segments {
		if seg.Text == "" {
			continue
		}
		voice := r.voiceFor(seg.Speaker)
		r.logger.DebugContext(ctx, "synthesizing segment",
			"index", i, "speaker", seg.Speaker, "voice", voice)

		audio, err := r.synth.Speak(ctx, seg.Text, voice)
		if err != nil {
			return "", errors.AsError(err).
				WithStage(errors.StageRender).
				WithContext("segment", i).
				WithContext("speaker", seg.Speaker)
		}

		path := filepath.Join(segDir, fmt.Sprintf("segment_%03d.mp3", i))
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			return "", errors.New(errors.CodeRender, "write segment audio", err).
				WithStage(errors.StageRender)
		}
		// Keeping the text next to the audio makes segment review easy.
		textPath := filepath.Join(segDir, fmt.Sprintf("segment_%03d.txt", i))
		if werr := os.WriteFile(textPath, []byte(seg.Text), 0o644); werr != nil {
			r.logger.WarnContext(ctx, "segment text write failed",
				"path", textPath, "error", werr)
		}
		files = append(files, path)
	}
	if len(files) == 0 {
		return "", errors.Newf(errors.CodeRender, "no segments carried any text").
			WithStage(errors.StageRender)
	}

	final := filepath.Join(outDir, finalFileName)
	if err := r.concat(ctx, segDir, files, final); err != nil {
		return "", err
	}
	return final, nil
}

// concat joins the segment files with ffmpeg's concat demuxer.
func (r *Renderer) concat(ctx context.Context, segDir string, files []string, out string) error {
	var list strings.Builder
	for _, f := range files {
		fmt.Fprintf(&list, "file '%s'\n", filepath.Base(f))
	}
	listPath := filepath.Join(segDir, "segments.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return errors.New(errors.CodeRender, "write concat list", err).
			WithStage(errors.StageRender)
	}

	_, err := r.runner.Run(ctx, "ffmpeg",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		out,
	)
	if err != nil {
		return errors.AsError(err).WithStage(errors.StageRender)
	}
	return nil
}

// voiceFor maps a speaker name to a configured host voice. Unknown speakers
// use the last host's voice, keeping two-host scripts stable when the model
// mislabels a line.
func (r *Renderer) voiceFor(speaker string) string {
	for _, h := range r.hosts {
		if strings.EqualFold(h.Name, speaker) {
			return h.Voice
		}
	}
	if len(r.hosts) > 0 {
		return r.hosts[len(r.hosts)-1].Voice
	}
	return "alloy"
}
