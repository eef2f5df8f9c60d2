package conformance

import (
	"context"
	"fmt"

	v1 "github.com/soundprobe/soundprobe/api/v1"
	"github.com/soundprobe/soundprobe/internal/util"
)

// checkUnderstandNoInput sends neither audio nor a path; the API must answer
// code 400.
func (s *Suite) checkUnderstandNoInput(ctx context.Context) {
	const name = "understand: no input (expect 400)"
	ctx, cancel := s.quickCtx(ctx)
	defer cancel()

	resp, err := s.client.Understand(ctx, v1.UnderstandRequest{})
	if err != nil {
		s.rec.Fail(name, err.Error())
		return
	}
	if resp.Envelope.Code == 400 {
		s.rec.Pass(name, fmt.Sprintf("error=%s", resp.Envelope.Error))
	} else {
		s.rec.Fail(name, fmt.Sprintf("expected code=400, got code=%d", resp.Envelope.Code))
	}
}

// checkUnderstandFileUpload uploads the sample audio file as multipart form
// data. Skipped when no sample file is configured.
func (s *Suite) checkUnderstandFileUpload(ctx context.Context) {
	const name = "understand: file upload"
	if s.cfg.AudioFile == "" {
		s.rec.Skip(name, "no --audio-file provided")
		return
	}
	ctx, cancel := s.analyzeCtx(ctx)
	defer cancel()

	form := map[string]string{"temperature": "0.3"}
	if s.cfg.APIKey != "" {
		form["ai_token"] = s.cfg.APIKey
	}
	resp, err := s.client.UnderstandUpload(ctx, s.cfg.AudioFile, form)
	if err != nil {
		s.rec.Fail(name, err.Error())
		return
	}
	if resp.Envelope.Code != 200 {
		s.rec.Fail(name, fmt.Sprintf("code=%d, error=%s", resp.Envelope.Code, resp.Envelope.Error))
		return
	}
	meta, err := resp.Metadata()
	if err != nil {
		s.rec.Fail(name, err.Error())
		return
	}
	if meta.Caption == "" {
		s.rec.Fail(name, "missing caption")
		return
	}
	s.rec.dump(name, meta)
	s.rec.Pass(name, "")
}

// checkUnderstandAudioPath references the audio by server-side path instead
// of uploading it. Same skip condition as the upload check.
func (s *Suite) checkUnderstandAudioPath(ctx context.Context) {
	const name = "understand: audio_path"
	if s.cfg.AudioFile == "" {
		s.rec.Skip(name, "no --audio-file provided")
		return
	}
	ctx, cancel := s.analyzeCtx(ctx)
	defer cancel()

	resp, err := s.client.Understand(ctx, v1.UnderstandRequest{
		AudioPath:   s.cfg.AudioFile,
		Temperature: util.FloatPtr(0.3),
	})
	if err != nil {
		s.rec.Fail(name, err.Error())
		return
	}
	if resp.Envelope.Code != 200 {
		s.rec.Fail(name, fmt.Sprintf("code=%d, error=%s", resp.Envelope.Code, resp.Envelope.Error))
		return
	}
	meta, err := resp.Metadata()
	if err != nil {
		s.rec.Fail(name, err.Error())
		return
	}
	s.rec.dump(name, meta)
	s.rec.Pass(name, "")
}
