package conformance

import (
	"context"
	"fmt"

	v1 "github.com/soundprobe/soundprobe/api/v1"
	"github.com/soundprobe/soundprobe/internal/util"
)

// checkFormatBasic enhances a prompt plus raw lyrics.
func (s *Suite) checkFormatBasic(ctx context.Context) {
	const name = "format: basic"
	ctx, cancel := s.genCtx(ctx)
	defer cancel()

	resp, err := s.client.Format(ctx, v1.FormatRequest{
		Prompt: "indie folk",
		Lyrics: "I walked along the river\nthe sun was setting low",
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
	switch {
	case meta.Caption == "":
		s.rec.Fail(name, "missing caption")
	case meta.Bpm == nil:
		s.rec.Fail(name, "missing bpm")
	default:
		s.rec.dump(name, meta)
		s.rec.Pass(name, "")
	}
}

// checkFormatWithConstraints passes explicit metadata constraints alongside
// the content. Shallow validation only: the call must succeed, constraint
// echo is eyeballed from the dump.
func (s *Suite) checkFormatWithConstraints(ctx context.Context) {
	const name = "format: with constraints"
	ctx, cancel := s.genCtx(ctx)
	defer cancel()

	resp, err := s.client.Format(ctx, v1.FormatRequest{
		Prompt:        "jazz ballad",
		Lyrics:        "[Verse]\nMoonlight on the water\nStars above the city",
		Bpm:           util.IntPtr(80),
		KeyScale:      "Bb Major",
		TimeSignature: "3",
		Duration:      util.FloatPtr(240),
		Language:      "en",
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

// checkFormatCaptionOnly sends only a caption, no lyrics.
func (s *Suite) checkFormatCaptionOnly(ctx context.Context) {
	const name = "format: caption only"
	ctx, cancel := s.genCtx(ctx)
	defer cancel()

	resp, err := s.client.Format(ctx, v1.FormatRequest{
		Caption: "aggressive death metal with blast beats",
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

// checkFormatMissingBoth sends an empty body; the API must answer code 400.
func (s *Suite) checkFormatMissingBoth(ctx context.Context) {
	const name = "format: missing both (expect 400)"
	ctx, cancel := s.quickCtx(ctx)
	defer cancel()

	resp, err := s.client.Format(ctx, v1.FormatRequest{})
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
