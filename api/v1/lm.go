package v1

import (
	"encoding/json"
	"fmt"
)

// Envelope is the response wrapper used by every LM endpoint. The API reports
// its own status in Code; the HTTP status usually matches but the body is
// authoritative.
type Envelope struct {
	Code  int             `json:"code"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// DecodeData unmarshals the Data payload into v.
func (e *Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("envelope has no data payload")
	}
	return json.Unmarshal(e.Data, v)
}

// Metadata is the music-metadata object returned by all three LM endpoints.
// Numeric fields are pointers so a missing key can be told apart from zero.
type Metadata struct {
	Caption       string   `json:"caption"`
	Lyrics        *string  `json:"lyrics,omitempty"`
	Bpm           *int     `json:"bpm,omitempty"`
	Duration      *float64 `json:"duration,omitempty"`
	KeyScale      string   `json:"key_scale,omitempty"`
	TimeSignature string   `json:"time_signature,omitempty"`
	VocalLanguage string   `json:"vocal_language,omitempty"`
	Instrumental  *bool    `json:"instrumental,omitempty"`
	Seed          *int64   `json:"seed,omitempty"`
}

// InspireRequest is the body of POST /lm/inspire. Query is required.
type InspireRequest struct {
	Query         string   `json:"query,omitempty"`
	Instrumental  *bool    `json:"instrumental,omitempty"`
	VocalLanguage string   `json:"vocal_language,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	Seed          *int64   `json:"seed,omitempty"`
}

// FormatRequest is the body of POST /lm/format. At least one of Prompt,
// Caption or Lyrics is required; the rest are metadata constraints.
type FormatRequest struct {
	Prompt        string   `json:"prompt,omitempty"`
	Caption       string   `json:"caption,omitempty"`
	Lyrics        string   `json:"lyrics,omitempty"`
	Bpm           *int     `json:"bpm,omitempty"`
	KeyScale      string   `json:"key_scale,omitempty"`
	TimeSignature string   `json:"time_signature,omitempty"`
	Duration      *float64 `json:"duration,omitempty"`
	Language      string   `json:"language,omitempty"`
	Seed          *int64   `json:"seed,omitempty"`
}

// HasInput reports whether the request carries any formattable content.
func (r FormatRequest) HasInput() bool {
	return r.Prompt != "" || r.Caption != "" || r.Lyrics != ""
}

// UnderstandRequest is the JSON body of POST /lm/understand when the audio is
// referenced by a server-side path or pre-extracted codes instead of a
// multipart upload.
type UnderstandRequest struct {
	AudioPath   string   `json:"audio_path,omitempty"`
	Codes       string   `json:"codes,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// HasInput reports whether the request carries any audio reference.
func (r UnderstandRequest) HasInput() bool {
	return r.AudioPath != "" || r.Codes != ""
}
