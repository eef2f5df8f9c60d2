package mockserver

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	v1 "github.com/soundprobe/soundprobe/api/v1"
	"github.com/soundprobe/soundprobe/internal/util"
)

var (
	moods = []string{
		"melancholic", "uplifting", "hypnotic", "driving", "dreamy",
		"gritty", "soaring", "intimate", "brooding", "playful",
	}
	textures = []string{
		"analog synths", "fingerpicked guitar", "layered vocals",
		"tape-saturated drums", "warm sub bass", "shimmering pads",
		"muted brass", "glitchy percussion",
	}
	keys = []string{
		"C Major", "A Minor", "Eb Major", "F# Minor", "G Major",
		"Bb Major", "D Minor", "E Major",
	}
	lyricLines = []string{
		"shadows stretch across the floor",
		"we were louder than the storm",
		"count the miles in neon light",
		"every echo knows your name",
		"hold the morning in your hands",
		"paper boats on a rising tide",
		"the city hums a tired song",
		"gravity forgets us now",
	}
)

type fabricateParams struct {
	Seed         int64
	Source       string
	Instrumental bool
	Language     string
	Lyrics       string
}

// seedFor resolves the effective generation seed: the caller's seed when one
// was supplied, otherwise a fresh one. Identical explicit seeds must always
// fabricate identical output.
func seedFor(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return time.Now().UnixNano()
}

// seedForName derives a stable seed from an input name, so analyzing the same
// file twice yields the same metadata.
func seedForName(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}

// fabricate builds a metadata payload from the seed alone; no inference, no
// audio processing. Everything downstream of the rng is deterministic.
func fabricate(p fabricateParams) v1.Metadata {
	rng := rand.New(rand.NewSource(p.Seed))

	mood := moods[rng.Intn(len(moods))]
	texture := textures[rng.Intn(len(textures))]
	caption := fmt.Sprintf("%s track with %s", mood, texture)
	if p.Source != "" {
		caption = fmt.Sprintf("%s, %s with %s", strings.TrimSpace(p.Source), mood, texture)
	}

	lyrics := p.Lyrics
	if lyrics == "" && !p.Instrumental {
		n := 2 + rng.Intn(3)
		lines := make([]string, 0, n+1)
		lines = append(lines, "[Verse]")
		for i := 0; i < n; i++ {
			lines = append(lines, lyricLines[rng.Intn(len(lyricLines))])
		}
		lyrics = strings.Join(lines, "\n")
	}
	if p.Instrumental {
		lyrics = ""
	}

	language := p.Language
	if language == "" {
		language = "en"
	}

	seed := p.Seed
	return v1.Metadata{
		Caption:       caption,
		Lyrics:        &lyrics,
		Bpm:           util.IntPtr(60 + rng.Intn(120)),
		Duration:      util.FloatPtr(float64(90 + rng.Intn(180))),
		KeyScale:      keys[rng.Intn(len(keys))],
		TimeSignature: []string{"4", "3", "6"}[rng.Intn(3)],
		VocalLanguage: language,
		Instrumental:  util.BoolPtr(p.Instrumental),
		Seed:          &seed,
	}
}
