package conformance_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/soundprobe/soundprobe/api/v1"
	"github.com/soundprobe/soundprobe/internal/config"
	"github.com/soundprobe/soundprobe/internal/conformance"
	"github.com/soundprobe/soundprobe/internal/mockserver"
	"github.com/soundprobe/soundprobe/internal/util"
	"github.com/soundprobe/soundprobe/pkg/lmclient"
)

func TestConformance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Conformance Suite")
}

func runnerConfig(baseURL string) config.Runner {
	return config.Runner{
		BaseURL:         baseURL,
		HealthTimeout:   2 * time.Second,
		QuickTimeout:    5 * time.Second,
		GenerateTimeout: 10 * time.Second,
		AnalyzeTimeout:  10 * time.Second,
	}
}

var _ = Describe("Suite", func() {
	var (
		ctx context.Context
		srv *httptest.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		srv = httptest.NewServer(mockserver.New(":0", "").Router())
	})

	AfterEach(func() {
		srv.Close()
	})

	// Given a healthy deterministic backend and no sample audio
	// When the full suite runs
	// Then every check passes and both file-based checks are skipped
	It("should pass everything against the mock backend, skipping file checks", func() {
		cfg := runnerConfig(srv.URL)
		rec := conformance.NewRecorder(GinkgoWriter)
		suite := conformance.New(lmclient.New(cfg.BaseURL), rec, cfg)

		ok := suite.Run(ctx)

		Expect(ok).To(BeTrue())
		Expect(rec.Failed()).To(BeZero())
		Expect(rec.Skipped()).To(Equal(2))
		Expect(rec.Passed()).To(Equal(11))
	})

	// Given a sample audio file
	// When the full suite runs
	// Then the understand checks execute instead of skipping
	It("should run the understand checks when an audio file is configured", func() {
		audio := filepath.Join(GinkgoT().TempDir(), "clip.wav")
		Expect(os.WriteFile(audio, []byte("not really audio"), 0o600)).To(Succeed())

		cfg := runnerConfig(srv.URL)
		cfg.AudioFile = audio
		rec := conformance.NewRecorder(GinkgoWriter)
		suite := conformance.New(lmclient.New(cfg.BaseURL), rec, cfg)

		ok := suite.Run(ctx)

		Expect(ok).To(BeTrue())
		Expect(rec.Skipped()).To(BeZero())
		Expect(rec.Passed()).To(Equal(13))
	})

	// Given a backend requiring bearer auth and a client holding a valid token
	// When the full suite runs
	// Then authentication is transparent to the checks
	It("should pass against an auth-gated backend with a valid token", func() {
		const secret = "suite-secret"
		authSrv := httptest.NewServer(mockserver.New(":0", secret).Router())
		defer authSrv.Close()

		token, err := mockserver.MintToken(secret, "suite")
		Expect(err).NotTo(HaveOccurred())

		cfg := runnerConfig(authSrv.URL)
		cfg.APIKey = token
		rec := conformance.NewRecorder(GinkgoWriter)
		suite := conformance.New(lmclient.New(cfg.BaseURL, lmclient.WithBearerToken(token)), rec, cfg)

		Expect(suite.Run(ctx)).To(BeTrue())
		Expect(rec.Failed()).To(BeZero())
	})

	// Given a backend where each generation call eats most of the per-call budget
	// When the seed reproducibility check issues its two calls
	// Then each call gets its own deadline and the suite still passes
	It("should budget each seed reproducibility call separately", func() {
		router := mockserver.New(":0", "").Router()
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/lm/inspire" {
				time.Sleep(600 * time.Millisecond)
			}
			router.ServeHTTP(w, r)
		}))
		defer slow.Close()

		cfg := runnerConfig(slow.URL)
		cfg.GenerateTimeout = time.Second // enough for one slow call, not for two
		rec := conformance.NewRecorder(GinkgoWriter)
		suite := conformance.New(lmclient.New(cfg.BaseURL), rec, cfg)

		Expect(suite.Run(ctx)).To(BeTrue())
		Expect(rec.Failed()).To(BeZero())
	})

	// Given a backend that produces different output on every call
	// When the full suite runs
	// Then the seed check fails but the remaining checks still execute
	It("should record seed divergence as a failure without aborting the run", func() {
		router := mockserver.New(":0", "").Router()
		var calls atomic.Int64
		nd := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/lm/inspire" {
				router.ServeHTTP(w, r)
				return
			}
			var req v1.InspireRequest
			Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
			w.Header().Set("Content-Type", "application/json")
			if strings.TrimSpace(req.Query) == "" {
				w.WriteHeader(http.StatusBadRequest)
				Expect(json.NewEncoder(w).Encode(v1.Envelope{Code: 400, Error: "query is required"})).To(Succeed())
				return
			}
			n := calls.Add(1)
			lyrics := fmt.Sprintf("verse %d", n)
			raw, err := json.Marshal(v1.Metadata{
				Caption:  fmt.Sprintf("%s, take %d", req.Query, n),
				Lyrics:   &lyrics,
				Bpm:      util.IntPtr(92),
				Duration: util.FloatPtr(180),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(json.NewEncoder(w).Encode(v1.Envelope{Code: 200, Data: raw})).To(Succeed())
		}))
		defer nd.Close()

		cfg := runnerConfig(nd.URL)
		rec := conformance.NewRecorder(GinkgoWriter)
		suite := conformance.New(lmclient.New(cfg.BaseURL), rec, cfg)

		ok := suite.Run(ctx)

		Expect(ok).To(BeFalse())
		Expect(rec.Failed()).To(Equal(1))
		Expect(rec.Passed()).To(Equal(10))
		Expect(rec.Skipped()).To(Equal(2))

		seedIdx := -1
		for i, res := range rec.Results() {
			if res.Name == "inspire: seed reproducibility" {
				seedIdx = i
			}
		}
		Expect(seedIdx).NotTo(Equal(-1))
		seed := rec.Results()[seedIdx]
		Expect(seed.Status).To(Equal(conformance.StatusFail))
		Expect(seed.Detail).To(ContainSubstring("outputs differ"))

		later := make([]string, 0)
		for _, res := range rec.Results()[seedIdx+1:] {
			later = append(later, res.Name)
		}
		Expect(later).To(ContainElement("format: basic"))
	})

	// Given an unreachable server
	// When the suite runs
	// Then the health gate fails and no further check executes
	It("should abort after a failed health gate", func() {
		srv.Close() // connection refused from here on

		cfg := runnerConfig(srv.URL)
		cfg.HealthTimeout = 500 * time.Millisecond
		rec := conformance.NewRecorder(GinkgoWriter)
		suite := conformance.New(lmclient.New(cfg.BaseURL), rec, cfg)

		ok := suite.Run(ctx)

		Expect(ok).To(BeFalse())
		Expect(rec.Failed()).To(Equal(1))
		Expect(rec.Results()).To(HaveLen(1))
		Expect(rec.Results()[0].Name).To(Equal("health: server reachable"))
		Expect(rec.Results()[0].Status).To(Equal(conformance.StatusFail))
	})
})

var _ = Describe("Recorder", func() {
	// Given a mix of outcomes
	// When they are recorded
	// Then counters and the ordered log should agree
	It("should keep counters and the outcome log in sync", func() {
		rec := conformance.NewRecorder(GinkgoWriter)
		rec.Pass("a", "")
		rec.Fail("b", "boom")
		rec.Skip("c", "no file")
		rec.Pass("d", "detail")

		Expect(rec.Passed()).To(Equal(2))
		Expect(rec.Failed()).To(Equal(1))
		Expect(rec.Skipped()).To(Equal(1))

		results := rec.Results()
		Expect(results).To(HaveLen(4))
		Expect(results[1].Status).To(Equal(conformance.StatusFail))
		Expect(results[1].Detail).To(Equal("boom"))
		Expect(results[2].Status).To(Equal(conformance.StatusSkip))
	})
})
