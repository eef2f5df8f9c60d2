package lmclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/soundprobe/soundprobe/api/v1"
	"github.com/soundprobe/soundprobe/pkg/lmclient"
)

func TestLMClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LMClient Suite")
}

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		srv      *httptest.Server
		lastReq  *http.Request
		lastBody []byte
	)

	BeforeEach(func() {
		ctx = context.Background()
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastReq = r.Clone(r.Context())
			if r.Body != nil {
				var err error
				lastBody, err = readAll(r)
				Expect(err).NotTo(HaveOccurred())
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"code":200,"data":{"caption":"warm tape loops","bpm":84}}`))
		}))
	})

	AfterEach(func() {
		srv.Close()
	})

	It("should decode the envelope and metadata", func() {
		client := lmclient.New(srv.URL)
		resp, err := client.Inspire(ctx, v1.InspireRequest{Query: "lo-fi"})
		Expect(err).NotTo(HaveOccurred())

		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Envelope.Code).To(Equal(200))

		meta, err := resp.Metadata()
		Expect(err).NotTo(HaveOccurred())
		Expect(meta.Caption).To(Equal("warm tape loops"))
		Expect(meta.Bpm).To(HaveValue(Equal(84)))
	})

	It("should inject the bearer token on every request", func() {
		client := lmclient.New(srv.URL, lmclient.WithBearerToken("sekrit"))
		_, err := client.Health(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(lastReq.Header.Get("Authorization")).To(Equal("Bearer sekrit"))
	})

	It("should post JSON with the right path and content type", func() {
		client := lmclient.New(srv.URL)
		_, err := client.Format(ctx, v1.FormatRequest{Caption: "jazz"})
		Expect(err).NotTo(HaveOccurred())

		Expect(lastReq.URL.Path).To(Equal("/lm/format"))
		Expect(lastReq.Header.Get("Content-Type")).To(Equal("application/json"))

		var body v1.FormatRequest
		Expect(json.Unmarshal(lastBody, &body)).To(Succeed())
		Expect(body.Caption).To(Equal("jazz"))
	})

	It("should upload audio as multipart form data with extra fields", func() {
		audio := filepath.Join(GinkgoT().TempDir(), "clip.wav")
		Expect(os.WriteFile(audio, []byte("not really audio"), 0o600)).To(Succeed())

		client := lmclient.New(srv.URL)
		_, err := client.UnderstandUpload(ctx, audio, map[string]string{"temperature": "0.3"})
		Expect(err).NotTo(HaveOccurred())

		Expect(lastReq.URL.Path).To(Equal("/lm/understand"))
		Expect(lastReq.Header.Get("Content-Type")).To(HavePrefix("multipart/form-data"))
	})

	It("should fail on a non-JSON response body", func() {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>nope</html>"))
		}))
		defer bad.Close()

		client := lmclient.New(bad.URL)
		_, err := client.Health(ctx)
		Expect(err).To(HaveOccurred())
	})
})

func readAll(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}
