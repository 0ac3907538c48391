package httpclient_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/usersync/internal/httpclient"
)

func TestHTTPClient(t *testing.T) {
	t.Parallel()
	RegisterFailHandler(Fail)
	RunSpecs(t, "HTTPClient Suite")
}

var _ = Describe("DefaultClient", func() {
	var (
		client     httpclient.Client
		mockServer *httptest.Server
		ctx        context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = httpclient.NewDefaultClient(5 * time.Second)
	})

	AfterEach(func() {
		if mockServer != nil {
			mockServer.Close()
			mockServer = nil
		}
	})

	serve := func(handler http.HandlerFunc) {
		mockServer = httptest.NewServer(handler)
		mockServer.Config.SetKeepAlivesEnabled(false)
	}

	Describe("NewDefaultClient", func() {
		It("should fall back to the default timeout", func() {
			Expect(httpclient.NewDefaultClient(0)).NotTo(BeNil())
		})
	})

	Describe("Get", func() {
		It("should return the body and send JSON headers", func() {
			serve(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodGet))
				Expect(r.Header.Get("User-Agent")).To(Equal(httpclient.UserAgent))
				Expect(r.Header.Get("Accept")).To(Equal("application/json"))
				_, _ = w.Write([]byte(`[{"id":1}]`))
			})

			data, err := client.Get(ctx, mockServer.URL+"/users")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte(`[{"id":1}]`)))
		})

		DescribeTable("should return an HTTPError for non-200 statuses",
			func(status int) {
				serve(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(status)
				})

				_, err := client.Get(ctx, mockServer.URL)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring(fmt.Sprintf("HTTP %d", status)))
				Expect(httpclient.StatusCode(err)).To(Equal(status))
			},
			Entry("404", http.StatusNotFound),
			Entry("429", http.StatusTooManyRequests),
			Entry("500", http.StatusInternalServerError),
			Entry("503", http.StatusServiceUnavailable),
		)

		It("should fail on an invalid URL", func() {
			_, err := client.Get(ctx, "://invalid-url")
			Expect(err).To(MatchError(ContainSubstring("failed to create request")))
		})

		It("should fail on an unreachable host", func() {
			_, err := client.Get(ctx, "http://invalid-host-does-not-exist.local:9999")
			Expect(err).To(MatchError(ContainSubstring("failed to execute request")))
		})

		It("should respect context cancellation", func() {
			serve(func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(500 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
			})

			cancelCtx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := client.Get(cancelCtx, mockServer.URL)
			Expect(err).To(HaveOccurred())
		})

		It("should reject bodies larger than the configured limit", func() {
			serve(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(make([]byte, 2048))
			})

			limited := httpclient.NewDefaultClient(time.Second, httpclient.WithMaxResponseSize(1024))
			_, err := limited.Get(ctx, mockServer.URL)
			Expect(err).To(MatchError(ContainSubstring("exceeds maximum allowed size")))
		})

		It("should reject an oversized Content-Length up front", func() {
			serve(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Length", "4096")
				w.WriteHeader(http.StatusOK)
			})

			limited := httpclient.NewDefaultClient(time.Second, httpclient.WithMaxResponseSize(1024))
			_, err := limited.Get(ctx, mockServer.URL)
			Expect(err).To(MatchError(ContainSubstring("response size 4096 bytes")))
		})
	})
})
