package acceptance_test

import (
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgecomet/faleproxy/internal/proxy/events"
	"github.com/edgecomet/faleproxy/tests/testhelpers"
)

var _ = Describe("Observability", func() {
	Context("request ids", func() {
		It("should echo a client supplied X-Request-ID", func() {
			response := testEnv.Get("/health", map[string]string{"X-Request-ID": "acceptance-123"})
			testhelpers.ExpectNoError(response)
			Expect(response.Headers.Get("X-Request-ID")).To(Equal("acceptance-123"))
		})

		It("should generate one when absent", func() {
			response := testEnv.Get("/health", nil)
			testhelpers.ExpectNoError(response)
			Expect(response.Headers.Get("X-Request-ID")).To(HaveLen(36))
		})
	})

	Context("event log", func() {
		It("should log a rewrite event per successful request", func() {
			target := testEnv.OriginURL("/yale")
			response := testEnv.RequestFetch(target)
			result, _ := testhelpers.ExpectFetchSuccess(response)

			event := testEnv.FindEvent(response.Headers.Get("X-Request-ID"))
			Expect(event).NotTo(BeNil())
			Expect(event.EventType).To(Equal(events.EventTypeRewrite))
			Expect(event.URL).To(Equal(target))
			Expect(event.URLHash).To(Equal(events.HashURL(target)))
			Expect(event.StatusCode).To(Equal(http.StatusOK))
			Expect(event.OriginStatus).To(Equal(http.StatusOK))
			Expect(event.Title).To(Equal(result.Title))
			Expect(event.PageSize).To(Equal(len(result.Content)))
			Expect(event.RewrittenTextNodes).To(BeNumerically(">", 0))
			Expect(event.ClientIP).To(Equal("127.0.0.1"))
			Expect(event.InstanceID).To(Equal("acceptance"))
		})

		It("should log an error event with its category", func() {
			response := testEnv.RequestFetch(testEnv.OriginURL("/missing"))
			Expect(response.StatusCode).To(Equal(http.StatusInternalServerError))

			event := testEnv.FindEvent(response.Headers.Get("X-Request-ID"))
			Expect(event).NotTo(BeNil())
			Expect(event.EventType).To(Equal(events.EventTypeError))
			Expect(event.ErrorType).To(Equal(events.ErrorTypeFetch))
			Expect(event.OriginStatus).To(Equal(http.StatusNotFound))
			Expect(event.StatusCode).To(Equal(http.StatusInternalServerError))
		})
	})

	Context("metrics", func() {
		It("should expose request counters by outcome", func() {
			testhelpers.ExpectFetchSuccess(testEnv.RequestFetch(testEnv.OriginURL("/plain")))
			testEnv.RequestFetch("")

			resp, err := testEnv.HTTPClient.Get("http://" + testEnv.MetricsServer.Addr() + "/metrics")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`faleproxy_proxy_requests_total{outcome="success"}`))
			Expect(string(body)).To(ContainSubstring(`faleproxy_proxy_requests_total{outcome="error"}`))
			Expect(string(body)).To(ContainSubstring(`faleproxy_proxy_errors_total{category="missing_url"}`))
			Expect(string(body)).To(ContainSubstring("faleproxy_proxy_fetch_duration_seconds"))
		})
	})
})
