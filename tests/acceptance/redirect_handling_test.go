package acceptance_test

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgecomet/faleproxy/tests/testhelpers"
)

var _ = Describe("Redirect handling", func() {
	It("should follow origin redirects and report the requested URL", func() {
		target := testEnv.OriginURL("/redirect")
		result, doc := testhelpers.ExpectFetchSuccess(testEnv.RequestFetch(target))

		Expect(result.OriginalURL).To(Equal(target))
		Expect(doc.Find("h1").Text()).To(Equal("Welcome to Fale University"))
	})

	It("should record the final URL in the event log", func() {
		response := testEnv.RequestFetch(testEnv.OriginURL("/redirect"))
		testhelpers.ExpectFetchSuccess(response)

		event := testEnv.FindEvent(response.Headers.Get("X-Request-ID"))
		Expect(event).NotTo(BeNil())
		Expect(event.FinalURL).To(Equal(testEnv.OriginURL("/yale")))
	})

	It("should give up on redirect loops", func() {
		response := testEnv.RequestFetch(testEnv.OriginURL("/redirect-loop"))
		testhelpers.ExpectNoError(response)
		Expect(response.StatusCode).To(Equal(http.StatusInternalServerError))

		result := testhelpers.DecodeFetchResult(response)
		Expect(result.Error).To(HavePrefix("Failed to fetch content: "))
		Expect(result.Error).To(ContainSubstring("redirects"))
	})
})
