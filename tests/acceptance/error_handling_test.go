package acceptance_test

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgecomet/faleproxy/tests/testhelpers"
)

var _ = Describe("Error handling", func() {
	Context("missing url", func() {
		DescribeTable("should return 400 URL is required",
			func(target any) {
				testhelpers.ExpectFetchError(testEnv.RequestFetch(target), http.StatusBadRequest, "URL is required")
			},
			Entry("empty string", ""),
			Entry("null", nil),
			Entry("false", false),
			Entry("zero", 0),
		)

		It("should reject an empty object", func() {
			response := testEnv.Post("/fetch", "application/json", `{}`)
			testhelpers.ExpectFetchError(response, http.StatusBadRequest, "URL is required")
		})

		It("should reject a body without a content type", func() {
			response := testEnv.Post("/fetch", "", "")
			testhelpers.ExpectFetchError(response, http.StatusBadRequest, "URL is required")
		})
	})

	Context("malformed requests", func() {
		It("should return 400 for invalid JSON", func() {
			response := testEnv.Post("/fetch", "application/json", `{"url": `)
			testhelpers.ExpectFetchError(response, http.StatusBadRequest, "Invalid request body")
		})

		It("should return 405 for GET /fetch", func() {
			response := testEnv.Get("/fetch", nil)
			testhelpers.ExpectNoError(response)
			Expect(response.StatusCode).To(Equal(http.StatusMethodNotAllowed))
			Expect(response.Headers.Get("Allow")).To(Equal("POST"))
		})

		It("should return 404 JSON for unknown API paths", func() {
			response := testEnv.Post("/unknown", "application/json", `{}`)
			testhelpers.ExpectFetchError(response, http.StatusNotFound, "Endpoint not found")
		})
	})

	Context("invalid URLs", func() {
		It("should return 500 Invalid URL format without contacting any origin", func() {
			response := testEnv.RequestFetch("not-a-valid-url")
			testhelpers.ExpectFetchError(response, http.StatusInternalServerError, "Invalid URL format")
		})

		It("should treat a non-string url as an invalid URL", func() {
			response := testEnv.RequestFetch(12345)
			testhelpers.ExpectFetchError(response, http.StatusInternalServerError, "Invalid URL format")
		})
	})

	Context("origin failures", func() {
		It("should report a non-2xx origin status", func() {
			response := testEnv.RequestFetch(testEnv.OriginURL("/missing"))
			testhelpers.ExpectFetchError(response, http.StatusInternalServerError,
				"Failed to fetch content: Request failed with status code 404")
		})

		It("should report an origin server error", func() {
			response := testEnv.RequestFetch(testEnv.OriginURL("/broken"))
			testhelpers.ExpectFetchError(response, http.StatusInternalServerError,
				"Failed to fetch content: Request failed with status code 500")
		})

		It("should report an unsupported scheme", func() {
			response := testEnv.RequestFetch("ftp://example.com/file")
			testhelpers.ExpectFetchError(response, http.StatusInternalServerError,
				`Failed to fetch content: unsupported protocol scheme "ftp"`)
		})

		It("should report a refused connection", func() {
			response := testEnv.RequestFetch("http://127.0.0.1:1/")
			testhelpers.ExpectNoError(response)
			Expect(response.StatusCode).To(Equal(http.StatusInternalServerError))

			result := testhelpers.DecodeFetchResult(response)
			Expect(result.Error).To(HavePrefix("Failed to fetch content: "))
			Expect(len(result.Error)).To(BeNumerically(">", len("Failed to fetch content: ")))
		})
	})
})
