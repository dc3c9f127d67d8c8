package acceptance_test

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgecomet/faleproxy/tests/testhelpers"
)

var _ = Describe("Static content", func() {
	It("should serve the browser UI at /", func() {
		response := testEnv.Get("/", nil)
		testhelpers.ExpectNoError(response)
		Expect(response.StatusCode).To(Equal(http.StatusOK))
		Expect(response.Headers.Get("Content-Type")).To(ContainSubstring("text/html"))
		testhelpers.ExpectHTMLContent(response,
			`id="url-form"`, `id="url-input"`, `id="result-container"`, `id="content-display"`)
	})

	It("should serve the UI script and stylesheet", func() {
		script := testEnv.Get("/script.js", nil)
		testhelpers.ExpectNoError(script)
		Expect(script.StatusCode).To(Equal(http.StatusOK))
		testhelpers.ExpectHTMLContent(script, "Please enter a valid URL", "noopener noreferrer")

		styles := testEnv.Get("/styles.css", nil)
		testhelpers.ExpectNoError(styles)
		Expect(styles.StatusCode).To(Equal(http.StatusOK))
		Expect(styles.Headers.Get("Content-Type")).To(ContainSubstring("text/css"))
	})

	It("should return 404 for unknown assets", func() {
		response := testEnv.Get("/nope.png", nil)
		testhelpers.ExpectNoError(response)
		Expect(response.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("should answer health checks", func() {
		response := testEnv.Get("/health", nil)
		testhelpers.ExpectNoError(response)
		Expect(response.StatusCode).To(Equal(http.StatusOK))
		Expect(response.Body).To(Equal("OK"))
	})
})
