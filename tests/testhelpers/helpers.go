package testhelpers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	. "github.com/onsi/gomega"
)

// TestResponse represents the response from a proxy request
type TestResponse struct {
	StatusCode int
	Headers    http.Header
	Body       string
	Duration   time.Duration
	Error      error
}

// FetchResult is the decoded body of a POST /fetch response
type FetchResult struct {
	Success     bool   `json:"success"`
	Content     string `json:"content"`
	Title       string `json:"title"`
	OriginalURL string `json:"originalUrl"`
	Error       string `json:"error"`
}

// ExpectNoError checks that the response has no network errors
func ExpectNoError(response *TestResponse) {
	Expect(response).NotTo(BeNil(), "Response should not be nil")
	Expect(response.Error).To(BeNil(), "Request should not have network errors")
}

// ExpectHTMLContent verifies that response contains expected content
func ExpectHTMLContent(response *TestResponse, expectedContent ...string) {
	Expect(response.Body).NotTo(BeEmpty(), "Response body should not be empty")
	for _, content := range expectedContent {
		Expect(response.Body).To(ContainSubstring(content),
			"Response should contain: %s", content)
	}
}

// ExpectNotHTMLContent verifies that response does not contain specific content
func ExpectNotHTMLContent(response *TestResponse, unexpectedContent ...string) {
	for _, content := range unexpectedContent {
		Expect(response.Body).NotTo(ContainSubstring(content),
			"Response should not contain: %s", content)
	}
}

// DecodeFetchResult parses a /fetch JSON body
func DecodeFetchResult(response *TestResponse) *FetchResult {
	ExpectNoError(response)
	Expect(response.Headers.Get("Content-Type")).To(ContainSubstring("application/json"))

	var result FetchResult
	Expect(json.Unmarshal([]byte(response.Body), &result)).To(Succeed(),
		"Body should be JSON: %s", response.Body)
	return &result
}

// ExpectFetchSuccess verifies a 200 rewrite response and returns the parsed content
func ExpectFetchSuccess(response *TestResponse) (*FetchResult, *goquery.Document) {
	ExpectNoError(response)
	Expect(response.StatusCode).To(Equal(http.StatusOK), "Body: %s", response.Body)

	result := DecodeFetchResult(response)
	Expect(result.Success).To(BeTrue())

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.Content))
	Expect(err).NotTo(HaveOccurred())
	return result, doc
}

// ExpectFetchError verifies an error response with the given status and message
func ExpectFetchError(response *TestResponse, statusCode int, message string) {
	ExpectNoError(response)
	Expect(response.StatusCode).To(Equal(statusCode),
		"Expected status code %d, got %d", statusCode, response.StatusCode)

	result := DecodeFetchResult(response)
	Expect(result.Success).To(BeFalse())
	Expect(result.Error).To(Equal(message))
}

// ExpectResponseTime verifies that response time is within acceptable limits
func ExpectResponseTime(response *TestResponse, maxDuration time.Duration) {
	Expect(response.Duration).To(BeNumerically("<=", maxDuration),
		"Response time should be under %v, got %v", maxDuration, response.Duration)
}

// CountSuccessfulResponses counts responses with 200 status code
func CountSuccessfulResponses(responses []*TestResponse) int {
	count := 0
	for _, response := range responses {
		if response != nil && response.Error == nil && response.StatusCode == http.StatusOK {
			count++
		}
	}
	return count
}
