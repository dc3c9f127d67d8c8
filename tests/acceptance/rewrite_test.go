package acceptance_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgecomet/faleproxy/tests/testhelpers"
)

var _ = Describe("Yale to Fale rewriting", func() {
	Context("when the page mentions Yale", func() {
		It("should replace Yale with Fale in visible text", func() {
			target := testEnv.OriginURL("/yale")
			result, doc := testhelpers.ExpectFetchSuccess(testEnv.RequestFetch(target))

			Expect(result.OriginalURL).To(Equal(target))
			Expect(result.Title).To(Equal("Fale University Test Page"))

			Expect(doc.Find("title").Text()).To(Equal("Fale University Test Page"))
			Expect(doc.Find("h1").Text()).To(Equal("Welcome to Fale University"))
			Expect(doc.Find("p").First().Text()).To(ContainSubstring("Fale University is a private"))
			Expect(doc.Find("p").Eq(1).Text()).To(ContainSubstring("Founded in 1701, fale is"))
			Expect(doc.Find("footer p").Text()).To(ContainSubstring("FALE UNIVERSITY"))
			Expect(doc.Find("a").First().Text()).To(Equal("About Fale"))
		})

		It("should leave URLs and attributes unchanged", func() {
			_, doc := testhelpers.ExpectFetchSuccess(testEnv.RequestFetch(testEnv.OriginURL("/yale")))

			href, _ := doc.Find("a").First().Attr("href")
			Expect(href).To(Equal("https://www.yale.edu/about"))

			alt, _ := doc.Find("img").Attr("alt")
			Expect(alt).To(Equal("Yale Logo"))

			desc, _ := doc.Find(`meta[name="description"]`).Attr("content")
			Expect(desc).To(Equal("Yale University homepage"))
		})

		It("should keep comments untouched", func() {
			result, _ := testhelpers.ExpectFetchSuccess(testEnv.RequestFetch(testEnv.OriginURL("/yale")))
			Expect(result.Content).To(ContainSubstring("<!-- Yale comment -->"))
		})

		It("should preserve inline markup inside headings", func() {
			_, doc := testhelpers.ExpectFetchSuccess(testEnv.RequestFetch(testEnv.OriginURL("/fragmented")))

			Expect(doc.Find("h1").Text()).To(Equal("Fale College"))
			Expect(doc.Find("h1 span.brand").Length()).To(Equal(1))
			Expect(doc.Find("p b").Length()).To(Equal(1))
		})

		It("should rewrite script and style text but not attributes", func() {
			result, doc := testhelpers.ExpectFetchSuccess(testEnv.RequestFetch(testEnv.OriginURL("/scripts")))

			Expect(result.Content).To(ContainSubstring(`var school = "Fale";`))
			Expect(result.Content).To(ContainSubstring(`.fale { color: blue; }`))
			Expect(doc.Find("div").Text()).To(Equal("Go Fale"))

			class, _ := doc.Find("div").Attr("class")
			Expect(class).To(Equal("yale"))
			name, _ := doc.Find("div").Attr("data-name")
			Expect(name).To(Equal("Yale"))
		})
	})

	Context("when the page does not mention Yale", func() {
		It("should return the content without replacements", func() {
			result, doc := testhelpers.ExpectFetchSuccess(testEnv.RequestFetch(testEnv.OriginURL("/plain")))

			Expect(result.Title).To(Equal("Test Page"))
			Expect(doc.Find("h1").Text()).To(Equal("Hello World"))
			Expect(result.Content).NotTo(ContainSubstring("Fale"))
			Expect(result.Content).To(ContainSubstring("no target word references"))
		})
	})

	Context("title extraction", func() {
		It("should return an empty title when the page has none", func() {
			result, _ := testhelpers.ExpectFetchSuccess(testEnv.RequestFetch(testEnv.OriginURL("/no-title")))
			Expect(result.Title).To(BeEmpty())
			Expect(result.Content).To(ContainSubstring("<p>Fale</p>"))
		})

		It("should return an empty title when the title element is empty", func() {
			result, _ := testhelpers.ExpectFetchSuccess(testEnv.RequestFetch(testEnv.OriginURL("/empty-title")))
			Expect(result.Title).To(BeEmpty())
		})
	})

	Context("origin encodings", func() {
		It("should decode a Latin-1 page before rewriting", func() {
			result, doc := testhelpers.ExpectFetchSuccess(testEnv.RequestFetch(testEnv.OriginURL("/latin1")))

			Expect(result.Title).To(Equal("Café Fale"))
			Expect(doc.Find("p").Text()).To(Equal("Café Fale"))
		})
	})

	Context("request body formats", func() {
		It("should accept a form-encoded url", func() {
			response := testEnv.Post("/fetch", "application/x-www-form-urlencoded",
				"url="+testEnv.OriginURL("/plain"))
			result, _ := testhelpers.ExpectFetchSuccess(response)
			Expect(result.Title).To(Equal("Test Page"))
		})
	})
})
