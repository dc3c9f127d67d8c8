package acceptance_test

import (
	"net/http"
)

const sampleHTMLWithYale = `<!DOCTYPE html>
<html>
<head>
  <title>Yale University Test Page</title>
  <meta name="description" content="Yale University homepage">
</head>
<body>
  <header>
    <h1>Welcome to Yale University</h1>
    <nav>
      <a href="https://www.yale.edu/about">About Yale</a>
      <a href="https://www.yale.edu/admissions">Admissions</a>
    </nav>
  </header>
  <main>
    <p>Yale University is a private Ivy League research university in New Haven, Connecticut.</p>
    <p>Founded in 1701, yale is one of the oldest institutions of higher education.</p>
    <img src="https://www.yale.edu/images/logo.png" alt="Yale Logo">
    <!-- Yale comment -->
  </main>
  <footer>
    <p>&copy; 2025 YALE UNIVERSITY. All rights reserved.</p>
  </footer>
</body>
</html>`

const sampleHTMLWithoutYale = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
  <h1>Hello World</h1>
  <p>This is a test page with no target word references.</p>
</body>
</html>`

const fragmentedHeading = `<html><head><title>Split</title></head>
<body><h1><span class="brand">Ya</span>le College</h1><p>Inside <b>Ya</b>le</p></body></html>`

const scriptPage = `<html><head><title>Scripts</title>
<script>var school = "Yale";</script>
<style>.yale { color: blue; }</style>
</head><body><div class="yale" data-name="Yale">Go Yale</div></body></html>`

// newOriginHandler serves the fixture pages proxied by the suite
func newOriginHandler() http.Handler {
	mux := http.NewServeMux()

	html := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(body))
		}
	}

	mux.HandleFunc("/yale", html(sampleHTMLWithYale))
	mux.HandleFunc("/plain", html(sampleHTMLWithoutYale))
	mux.HandleFunc("/fragmented", html(fragmentedHeading))
	mux.HandleFunc("/scripts", html(scriptPage))
	mux.HandleFunc("/no-title", html(`<html><body><p>Yale</p></body></html>`))
	mux.HandleFunc("/empty-title", html(`<html><head><title></title></head><body>Yale</body></html>`))

	mux.HandleFunc("/latin1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><head><title>Caf\xe9 Yale</title></head><body><p>Caf\xe9 Yale</p></body></html>"))
	})

	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/yale", http.StatusFound)
	})
	mux.HandleFunc("/redirect-loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/redirect-loop", http.StatusFound)
	})

	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	return mux
}
