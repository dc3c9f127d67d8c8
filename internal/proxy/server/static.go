package server

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/valyala/fasthttp"

	"github.com/edgecomet/faleproxy/internal/common/httputil"
)

//go:embed public
var publicAssets embed.FS

// newStaticHandler serves the browser UI from dir, or from the embedded
// assets when dir is empty. "/" resolves to index.html.
func newStaticHandler(dir string) (fasthttp.RequestHandler, error) {
	var root fs.FS
	if dir == "" {
		sub, err := fs.Sub(publicAssets, "public")
		if err != nil {
			return nil, err
		}
		root = sub
	} else {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", dir)
		}
		root = os.DirFS(dir)
	}

	static := &fasthttp.FS{
		FS:         root,
		IndexNames: []string{"index.html"},
		PathNotFound: func(ctx *fasthttp.RequestCtx) {
			httputil.JSONError(ctx, "Endpoint not found", fasthttp.StatusNotFound)
		},
	}
	return static.NewRequestHandler(), nil
}
