package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/html"
)

// Injector decorates served HTML with the shared navbar, and optionally the
// logout widget on pages viewed by an authenticated user. Decoration is
// best-effort: if anything about reading or rewriting a file fails, the
// original bytes are served unmodified.
type Injector struct {
	navbar       []byte
	logoutWidget []byte
	gate         *Gate
}

// NewInjector creates an injector serving the given fragments. logoutWidget
// may be nil to disable widget injection. gate may be nil; it is only
// consulted to decide whether the widget applies.
func NewInjector(navbar, logoutWidget []byte, gate *Gate) *Injector {
	return &Injector{
		navbar:       navbar,
		logoutWidget: logoutWidget,
		gate:         gate,
	}
}

// Inject inserts the navbar fragment immediately after the first opening
// body tag. The second return reports whether an insertion happened;
// content without a body tag comes back untouched.
func (i *Injector) Inject(content []byte) ([]byte, bool) {
	offset, found := bodyOpenEnd(content)
	if !found {
		return content, false
	}

	out := make([]byte, 0, len(content)+len(i.navbar)+1)
	out = append(out, content[:offset]...)
	out = append(out, '\n')
	out = append(out, i.navbar...)
	out = append(out, content[offset:]...)
	return out, true
}

// injectWidget inserts the logout widget before the first closing body tag.
func (i *Injector) injectWidget(content []byte) []byte {
	idx := bytes.Index(bytes.ToLower(content), []byte("</body>"))
	if idx < 0 {
		return content
	}

	out := make([]byte, 0, len(content)+len(i.logoutWidget))
	out = append(out, content[:idx]...)
	out = append(out, i.logoutWidget...)
	out = append(out, content[idx:]...)
	return out
}

// ServeFile serves an HTML file with the shared chrome injected. Injection
// never breaks page delivery: on any failure the original file is served.
func (i *Injector) ServeFile(c echo.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "chrome injection failed, serving original",
			"path", path,
			"error", err)
		return c.File(path)
	}

	decorated, _ := i.Inject(content)
	if i.logoutWidget != nil && i.gate != nil && i.gate.Resolve(c) != nil {
		decorated = i.injectWidget(decorated)
	}

	return c.HTMLBlob(http.StatusOK, decorated)
}

// Static returns a middleware serving files under root the way the page
// routes do: HTML goes through injection, everything else is passed through
// byte-identical, and misses fall through to the router.
func (i *Injector) Static(root string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet && c.Request().Method != http.MethodHead {
				return next(c)
			}

			name := filepath.Clean(strings.TrimPrefix(c.Request().URL.Path, "/"))
			if name == "." || strings.HasPrefix(name, "..") {
				return next(c)
			}

			path := filepath.Join(root, name)
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				return next(c)
			}

			if strings.EqualFold(filepath.Ext(path), ".html") {
				return i.ServeFile(c, path)
			}
			return c.File(path)
		}
	}
}

// bodyOpenEnd returns the byte offset just past the first opening body tag.
// The tokenizer handles case-insensitive tag names and attributes, which a
// plain substring match would trip over.
func bodyOpenEnd(content []byte) (int, bool) {
	z := html.NewTokenizer(bytes.NewReader(content))
	offset := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return 0, false
		}

		raw := z.Raw()
		offset += len(raw)

		if tt == html.StartTagToken {
			name, _ := z.TagName()
			if bytes.EqualFold(name, []byte("body")) {
				return offset, true
			}
		}
	}
}
