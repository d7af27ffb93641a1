package templates

import "github.com/a-h/templ"

// PageData is shared by every page
type PageData struct {
	Title string
	// Flash is an optional notice shown above the content
	Flash      string
	FlashError bool
}

const stylesheet = `
body { font-family: system-ui, sans-serif; margin: 0 auto; max-width: 56rem; padding: 1rem; }
nav a { margin-right: 1rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ddd; padding: .35rem .5rem; text-align: left; }
td.num, th.num { text-align: right; }
.flash { padding: .5rem; background: #e8f5e9; }
.flash.error { background: #ffebee; }
.teams { display: flex; gap: 2rem; }
.teams section { flex: 1; }
.won { color: #2e7d32; }
.lost { color: #c62828; }
`

// Layout wraps body in the common page chrome
func Layout(page PageData, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.element("title", "", page.Title+" - teamrank")
		h.raw("<style>" + stylesheet + "</style></head><body>")
		h.raw(`<nav><a href="/">Leaderboard</a><a href="/teams">Teams</a><a href="/matches">Record match</a></nav>`)
		h.element("h1", "", page.Title)
		if page.Flash != "" {
			class := "flash"
			if page.FlashError {
				class = "flash error"
			}
			h.element("p", `class="`+class+`" role="status"`, page.Flash)
		}
		h.raw("<main>")
		h.render(body)
		h.raw("</main></body></html>")
	})
}
