// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

type emailLink struct {
	URL   string
	Label string
}

// emailLayout renders the shared HTML frame of account emails.
func emailLayout(greeting string, before []string, link *emailLink, after []string, signature string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.write(`<!DOCTYPE html><html><head><meta charset="utf-8"></head>`)
		ew.write(`<body style="font-family:Arial,sans-serif;color:#1f2937;line-height:1.5">`)
		ew.write(`<div style="max-width:560px;margin:0 auto;padding:24px">`)
		ew.write(`<h2 style="color:#b91c1c">Agde Moto</h2>`)
		ew.paragraph(greeting)
		for _, p := range before {
			ew.paragraph(p)
		}
		if link != nil {
			ew.write(`<p style="text-align:center;margin:32px 0"><a href="`)
			ew.write(templ.EscapeString(string(templ.URL(link.URL))))
			ew.write(`" style="background:#b91c1c;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none">`)
			ew.write(templ.EscapeString(link.Label))
			ew.write(`</a></p>`)
			ew.write(`<p style="font-size:12px;color:#6b7280;word-break:break-all">`)
			ew.write(templ.EscapeString(link.URL))
			ew.write(`</p>`)
		}
		for _, p := range after {
			ew.paragraph(p)
		}
		ew.paragraph(signature)
		ew.write(`</div></body></html>`)
		return ew.err
	})
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) write(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) paragraph(s string) {
	ew.write("<p>")
	ew.write(templ.EscapeString(s))
	ew.write("</p>")
}
