// Package markup renders post bodies, written in Markdown, to sanitized HTML
// and plain-text excerpts.
package markup

import (
	"bytes"
	"html"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
	ugc   = newUGCPolicy()
	plain = bluemonday.StrictPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}

func render(source string) []byte {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return []byte(template.HTMLEscapeString(source))
	}
	return buf.Bytes()
}

// HTML renders Markdown source to HTML safe for embedding.
func HTML(source string) string {
	if source == "" {
		return ""
	}
	return string(ugc.SanitizeBytes(render(source)))
}

// Excerpt returns the plain text of Markdown source, whitespace collapsed,
// cut to at most max runes on a word boundary when possible.
func Excerpt(source string, max int) string {
	if source == "" || max <= 0 {
		return ""
	}
	text := html.UnescapeString(string(plain.SanitizeBytes(render(source))))
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 && runes[max] != ' ' {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
