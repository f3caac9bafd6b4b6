// Package render converts post markdown into HTML that is safe to embed.
package render

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/logger"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Markdown {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return &Markdown{md: md, policy: policy}
}

// HTML renders source and strips anything the UGC policy does not allow.
// Raw HTML in the source is dropped by goldmark before sanitizing.
func (m *Markdown) HTML(source string) string {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		logger.Log.Warn("markdown conversion failed", "component", "render", "error", err)
		return m.policy.Sanitize(source)
	}
	return m.policy.Sanitize(buf.String())
}

// Post fills ContentHTML.
func (m *Markdown) Post(p domain.Post) domain.Post {
	p.ContentHTML = m.HTML(p.Content)
	return p
}
