// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notes

import (
	"bytes"
	"html"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Excerpt bounds, measured on the paragraph markup
const (
	minExcerptLength = 60
	maxExcerptLength = 1200
)

var strictPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// page is the parts of a post we read
type page struct {
	meta       map[string]string
	title      string
	paragraphs []string
}

// parsePage reads meta tags, the <title> text and the inner markup of
// every <p>. Meta keys are "property:og:title" or "name:twitter:title".
func parsePage(r io.Reader) (*page, error) {
	doc, err := xhtml.Parse(r)
	if err != nil {
		return nil, err
	}

	p := &page{meta: map[string]string{}}
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			switch n.DataAtom {
			case atom.Meta:
				p.addMeta(n)
			case atom.Title:
				if p.title == "" && n.FirstChild != nil {
					p.title = strings.TrimSpace(n.FirstChild.Data)
				}
			case atom.P:
				p.paragraphs = append(p.paragraphs, innerHTML(n))
				return
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return p, nil
}

func (p *page) addMeta(n *xhtml.Node) {
	var key, content string
	hasContent := false
	for _, a := range n.Attr {
		switch a.Key {
		case "property", "name":
			if key == "" {
				key = a.Key + ":" + a.Val
			}
		case "content":
			content = a.Val
			hasContent = true
		}
	}
	if key == "" || !hasContent {
		return
	}
	if _, seen := p.meta[key]; !seen {
		p.meta[key] = content
	}
}

// first returns the first non-empty value among keys
func (p *page) first(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(p.meta[k]); v != "" {
			return v
		}
	}
	return ""
}

// excerpt returns the text of the first paragraph whose markup is long
// enough to be prose, with tags stripped and whitespace collapsed.
func (p *page) excerpt() string {
	for _, raw := range p.paragraphs {
		n := utf8.RuneCountInString(raw)
		if n < minExcerptLength || n > maxExcerptLength {
			continue
		}
		text := html.UnescapeString(strictPolicy.Sanitize(raw))
		return strings.Join(strings.Fields(text), " ")
	}
	return ""
}

func innerHTML(n *xhtml.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := xhtml.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}
