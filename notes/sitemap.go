// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notes

import (
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// maxChildSitemaps bounds how many child sitemaps one listing reads
const maxChildSitemaps = 12

var auctionPostPattern = regexp.MustCompile(`(?i)/post/auction(\d+)\b`)

// sitemap is a <urlset> or a <sitemapindex>; both list <loc> entries
type sitemap struct {
	index bool
	locs  []string
}

func parseSitemap(r io.Reader) (*sitemap, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	sm := &sitemap{}
	inLoc := false
	var loc strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return sm, nil
		}
		if err != nil {
			return sm, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch strings.ToLower(t.Name.Local) {
			case "sitemapindex":
				sm.index = true
			case "loc":
				inLoc = true
				loc.Reset()
			}
		case xml.CharData:
			if inLoc {
				loc.Write(t)
			}
		case xml.EndElement:
			if inLoc && strings.EqualFold(t.Name.Local, "loc") {
				inLoc = false
				if u := strings.TrimSpace(loc.String()); u != "" {
					sm.locs = append(sm.locs, u)
				}
			}
		}
	}
}

// children returns the child sitemap URLs of an index
func (sm *sitemap) children() []string {
	if !sm.index {
		return nil
	}
	var out []string
	for _, u := range sm.locs {
		if strings.HasSuffix(u, ".xml") {
			out = append(out, u)
		}
	}
	return out
}

type auctionPost struct {
	url string
	num int
}

// auctionPosts keeps the locs that point at numbered auction posts
func (sm *sitemap) auctionPosts() []auctionPost {
	var out []auctionPost
	for _, u := range sm.locs {
		m := auctionPostPattern.FindStringSubmatch(u)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, auctionPost{url: u, num: n})
	}
	return out
}

// latest dedupes posts by URL and returns up to limit URLs, highest
// auction number first.
func latest(posts []auctionPost, limit int) []string {
	seen := make(map[string]int, len(posts))
	for _, p := range posts {
		seen[p.url] = p.num
	}

	uniq := make([]auctionPost, 0, len(seen))
	for u, n := range seen {
		uniq = append(uniq, auctionPost{url: u, num: n})
	}
	sort.Slice(uniq, func(i, j int) bool {
		if uniq[i].num != uniq[j].num {
			return uniq[i].num > uniq[j].num
		}
		return uniq[i].url < uniq[j].url
	})

	if len(uniq) > limit {
		uniq = uniq[:limit]
	}
	out := make([]string, len(uniq))
	for i, p := range uniq {
		out[i] = p.url
	}
	return out
}
