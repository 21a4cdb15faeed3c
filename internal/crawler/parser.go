package crawler

import (
	"errors"
	"io"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Links is the outgoing link set of a page, resolved and deduplicated.
type Links struct {
	// Internal targets share the page's registrable domain.
	Internal []string
	External []string

	// Nofollow counts anchors marked rel="nofollow".
	Nofollow int
}

// ScanLinks streams the HTML in r and collects the <a href> targets,
// resolved against pageURL or the document's <base href>.
func ScanLinks(r io.Reader, pageURL string) (*Links, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	links := &Links{}
	seen := make(map[string]struct{})
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return links, nil
			}
			return links, z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Base:
				if href := attr(tok, "href"); href != "" {
					if u, err := base.Parse(strings.TrimSpace(href)); err == nil {
						base = u
					}
				}
			case atom.A:
				links.add(base, tok, seen)
			}
		}
	}
}

func (l *Links) add(base *url.URL, tok html.Token, seen map[string]struct{}) {
	if slices.Contains(strings.Fields(strings.ToLower(attr(tok, "rel"))), "nofollow") {
		l.Nofollow++
	}
	target := resolveReference(base, attr(tok, "href"))
	if target == "" {
		return
	}
	if _, dup := seen[target]; dup {
		return
	}
	seen[target] = struct{}{}
	if sameSite(base, target) {
		l.Internal = append(l.Internal, target)
	} else {
		l.External = append(l.External, target)
	}
}

// resolveReference resolves href against base. Fragments are dropped and
// anything that is not an http(s) page resolves to "".
func resolveReference(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
