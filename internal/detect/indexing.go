package detect

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/seoaudit/internal/model"
)

// documentRule wraps a rule that needs the parsed document.
func documentRule(name string, fn func(*model.Page, *model.Document) (Finding, bool)) Rule {
	return NewRule(name, func(p *model.Page) (Finding, bool) {
		doc := p.Document()
		if doc == nil {
			return Finding{}, false
		}
		return fn(p, doc)
	})
}

func noindexRule() Rule {
	return documentRule("noindex", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		if !doc.Noindex() {
			return Finding{}, false
		}
		return Finding{
			Type:        model.IssueBlockedByRobots,
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("Page is blocked by robots meta tag: %s", doc.Robots),
		}, true
	})
}

func canonicalRule() Rule {
	return documentRule("canonical", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		canonical := strings.TrimSpace(doc.Canonical)
		if canonical == "" {
			return Finding{
				Type:        model.IssueMissingCanonical,
				Description: "Page is missing canonical tag",
			}, true
		}
		if !isAbsoluteHTTPURL(canonical) {
			return Finding{
				Type:        model.IssueInvalidCanonical,
				Description: fmt.Sprintf("Invalid canonical URL: %s", canonical),
			}, true
		}
		return Finding{}, false
	})
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
