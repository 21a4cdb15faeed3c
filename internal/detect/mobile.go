package detect

import (
	"fmt"
	"strings"

	"github.com/nao1215/seoaudit/internal/model"
)

// mobileRule reports mobile-usability flags, falling back to the viewport
// check when no flags were collected.
func mobileRule() Rule {
	return NewRule("mobile", func(p *model.Page) (Finding, bool) {
		if p.Mobile.Flagged() {
			return Finding{
				Type:        model.IssueMobileUsability,
				Description: fmt.Sprintf("Mobile usability problems: %s", strings.Join(p.Mobile.Issues, ", ")),
			}, true
		}
		if p.Mobile != nil {
			return Finding{}, false
		}
		doc := p.Document()
		if doc == nil || doc.HasViewport {
			return Finding{}, false
		}
		return Finding{
			Type:        model.IssueMobileUsability,
			Description: "Page is missing the viewport meta tag",
		}, true
	})
}
