package detect

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/model"
)

func titleRule() Rule {
	return documentRule("title", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		switch {
		case strings.TrimSpace(doc.Title) == "":
			return Finding{
				Type:        model.IssueMissingTitle,
				Description: "Page is missing title tag",
			}, true
		case doc.DuplicateTitle:
			return Finding{
				Type:        model.IssueDuplicateTitle,
				Description: fmt.Sprintf("Title is shared with other pages: %q", doc.Title),
			}, true
		default:
			return Finding{}, false
		}
	})
}

func titleLengthRule(th config.DetectionThresholds) Rule {
	return documentRule("title-length", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		title := strings.TrimSpace(doc.Title)
		if title == "" {
			return Finding{}, false
		}
		n := utf8.RuneCountInString(title)
		switch {
		case n < th.TitleMinLength:
			return Finding{
				Type:        model.IssueShortTitle,
				Description: fmt.Sprintf("Title too short: %d characters", n),
			}, true
		case n > th.TitleMaxLength:
			return Finding{
				Type:        model.IssueLongTitle,
				Description: fmt.Sprintf("Title too long: %d characters", n),
			}, true
		default:
			return Finding{}, false
		}
	})
}

func genericTitleRule(th config.DetectionThresholds) Rule {
	return documentRule("generic-title", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		title := strings.ToLower(strings.TrimSpace(doc.Title))
		if title == "" {
			return Finding{}, false
		}
		for _, generic := range th.GenericTitles {
			if strings.Contains(title, strings.ToLower(generic)) {
				return Finding{
					Type:        model.IssueGenericTitle,
					Description: fmt.Sprintf("Generic title detected: %q", doc.Title),
				}, true
			}
		}
		return Finding{}, false
	})
}

func metaDescriptionRule() Rule {
	return documentRule("meta-description", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		switch {
		case strings.TrimSpace(doc.MetaDescription) == "":
			return Finding{
				Type:        model.IssueMissingMetaDescription,
				Description: "Page is missing meta description",
			}, true
		case doc.DuplicateMetaDescription:
			return Finding{
				Type:        model.IssueDuplicateMetaDescription,
				Description: "Meta description is shared with other pages",
			}, true
		default:
			return Finding{}, false
		}
	})
}

func metaLengthRule(th config.DetectionThresholds) Rule {
	return documentRule("meta-length", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		desc := strings.TrimSpace(doc.MetaDescription)
		if desc == "" {
			return Finding{}, false
		}
		n := utf8.RuneCountInString(desc)
		switch {
		case n < th.MetaMinLength:
			return Finding{
				Type:        model.IssueShortMetaDescription,
				Description: fmt.Sprintf("Meta description too short: %d characters", n),
			}, true
		case n > th.MetaMaxLength:
			return Finding{
				Type:        model.IssueLongMetaDescription,
				Description: fmt.Sprintf("Meta description too long: %d characters", n),
			}, true
		default:
			return Finding{}, false
		}
	})
}

func h1Rule() Rule {
	return documentRule("h1", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		switch n := len(doc.H1); {
		case n == 0:
			return Finding{
				Type:        model.IssueMissingH1,
				Description: "Page is missing H1 tag",
			}, true
		case n > 1:
			return Finding{
				Type:        model.IssueMultipleH1,
				Description: fmt.Sprintf("Page has %d H1 tags", n),
			}, true
		default:
			return Finding{}, false
		}
	})
}

func altTextRule() Rule {
	return documentRule("alt-text", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		if doc.ImagesWithoutAlt == 0 {
			return Finding{}, false
		}
		return Finding{
			Type:        model.IssueMissingAltText,
			Description: fmt.Sprintf("%d of %d images without alt text", doc.ImagesWithoutAlt, doc.ImageCount),
		}, true
	})
}

func thinContentRule(th config.DetectionThresholds) Rule {
	return documentRule("thin-content", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		if doc.WordCount >= th.ThinContentWords {
			return Finding{}, false
		}
		return Finding{
			Type:        model.IssueThinContent,
			Description: fmt.Sprintf("Page has only %d words", doc.WordCount),
		}, true
	})
}

func internalLinksRule(th config.DetectionThresholds) Rule {
	return documentRule("internal-links", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		if doc.InternalLinks >= th.MinInternalLinks {
			return Finding{}, false
		}
		return Finding{
			Type:        model.IssueInsufficientLinks,
			Description: fmt.Sprintf("Only %d internal links", doc.InternalLinks),
		}, true
	})
}

func externalLinksRule(th config.DetectionThresholds) Rule {
	return documentRule("external-links", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		if doc.ExternalLinks <= th.MaxExternalLinks {
			return Finding{}, false
		}
		return Finding{
			Type:        model.IssueExcessiveExternalLinks,
			Description: fmt.Sprintf("%d external links", doc.ExternalLinks),
		}, true
	})
}
