package detect

import (
	"fmt"

	"github.com/nao1215/seoaudit/internal/model"
)

func structuredDataRule() Rule {
	return documentRule("structured-data", func(_ *model.Page, doc *model.Document) (Finding, bool) {
		sd := doc.StructuredData
		switch {
		case sd.InvalidBlocks > 0:
			return Finding{
				Type:        model.IssueInvalidStructuredData,
				Description: fmt.Sprintf("%d of %d JSON-LD blocks could not be parsed", sd.InvalidBlocks, sd.JSONLDBlocks),
			}, true
		case !sd.Present():
			return Finding{
				Type:        model.IssueMissingStructuredData,
				Description: "No structured data found",
			}, true
		default:
			return Finding{}, false
		}
	})
}

// schemaTypeRule checks the schema type expected for the page type.
// Pages without any structured data are left to structuredDataRule.
func schemaTypeRule() Rule {
	return documentRule("schema-type", func(p *model.Page, doc *model.Document) (Finding, bool) {
		sd := doc.StructuredData
		if !sd.Present() {
			return Finding{}, false
		}
		switch p.Type {
		case model.PageTypeProduct:
			if !sd.HasType("Product") {
				return Finding{
					Type:        model.IssueMissingProductSchema,
					Description: "Product page is missing Product schema",
				}, true
			}
		case model.PageTypeHomepage:
			if !sd.HasType("Organization") && !sd.HasType("Corporation") && !sd.HasType("OnlineStore") {
				return Finding{
					Type:        model.IssueMissingOrgSchema,
					Description: "Homepage is missing Organization schema",
				}, true
			}
		}
		return Finding{}, false
	})
}
