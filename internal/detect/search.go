package detect

import (
	"fmt"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/model"
)

// searchClicksRule reports visible pages that earn no clicks, or failing
// that, too few clicks. The two cases never apply to the same page.
func searchClicksRule(s config.SearchThresholds) Rule {
	return NewRule("search-clicks", func(p *model.Page) (Finding, bool) {
		m := p.Search
		switch {
		case s.HasZeroClicks(m):
			return Finding{
				Type:        model.IssueZeroClicks,
				Description: fmt.Sprintf("%d impressions but %d clicks", m.Impressions, m.Clicks),
			}, true
		case s.HasLowCTR(m):
			return Finding{
				Type: model.IssueLowCTR,
				Description: fmt.Sprintf("%d impressions with %.2f%% CTR at position %.1f (expected about %.2f%%)",
					m.Impressions, m.ClickThroughRate()*100, m.Position, s.ExpectedCTRAt(m.Position)*100),
			}, true
		default:
			return Finding{}, false
		}
	})
}

func searchPositionRule(s config.SearchThresholds) Rule {
	return NewRule("search-position", func(p *model.Page) (Finding, bool) {
		m := p.Search
		if m == nil || m.Impressions <= s.PoorPositionImpressions || m.Position <= s.PoorPosition {
			return Finding{}, false
		}
		return Finding{
			Type:        model.IssuePoorPosition,
			Description: fmt.Sprintf("%d impressions at average position %.1f", m.Impressions, m.Position),
		}, true
	})
}

func searchOpportunityRule(s config.SearchThresholds) Rule {
	return NewRule("search-opportunity", func(p *model.Page) (Finding, bool) {
		m := p.Search
		if m == nil || m.Impressions <= s.OpportunityImpressions {
			return Finding{}, false
		}
		return Finding{
			Type:        model.IssueHighValueOpportunity,
			Description: fmt.Sprintf("High-visibility page with %d impressions", m.Impressions),
		}, true
	})
}
