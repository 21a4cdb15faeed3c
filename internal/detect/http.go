package detect

import (
	"fmt"
	"net/http"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/model"
)

// httpStatusRule reports 5xx responses as critical server errors and 4xx
// responses as client errors.
func httpStatusRule() Rule {
	return NewRule("http-status", func(p *model.Page) (Finding, bool) {
		if !p.Crawl.HasStatus() {
			return Finding{}, false
		}
		code := p.Crawl.StatusCode
		switch {
		case code >= http.StatusInternalServerError:
			return Finding{
				Type:        model.IssueServerError,
				Severity:    model.SeverityCritical,
				Description: fmt.Sprintf("Page returned HTTP %d", code),
			}, true
		case code >= http.StatusBadRequest:
			return Finding{
				Type:        model.IssueClientError,
				Description: fmt.Sprintf("Page returned HTTP %d", code),
			}, true
		default:
			return Finding{}, false
		}
	})
}

func responseTimeRule(th config.DetectionThresholds) Rule {
	return NewRule("response-time", func(p *model.Page) (Finding, bool) {
		if !p.Crawl.HasStatus() || p.Crawl.ResponseTime <= th.SlowResponse {
			return Finding{}, false
		}
		severity := model.SeverityMedium
		if p.Crawl.ResponseTime > th.VerySlowResponse {
			severity = model.SeverityHigh
		}
		return Finding{
			Type:        model.IssueSlowResponse,
			Severity:    severity,
			Description: fmt.Sprintf("Response time: %.2fs", p.Crawl.ResponseTime.Seconds()),
		}, true
	})
}

func pageSizeRule(th config.DetectionThresholds) Rule {
	return NewRule("page-size", func(p *model.Page) (Finding, bool) {
		if !p.Crawl.HasStatus() || p.Crawl.PageSize <= th.LargePageBytes {
			return Finding{}, false
		}
		return Finding{
			Type:        model.IssueLargePageSize,
			Description: fmt.Sprintf("Page size: %.2fMB", float64(p.Crawl.PageSize)/1024/1024),
		}, true
	})
}
