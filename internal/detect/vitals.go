package detect

import (
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/model"
)

func coreWebVitalsRule(th config.DetectionThresholds) Rule {
	return NewRule("core-web-vitals", func(p *model.Page) (Finding, bool) {
		v := p.Vitals
		if v == nil {
			return Finding{}, false
		}

		var poor, needsWork []string
		checkDuration := func(name string, d *time.Duration, good, bad time.Duration) {
			if d == nil {
				return
			}
			switch {
			case *d > bad:
				poor = append(poor, fmt.Sprintf("%s %.2fs", name, d.Seconds()))
			case *d > good:
				needsWork = append(needsWork, fmt.Sprintf("%s %.2fs", name, d.Seconds()))
			}
		}
		checkDuration("LCP", v.LCP, th.GoodLCP, th.PoorLCP)
		checkDuration("INP", v.INP, th.GoodINP, th.PoorINP)
		if v.CLS != nil {
			switch {
			case *v.CLS > th.PoorCLS:
				poor = append(poor, fmt.Sprintf("CLS %.3f", *v.CLS))
			case *v.CLS > th.GoodCLS:
				needsWork = append(needsWork, fmt.Sprintf("CLS %.3f", *v.CLS))
			}
		}
		if v.PerformanceScore != nil && *v.PerformanceScore < th.PoorPerf {
			poor = append(poor, fmt.Sprintf("performance score %.0f", *v.PerformanceScore))
		}

		switch {
		case len(poor) > 0:
			return Finding{
				Type:        model.IssuePoorCoreWebVitals,
				Description: fmt.Sprintf("Poor Core Web Vitals (%s): %s", v.Strategy, strings.Join(poor, ", ")),
			}, true
		case len(needsWork) > 0:
			return Finding{
				Type:        model.IssueCoreWebVitalsNeedWork,
				Description: fmt.Sprintf("Core Web Vitals need improvement (%s): %s", v.Strategy, strings.Join(needsWork, ", ")),
			}, true
		default:
			return Finding{}, false
		}
	})
}
