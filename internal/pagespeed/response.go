package pagespeed

import (
	"time"

	"github.com/nao1215/seoaudit/internal/model"
)

// response is the subset of the runPagespeed payload that is used.
type response struct {
	LoadingExperience struct {
		Metrics map[string]fieldMetric `json:"metrics"`
	} `json:"loadingExperience"`

	LighthouseResult struct {
		Categories struct {
			Performance *struct {
				Score *float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
		Audits map[string]labAudit `json:"audits"`
	} `json:"lighthouseResult"`
}

// fieldMetric is a Chrome UX Report metric; Percentile is the 75th percentile.
type fieldMetric struct {
	Percentile *float64 `json:"percentile"`
	Category   string   `json:"category"`
}

type labAudit struct {
	NumericValue *float64 `json:"numericValue"`
}

// Field metric keys.
const (
	fieldLCP  = "LARGEST_CONTENTFUL_PAINT_MS"
	fieldINP  = "INTERACTION_TO_NEXT_PAINT"
	fieldCLS  = "CUMULATIVE_LAYOUT_SHIFT_SCORE"
	fieldFCP  = "FIRST_CONTENTFUL_PAINT_MS"
	fieldTTFB = "EXPERIMENTAL_TIME_TO_FIRST_BYTE"
)

// Lab audit keys.
const (
	labLCP  = "largest-contentful-paint"
	labCLS  = "cumulative-layout-shift"
	labFCP  = "first-contentful-paint"
	labTTFB = "server-response-time"
)

// vitals prefers real-user field data and falls back to the lab run per metric.
// INP has no lab equivalent and stays nil without field data.
func (r *response) vitals(strategy model.Strategy) *model.CoreWebVitals {
	v := &model.CoreWebVitals{Strategy: strategy}

	v.LCP = r.duration(fieldLCP, labLCP)
	v.INP = r.duration(fieldINP, "")
	v.FCP = r.duration(fieldFCP, labFCP)
	v.TTFB = r.duration(fieldTTFB, labTTFB)

	if p := r.field(fieldCLS); p != nil {
		// CrUX reports CLS multiplied by 100.
		cls := *p / 100
		v.CLS = &cls
	} else if lab := r.lab(labCLS); lab != nil {
		cls := *lab
		v.CLS = &cls
	}

	for _, key := range []string{fieldLCP, fieldINP, fieldCLS} {
		if r.field(key) != nil {
			v.FieldData = true
			break
		}
	}

	if perf := r.LighthouseResult.Categories.Performance; perf != nil && perf.Score != nil {
		score := *perf.Score * 100
		v.PerformanceScore = &score
	}
	return v
}

func (r *response) field(key string) *float64 {
	m, ok := r.LoadingExperience.Metrics[key]
	if !ok {
		return nil
	}
	return m.Percentile
}

func (r *response) lab(key string) *float64 {
	a, ok := r.LighthouseResult.Audits[key]
	if !ok {
		return nil
	}
	return a.NumericValue
}

// duration reads a millisecond metric from field data, then from the lab audit.
func (r *response) duration(fieldKey, labKey string) *time.Duration {
	ms := r.field(fieldKey)
	if ms == nil && labKey != "" {
		ms = r.lab(labKey)
	}
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms * float64(time.Millisecond))
	return &d
}
