package detect

import (
	"strings"
	"unicode/utf8"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/model"
)

// MarkDuplicates sets the duplicate title and meta description flags on
// every parsed document. Values shorter than the configured minimum length
// are never considered duplicates. Flags are recomputed from scratch, so
// calling it twice gives the same result.
func MarkDuplicates(pages []*model.Page, th config.DetectionThresholds) {
	titles := make(map[string]int)
	metas := make(map[string]int)

	for _, p := range pages {
		doc := p.Document()
		if doc == nil {
			continue
		}
		if key, ok := duplicateKey(doc.Title, th.DuplicateTitleMinLength); ok {
			titles[key]++
		}
		if key, ok := duplicateKey(doc.MetaDescription, th.DuplicateMetaMinLength); ok {
			metas[key]++
		}
	}

	for _, p := range pages {
		doc := p.Document()
		if doc == nil {
			continue
		}
		key, ok := duplicateKey(doc.Title, th.DuplicateTitleMinLength)
		doc.DuplicateTitle = ok && titles[key] > 1
		key, ok = duplicateKey(doc.MetaDescription, th.DuplicateMetaMinLength)
		doc.DuplicateMetaDescription = ok && metas[key] > 1
	}
}

func duplicateKey(value string, minLength int) (string, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(value), " "))
	if utf8.RuneCountInString(key) <= minLength {
		return "", false
	}
	return key, true
}
