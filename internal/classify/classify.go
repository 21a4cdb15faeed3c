package classify

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/model"
)

// Rule assigns Type to every URL path for which Match returns true.
// Match receives the lower-cased path, always starting with "/".
type Rule struct {
	Name  string
	Type  model.PageType
	Match func(path string) bool
}

// Classifier assigns page types to URLs.
// It is safe for concurrent use once constructed.
type Classifier struct {
	rules []Rule
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRule adds a rule that is evaluated before the built-in rules.
// Rules added later are evaluated after rules added earlier.
func WithRule(rule Rule) Option {
	return func(c *Classifier) {
		c.rules = append(c.rules, rule)
	}
}

// New creates a Classifier with the built-in rules and any extra rules.
func New(opts ...Option) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	c.rules = append(c.rules, builtinRules()...)
	return c
}

var localeRoot = regexp.MustCompile(`^/[a-z]{2}([-_][a-z]{2})?/?$`)

func builtinRules() []Rule {
	return []Rule{
		{
			Name: "root",
			Type: model.PageTypeHomepage,
			Match: func(path string) bool {
				switch path {
				case "/", "/home", "/home/", "/index.html", "/index.htm", "/index.php":
					return true
				}
				return localeRoot.MatchString(path)
			},
		},
		SegmentRule("checkout", model.PageTypeCheckout, "/checkout", "/cart", "/basket", "/pricing"),
		SegmentRule("product", model.PageTypeProduct, "/product", "/products", "/p/", "/item/"),
		SegmentRule("category", model.PageTypeCategory, "/category", "/categories/", "/c/", "/collections/", "/shop/"),
	}
}

// SegmentRule matches paths containing any of the fragments,
// case-insensitively. A fragment must end at a segment boundary, so
// "/product" matches "/product" and "/product/1" but not "/productivity".
func SegmentRule(name string, pageType model.PageType, fragments ...string) Rule {
	lowered := make([]string, len(fragments))
	for i, f := range fragments {
		lowered[i] = strings.ToLower(f)
	}
	return Rule{
		Name: name,
		Type: pageType,
		Match: func(path string) bool {
			for _, f := range lowered {
				if containsSegment(path, f) {
					return true
				}
			}
			return false
		},
	}
}

// containsSegment reports whether fragment occurs in path followed by the
// end of the path, a "/" or a file extension.
func containsSegment(path, fragment string) bool {
	if fragment == "" {
		return false
	}
	for rest := path; ; {
		i := strings.Index(rest, fragment)
		if i < 0 {
			return false
		}
		after := rest[i+len(fragment):]
		if strings.HasSuffix(fragment, "/") || after == "" || after[0] == '/' || after[0] == '.' {
			return true
		}
		rest = rest[i+1:]
	}
}

// Classify returns the page type of a URL. It never fails.
func (c *Classifier) Classify(rawURL string) model.PageType {
	path := normalizePath(rawURL)
	if path == "" {
		return model.PageTypeOther
	}
	for _, rule := range c.rules {
		if rule.Match(path) {
			return rule.Type
		}
	}
	return model.PageTypeOther
}

// normalizePath returns the lower-cased URL path starting with "/",
// or "" when the URL cannot be parsed.
func normalizePath(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	path := strings.ToLower(u.Path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// OptionsFromConfig converts configured rules into classifier options.
func OptionsFromConfig(cfg config.ClassifierConfig) ([]Option, error) {
	opts := make([]Option, 0, len(cfg.Rules))
	for i, r := range cfg.Rules {
		pageType := model.PageType(strings.ToLower(r.PageType))
		if !pageType.Valid() {
			return nil, fmt.Errorf("classifier rule %d: %w: %q", i, config.ErrInvalidPageType, r.PageType)
		}
		if r.Pattern == "" {
			return nil, fmt.Errorf("classifier rule %d: empty pattern", i)
		}
		opts = append(opts, WithRule(SegmentRule(fmt.Sprintf("config-%d", i), pageType, r.Pattern)))
	}
	return opts, nil
}
