package model

// Category groups issue types by the kind of problem they describe.
type Category string

const (
	// CategoryTechnical covers status codes, indexing directives and canonicals.
	CategoryTechnical Category = "Technical"
	// CategoryContent covers titles, descriptions, headings and copy.
	CategoryContent Category = "Content"
	// CategoryPerformance covers response time, page weight and Core Web Vitals.
	CategoryPerformance Category = "Performance"
	// CategoryMobile covers mobile usability and accessibility of the layout.
	CategoryMobile Category = "Mobile"
	// CategoryStructuredData covers schema.org markup.
	CategoryStructuredData Category = "Structured Data"
)

// Categories lists every known category in report order.
var Categories = []Category{
	CategoryTechnical,
	CategoryContent,
	CategoryPerformance,
	CategoryMobile,
	CategoryStructuredData,
}

// Team is the group responsible for fixing an issue.
type Team string

const (
	// TeamTech owns servers, infrastructure and technical implementation.
	TeamTech Team = "tech"
	// TeamMarketing owns content optimization, meta tags and SEO strategy.
	TeamMarketing Team = "marketing"
	// TeamDesign owns user experience, mobile design and visual optimization.
	TeamDesign Team = "design"
)

// Teams lists every team in report order.
var Teams = []Team{TeamTech, TeamMarketing, TeamDesign}

// DisplayName returns the label used in reports and tickets.
func (t Team) DisplayName() string {
	switch t {
	case TeamTech:
		return "Tech/Dev Team"
	case TeamMarketing:
		return "Marketing Team"
	case TeamDesign:
		return "Design/UX Team"
	default:
		return string(t)
	}
}

// Description returns the team's area of responsibility.
func (t Team) Description() string {
	switch t {
	case TeamTech:
		return "Server, infrastructure, and technical implementation issues"
	case TeamMarketing:
		return "Content optimization, meta tags, and SEO strategy"
	case TeamDesign:
		return "User experience, mobile design, and visual optimization"
	default:
		return ""
	}
}

// PageType is the business category of a page, derived from its URL.
type PageType string

const (
	PageTypeHomepage PageType = "homepage"
	PageTypeProduct  PageType = "product"
	PageTypeCheckout PageType = "checkout"
	PageTypeCategory PageType = "category"
	PageTypeOther    PageType = "other"
)

// PageTypes lists every page type in descending business value.
var PageTypes = []PageType{
	PageTypeHomepage,
	PageTypeCheckout,
	PageTypeProduct,
	PageTypeCategory,
	PageTypeOther,
}

// Valid reports whether t is one of the fixed page types.
func (t PageType) Valid() bool {
	switch t {
	case PageTypeHomepage, PageTypeProduct, PageTypeCheckout, PageTypeCategory, PageTypeOther:
		return true
	default:
		return false
	}
}
