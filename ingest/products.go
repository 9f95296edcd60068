package ingest

import (
	"regexp"
	"sort"
	"strings"

	"github.com/craigmalenga/marketing/models"
)

// ProductPrice is one recognized product and the price paired with it.
type ProductPrice struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// productPattern is one alternative spelling of a catalog product. RE2 has
// no lookahead, so patterns that need one ("bed" but not "bed room") carry a
// separate exclusion regex that vetoes the match.
type productPattern struct {
	match   *regexp.Regexp
	exclude *regexp.Regexp
}

type catalogEntry struct {
	name     string
	category string
	patterns []productPattern
}

func pat(match string) productPattern {
	return productPattern{match: regexp.MustCompile(match)}
}

func patExcl(match, exclude string) productPattern {
	return productPattern{match: regexp.MustCompile(match), exclude: regexp.MustCompile(exclude)}
}

// catalog is ordered: named sofa models first, generic families after, the
// sofa catch-all last. Extraction reports products in this order, and a hit
// on any named sofa suppresses "Sofa - other".
var catalog = []catalogEntry{
	{"Sofa - Aldis", models.CategorySofa, []productPattern{pat(`\baldis\b`), pat(`aldis\s*sofa`), pat(`sofa\s*aldis`)}},
	{"Sofa - Kyle", models.CategorySofa, []productPattern{pat(`\bkyle\b`), pat(`kyle\s*sofa`), pat(`sofa\s*kyle`)}},
	{"Sofa - Hamilton", models.CategorySofa, []productPattern{pat(`\bhamilton\b`), pat(`hamilton\s*sofa`), pat(`sofa\s*hamilton`)}},
	{"Sofa - Lawson", models.CategorySofa, []productPattern{pat(`\blawson\b`), pat(`lawson\s*sofa`), pat(`sofa\s*lawson`)}},
	{"Sofa - Lucy", models.CategorySofa, []productPattern{pat(`\blucy\b`), pat(`lucy\s*sofa`), pat(`sofa\s*lucy`)}},
	{"Sofa - Roma", models.CategorySofa, []productPattern{pat(`\broma\b`), pat(`roma\s*sofa`), pat(`sofa\s*roma`)}},
	{"Rattan", models.CategoryFurniture, []productPattern{pat(`\brattan\b`), pat(`rattan\s*furniture`), pat(`rattan\s*set`)}},
	{"Bed", models.CategoryFurniture, []productPattern{patExcl(`\bbed\b`, `\bbed\s*room\b`), pat(`\bmattress\b`), pat(`\bdivan\b`), pat(`bed\s*frame`)}},
	{"Dining set", models.CategoryFurniture, []productPattern{pat(`dining\s*set`), pat(`dining\s*table`), pat(`dining\s*chairs`), pat(`table\s*and\s*chairs`)}},
	{"Cooker", models.CategoryAppliances, []productPattern{pat(`\bcooker\b`), pat(`\boven\b`), pat(`\bhob\b`), pat(`\brange\b`), pat(`cooking\s*range`)}},
	{"Fridge freezer", models.CategoryAppliances, []productPattern{pat(`fridge\s*freezer`), pat(`fridge\s*/\s*freezer`), pat(`refrigerator`), pat(`american\s*style\s*fridge`)}},
	{"Washer dryer", models.CategoryAppliances, []productPattern{pat(`washer\s*dryer`), pat(`washer\s*/\s*dryer`), pat(`washing\s*machine`), pat(`\bwasher\b`)}},
	{"Dish washer", models.CategoryAppliances, []productPattern{pat(`dish\s*washer`), pat(`dishwasher`), pat(`dish\s*washing\s*machine`)}},
	{"Microwave", models.CategoryAppliances, []productPattern{pat(`\bmicrowave\b`), pat(`micro\s*wave`)}},
	{"TV", models.CategoryElectronics, []productPattern{pat(`\btv\b`), pat(`\btelevision\b`), pat(`smart\s*tv`), pat(`\d+"\s*tv`), pat(`tv\s*\d+"`)}},
	{"Console", models.CategoryElectronics, []productPattern{pat(`\bplaystation\b`), pat(`\bps\d\b`), pat(`\bxbox\b`), pat(`\bnintendo\b`), pat(`gaming\s*console`), pat(`games\s*console`)}},
	{"Laptop", models.CategoryElectronics, []productPattern{pat(`\blaptop\b`), pat(`\bnotebook\b`), pat(`\bmacbook\b`), pat(`\bchromebook\b`)}},
	{"Vacuum", models.CategoryAppliances, []productPattern{pat(`\bvacuum\b`), pat(`\bhoover\b`), patExcl(`\bdyson\b`, `\bdyson\s*hair\b`), pat(`vacuum\s*cleaner`)}},
	{"Hot tub", models.CategoryLeisure, []productPattern{pat(`hot\s*tub`), pat(`spa\s*pool`), pat(`jacuzzi`), pat(`inflatable\s*spa`)}},
	{"BBQ", models.CategoryOutdoor, []productPattern{pat(`\bbbq\b`), pat(`\bbarbecue\b`), patExcl(`\bgrill\b`, `\bgrill\s*pan\b`), pat(`charcoal\s*grill`), pat(`gas\s*grill`)}},
	{"Air fryer", models.CategoryAppliances, []productPattern{pat(`air\s*fryer`), pat(`airfryer`), pat(`air\s*fry`)}},
	{"Ninja products", models.CategoryAppliances, []productPattern{pat(`\bninja\b`), pat(`ninja\s*foodi`), pat(`ninja\s*air\s*fryer`)}},
	{"Kitchen Bundle", models.CategoryAppliances, []productPattern{pat(`kitchen\s*bundle`), pat(`appliance\s*bundle`), pat(`kitchen\s*set`), pat(`appliance\s*package`)}},
	{"Sofa - other", models.CategorySofa, []productPattern{pat(`\bsofa\b`), pat(`\bcouch\b`), pat(`\bsettee\b`), pat(`corner\s*sofa`), pat(`recliner\s*sofa`)}},
}

var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`£\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:pounds?|gbp)`),
	regexp.MustCompile(`(?i)(?:price|cost|total|amount):\s*£?\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:each|per\s*item)`),
	regexp.MustCompile(`(?i)(?:rrp|retail):\s*£?\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
}

var bundlePattern = regexp.MustCompile(`(?i)\b(?:bundle|set|package|collection)\b`)

// ExtractProducts derives (product, price) pairs from a free-text
// description. The result is never empty: unrecognized text yields a single
// {Other, 0} entry.
func ExtractProducts(description string) []ProductPrice {
	if strings.TrimSpace(description) == "" {
		return []ProductPrice{{Name: "Other", Price: 0}}
	}

	lower := strings.ToLower(description)

	var found []string
	sofaMatched := false
	for _, entry := range catalog {
		if entry.name == "Sofa - other" && sofaMatched {
			continue
		}
		for _, p := range entry.patterns {
			if !p.match.MatchString(lower) {
				continue
			}
			if p.exclude != nil && p.exclude.MatchString(lower) {
				continue
			}
			found = append(found, entry.name)
			if strings.HasPrefix(entry.name, "Sofa - ") {
				sofaMatched = true
			}
			break
		}
	}

	prices := extractPrices(description)

	if len(found) == 0 {
		found = []string{"Other"}
	}

	return matchProductsToPrices(found, prices, description)
}

// extractPrices collects every monetary amount in the text, de-duplicated
// and sorted descending.
func extractPrices(description string) []float64 {
	seen := make(map[float64]bool)
	var prices []float64

	for _, re := range pricePatterns {
		for _, m := range re.FindAllStringSubmatch(description, -1) {
			v := ParseFloat(m[1])
			if v == nil || *v <= 0 || seen[*v] {
				continue
			}
			seen[*v] = true
			prices = append(prices, *v)
		}
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(prices)))
	return prices
}

// matchProductsToPrices pairs discovery-ordered products against
// descending-ordered prices. The branch order is load-bearing: downstream
// revenue figures depend on it.
func matchProductsToPrices(products []string, prices []float64, description string) []ProductPrice {
	result := make([]ProductPrice, 0, len(products))

	switch {
	case len(products) == len(prices):
		for i, p := range products {
			result = append(result, ProductPrice{Name: p, Price: prices[i]})
		}

	case len(prices) > len(products):
		for i, p := range products {
			result = append(result, ProductPrice{Name: p, Price: prices[i]})
		}

	default: // more products than prices
		if len(prices) == 0 {
			for _, p := range products {
				result = append(result, ProductPrice{Name: p, Price: 0})
			}
			break
		}
		if bundlePattern.MatchString(description) {
			total := 0.0
			for _, v := range prices {
				total += v
			}
			per := total / float64(len(products))
			for _, p := range products {
				result = append(result, ProductPrice{Name: p, Price: per})
			}
			break
		}
		for i, p := range products {
			if i < len(prices) {
				result = append(result, ProductPrice{Name: p, Price: prices[i]})
			} else {
				result = append(result, ProductPrice{Name: p, Price: 0})
			}
		}
	}

	return result
}

// PrimaryProduct is the first extracted product, used where a row stores a
// single canonical product name.
func PrimaryProduct(description string) ProductPrice {
	return ExtractProducts(description)[0]
}

// CatalogProductNames lists the catalog in extraction order, with the
// unrecognized-text fallback appended.
func CatalogProductNames() []string {
	names := make([]string, 0, len(catalog)+1)
	for _, entry := range catalog {
		names = append(names, entry.name)
	}
	return append(names, "Other")
}

// CategoryFor returns the report category for a catalog product name.
// Unknown names land in Other.
func CategoryFor(name string) string {
	for _, entry := range catalog {
		if entry.name == name {
			return entry.category
		}
	}
	return models.CategoryOther
}
