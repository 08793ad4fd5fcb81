package portfolio

import (
	"errors"
	"strings"
)

var ErrNoMatchingCompanies = errors.New("no companies found in industry")

// Company is a listed constituent.
type Company struct {
	Company  string `json:"company"`
	Ticker   string `json:"ticker"`
	Industry string `json:"industry"`
}

// industryKeywords broadens the sector names investors pick into terms found in listing
// industry classifications.
var industryKeywords = map[string][]string{
	"technology": {"tech", "software", "digital", "computer", "it"},
	"financial":  {"bank", "insurance", "invest", "finance"},
	"healthcare": {"health", "medical", "pharma", "biotech"},
}

// SearchTerms returns the lower case terms matched for an industry.
func SearchTerms(industry string) []string {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if terms, ok := industryKeywords[industry]; ok {
		return terms
	}
	return []string{industry}
}

// MatchIndustry returns the companies whose industry or name contains any search term of the
// industry, ignoring case, in their original order.
func MatchIndustry(companies []Company, industry string) []Company {
	terms := SearchTerms(industry)
	var res []Company
	for _, c := range companies {
		ind := strings.ToLower(c.Industry)
		name := strings.ToLower(c.Company)
		for _, term := range terms {
			if strings.Contains(ind, term) || strings.Contains(name, term) {
				res = append(res, c)
				break
			}
		}
	}
	return res
}
