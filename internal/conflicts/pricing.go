package conflicts

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/fulmenhq/docneat/internal/issue"
)

const (
	generalBucket = "general"
	contextRadius = 50
)

var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$\s*(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:/|per)?\s*(month|mo|year|yr)`),
	regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*dollars?\s*(?:/|per)?\s*(month|mo|year|yr)`),
}

// PriceMention is one price found in a document, normalized to a monthly
// amount in cents.
type PriceMention struct {
	Path     string
	Original string
	Cents    int64
	Bucket   string
}

// MonthlyCents converts an amount in the given unit to monthly cents.
func MonthlyCents(amount float64, unit string) int64 {
	switch strings.ToLower(unit) {
	case "year", "yr", "annual", "annually":
		amount /= 12
	}
	return int64(math.Round(amount * 100))
}

func (d *Detector) extractPrices(doc document) []PriceMention {
	var out []PriceMention
	for _, re := range pricePatterns {
		for _, m := range re.FindAllStringSubmatchIndex(doc.body, -1) {
			raw := strings.ReplaceAll(doc.body[m[2]:m[3]], ",", "")
			amount, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			start := max(0, m[0]-contextRadius)
			end := min(len(doc.body), m[1]+contextRadius)
			out = append(out, PriceMention{
				Path:     doc.path,
				Original: doc.body[m[0]:m[1]],
				Cents:    MonthlyCents(amount, doc.body[m[4]:m[5]]),
				Bucket:   d.bucket(strings.ToLower(doc.body[start:end]), doc.path),
			})
		}
	}
	return out
}

// bucket picks the plan tier mentioned near a price when the document lives
// under a pricing context directory.
func (d *Detector) bucket(context, path string) string {
	if !d.inPricingContext(path) {
		return generalBucket
	}
	for _, tier := range d.cfg.PlanTiers {
		if tier != "" && strings.Contains(context, strings.ToLower(tier)) {
			return tier
		}
	}
	return generalBucket
}

func (d *Detector) inPricingContext(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		for _, ctx := range d.cfg.PricingContexts {
			if strings.EqualFold(seg, ctx) {
				return true
			}
		}
	}
	return false
}

func (d *Detector) pricingConflicts(docs []document) []issue.Issue {
	buckets := map[string][]PriceMention{}
	for _, doc := range docs {
		for _, m := range d.extractPrices(doc) {
			buckets[m.Bucket] = append(buckets[m.Bucket], m)
		}
	}

	var issues []issue.Issue
	for _, name := range sortedKeys(buckets) {
		mentions := buckets[name]
		prices := map[int64]bool{}
		docSet := map[string]bool{}
		for _, m := range mentions {
			prices[m.Cents] = true
			docSet[m.Path] = true
		}
		if len(prices) < 2 {
			continue
		}

		cents := make([]int64, 0, len(prices))
		for c := range prices {
			cents = append(cents, c)
		}
		sort.Slice(cents, func(i, j int) bool { return cents[i] < cents[j] })
		labels := make([]string, 0, len(cents))
		for _, c := range cents {
			labels = append(labels, fmt.Sprintf("$%d.%02d/mo", c/100, c%100))
		}
		docPaths := sortedKeys(docSet)

		issues = append(issues, issue.Issue{
			Code:     issue.CodeConflictPricing,
			Severity: issue.SeverityError,
			Message: fmt.Sprintf("pricing conflict for '%s': %s across %d document(s)",
				name, strings.Join(labels, ", "), len(docPaths)),
			File:       docPaths[0],
			Suggestion: "review and standardize pricing across all documents",
		})
	}
	return issues
}
