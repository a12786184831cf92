package crawler

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"twc-crawler/internal/cleaner"
	"twc-crawler/internal/models"
)

// sizePatterns match "number unit" pairs. Order matters: "ml" must
// win over "l", "g" over "oz" and so on, first match gets exported.
var sizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(ml)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(g|gm|gram|grams)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(oz|fl\.?\s*oz)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(l|liter|litre)`),
	regexp.MustCompile(`(?i)(\d+)\s*(tablet|tablets|caps|capsule|capsules)`),
	regexp.MustCompile(`(?i)(\d+)\s*(count|ct|pieces|pcs)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kg|kilogram)`),
}

// concernPatterns map skin concern categories to the keywords that
// indicate them. Matched against lowercased text, reported in this
// order.
var concernPatterns = []struct {
	concern  string
	patterns []*regexp.Regexp
}{
	{"acne", compileAll(`acne`, `pimple`, `breakout`, `blemish`)},
	{"dry skin", compileAll(`dry\s*skin`, `dehydrat`, `moisturiz`, `hydrat`)},
	{"oily skin", compileAll(`oily\s*skin`, `excess\s*oil`, `sebum`)},
	{"sensitive skin", compileAll(`sensitive\s*skin`, `gentle`, `sooth`, `calm`)},
	{"anti-aging", compileAll(`anti.?aging`, `wrinkle`, `fine\s*line`, `firm`)},
	{"hyperpigmentation", compileAll(`hyperpigment`, `dark\s*spot`, `discolor`)},
	{"sun protection", compileAll(`spf`, `sun\s*protection`, `sunscreen`)},
	{"rosacea", compileAll(`rosacea`, `redness`)},
	{"eczema", compileAll(`eczema`, `dermatitis`)},
	{"mature skin", compileAll(`mature\s*skin`, `aging\s*skin`)},
	{"dullness", compileAll(`dull`, `brighten`, `radiance`, `glow`)},
}

// lineLabelKeywords mark detail labels that carry an explicit product
// line name.
var lineLabelKeywords = []string{"line", "collection", "series", "range"}

// genericLineTerms are product type words, a "line name" consisting of
// one of these is just the product type.
var genericLineTerms = []string{"cream", "lotion", "serum", "oil", "gel", "cleanser", "moisturiser", "spf", "wash"}

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// ProductExtractor turns raw shopping API payloads into export rows
type ProductExtractor struct{}

// NewProductExtractor creates a new ProductExtractor instance
func NewProductExtractor() *ProductExtractor {
	return &ProductExtractor{}
}

// ExtractProduct builds the export row for one product payload.
// Missing fields come back as "N/A"; the completeness check decides
// later whether the row is kept.
func (pe *ProductExtractor) ExtractProduct(payload map[string]any, slug string, baseURL string) models.Product {
	details, _ := payload["details"].([]any)

	brandName := "N/A"
	if brand, ok := payload["brand"].(map[string]any); ok {
		if name, ok := brand["brand_name"].(string); ok {
			brandName = name
		}
	}

	// Image keys are positions; sort them so the export order is
	// stable across runs.
	var imageURLs []string
	if images, ok := payload["images"].(map[string]any); ok {
		keys := make([]string, 0, len(images))
		for k := range images {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if u, ok := images[k].(string); ok && u != "" {
				imageURLs = append(imageURLs, u)
			}
		}
	}

	generalInfo := pe.ExtractDetail(details, "General Information")
	ingredients := cleaner.Ingredients(pe.ExtractDetail(details, "Ingredients"))

	name := stringField(payload, "name")
	combinedText := generalInfo + " " + name
	skinConcerns := pe.DetectSkinConcerns(combinedText)

	product := models.Product{
		ProductID:   stringField(payload, "product_id"),
		Name:        name,
		LineName:    pe.ExtractLineName(payload),
		BrandName:   brandName,
		Description: orNA(generalInfo),
		Images:      orNA(strings.Join(imageURLs, "|")),
		Barcode:     stringField(payload, "upc"),
		Price:       stringField(payload, "price"),
		SizeVolume:  pe.ExtractSizeVolume(payload),
		Ingredients: orNA(ingredients),
		SkinConcern: orNA(strings.Join(skinConcerns, ", ")),
		SourceURL:   fmt.Sprintf("%s/shop/product/%s", baseURL, slug),
	}

	return product
}

// ExtractDetail finds a detail block by its content label and returns
// the cleaned content. The API returns details as a list of objects
// with "content_label" and "content".
func (pe *ProductExtractor) ExtractDetail(details []any, label string) string {
	for _, d := range details {
		obj, ok := d.(map[string]any)
		if !ok {
			continue
		}
		if objLabel, ok := obj["content_label"].(string); ok && objLabel == label {
			content, _ := obj["content"].(string)
			return cleaner.Text(content)
		}
	}
	return ""
}

// DetectSkinConcerns derives skin concern categories from free text by
// keyword matching
func (pe *ProductExtractor) DetectSkinConcerns(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ToLower(text)

	var detected []string
	for _, cp := range concernPatterns {
		for _, re := range cp.patterns {
			if re.MatchString(text) {
				detected = append(detected, cp.concern)
				break
			}
		}
	}
	return detected
}

// ExtractSizeVolume searches name, details, description and attributes
// (in that order) for a size such as "50ml" or "30 tablets"
func (pe *ProductExtractor) ExtractSizeVolume(payload map[string]any) string {
	if payload == nil {
		return "N/A"
	}

	name, _ := payload["name"].(string)
	description, _ := payload["description"].(string)

	var detailContents []string
	if details, ok := payload["details"].([]any); ok {
		for _, d := range details {
			if obj, ok := d.(map[string]any); ok {
				if c, ok := obj["content"].(string); ok {
					detailContents = append(detailContents, c)
				}
			}
		}
	}

	attributes := ""
	if attrs, ok := payload["attributes"]; ok {
		attributes = fmt.Sprintf("%v", attrs)
	}

	searchFields := []string{
		name,
		strings.Join(detailContents, " "),
		description,
		attributes,
	}

	for _, field := range searchFields {
		if field == "" {
			continue
		}
		for _, re := range sizePatterns {
			if m := re.FindStringSubmatch(field); m != nil {
				return m[1] + m[2]
			}
		}
	}

	return "N/A"
}

// ExtractLineName tries to identify the product line. First choice is
// an explicit line detail block, second is the leading capitalised
// words of the name once the brand is stripped.
func (pe *ProductExtractor) ExtractLineName(payload map[string]any) string {
	if details, ok := payload["details"].([]any); ok {
		for _, d := range details {
			obj, ok := d.(map[string]any)
			if !ok {
				continue
			}
			label, _ := obj["content_label"].(string)
			label = strings.ToLower(label)
			for _, keyword := range lineLabelKeywords {
				if strings.Contains(label, keyword) {
					content, _ := obj["content"].(string)
					lineName := cleaner.Text(content)
					// A full description is not a line name.
					if lineName != "" && len(lineName) < 100 {
						return lineName
					}
					break
				}
			}
		}
	}

	productName, _ := payload["name"].(string)
	brandName := ""
	if brand, ok := payload["brand"].(map[string]any); ok {
		brandName, _ = brand["brand_name"].(string)
	}

	if brandName != "" && strings.Contains(productName, brandName) {
		remaining := strings.TrimSpace(strings.ReplaceAll(productName, brandName, ""))
		nameParts := strings.Fields(remaining)

		if len(nameParts) > 1 {
			var lineWords []string
			limit := 3
			if len(nameParts) < limit {
				limit = len(nameParts)
			}
			for _, part := range nameParts[:limit] {
				runes := []rune(part)
				if len(runes) > 2 && unicode.IsUpper(runes[0]) {
					lineWords = append(lineWords, part)
				} else {
					// Stop at the first non-qualifying word.
					break
				}
			}

			if len(lineWords) > 0 {
				lineName := strings.Join(lineWords, " ")
				lower := strings.ToLower(lineName)
				generic := false
				for _, term := range genericLineTerms {
					if strings.Contains(lower, term) {
						generic = true
						break
					}
				}
				if !generic {
					return lineName
				}
			}
		}
	}

	return "N/A"
}

// stringField renders a payload field as a string, "N/A" when the
// field is missing. JSON numbers lose the trailing ".0" so integral
// ids and barcodes export as plain digits.
func stringField(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return "N/A"
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// orNA substitutes "N/A" for empty values
func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
