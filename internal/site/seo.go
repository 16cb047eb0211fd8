package site

import "strings"

// SEOConfig holds the document head metadata.
type SEOConfig struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
	Keywords        string `json:"keywords"`
}

// Normalize trims every field and canonicalizes the keyword list.
func (s SEOConfig) Normalize() SEOConfig {
	s.MetaTitle = strings.TrimSpace(s.MetaTitle)
	s.MetaDescription = strings.TrimSpace(s.MetaDescription)
	s.Keywords = NormalizeKeywords(s.Keywords)
	return s
}

// KeywordList splits the stored keyword string.
func (s SEOConfig) KeywordList() []string {
	normalized := NormalizeKeywords(s.Keywords)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, ", ")
}

// NormalizeKeywords trims, drops empties and removes case-insensitive duplicates,
// keeping first occurrence order. Both ASCII and full-width commas separate.
func NormalizeKeywords(raw string) string {
	raw = strings.ReplaceAll(raw, "，", ",")
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		keyword := strings.TrimSpace(part)
		if keyword == "" {
			continue
		}
		key := strings.ToLower(keyword)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, keyword)
	}
	return strings.Join(result, ", ")
}
