package strategies

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

/*
	Share slug helpers
	------------------
	- Responsible ONLY for:
	  • generating URL slugs for public strategies
	  • persisting them
	- No access logic, no billing logic here
*/

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

// MakeSlug generates a URL-safe base slug from a strategy name.
// Example: "RSI Mean Reversion" -> "rsi-mean-reversion"
func MakeSlug(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if base == "" {
		base = "strategy"
	}
	return base
}

// EnsureShareSlug assigns a unique slug to a strategy being made public.
// Must be called AFTER the strategy has an ID (after Create).
func EnsureShareSlug(db *gorm.DB, s *Strategy) (string, error) {
	if s == nil {
		return "", fmt.Errorf("strategy is nil")
	}
	if db == nil {
		return "", fmt.Errorf("db is nil")
	}

	// Already exists
	if s.ShareSlug != nil && strings.TrimSpace(*s.ShareSlug) != "" {
		return strings.TrimSpace(*s.ShareSlug), nil
	}

	base := MakeSlug(s.Name)
	slug := base
	for i := 2; ; i++ {
		var count int64
		if err := db.Model(&Strategy{}).Where("share_slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			break
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}

	if err := db.Model(&Strategy{}).Where("id = ?", s.ID).Update("share_slug", slug).Error; err != nil {
		return "", err
	}
	s.ShareSlug = &slug
	return slug, nil
}
