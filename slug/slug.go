// Package slug normalizes world names into URL slugs and allocates
// unique ones by probing numbered suffixes.
package slug

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Dm-vYzion/StoryForge/model"
	"gorm.io/gorm"
)

var (
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]+`)
	multiHyphen = regexp.MustCompile(`-+`)
)

// Normalize turns an arbitrary name into a base slug.
// " My New World! " → "my-new-world"
func Normalize(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = nonAlnum.ReplaceAllString(s, "-")
	s = multiHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// GenerateUniqueWorldSlug returns the base slug if free, otherwise probes
// base-2, base-3, … until an unused slug is found. The probe is a
// read-then-write race by nature; callers must treat a unique violation
// on insert as "probe again", not as a failure.
func GenerateUniqueWorldSlug(db *gorm.DB, base string) (string, error) {
	normalized := Normalize(base)
	if normalized == "" {
		normalized = "world"
	}

	taken, err := slugTaken(db, normalized)
	if err != nil {
		return "", err
	}
	if !taken {
		return normalized, nil
	}

	for counter := 2; ; counter++ {
		candidate := fmt.Sprintf("%s-%d", normalized, counter)
		taken, err := slugTaken(db, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func slugTaken(db *gorm.DB, slug string) (bool, error) {
	var existing []model.World
	if err := db.Select("id").Where("slug = ?", slug).Limit(1).Find(&existing).Error; err != nil {
		return false, err
	}
	return len(existing) > 0, nil
}
