package model

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryUrgent   Category = "Urgent"
)

// Categories in display order.
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryUrgent}

func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryUrgent:
		return true
	default:
		return false
	}
}

func (c Category) Emoji() string {
	switch c {
	case CategoryWork:
		return "💼"
	case CategoryPersonal:
		return "🏠"
	case CategoryUrgent:
		return "🔥"
	case "":
		return ""
	default:
		panic(fmt.Sprintf("missing emoji for %s", c))
	}
}

// ParseCategory matches s against the known categories ignoring case.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", &ValidationError{Reason: ValidationCategory, Value: s}
}

// CategoryFilter is either FilterAll or one of Categories.
type CategoryFilter string

const FilterAll CategoryFilter = "All"

func ParseCategoryFilter(s string) CategoryFilter {
	if strings.EqualFold(strings.TrimSpace(s), string(FilterAll)) {
		return FilterAll
	}
	c, err := ParseCategory(s)
	if err != nil {
		return FilterAll
	}
	return CategoryFilter(c)
}

func (f CategoryFilter) Match(c Category) bool {
	return f == FilterAll || f == "" || Category(f) == c
}

// Next cycles All -> Work -> Personal -> Urgent -> All.
func (f CategoryFilter) Next() CategoryFilter {
	if f == FilterAll || f == "" {
		return CategoryFilter(Categories[0])
	}
	for i, c := range Categories {
		if Category(f) == c && i+1 < len(Categories) {
			return CategoryFilter(Categories[i+1])
		}
	}
	return FilterAll
}
