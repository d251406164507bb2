package model

import "testing"

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"work":      CategoryWork,
		" Personal": CategoryPersonal,
		"URGENT":    CategoryUrgent,
	} {
		got, err := ParseCategory(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", in, want, got)
		}
	}

	if _, err := ParseCategory("hobby"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestCategoryFilter(t *testing.T) {
	if f := ParseCategoryFilter("nonsense"); f != FilterAll {
		t.Fatalf("expected fallback to All, got %s", f)
	}
	f := ParseCategoryFilter("work")
	if !f.Match(CategoryWork) || f.Match(CategoryUrgent) {
		t.Fatalf("unexpected match for %s", f)
	}
	if !FilterAll.Match(CategoryUrgent) || !FilterAll.Match("") {
		t.Fatal("All must match everything")
	}

	var seen []CategoryFilter
	for f := FilterAll; ; {
		f = f.Next()
		seen = append(seen, f)
		if f == FilterAll {
			break
		}
	}
	if len(seen) != len(Categories)+1 {
		t.Fatalf("unexpected cycle: %v", seen)
	}
}
