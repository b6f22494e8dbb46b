package catalogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultBreadcrumbSeparator separates category names in a breadcrumb.
const DefaultBreadcrumbSeparator = ">"

// SplitBreadcrumbs splits a breadcrumb such as "Books > Fiction" into trimmed
// category names. Empty segments are kept, so "" yields one empty name and
// "A>>B" yields "A", "", "B".
func SplitBreadcrumbs(breadcrumb, separator string) []string {
	if separator == "" {
		separator = DefaultBreadcrumbSeparator
	}
	names := strings.Split(breadcrumb, separator)
	for i, name := range names {
		names[i] = strings.TrimSpace(name)
	}
	return names
}

// ResolveBreadcrumbs walks the category tree along the breadcrumb, creating
// missing nodes, and returns the leaf. Every breadcrumb names at least one
// node; an empty one resolves to a root category named "".
func ResolveBreadcrumbs(ctx context.Context, repo CategoryRepository, breadcrumb, separator string) (Category, error) {
	names := SplitBreadcrumbs(breadcrumb, separator)

	var (
		node   Category
		parent uuid.NullUUID
		path   []string
	)
	for depth, name := range names {
		slug := Slugify(name)
		path = append(path, slug)

		c, err := repo.GetChildCategory(ctx, parent, name)
		switch {
		case err == nil:
			node = c
		case errors.Is(err, ErrNotFound):
			node = Category{
				ID:       uuid.New(),
				ParentID: parent,
				Name:     name,
				Slug:     slug,
				Depth:    depth + 1,
				Path:     strings.Join(path, "/"),
			}
			if err := repo.CreateCategory(ctx, &node); err != nil {
				return Category{}, fmt.Errorf("create category %q: %w", node.Path, err)
			}
		default:
			return Category{}, fmt.Errorf("get category %q: %w", name, err)
		}

		parent = uuid.NullUUID{UUID: node.ID, Valid: true}
	}

	return node, nil
}

// Slugify converts a name to a URL-friendly slug: lowercase ASCII letters,
// digits and hyphens. Accents are folded first ("Crème" becomes "creme").
// Names with no usable characters slugify to "-".
func Slugify(name string) string {
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}

	slug := strings.ToLower(strings.TrimSpace(folded))
	slug = strings.ReplaceAll(slug, " ", "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}
