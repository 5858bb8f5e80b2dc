package invalidation

import (
	"strings"

	s "deletionguard/pkg/platform/strings"
)

// Closure returns every tag and path that must be purged for the entity.
// It is deterministic and free of duplicates. Slugs that normalize to
// nothing are ignored.
func Closure(req Request) (tags, paths []string) {
	id := strings.TrimSpace(req.EntityID)
	slug := s.Slugify(req.Slug)
	category := s.Slugify(req.CategorySlug)

	tags = []string{
		"blog-posts",
		"blog-list",
		"sitemap",
		"blog-post-" + id,
		"post-" + id,
	}
	paths = []string{
		"/blog",
		"/sitemap.xml",
		"/admin/posts",
		"/admin/posts/" + id,
	}
	if slug != "" {
		tags = append(tags, "blog-post-"+slug, "post-slug-"+slug)
		paths = append(paths, "/blog/"+slug)
	}
	if category != "" {
		tags = append(tags, "category-posts-"+category, "category-"+category)
		paths = append(paths, "/blog/category/"+category)
	}
	tags = s.DedupeAndTrim(append(tags, req.ExtraTags...))
	paths = s.DedupeAndTrim(append(paths, req.ExtraPaths...))
	return tags, paths
}

// keysOf flattens a closure, tags first.
func keysOf(tags, paths []string) []Key {
	keys := make([]Key, 0, len(tags)+len(paths))
	for _, t := range tags {
		keys = append(keys, Key{Kind: KindTag, Value: t})
	}
	for _, p := range paths {
		keys = append(keys, Key{Kind: KindPath, Value: p})
	}
	return keys
}
