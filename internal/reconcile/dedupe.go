package reconcile

import (
	"slices"

	"devtomirror/internal/domain"
)

// Dedupe collapses records sharing an identity key into one record each and
// returns the survivors ordered newest first. For colliding records the one
// with the more recent activity timestamp becomes the merge primary; on a
// tie the already-stored record stays primary. Posts without any identity
// are dropped. Running Dedupe on its own output is a no-op.
func Dedupe(posts []domain.Post) []domain.Post {
	order := make([]string, 0, len(posts))
	byKey := make(map[string]domain.Post, len(posts))

	for _, post := range posts {
		key, ok := IdentityKey(post)
		if !ok {
			continue
		}

		existing, seen := byKey[key]
		if !seen {
			byKey[key] = post
			order = append(order, key)
			continue
		}

		if SortKey(post).After(SortKey(existing)) {
			byKey[key] = Merge(post, existing)
		} else {
			byKey[key] = Merge(existing, post)
		}
	}

	out := make([]domain.Post, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}

	slices.SortStableFunc(out, func(a, b domain.Post) int {
		return SortKey(b).Compare(SortKey(a))
	})

	return out
}
