package reconcile

import "devtomirror/internal/domain"

// Merge combines two records for the same identity. Every field present on
// the primary wins; fields the primary lacks are backfilled from the
// secondary. api_data payloads merge the same way, key by key.
func Merge(primary, secondary domain.Post) domain.Post {
	out := secondary

	if primary.ID != 0 {
		out.ID = primary.ID
	}
	if primary.Title != "" {
		out.Title = primary.Title
	}
	if primary.Link != "" {
		out.Link = primary.Link
	}
	if primary.URL != "" {
		out.URL = primary.URL
	}
	if primary.Slug != "" {
		out.Slug = primary.Slug
	}
	if primary.Description != "" {
		out.Description = primary.Description
	}
	if primary.CoverImage != "" {
		out.CoverImage = primary.CoverImage
	}
	if primary.Date != "" {
		out.Date = primary.Date
	}
	if primary.EditedAt != "" {
		out.EditedAt = primary.EditedAt
	}
	if primary.PublishedAt != "" {
		out.PublishedAt = primary.PublishedAt
	}
	if len(primary.Tags) > 0 {
		out.Tags = primary.Tags
	}
	if primary.User != nil {
		out.User = primary.User
	}

	out.APIData = mergeAPIData(secondary.APIData, primary.APIData)

	return out
}

func mergeAPIData(base, overlay map[string]any) map[string]any {
	if base == nil && overlay == nil {
		return nil
	}

	merged := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}
