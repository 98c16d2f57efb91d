package sanitizer

// NormalizeStringSlice normalizes items and drops empties and duplicates,
// keeping first-seen order.
func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return SanitizeSlice(items, normalizer)
}

// NormalizeIDs trims ids and removes duplicates.
func NormalizeIDs(ids []string) []string {
	return NormalizeStringSlice(ids, TrimAndNormalize)
}
