package jsonsuggest

// Match returns the items whose display property satisfies p, in dataset order.
func Match(items []Item, p CompiledPattern, property string) []Item {
	matches := make([]Item, 0, len(items))
	for _, item := range items {
		if p.Matches(item.String(property)) {
			matches = append(matches, item)
		}
	}
	return matches
}
