package matrix

// BuildToolOrder orders tool ids for display. Tools appear in the order the
// viewer list names them, matched by normalized id; the remaining tools follow
// sorted by display name.
func BuildToolOrder(viewers []Tool, tools *ToolSet) []string {
	order := make([]string, 0, tools.Len())
	seen := make(map[string]bool)
	for _, v := range viewers {
		if v.ID == "" {
			continue
		}
		id, ok := tools.Match(v.ID)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}

	var extras []string
	for _, id := range tools.IDs() {
		if !seen[id] {
			extras = append(extras, id)
		}
	}
	sortByName(extras, func(id string) string {
		if t, ok := tools.Get(id); ok && t.Name != "" {
			return t.Name
		}
		return id
	})
	return append(order, extras...)
}

// BindVersion produces one entry per feature of the bucket, in bucket order.
// Every entry carries a ToolMeta for every tool in order; a result is present
// only where a tool file reported one.
func BindVersion(bucket *VersionBucket, order []string, tools *ToolSet, results *ResultSet) []Entry {
	if bucket == nil {
		return nil
	}
	entries := make([]Entry, 0, len(bucket.Features))
	for _, fe := range bucket.Features {
		entry := Entry{
			Slug:     fe.Slug,
			Feature:  fe.Feature,
			Results:  make(map[string]ResultCell),
			ToolMeta: make(map[string]ToolMeta, len(order)),
		}
		for _, toolID := range order {
			tool, ok := tools.Get(toolID)
			if !ok {
				tool = Tool{ID: toolID}
			}
			meta := ToolMeta{
				Tool:    tool,
				Feature: &FeatureVersion{Slug: fe.Slug, Version: bucket.Version},
			}
			var result *ResultCell
			if cell, ok := results.Get(bucket.Version, toolID, fe.Slug); ok {
				entry.Results[toolID] = cell.Result
				test := cell.Test
				meta.Test = &test
				result = &cell.Result
			}
			meta.Status = Classify(result)
			meta.ViewerURL = ResolveViewerURL(result, tool, fe.Feature)
			entry.ToolMeta[toolID] = meta
		}
		entries = append(entries, entry)
	}
	return entries
}
