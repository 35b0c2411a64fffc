package authz

// maxDiscoveryDepth bounds the record traversal. Records arrive from
// several API projections and may nest third-party payloads; four levels
// is as deep as action hints have ever been observed.
const maxDiscoveryDepth = 4

// explicitActionPaths are the field paths that may hold an explicit array
// of allowed-action strings. Every array found contributes; this is a
// union across paths, not a first match.
var explicitActionPaths = [][]string{
	{"allowedActions"},
	{"allowed_actions"},
	{"data", "allowedActions"},
	{"request", "allowedActions"},
}

// structuralChildren are visited on every node regardless of the generic
// walk, because they carry action-relevant sub-permissions even when not
// otherwise enumerable. rescheduleProposal.proposedBy and decisionHistory
// elements are handled separately below.
var structuralChildren = []string{"event", "request", "reviewer"}

// DiscoverAllowedActions walks one or more views of the same logical
// entity and collects every action hint it can find: explicit allowed-
// action arrays, truthy capability flags, and hints buried in reviewer,
// proposal, and history substructures. The result is the union across all
// roots. An empty set means "no signal", not an error.
func DiscoverAllowedActions(roots ...map[string]any) ActionSet {
	out := ActionSet{}
	for _, root := range roots {
		if root == nil {
			continue
		}
		discover(root, 0, out)
	}
	return out
}

func discover(node map[string]any, depth int, out ActionSet) {
	if depth >= maxDiscoveryDepth || node == nil {
		return
	}

	for _, path := range explicitActionPaths {
		for _, v := range lookupSlice(node, path) {
			if s, ok := v.(string); ok {
				out.Add(s)
			}
		}
	}

	for flag, action := range capabilityFlags {
		if truthy(node[flag]) {
			out.Add(action)
		}
	}

	visited := map[string]bool{}
	for _, key := range structuralChildren {
		visited[key] = true
		if child, ok := node[key].(map[string]any); ok {
			discover(child, depth+1, out)
		}
	}

	visited["rescheduleProposal"] = true
	if proposal, ok := node["rescheduleProposal"].(map[string]any); ok {
		if by, ok := proposal["proposedBy"].(map[string]any); ok {
			discover(by, depth+1, out)
		}
	}

	visited["decisionHistory"] = true
	if history, ok := node["decisionHistory"].([]any); ok {
		for _, el := range history {
			if m, ok := el.(map[string]any); ok {
				discover(m, depth+1, out)
			}
		}
	}

	// Shallow safety net: hints have shown up under unexpected keys, so
	// every remaining object-valued field is visited too, still under the
	// depth bound.
	for key, v := range node {
		if visited[key] {
			continue
		}
		if m, ok := v.(map[string]any); ok {
			discover(m, depth+1, out)
		}
	}
}

// lookupSlice follows a field path through nested maps and returns the
// slice at its end, or nil if any step is missing or the wrong shape.
func lookupSlice(node map[string]any, path []string) []any {
	cur := node
	for i, key := range path {
		v, ok := cur[key]
		if !ok {
			return nil
		}
		if i == len(path)-1 {
			arr, _ := v.([]any)
			return arr
		}
		cur, ok = v.(map[string]any)
		if !ok {
			return nil
		}
	}
	return nil
}

// truthy interprets the loose boolean encodings capability flags arrive
// in: real booleans, numbers, and "true"/"1" strings.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return t == "true" || t == "1"
	default:
		return false
	}
}
