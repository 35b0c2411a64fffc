package authz

import (
	"strings"
)

// Wildcard matches any resource or action in a permission grant.
const Wildcard = "*"

// Permission is one grant from the caller's session: a resource, the
// actions allowed on it, and optional restriction metadata.
type Permission struct {
	Resource string         `json:"resource"`
	Actions  []string       `json:"actions"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// HasAction reports whether the permission grants the given action, either
// via the action wildcard or a spelling in the same synonym class.
func (p Permission) HasAction(action string) bool {
	want := CanonicalAction(action)
	for _, a := range p.Actions {
		if a == Wildcard {
			return true
		}
		if CanonicalAction(a) == want {
			return true
		}
	}
	return false
}

// IsWildcard reports whether the permission grants everything on
// everything.
func (p Permission) IsWildcard() bool {
	if p.Resource != Wildcard {
		return false
	}
	for _, a := range p.Actions {
		if a == Wildcard {
			return true
		}
	}
	return false
}

// PermissionSet is an unordered collection of grants. Multiple entries may
// name the same resource; membership checks take the union.
type PermissionSet []Permission

// Grants reports whether any permission in the set allows the action on
// the resource. A permission on resource "*" matches every resource.
func (ps PermissionSet) Grants(resource, action string) bool {
	for _, p := range ps {
		if p.Resource != Wildcard && !strings.EqualFold(p.Resource, resource) {
			continue
		}
		if p.HasAction(action) {
			return true
		}
	}
	return false
}

// ParsePermissionString parses the compact session encoding
// "resource.a1,a2,resource2.a3". Tokens are comma-separated; a token with
// a dot names a new current resource, a bare token is attributed to the
// current resource, defaulting to "event" before any resource is named.
// Malformed input degrades to whatever could be parsed, never an error.
func ParsePermissionString(s string) PermissionSet {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	resource := "event"
	actions := make(map[string][]string)
	order := []string{}

	appendAction := func(res, act string) {
		act = NormalizeAction(act)
		if act == "" {
			return
		}
		if _, seen := actions[res]; !seen {
			order = append(order, res)
		}
		for _, existing := range actions[res] {
			if existing == act {
				return
			}
		}
		actions[res] = append(actions[res], act)
	}

	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if idx := strings.Index(token, "."); idx >= 0 {
			res := strings.ToLower(strings.TrimSpace(token[:idx]))
			if res != "" {
				resource = res
			}
			appendAction(resource, token[idx+1:])
			continue
		}
		appendAction(resource, token)
	}

	out := make(PermissionSet, 0, len(order))
	for _, res := range order {
		out = append(out, Permission{Resource: res, Actions: actions[res]})
	}
	return out
}

// PermissionSetFromClaim converts the session "permissions" claim into a
// PermissionSet. The claim arrives either as the compact string encoding
// or as a list of {resource, actions} objects; anything unrecognizable
// contributes nothing.
func PermissionSetFromClaim(v any) PermissionSet {
	switch claim := v.(type) {
	case string:
		return ParsePermissionString(claim)
	case []any:
		out := make(PermissionSet, 0, len(claim))
		for _, el := range claim {
			m, ok := el.(map[string]any)
			if !ok {
				continue
			}
			p := Permission{}
			if res, ok := m["resource"].(string); ok {
				p.Resource = strings.ToLower(strings.TrimSpace(res))
			}
			if p.Resource == "" {
				continue
			}
			if raw, ok := m["actions"].([]any); ok {
				for _, a := range raw {
					if s, ok := a.(string); ok {
						if s == Wildcard {
							p.Actions = append(p.Actions, Wildcard)
						} else if n := NormalizeAction(s); n != "" {
							p.Actions = append(p.Actions, n)
						}
					}
				}
			}
			if meta, ok := m["metadata"].(map[string]any); ok {
				p.Metadata = meta
			}
			out = append(out, p)
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}
