package filter

import "github.com/aas-cloud/doorpilot/internal/domain"

// UserFilters are the caller-supplied search filters.
type UserFilters struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Category     string `json:"category,omitempty"`
}

// BuildAccess converts user filters and the caller's role set into the
// filter applied at retrieval time. Exactly one allowed_roles condition is
// always appended: the caller's roles when authenticated, the single
// public role otherwise. Anonymous callers must never see more than the
// public set.
func BuildAccess(userFilters UserFilters, caller *domain.User) Filter {
	var conditions []Condition

	if userFilters.Manufacturer != "" {
		if c, err := NewMatch("manufacturer", userFilters.Manufacturer); err == nil {
			conditions = append(conditions, c)
		}
	}
	if userFilters.Model != "" {
		if c, err := NewMatch("model", userFilters.Model); err == nil {
			conditions = append(conditions, c)
		}
	}
	if userFilters.Category != "" {
		if c, err := NewMatch("category", userFilters.Category); err == nil {
			conditions = append(conditions, c)
		}
	}

	roles := []string{domain.RolePublic}
	if caller != nil && len(caller.Roles) > 0 {
		roles = caller.Roles
	}
	if c, err := NewMatchAny("allowed_roles", roles); err == nil {
		conditions = append(conditions, c)
	}

	return New(conditions...)
}
