package auth

// RoleDraft is a scratch copy of a role definition under edit. Toggles apply
// only to the draft; the live catalog is untouched until Save. Abandoning a
// draft (navigating away, request timeout) requires no cleanup.
type RoleDraft struct {
	Role        Role
	Label       string
	Description string
	granted     map[PermissionKey]bool
}

// BeginEdit opens a draft seeded from the current definition of role.
// The owner role is immutable and can never enter edit mode. A role from the
// closed enumeration that has no definition yet yields an empty draft, which
// Save will insert.
func (c *Catalog) BeginEdit(role Role) (*RoleDraft, error) {
	if role == RoleOwner {
		return nil, ErrOwnerImmutable
	}
	if !ValidRole(string(role)) {
		return nil, ErrUnknownRole
	}

	d := &RoleDraft{Role: role, granted: make(map[PermissionKey]bool)}
	if def := c.RoleDefinition(role); def != nil {
		d.Label = def.Label
		d.Description = def.Description
		for _, k := range def.Permissions {
			d.granted[k] = true
		}
	}
	return d, nil
}

// Toggle flips key in the draft's granted set. Toggling the same key twice
// restores the draft to its prior state.
func (d *RoleDraft) Toggle(key PermissionKey) {
	if d.granted[key] {
		delete(d.granted, key)
		return
	}
	d.granted[key] = true
}

// Has reports whether the draft currently grants key.
func (d *RoleDraft) Has(key PermissionKey) bool {
	return d.granted[key]
}

// Permissions returns the draft's granted keys in catalog display order.
func (d *RoleDraft) Permissions() []PermissionKey {
	out := make([]PermissionKey, 0, len(d.granted))
	for _, p := range AllPermissions() {
		if d.granted[p.Key] {
			out = append(out, p.Key)
		}
	}
	return out
}

// Save validates the draft and atomically replaces (or inserts) the catalog
// entry for its role. On validation failure the catalog and the draft are both
// left unchanged, so the caller can correct and retry.
func (c *Catalog) Save(d *RoleDraft) (*RoleDefinition, error) {
	if d.Role == RoleOwner {
		return nil, ErrOwnerImmutable
	}
	if !ValidRole(string(d.Role)) {
		return nil, ErrUnknownRole
	}
	if d.Label == "" {
		return nil, ErrEmptyLabel
	}

	def := &RoleDefinition{
		Role:        d.Role,
		Label:       d.Label,
		Description: d.Description,
		Permissions: d.Permissions(),
	}
	c.replace(def)
	return def.Clone(), nil
}
