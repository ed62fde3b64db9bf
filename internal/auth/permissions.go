// Package auth - permissions.go defines the closed role and permission catalogs
// for a QForma workspace and the Catalog type that answers "can role R perform
// action A?". Checks are fail-closed: an unknown role or unknown permission key
// resolves to false rather than an error, so a stale role string read from the
// database can never grant access by accident.
package auth

import (
	"errors"
	"fmt"
	"sync"
)

// Role identifies a named bundle of capabilities within a company.
// The set is fixed at compile time per deployment; roles are not user-extensible.
type Role string

const (
	RoleOwner             Role = "owner"
	RoleAdmin             Role = "admin"
	RoleManager           Role = "manager"
	RoleTechnicalLead     Role = "technical_lead"
	RoleBusinessAnalyst   Role = "business_analyst"
	RoleTester            Role = "tester"
	RoleAutomationTester  Role = "automation_tester"
	RolePerformanceTester Role = "performance_tester"
	RoleSecurityTester    Role = "security_tester"
	RoleDeveloper         Role = "developer"
)

// PermissionKey is an opaque capability identifier drawn from a closed catalog.
type PermissionKey string

const (
	// Company administration
	PermManageCompany PermissionKey = "manage_company"
	PermManageUsers   PermissionKey = "manage_users"
	PermManageRoles   PermissionKey = "manage_roles"

	// Projects
	PermViewProjects   PermissionKey = "view_projects"
	PermManageProjects PermissionKey = "manage_projects"

	// Requirements
	PermViewRequirements   PermissionKey = "view_requirements"
	PermManageRequirements PermissionKey = "manage_requirements"

	// Test cases and execution
	PermViewTestCases   PermissionKey = "view_test_cases"
	PermManageTestCases PermissionKey = "manage_test_cases"
	PermExecuteTests    PermissionKey = "execute_tests"

	// Defects
	PermViewDefects   PermissionKey = "view_defects"
	PermManageDefects PermissionKey = "manage_defects"

	// Tasks / Kanban
	PermViewTasks   PermissionKey = "view_tasks"
	PermManageTasks PermissionKey = "manage_tasks"

	// Collaboration
	PermUseChat     PermissionKey = "use_chat"
	PermViewReports PermissionKey = "view_reports"
)

// Permission binds a key to its display metadata. Label and Description are
// presentation only; the access-check contract operates on the key alone.
type Permission struct {
	Key         PermissionKey `json:"key"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
}

// AllPermissions returns the full permission catalog in fixed display order.
func AllPermissions() []Permission {
	return []Permission{
		{PermManageCompany, "Company Settings", "Edit company profile, billing, and workspace settings"},
		{PermManageUsers, "Manage Users", "Invite members, change member roles, and remove members"},
		{PermManageRoles, "Manage Roles", "Edit role definitions and their granted permissions"},
		{PermViewProjects, "View Projects", "See projects and their dashboards"},
		{PermManageProjects, "Manage Projects", "Create, edit, and archive projects"},
		{PermViewRequirements, "View Requirements", "Read requirements and acceptance criteria"},
		{PermManageRequirements, "Manage Requirements", "Create, edit, and delete requirements"},
		{PermViewTestCases, "View Test Cases", "Read test cases and their steps"},
		{PermManageTestCases, "Manage Test Cases", "Create, edit, and delete test cases"},
		{PermExecuteTests, "Execute Tests", "Record test execution results"},
		{PermViewDefects, "View Defects", "Read defects and their history"},
		{PermManageDefects, "Manage Defects", "Create, triage, and transition defects"},
		{PermViewTasks, "View Tasks", "See the task board"},
		{PermManageTasks, "Manage Tasks", "Create, edit, move, and delete tasks"},
		{PermUseChat, "Team Chat", "Read and post in team chat channels"},
		{PermViewReports, "View Reports", "See dashboards and aggregated statistics"},
	}
}

// AllRoles returns the closed role enumeration in fixed display order, owner first.
func AllRoles() []Role {
	return []Role{
		RoleOwner,
		RoleAdmin,
		RoleManager,
		RoleTechnicalLead,
		RoleBusinessAnalyst,
		RoleTester,
		RoleAutomationTester,
		RolePerformanceTester,
		RoleSecurityTester,
		RoleDeveloper,
	}
}

// ValidRole reports whether s names a role in the closed enumeration.
// Role strings arrive from the database and from JWT claims as untyped text;
// callers must validate here rather than trusting a cast.
func ValidRole(s string) bool {
	for _, r := range AllRoles() {
		if string(r) == s {
			return true
		}
	}
	return false
}

// ValidPermissionKey reports whether key is part of the permission catalog.
func ValidPermissionKey(key PermissionKey) bool {
	for _, p := range AllPermissions() {
		if p.Key == key {
			return true
		}
	}
	return false
}

// RoleDefinition is the catalog entry binding a Role to its display metadata
// and granted permission set. Permissions are held in catalog display order.
type RoleDefinition struct {
	Role        Role            `json:"role"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Permissions []PermissionKey `json:"permissions"`
}

// Has reports whether the definition grants key.
func (d *RoleDefinition) Has(key PermissionKey) bool {
	for _, k := range d.Permissions {
		if k == key {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can never mutate catalog state through
// a returned definition.
func (d *RoleDefinition) Clone() *RoleDefinition {
	cp := *d
	cp.Permissions = append([]PermissionKey(nil), d.Permissions...)
	return &cp
}

// Sentinel errors returned by the role-management surface. These are explicit
// error values, not panics, so HTTP callers can map them to inline feedback.
var (
	ErrOwnerImmutable = errors.New("the owner role cannot be edited")
	ErrUnknownRole    = errors.New("unknown role")
	ErrEmptyLabel     = errors.New("role label must not be empty")
)

// Catalog is the process-wide, read-mostly table of role definitions.
// Reads are cheap and safe to perform on every request; an edit replaces the
// affected definition atomically under the write lock.
type Catalog struct {
	mu   sync.RWMutex
	defs map[Role]*RoleDefinition
}

// NewCatalog returns a catalog populated with the default role definitions.
func NewCatalog() *Catalog {
	c := &Catalog{defs: make(map[Role]*RoleDefinition)}
	for _, d := range DefaultRoleDefinitions() {
		def := d
		c.defs[def.Role] = &def
	}
	return c
}

// HasPermission reports whether role grants key. Fail-closed: an unknown role
// or a key outside the role's set (including keys absent from the catalog
// entirely) yields false. Never errors; safe on every render/request.
func (c *Catalog) HasPermission(role Role, key PermissionKey) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := c.defs[role]
	if !ok {
		return false
	}
	return def.Has(key)
}

// RoleDefinition looks up the definition for role. A nil result is a valid,
// expected outcome (stale stored role values), not an error condition.
func (c *Catalog) RoleDefinition(role Role) *RoleDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := c.defs[role]
	if !ok {
		return nil
	}
	return def.Clone()
}

// Roles returns every role definition in display order, owner first.
func (c *Catalog) Roles() []RoleDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]RoleDefinition, 0, len(c.defs))
	for _, r := range AllRoles() {
		if def, ok := c.defs[r]; ok {
			out = append(out, *def.Clone())
		}
	}
	return out
}

// replace swaps in def for its role. The owner guard lives in Save; this is
// the single write path into the map.
func (c *Catalog) replace(def *RoleDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[def.Role] = def
}

// ApplyStored installs a persisted role definition into the catalog. It is the
// hydration path for overrides loaded from the database at startup and enforces
// the same rules as Save: the owner role is immutable, the role must come from
// the closed enumeration, the label must be non-empty, and every permission key
// must exist in the catalog. An invalid stored row is rejected, never installed.
func (c *Catalog) ApplyStored(role Role, label, description string, keys []PermissionKey) error {
	if role == RoleOwner {
		return ErrOwnerImmutable
	}
	if !ValidRole(string(role)) {
		return ErrUnknownRole
	}
	if label == "" {
		return ErrEmptyLabel
	}
	perms, err := canonicalPermissions(keys)
	if err != nil {
		return err
	}
	c.replace(&RoleDefinition{
		Role:        role,
		Label:       label,
		Description: description,
		Permissions: perms,
	})
	return nil
}

// canonicalPermissions filters keys against the catalog, dedupes, and returns
// them in catalog display order.
func canonicalPermissions(keys []PermissionKey) ([]PermissionKey, error) {
	granted := make(map[PermissionKey]bool, len(keys))
	for _, k := range keys {
		if !ValidPermissionKey(k) {
			return nil, fmt.Errorf("invalid permission key: %s", k)
		}
		granted[k] = true
	}
	out := make([]PermissionKey, 0, len(granted))
	for _, p := range AllPermissions() {
		if granted[p.Key] {
			out = append(out, p.Key)
		}
	}
	return out, nil
}

// fullPermissionSet returns every key in the catalog, in display order.
func fullPermissionSet() []PermissionKey {
	perms := AllPermissions()
	out := make([]PermissionKey, 0, len(perms))
	for _, p := range perms {
		out = append(out, p.Key)
	}
	return out
}
