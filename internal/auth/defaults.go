package auth

// DefaultRoleDefinitions returns the shipped role catalog. Owner always holds
// the complete permission set; every other role starts from these grants and
// may be customized through the draft/save surface.
func DefaultRoleDefinitions() []RoleDefinition {
	return []RoleDefinition{
		{
			Role:        RoleOwner,
			Label:       "Owner",
			Description: "Company owner with unrestricted access",
			Permissions: fullPermissionSet(),
		},
		{
			Role:        RoleAdmin,
			Label:       "Admin",
			Description: "Administers users, roles, and all delivery work",
			Permissions: []PermissionKey{
				PermManageUsers, PermManageRoles,
				PermViewProjects, PermManageProjects,
				PermViewRequirements, PermManageRequirements,
				PermViewTestCases, PermManageTestCases, PermExecuteTests,
				PermViewDefects, PermManageDefects,
				PermViewTasks, PermManageTasks,
				PermUseChat, PermViewReports,
			},
		},
		{
			Role:        RoleManager,
			Label:       "Manager",
			Description: "Plans projects and tracks delivery",
			Permissions: []PermissionKey{
				PermViewProjects, PermManageProjects,
				PermViewRequirements,
				PermViewTestCases,
				PermViewDefects,
				PermViewTasks, PermManageTasks,
				PermUseChat, PermViewReports,
			},
		},
		{
			Role:        RoleTechnicalLead,
			Label:       "Technical Lead",
			Description: "Leads engineering work across requirements, tests, and defects",
			Permissions: []PermissionKey{
				PermViewProjects,
				PermViewRequirements, PermManageRequirements,
				PermViewTestCases, PermManageTestCases, PermExecuteTests,
				PermViewDefects, PermManageDefects,
				PermViewTasks, PermManageTasks,
				PermUseChat, PermViewReports,
			},
		},
		{
			Role:        RoleBusinessAnalyst,
			Label:       "Business Analyst",
			Description: "Owns requirements and acceptance criteria",
			Permissions: []PermissionKey{
				PermViewProjects,
				PermViewRequirements, PermManageRequirements,
				PermViewTestCases,
				PermViewDefects,
				PermViewTasks,
				PermUseChat, PermViewReports,
			},
		},
		{
			Role:        RoleTester,
			Label:       "Tester",
			Description: "Designs and executes manual test cases",
			Permissions: []PermissionKey{
				PermViewProjects,
				PermViewRequirements,
				PermViewTestCases, PermManageTestCases, PermExecuteTests,
				PermViewDefects, PermManageDefects,
				PermViewTasks,
				PermUseChat,
			},
		},
		{
			Role:        RoleAutomationTester,
			Label:       "Automation Tester",
			Description: "Builds and runs automated test suites",
			Permissions: []PermissionKey{
				PermViewProjects,
				PermViewRequirements,
				PermViewTestCases, PermManageTestCases, PermExecuteTests,
				PermViewDefects, PermManageDefects,
				PermViewTasks,
				PermUseChat,
			},
		},
		{
			Role:        RolePerformanceTester,
			Label:       "Performance Tester",
			Description: "Runs performance and load test campaigns",
			Permissions: []PermissionKey{
				PermViewProjects,
				PermViewRequirements,
				PermViewTestCases, PermExecuteTests,
				PermViewDefects, PermManageDefects,
				PermViewTasks,
				PermUseChat, PermViewReports,
			},
		},
		{
			Role:        RoleSecurityTester,
			Label:       "Security Tester",
			Description: "Runs security test campaigns and tracks findings",
			Permissions: []PermissionKey{
				PermViewProjects,
				PermViewRequirements,
				PermViewTestCases, PermExecuteTests,
				PermViewDefects, PermManageDefects,
				PermViewTasks,
				PermUseChat, PermViewReports,
			},
		},
		{
			Role:        RoleDeveloper,
			Label:       "Developer",
			Description: "Implements tasks and follows defects against their work",
			Permissions: []PermissionKey{
				PermViewProjects,
				PermViewRequirements,
				PermViewTestCases,
				PermViewDefects,
				PermViewTasks, PermManageTasks,
				PermUseChat,
			},
		},
	}
}
