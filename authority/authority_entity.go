package authority

import "strings"

// Action is one grantable capability. Services test actions, never role names.
type Action string

const (
	ActionViewDashboard     Action = "view-dashboard"
	ActionViewOfficers      Action = "view-officers"
	ActionViewAllOfficers   Action = "view-all-officers"
	ActionManageOfficers    Action = "manage-officers"
	ActionManageMissions    Action = "manage-missions"
	ActionManageAssignments Action = "manage-assignments"
	ActionManageUnits       Action = "manage-units"
	ActionManageUsers       Action = "manage-users"
	ActionEvaluateRequests  Action = "evaluate-requests"
	ActionExportReports     Action = "export-reports"
	ActionImportRecords     Action = "import-records"
)

const (
	RoleAdmin      = "admin"
	RoleOperations = "operations" // mission staff section, evaluates requests
	RoleInspector  = "inspector"
	RoleCommand    = "command"
	RoleCommander  = "commander" // scoped to the commander's own unit subtree
	RoleOfficer    = "officer"
)

// RoleGrants maps each role to its explicit action set.
var RoleGrants = map[string][]Action{
	RoleAdmin: {
		ActionViewDashboard, ActionViewOfficers, ActionViewAllOfficers,
		ActionManageOfficers, ActionManageMissions, ActionManageAssignments,
		ActionManageUnits, ActionManageUsers,
		ActionEvaluateRequests, ActionExportReports, ActionImportRecords,
	},
	RoleOperations: {
		ActionViewDashboard, ActionViewOfficers, ActionViewAllOfficers,
		ActionManageMissions, ActionManageAssignments,
		ActionEvaluateRequests, ActionExportReports,
	},
	RoleInspector: {
		ActionViewDashboard, ActionViewOfficers, ActionViewAllOfficers,
		ActionManageMissions, ActionManageAssignments,
		ActionExportReports,
	},
	RoleCommand: {
		ActionViewDashboard, ActionViewOfficers, ActionViewAllOfficers,
		ActionManageMissions, ActionManageAssignments,
		ActionExportReports,
	},
	RoleCommander: {
		ActionViewDashboard, ActionViewOfficers,
	},
	RoleOfficer: {},
}

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

// CanDo reports whether any held role grants the action.
func (c Permissions) CanDo(action Action) bool {
	for _, role := range c {
		for _, granted := range RoleGrants[strings.ToLower(role)] {
			if granted == action {
				return true
			}
		}
	}
	return false
}
