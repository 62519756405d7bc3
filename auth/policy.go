// Package auth decides which roles may perform which actions and hashes
// passwords.
package auth

import "absensi-server-go/models"

// Action is something a request wants to do
type Action string

const (
	ActionViewRecap           Action = "view_recap"
	ActionRecordAttendance    Action = "record_attendance"
	ActionCorrectAttendance   Action = "correct_attendance"
	ActionDeleteAllAttendance Action = "delete_all_attendance"
	ActionViewStudents        Action = "view_students"
	ActionManageStudents      Action = "manage_students"
	ActionImportStudents      Action = "import_students"
)

// publicActions need no login at all.
var publicActions = map[Action]bool{
	ActionViewRecap: true,
}

type grant struct {
	role   models.Role
	action Action
}

var grants = map[grant]bool{
	{models.RoleWalikelas, ActionRecordAttendance}:    true,
	{models.RoleWalikelas, ActionCorrectAttendance}:   true,
	{models.RoleWalikelas, ActionDeleteAllAttendance}: true,
	{models.RoleWalikelas, ActionViewStudents}:        true,
	{models.RoleWalikelas, ActionManageStudents}:      true,
	{models.RoleWalikelas, ActionImportStudents}:      true,

	{models.RoleSekretaris, ActionRecordAttendance}:  true,
	{models.RoleSekretaris, ActionCorrectAttendance}: true,
	{models.RoleSekretaris, ActionViewStudents}:      true,
}

// IsPublic reports whether anonymous requests may perform action.
func IsPublic(action Action) bool {
	return publicActions[action]
}

// CanPerform reports whether user may perform action. A nil user is
// anonymous.
func CanPerform(user *models.User, action Action) bool {
	if publicActions[action] {
		return true
	}
	if user == nil {
		return false
	}
	return grants[grant{user.Role, action}]
}
