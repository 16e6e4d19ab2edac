package users

// RoleCategory groups roles by the authority they carry.
type RoleCategory string

const (
	CategoryAdmin   RoleCategory = "admin"
	CategoryManager RoleCategory = "manager"
	CategoryStaff   RoleCategory = "staff"
)

const (
	RoleAdmin             = "Admin"
	RoleManager           = "Manager"
	RoleProjectManager    = "Project Manager"
	RoleBusinessManager   = "Business Manager"
	RoleDepartmentManager = "Department Manager"
	RoleUser              = "User"
)

// Role is one entry of the shared role enumeration.
type Role struct {
	Name     string       `json:"name"`
	Category RoleCategory `json:"category"`
}

// Roles is the single role enumeration shared by authorization checks and the API.
var Roles = []Role{
	{Name: RoleAdmin, Category: CategoryAdmin},
	{Name: RoleManager, Category: CategoryManager},
	{Name: RoleProjectManager, Category: CategoryManager},
	{Name: RoleBusinessManager, Category: CategoryManager},
	{Name: RoleDepartmentManager, Category: CategoryManager},
	{Name: RoleUser, Category: CategoryStaff},
}

// RoleSet is a set of role names.
type RoleSet map[string]struct{}

func NewRoleSet(names ...string) RoleSet {
	set := make(RoleSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// ManagerRoles returns the roles allowed to approve a SharePoint: every admin and manager category role.
func ManagerRoles() RoleSet {
	set := RoleSet{}
	for _, r := range Roles {
		if r.Category == CategoryAdmin || r.Category == CategoryManager {
			set[r.Name] = struct{}{}
		}
	}
	return set
}

// IsKnownRole reports whether name belongs to the enumeration.
func IsKnownRole(name string) bool {
	for _, r := range Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
