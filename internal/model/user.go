package model

// Roles
const (
	RoleAdmin      = "admin"
	RoleDepartment = "department"
	RoleMemberUnit = "member_unit"
)

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleDepartment, RoleMemberUnit:
		return true
	}
	return false
}

// User table users. Users are deactivated, never deleted.
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string  `gorm:"type:varchar(50);not null;uniqueIndex"          json:"username"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	Role         string  `gorm:"type:varchar(20);not null"                      json:"role"`
	Company      string  `gorm:"type:varchar(255);not null;default:''"          json:"company"`
	CompanyCode  *string `gorm:"type:varchar(20);index"                         json:"company_code,omitempty"`
	Department   *string `gorm:"type:varchar(100)"                              json:"department,omitempty"`
	IsActive     bool    `gorm:"not null"                                       json:"is_active"`
	BaseModel
}

// TableName users
func (User) TableName() string { return "users" }

// CompanyCodeValue returns the company code or "".
func (u *User) CompanyCodeValue() string {
	if u.CompanyCode == nil {
		return ""
	}
	return *u.CompanyCode
}
