package model

// Company table companies. A member unit of the holding.
type Company struct {
	CompanyID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"company_id"`
	Name      string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"name"`
	Code      string  `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Email     *string `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	Phone     *string `gorm:"type:varchar(50)"                               json:"phone,omitempty"`
	Address   *string `gorm:"type:text"                                      json:"address,omitempty"`
	IsActive  bool    `gorm:"not null"                                       json:"is_active"`
	BaseModel
}

// TableName companies
func (Company) TableName() string { return "companies" }
