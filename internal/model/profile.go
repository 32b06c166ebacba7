package model

// Profile carries the role flags of a user. ID equals the user id.
type Profile struct {
	ID         string `gorm:"type:char(36);primaryKey" json:"id"`
	IsAdmin    bool   `gorm:"not null;default:false" json:"is_admin"`
	SuperAdmin bool   `gorm:"not null;default:false" json:"super_admin"`
}

func (Profile) TableName() string { return "profiles" }
