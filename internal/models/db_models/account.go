package db_models

const RoleAdmin = "admin"

// Account is a dashboard user. Donors never log in.
type Account struct {
	BaseModel
	Name         string `gorm:"size:120"`
	Email        string `gorm:"size:320;uniqueIndex"`
	PasswordHash string
	Role         string `gorm:"size:20;not null;default:'admin'"`
}
