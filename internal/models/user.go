package models

// UserModel is a registered author.
type UserModel struct {
	Base
	Username  string `json:"username"   gorm:"size:150;uniqueIndex;not null"`
	FirstName string `json:"first_name" gorm:"size:150"`
	LastName  string `json:"last_name"  gorm:"size:150"`
	Email     string `json:"email"      gorm:"size:254"`
	Password  string `json:"-"          gorm:"not null"`
	IsStaff   bool   `json:"is_staff"   gorm:"not null;default:false"`

	Posts    []PostModel    `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Comments []CommentModel `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (UserModel) TableName() string { return "users" }

// FullName mirrors the "first last" display name, falling back to the username.
func (u *UserModel) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}
