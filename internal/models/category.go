package models

// CategoryModel groups posts under a URL slug.
type CategoryModel struct {
	Publishable
	Title       string `json:"title"       gorm:"size:256;not null"`
	Description string `json:"description" gorm:"type:text;not null"`
	Slug        string `json:"slug"        gorm:"size:64;uniqueIndex;not null"`

	Posts []PostModel `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

func (CategoryModel) TableName() string { return "categories" }

// LocationModel is an optional place a post refers to.
type LocationModel struct {
	Publishable
	Name string `json:"name" gorm:"size:256;not null"`

	Posts []PostModel `json:"-" gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL"`
}

func (LocationModel) TableName() string { return "locations" }
