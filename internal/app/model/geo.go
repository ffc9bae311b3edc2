package model

// Province is a static PNG gazetteer row. IDs are stable slugs
// (e.g. "western-highlands") so records survive display-name edits.
type Province struct {
	ID     string `gorm:"primarykey;type:varchar(60)" json:"id"`
	Name   string `gorm:"not null" json:"name"`
	Region string `gorm:"type:varchar(30)" json:"region"` // highlands, momase, southern, islands

	Districts []District `gorm:"foreignKey:ProvinceID" json:"districts,omitempty"`
}

func (Province) TableName() string {
	return "provinces"
}

// District is a static PNG gazetteer row scoped to a province
type District struct {
	ID         string `gorm:"primarykey;type:varchar(60)" json:"id"`
	ProvinceID string `gorm:"index;type:varchar(60);not null" json:"province_id"`
	Name       string `gorm:"not null" json:"name"`
}

func (District) TableName() string {
	return "districts"
}
