package models

// Category is migrated but not related to any other table or exposed by any route.
type Category struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:100;uniqueIndex;not null"`
	Description *string `gorm:"type:text"`
}

func (c Category) String() string {
	return c.Name
}
