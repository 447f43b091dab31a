package models

// Store is a physical retail location.
type Store struct {
	ID          int       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Description string    `gorm:"column:description" json:"description"`
	Latitude    float64   `gorm:"column:latitude" json:"latitude"`
	Longitude   float64   `gorm:"column:longitude" json:"longitude"`
	Products    []Product `gorm:"foreignKey:StoreID" json:"products,omitempty"`
}
