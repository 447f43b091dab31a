package models

// SystemUser represents the back-office identity that owns orders.
type SystemUser struct {
	ID        int     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email     string  `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Password  string  `gorm:"column:password;not null" json:"-"`
	FirstName string  `gorm:"column:first_name;not null" json:"firstName"`
	LastName  string  `gorm:"column:last_name;not null" json:"lastName"`
	Orders    []Order `gorm:"foreignKey:SystemUserID" json:"orders,omitempty"`
}
