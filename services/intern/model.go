package intern

import "time"

type Intern struct {
	ID           string    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Username     string    `gorm:"column:username;uniqueIndex;type:varchar(100);not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(100);not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Intern) TableName() string {
	return "interns"
}
