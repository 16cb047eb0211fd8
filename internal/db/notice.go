package db

import "gorm.io/gorm"

// Notice 是工作室公告，Content 为 Markdown。
type Notice struct {
	gorm.Model
	Title     string `gorm:"not null"`
	Content   string `gorm:"type:text"`
	Date      string `gorm:"size:32"`
	Published bool   `gorm:"default:true"`
}

// TableName 指定表名。
func (Notice) TableName() string {
	return "notices"
}
