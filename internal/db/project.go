package db

import "time"

// Project 定义作品集中的一个项目。
// ID 为不透明字符串（时间有序的 ULID），Position 越小越靠前。
// Gallery 以 JSON 数组形式存储，保持上传顺序。
type Project struct {
	ID          string    `gorm:"primaryKey;size:32" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Category    string    `json:"category"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"type:text" json:"imageUrl"`
	Gallery     []string  `gorm:"serializer:json;type:text" json:"gallery,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	Date        string    `gorm:"size:32" json:"date"`
	Link        string    `json:"link,omitempty"`
	Position    int       `gorm:"index;default:0" json:"position"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// TableName 指定表名。
func (Project) TableName() string {
	return "projects"
}
