package models

import (
	"time"
)

// Model is a repository discovered by the crawler. RepoID is the upstream
// identifier used to tell new models from ones already seen.
type Model struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	RepoID      int64      `gorm:"uniqueIndex;not null" json:"id"`
	Name        string     `json:"name"`
	FullName    string     `gorm:"index" json:"full_name"`
	Description string     `json:"description"`
	HTMLURL     string     `json:"html_url"`
	PushedAt    *time.Time `json:"pushed_at"`
	Stars       int        `json:"stargazers_count"`
	Language    string     `json:"language"`
	Topics      []string   `gorm:"serializer:json" json:"topics"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

// TableName sets the table name for Model
func (Model) TableName() string {
	return "models"
}
