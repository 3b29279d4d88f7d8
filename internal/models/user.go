package models

// User is the chat account a handshake token resolves to.
type User struct {
	BaseModel

	Name     string `gorm:"size:120;not null" json:"name"`
	Username string `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}
