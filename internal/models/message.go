package models

// Message is the durable copy of a message fanned out to a chat.
type Message struct {
	BaseModel

	ChatID     string `gorm:"size:64;not null;index" json:"chat_id"`
	SenderID   string `gorm:"size:64;not null;index" json:"sender_id"`
	SenderName string `gorm:"size:120" json:"sender_name"`
	Content    string `gorm:"type:text;not null" json:"content"`
}
