package models

import "time"

// ChatRole identifies who authored a chat message.
type ChatRole string

// ChatRole enum values.
const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// IsValid checks if the role is one of the known roles.
func (r ChatRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// ChatMessage is one turn of a Chef AI conversation.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ViewedRecipe records that a user opened a recipe.
type ViewedRecipe struct {
	RecipeID int       `json:"recipe_id"`
	ViewedAt time.Time `json:"viewed_at"`
}
