package repository

import "github.com/windoze95/dapur-api/internal/models"

// UserRepo is the interface for user repository operations.
type UserRepo interface {
	CreateUser(user *models.User) (*models.User, error)
	GetUserByID(userID uint) (*models.User, error)
	GetUserAuthByUsername(username string) (*models.User, error)
	UsernameExists(username string) (bool, error)
}

// ConversationRepo is the interface for the per-user Chef AI conversation log.
type ConversationRepo interface {
	Append(username string, role models.ChatRole, text string) bool
	History(username string) []models.ChatMessage
	Clear(username string) bool
}

// BookmarkRepo is the interface for per-user recipe bookmarks.
type BookmarkRepo interface {
	Add(username string, recipeID int) (bool, error)
	Remove(username string, recipeID int) (bool, error)
	List(username string) ([]int, error)
	Contains(username string, recipeID int) (bool, error)
}

// ViewHistoryRepo is the interface for per-user recently viewed recipes.
type ViewHistoryRepo interface {
	Record(username string, recipeID int) error
	Entries(username string) ([]models.ViewedRecipe, error)
	List(username string) ([]int, error)
	Clear(username string) (bool, error)
}

var (
	_ UserRepo         = (*UserRepository)(nil)
	_ ConversationRepo = (*ConversationRepository)(nil)
	_ BookmarkRepo     = (*BookmarkRepository)(nil)
	_ ViewHistoryRepo  = (*ViewHistoryRepository)(nil)
)
