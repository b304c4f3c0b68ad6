package domain

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// User is an assignee tickets can reference.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnknownInitials and UnknownColor stand in for tickets whose assignee is not loaded.
const (
	UnknownInitials = "?"
	UnknownColor    = "#ccc"
)

var avatarPalette = [...]string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A", "#98D8C8",
	"#F06292", "#AED581", "#7986CB", "#4DB6AC", "#9575CD",
}

// Initials joins the upper-cased first letter of each whitespace-separated
// token of name.
func Initials(name string) string {
	var b strings.Builder
	for _, token := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(token)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// ColorFromName maps name onto the avatar palette. The hash runs over UTF-16
// code units and reproduces the browser client's arithmetic: the shift wraps
// at 32 bits, the subtraction does not. The same name always gets the same
// colour, here and in any browser rendering the same board.
func ColorFromName(name string) string {
	var hash int64
	for _, unit := range utf16.Encode([]rune(name)) {
		shifted := int32(hash) << 5
		hash = int64(unit) + (int64(shifted) - hash)
	}
	if hash < 0 {
		hash = -hash
	}
	return avatarPalette[hash%int64(len(avatarPalette))]
}

// FindUser returns the user with the given id.
func FindUser(users []User, id string) (User, bool) {
	for _, user := range users {
		if user.ID == id {
			return user, true
		}
	}
	return User{}, false
}
