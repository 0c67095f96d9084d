package catalog

import "gopkg.in/guregu/null.v3"

type User struct {
	ID             string      `json:"_id"`
	Name           string      `json:"name"`
	Username       string      `json:"username"`
	ProfilePicture null.String `json:"profilePicture"`
}

type UserRes struct {
	User *User `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRes struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type UpdateProfileRequest struct {
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type MessageRes struct {
	Message string `json:"message"`
}
