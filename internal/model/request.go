package model

import "time"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpirationAt time.Time `json:"expirationAt"`
	User         UserInfo  `json:"user"`
}

type RefreshRequest struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type RefreshResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpirationAt time.Time `json:"expirationAt"`
}

type SignUpRequest struct {
	FirstName string `json:"first_name" validate:"required,max=256"`
	LastName  string `json:"last_name" validate:"required,max=256"`
	Email     string `json:"email" validate:"required,email,max=256"`
	Username  string `json:"username" validate:"required,max=128"`
	Password  string `json:"password" validate:"required,min=6,max=64"`
}

type ForgotPasswordRequest struct {
	Username string `json:"username" validate:"required"`
}

type ResetPasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required,min=6,max=64"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=64"`
}

type CreateUserRequest struct {
	FirstName string   `json:"first_name" validate:"required,max=256"`
	LastName  string   `json:"last_name" validate:"required,max=256"`
	Email     string   `json:"email" validate:"required,email,max=256"`
	Username  string   `json:"username" validate:"required,max=128"`
	Password  string   `json:"password" validate:"required,min=6,max=64"`
	Roles     []string `json:"roles" validate:"required,min=1,dive,len=24,hexadecimal"`
}

type EditUserRequest struct {
	FirstName string   `json:"first_name" validate:"required,max=256"`
	LastName  string   `json:"last_name" validate:"required,max=256"`
	Email     string   `json:"email" validate:"required,email,max=256"`
	Username  string   `json:"username" validate:"required,max=128"`
	Roles     []string `json:"roles" validate:"required,min=1,dive,len=24,hexadecimal"`
}

type SaveRoleRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type SaveEndpointRequest struct {
	Route string   `json:"route" validate:"required"`
	Verb  string   `json:"verb" validate:"required"`
	Roles []string `json:"roles" validate:"required,min=1,dive,required"`
}

type UserFilter struct {
	Name     string
	Username string
	Email    string
	Page     int
	Limit    int
}

type RoleFilter struct {
	Name  string
	Page  int
	Limit int
}

type EndpointFilter struct {
	Route string
	Verb  string
	Page  int
	Limit int
}
