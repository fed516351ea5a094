package dto

type RegisterUserDTO struct {
	Name      string   `json:"name" binding:"required"`
	Username  string   `json:"username" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required"`
	Role      string   `json:"role"`
	Interests []string `json:"interests" binding:"required,min=1,max=3"`
	Bio       string   `json:"bio"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileDTO carries the optional profile mutations. Interests, when
// present, must still hold between one and three entries.
type UpdateProfileDTO struct {
	Name      *string  `json:"name"`
	Interests []string `json:"interests" binding:"omitempty,min=1,max=3"`
	Bio       *string  `json:"bio"`
}
