package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/thoughtslabs/thoughts-backend/auth"
	"github.com/thoughtslabs/thoughts-backend/dto"
	"github.com/thoughtslabs/thoughts-backend/httperr"
	"github.com/thoughtslabs/thoughts-backend/middleware"
	"github.com/thoughtslabs/thoughts-backend/models"
	"github.com/thoughtslabs/thoughts-backend/storage"
	"github.com/thoughtslabs/thoughts-backend/store"
	"github.com/thoughtslabs/thoughts-backend/utils"
)

// UserController serves the user and session endpoints. All collaborators
// are injected at startup.
type UserController struct {
	users     store.UserStore
	tokens    *auth.TokenService
	uploader  storage.Uploader
	validator *utils.ImageValidator
}

func NewUserController(
	users store.UserStore,
	tokens *auth.TokenService,
	uploader storage.Uploader,
	validator *utils.ImageValidator,
) *UserController {
	return &UserController{
		users:     users,
		tokens:    tokens,
		uploader:  uploader,
		validator: validator,
	}
}

// POST /api/users/register
func (uc *UserController) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterUserDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			httperr.Abort(c, httperr.Validation("Please fill all fields to Register: %s", err.Error()))
			return
		}

		ctx := c.Request.Context()
		email := strings.ToLower(strings.TrimSpace(body.Email))
		username := strings.TrimSpace(body.Username)

		emailTaken, err := uc.exists(c, func() (*models.User, error) {
			return uc.users.FindByEmail(ctx, email)
		})
		if err != nil {
			return
		}
		usernameTaken, err := uc.exists(c, func() (*models.User, error) {
			return uc.users.FindByUsername(ctx, username)
		})
		if err != nil {
			return
		}

		switch {
		case emailTaken && usernameTaken:
			httperr.Abort(c, httperr.Conflict("User with the Email address %s and Username %s already exists", email, username))
			return
		case emailTaken:
			httperr.Abort(c, httperr.Conflict("User with the Email address %s already exists", email))
			return
		case usernameTaken:
			httperr.Abort(c, httperr.Conflict("User with the Username %s already exists", username))
			return
		}

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			httperr.Abort(c, httperr.Internal(err))
			return
		}

		role := models.Role(body.Role)
		if role == "" {
			role = models.RoleReader
		}
		if !models.ValidRole(role) {
			httperr.Abort(c, httperr.Validation("unknown role %q", body.Role))
			return
		}

		bio := body.Bio
		if bio == "" {
			bio = models.DefaultBio
		}

		now := time.Now().UTC()
		user := models.User{
			ID:           bson.NewObjectID(),
			Name:         body.Name,
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			Interests:    body.Interests,
			Bio:          bio,
			Img:          models.DefaultImg,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := uc.users.Create(ctx, &user); err != nil {
			// Unique-index backstop for a racing duplicate registration.
			if errors.Is(err, store.ErrConflict) {
				httperr.Abort(c, httperr.Conflict("User with the Email address %s or Username %s already exists", email, username))
				return
			}
			httperr.Abort(c, httperr.Internal(err))
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":      user.ID,
			"email":   user.Email,
			"success": true,
			"message": "User Registered",
		})
	}
}

// exists resolves a lookup into taken/free, aborting on storage failure.
func (uc *UserController) exists(c *gin.Context, find func() (*models.User, error)) (bool, error) {
	_, err := find()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	httperr.Abort(c, httperr.Internal(err))
	return false, err
}

// POST /api/users/login
func (uc *UserController) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			httperr.Abort(c, httperr.Validation("All fields are mandatory: %s", err.Error()))
			return
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))
		user, err := uc.users.FindByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				httperr.Abort(c, httperr.Unauthorized("email or password is not valid"))
				return
			}
			httperr.Abort(c, httperr.Internal(err))
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.Password); err != nil {
			httperr.Abort(c, httperr.Unauthorized("email or password is not valid"))
			return
		}

		accessToken, err := uc.tokens.Issue(user)
		if err != nil {
			httperr.Abort(c, httperr.Internal(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"accessToken": accessToken,
		})
	}
}

// GET /api/users/current
func (uc *UserController) Current() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)

		user, err := uc.users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
				httperr.Abort(c, httperr.NotFound("User not found"))
				return
			}
			httperr.Abort(c, httperr.Internal(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user": gin.H{
				"name":      user.Name,
				"username":  user.Username,
				"role":      user.Role,
				"interests": user.Interests,
			},
		})
	}
}

// POST /api/users/logout
func (uc *UserController) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetString(middleware.CtxToken)

		if err := uc.tokens.Revoke(c.Request.Context(), token); err != nil {
			httperr.Abort(c, httperr.Internal(err))
			return
		}

		log.Printf("user %s logged out", c.GetString(middleware.CtxUsername))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "User logged out, token invalidated",
		})
	}
}

// GET /api/users/:userId
func (uc *UserController) GetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := uc.findUserParam(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    user.Public(),
		})
	}
}

// PUT /api/users/:userId/update-user-profile
func (uc *UserController) UpdateProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateProfileDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			httperr.Abort(c, httperr.Validation("%s", err.Error()))
			return
		}

		patch := store.ProfilePatch{
			Name:      body.Name,
			Interests: body.Interests,
			Bio:       body.Bio,
		}

		updated, err := uc.users.UpdateByID(c.Request.Context(), c.Param("userId"), patch)
		if err != nil {
			uc.abortUserLookup(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    updated,
		})
	}
}

// PUT /api/users/:userId/profile-img-upload
func (uc *UserController) UploadProfileImg() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := uc.findUserParam(c)
		if !ok {
			return
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			httperr.Abort(c, httperr.Validation("image file is missing"))
			return
		}

		data, err := uc.validator.ValidateAndRead(fileHeader)
		if err != nil {
			httperr.Abort(c, httperr.Validation("%s", err.Error()))
			return
		}

		resized, err := utils.ResizeProfileImage(data)
		if err != nil {
			httperr.Abort(c, httperr.Validation("Unsupported file format"))
			return
		}

		ctx := c.Request.Context()
		url, err := uc.uploader.UploadProfileImage(ctx, user.Username, resized)
		if err != nil {
			httperr.Abort(c, httperr.Internal(err))
			return
		}

		updated, err := uc.users.UpdateByID(ctx, user.ID.Hex(), store.ProfilePatch{Img: &url})
		if err != nil {
			uc.abortUserLookup(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    updated,
		})
	}
}

// findUserParam loads the :userId route param, mapping a bad hex id to a
// validation failure and a missing user to this service's 401 convention.
func (uc *UserController) findUserParam(c *gin.Context) (*models.User, bool) {
	user, err := uc.users.FindByID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		uc.abortUserLookup(c, err)
		return nil, false
	}
	return user, true
}

func (uc *UserController) abortUserLookup(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		httperr.Abort(c, httperr.Validation("Invalid user id format"))
	case errors.Is(err, store.ErrNotFound):
		httperr.Abort(c, httperr.NotFound("User not found"))
	default:
		httperr.Abort(c, httperr.Internal(err))
	}
}
