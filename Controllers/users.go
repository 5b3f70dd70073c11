package Controllers

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"Tempus/Config"
	"Tempus/Models"
	"Tempus/middleware"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserController handles user management endpoints
type UserController struct {
	DB *gorm.DB
}

// NewUserController creates a new UserController
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

type UserUpdateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,min=3"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin manager user"`
}

// FetchUsers lists every user. Passwords never serialize.
func (u *UserController) FetchUsers(ctx *fiber.Ctx) error {
	var users []Models.User
	if result := u.DB.Find(&users); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve users",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    users,
	})
}

// GetUser returns one user. Regular users may only look at themselves.
func (u *UserController) GetUser(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user ID",
		})
	}

	current, _ := middleware.CurrentUser(ctx)
	if current.ID != uint(id) && Models.RoleRank(current.Role) < Models.RoleRank(Models.RoleManager) {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "You do not have permission to view this user",
		})
	}

	var user Models.User
	if result := u.DB.First(&user, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// UpdateUser lets a user edit their own profile; admins edit anyone.
// Only admins may change roles.
func (u *UserController) UpdateUser(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user ID",
		})
	}

	current, _ := middleware.CurrentUser(ctx)
	if current.ID != uint(id) && current.Role != Models.RoleAdmin {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "You do not have permission to update this user",
		})
	}

	var input UserUpdateRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}
	if input.Role != nil && current.Role != Models.RoleAdmin {
		input.Role = nil
	}

	var user Models.User
	if result := u.DB.First(&user, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}

	fields := map[string]interface{}{}
	if input.Username != nil {
		fields["username"] = *input.Username
	}
	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to hash password",
			})
		}
		fields["password"] = string(hashed)
	}
	if input.Email != nil {
		fields["email"] = *input.Email
	}
	if input.FullName != nil {
		fields["full_name"] = *input.FullName
	}
	if input.Role != nil {
		fields["role"] = *input.Role
	}

	if len(fields) > 0 {
		if err := u.DB.Model(&user).Updates(fields).Error; err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
				strings.Contains(err.Error(), "unique constraint") ||
				strings.Contains(err.Error(), "Duplicate entry") {
				return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
					"success": false,
					"message": "Username already exists",
				})
			}
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to update user",
			})
		}
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// DeleteUser removes a user account.
func (u *UserController) DeleteUser(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user ID",
		})
	}

	// Hard delete; a soft-deleted row would keep the username locked
	// in the unique index forever.
	result := u.DB.Unscoped().Delete(&Models.User{}, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete user",
		})
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "User deleted",
	})
}

// UploadAvatar accepts a profile photo, resizes it to 256px wide and
// stores it under the avatar directory served at /Avatars.
func (u *UserController) UploadAvatar(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user ID",
		})
	}

	current, _ := middleware.CurrentUser(ctx)
	if current.ID != uint(id) && current.Role != Models.RoleAdmin {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "You do not have permission to update this user",
		})
	}

	var user Models.User
	if result := u.DB.First(&user, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}

	fileHeader, err := ctx.FormFile("avatar")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No avatar file provided",
		})
	}
	cfg := Config.Get()
	if fileHeader.Size > cfg.AvatarMaxSize {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Avatar file too large",
		})
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Avatar must be a jpg or png image",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to read avatar",
		})
	}
	defer file.Close()

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Avatar is not a valid image",
		})
	}
	resized := imaging.Resize(img, 256, 0, imaging.Lanczos)

	if err := os.MkdirAll(cfg.AvatarDir, 0755); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to store avatar",
		})
	}
	outputPath := filepath.Join(cfg.AvatarDir, fmt.Sprintf("user_%d.jpg", user.ID))
	if err := imaging.Save(resized, outputPath); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to store avatar",
		})
	}

	if err := u.DB.Model(&user).Update("avatar_path", outputPath).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update user",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"avatar_path": outputPath,
		},
	})
}
