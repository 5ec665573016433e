package handlers

import (
	"errors"

	"atlasbank/internal/models"
	"atlasbank/internal/services/account"
	"atlasbank/internal/services/auth"
	"atlasbank/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService    auth.Service
	accountService account.Service
}

func NewAuthHandler(authService auth.Service, accountService account.Service) *AuthHandler {
	return &AuthHandler{authService: authService, accountService: accountService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		FullName string `json:"full_name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		BankID   *uint  `json:"bank_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	user, err := h.authService.Register(c.Context(), &models.CreateUserInput{
		FullName: input.FullName,
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			return utils.Conflict(c, "username is already taken")
		case errors.Is(err, auth.ErrEmailInUse):
			return utils.Conflict(c, "email is already in use")
		case errors.Is(err, auth.ErrWeakPassword):
			return utils.BadRequest(c, "password must be at least 8 characters and contain a special character")
		default:
			return utils.BadRequest(c, err.Error())
		}
	}

	// Opening an account at registration is optional; the user can add
	// banks later.
	if input.BankID != nil {
		if _, err := h.accountService.OpenAccount(c.Context(), user.Username, *input.BankID); err != nil {
			return respondDomainError(c, err)
		}
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{"message": "user registered successfully"})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	user, access, refresh, err := h.authService.Login(c.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserInactive) {
			return utils.Forbidden(c, "account is inactive")
		}
		return utils.Unauthorized(c, "invalid credentials")
	}

	return utils.Success(c, fiber.Map{
		"access_token":  access,
		"refresh_token": refresh,
		"user": fiber.Map{
			"id":        user.ID,
			"username":  user.Username,
			"full_name": user.FullName,
			"email":     user.Email,
			"pin_set":   user.Pin != nil,
		},
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	access, refresh, err := h.authService.RefreshTokens(c.Context(), input.RefreshToken)
	if err != nil {
		return utils.Unauthorized(c, "invalid refresh token")
	}
	return utils.Success(c, fiber.Map{"access_token": access, "refresh_token": refresh})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	if err := h.authService.Logout(c.Context(), claims.UserID); err != nil {
		return utils.InternalError(c, "failed to log out")
	}
	return utils.Success(c, fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	err = h.authService.ChangePassword(c.Context(), claims.Username, input.CurrentPassword, input.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return utils.BadRequest(c, "password must be at least 8 characters and contain a special character")
		}
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "password changed"})
}

func (h *AuthHandler) SetPin(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		CurrentPassword string `json:"current_password"`
		Pin             string `json:"pin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	err = h.authService.SetPin(c.Context(), claims.Username, input.CurrentPassword, input.Pin)
	if err != nil {
		if errors.Is(err, auth.ErrBadPinFormat) {
			return utils.BadRequest(c, "pin must be exactly 4 digits")
		}
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "pin saved"})
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input models.ProfileUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	user, err := h.authService.UpdateProfile(c.Context(), claims.Username, &input)
	if err != nil {
		if errors.Is(err, auth.ErrEmailInUse) {
			return utils.Conflict(c, "email is already in use")
		}
		return respondDomainError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"full_name":    user.FullName,
		"email":        user.Email,
		"phone_number": user.PhoneNumber,
		"address":      user.Address,
		"nominee_name": user.NomineeName,
	})
}

func (h *AuthHandler) Deactivate(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	if err := h.authService.Deactivate(c.Context(), claims.Username, input.Password); err != nil {
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "account deactivated"})
}
