package httpapi

import (
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *HTTPServer) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *HTTPServer) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	msg, err := s.identity.Register(c.UserContext(), services.RegisterInput{
		GivenName:            req.GivenName,
		MaidenName:           req.MaidenName,
		EmailAddress:         req.EmailAddress,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(messageResponse{Message: msg})
}

func (s *HTTPServer) SignIn(c *fiber.Ctx) error {
	var req signInRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	token, err := s.identity.SignIn(c.UserContext(), req.EmailAddress, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(tokenResponse{Token: token})
}

func (s *HTTPServer) Activate(c *fiber.Ctx) error {
	var req activateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	msg, err := s.identity.Activate(c.UserContext(), req.EmailAddress, req.Token)
	if err != nil {
		return err
	}

	return c.JSON(messageResponse{Message: msg})
}

func (s *HTTPServer) ForgetPassword(c *fiber.Ctx) error {
	var req forgetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	msg, err := s.identity.ForgetPassword(c.UserContext(), req.EmailAddress)
	if err != nil {
		return err
	}

	return c.JSON(messageResponse{Message: msg})
}

func (s *HTTPServer) Recover(c *fiber.Ctx) error {
	var req recoverRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	msg, err := s.identity.Recover(c.UserContext(), services.RecoverInput{
		EmailAddress:         req.EmailAddress,
		TokenID:              req.Token,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		return err
	}

	return c.JSON(messageResponse{Message: msg})
}

// Me returns the public user carried by the bearer token.
func (s *HTTPServer) Me(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(claims.User)
}
