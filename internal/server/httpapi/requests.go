package httpapi

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// request is a decoded body that can clean itself up and check required fields.
type request interface {
	Normalize()
	Validate() error
}

// bind decodes the JSON body into req, trims it and validates it. Every
// failure is reported as invalid input.
func bind(c *fiber.Ctx, req request) error {
	if err := c.BodyParser(req); err != nil {
		return fmt.Errorf("%w: malformed request body", common.ErrorInvalidInput)
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInvalidInput, err)
	}
	return nil
}

type registerRequest struct {
	GivenName            string `json:"given_name"`
	MaidenName           string `json:"maiden_name"`
	EmailAddress         string `json:"email_address"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (r *registerRequest) Normalize() {
	r.GivenName = strings.TrimSpace(r.GivenName)
	r.MaidenName = strings.TrimSpace(r.MaidenName)
	r.EmailAddress = strings.TrimSpace(r.EmailAddress)
}

func (r *registerRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.GivenName, validation.Required),
		validation.Field(&r.MaidenName, validation.Required),
		validation.Field(&r.EmailAddress, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.PasswordConfirmation, validation.Required),
	)
}

type signInRequest struct {
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

func (r *signInRequest) Normalize() {
	r.EmailAddress = strings.TrimSpace(r.EmailAddress)
}

func (r *signInRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EmailAddress, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type activateRequest struct {
	EmailAddress string `json:"email_address"`
	Token        string `json:"token"`
}

func (r *activateRequest) Normalize() {
	r.EmailAddress = strings.TrimSpace(r.EmailAddress)
	r.Token = strings.TrimSpace(r.Token)
}

func (r *activateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EmailAddress, validation.Required),
		validation.Field(&r.Token, validation.Required),
	)
}

type forgetPasswordRequest struct {
	EmailAddress string `json:"email_address"`
}

func (r *forgetPasswordRequest) Normalize() {
	r.EmailAddress = strings.TrimSpace(r.EmailAddress)
}

func (r *forgetPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EmailAddress, validation.Required),
	)
}

type recoverRequest struct {
	EmailAddress         string `json:"email_address"`
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (r *recoverRequest) Normalize() {
	r.EmailAddress = strings.TrimSpace(r.EmailAddress)
	r.Token = strings.TrimSpace(r.Token)
}

func (r *recoverRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EmailAddress, validation.Required),
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.PasswordConfirmation, validation.Required),
	)
}
