package service

import "errors"

var (
	ErrValidation            = errors.New("validation failed")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrNotVerified           = errors.New("account is not verified")
	ErrAlreadyVerified       = errors.New("account is already verified")
	ErrInvalidActivationCode = errors.New("invalid activation code")
	ErrActivationDelivery    = errors.New("failed to deliver activation email")
	ErrAlreadyEnrolled       = errors.New("user already owns this course")
	ErrLayoutExists          = errors.New("layout of this type already exists")
)
