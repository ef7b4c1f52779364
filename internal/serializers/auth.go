package serializers

// Login accepts a username or a phone number as identifier.
type Login struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Login) Validate() error {
	return Validate(s)
}

// TokenRefresh carries a refresh token.
type TokenRefresh struct {
	Refresh string `json:"refresh" validate:"required"`
}

func (s *TokenRefresh) Validate() error {
	return Validate(s)
}

// TokenVerify carries a token of either type.
type TokenVerify struct {
	Token string `json:"token" validate:"required"`
}

func (s *TokenVerify) Validate() error {
	return Validate(s)
}
