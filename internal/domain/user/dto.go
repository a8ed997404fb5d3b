// internal/domain/user/dto.go
package user

// SignUpRequest for account creation
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// SignInRequest for password sign-in
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleSignInRequest carries the Google-issued ID token.
type GoogleSignInRequest struct {
	Token string `json:"token" binding:"required"`
}

// TokenPair is the result of every successful sign-in path. The refresh
// token travels only in the cookie; the access token goes in the body.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResponse is the success body for sign-up/sign-in/refresh.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        Info   `json:"user"`
}
