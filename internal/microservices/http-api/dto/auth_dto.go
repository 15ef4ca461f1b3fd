package dto

// Data Transfer Objects for the identity endpoints. The password field carries
// hash material produced by the Identity Provider, never a plaintext password.

// CredentialsRequest: payload for register and login
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse: data returned after successful registration
type RegisterResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// LoginResponse: data returned after successful login
type LoginResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// UsernameCheckResponse: data returned by the username check
type UsernameCheckResponse struct {
	Exists   bool   `json:"exists"`
	Username string `json:"username"`
}
