package handler

// LogoutRequest optionally names the refresh token to revoke with the session
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// passwordResetAccepted is returned whether or not the email is known
const passwordResetAccepted = "If the email is registered, a reset link has been sent"
