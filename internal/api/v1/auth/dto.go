package auth

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	// True when the driver's license carries a governmental classification.
	GovernmentExempt bool `json:"government_exempt"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AccountResponse struct {
	ID               uint   `json:"id"`
	Username         string `json:"username"`
	Role             string `json:"role"`
	Balance          string `json:"balance"`
	GovernmentExempt bool   `json:"government_exempt"`
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}
