package webapi

type PostTokenRequest struct {
	Token string `json:"token" validate:"omitempty,max=256"`
}

type PostTokenResponse struct {
	Status   string `json:"status"`
	NewToken string `json:"new_token"`
}
