package types

type AppState struct {
	ViewerUserID    int64 `json:"viewer_user_id"`
	ActivePartnerID int64 `json:"active_partner_id"`
}
