package models

// User is the profile record kept for display enrichment.
type User struct {
	ID           int    `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	ProfileImage string `db:"profile_image" json:"profile_image"`
}

// UserView is the subset of profile attributes exposed to clients.
type UserView struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// View shapes the user for client responses.
func (u User) View() UserView {
	return UserView{ID: u.ID, Username: u.Username, ProfileImage: u.ProfileImage}
}
