package models

import "time"

// Profile is the read-only public projection of a User record consumed by
// display code. It is not authoritative: absent fields fall back to defaults.
type Profile struct {
	Username   string     `json:"username"`
	Nickname   string     `json:"nickname"`
	Rank       int        `json:"rank"`
	ProfilePic string     `json:"profilePicture"`
	Banner     string     `json:"banner,omitempty"`
	AboutMe    string     `json:"aboutMe,omitempty"`
	Status     string     `json:"status"` // e.g. "online", "away", "offline"
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
}

// ProfileOf projects a User into its public profile, applying the display
// defaults (nickname falls back to the username, status to "online").
func ProfileOf(user *User) Profile {
	profile := Profile{
		Username:   user.Username,
		Nickname:   user.Nickname,
		Rank:       user.Rank,
		ProfilePic: user.ProfilePic,
		Banner:     user.Banner,
		AboutMe:    user.AboutMe,
		Status:     user.Status,
		LastLogin:  user.LastLogin,
	}
	if profile.Nickname == "" {
		profile.Nickname = user.Username
	}
	if profile.Status == "" {
		profile.Status = "online"
	}
	return profile
}
