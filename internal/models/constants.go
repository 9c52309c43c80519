package models

const (
	RoleUser = "user"
	RoleBot  = "bot"

	// transcript timestamps are rendered hour:minute only
	TurnTimeFormat = "15:04"
)
