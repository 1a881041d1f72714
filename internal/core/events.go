package core

import "time"

const (
	KindGoal  SettingsKind = "goal"
	KindAlert SettingsKind = "alert"

	OpCreate SettingsOp = "create"
	OpUpdate SettingsOp = "update"
	OpToggle SettingsOp = "toggle"
)

type (
	SettingsKind string
	SettingsOp   string

	// SettingsChange describes one persisted mutation of goals or alerts.
	SettingsChange struct {
		Kind SettingsKind `json:"kind"`
		Op   SettingsOp   `json:"op"`
		ID   string       `json:"id"`
		At   time.Time    `json:"at"`
	}
)
