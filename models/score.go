package models

import "time"

// Score is the server-side record of an accepted packet. The uuid is the
// upsert key: re-submission of the same packet overwrites the row.
type Score struct {
	UUID         string         `json:"uuid"`
	GameID       string         `json:"game_id"`
	EntityID     string         `json:"entity_id"`
	ScorePayload map[string]any `json:"score_payload"`
	Timestamp    int64          `json:"timestamp"`
	JudgeName    string         `json:"judge_name,omitempty"`
	JudgeEmail   string         `json:"judge_email,omitempty"`
	JudgeUnit    string         `json:"judge_unit,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
