package models

// Packet is a single judged scoring submission destined for the server.
// Two packets with the same UUID are the same logical submission: the later
// one replaces the earlier one wherever it is held (device queue, server
// store). A UUID is never reused for a logically distinct submission.
type Packet struct {
	UUID         string         `json:"uuid"`
	GameID       string         `json:"game_id"`
	EntityID     string         `json:"entity_id"`
	ScorePayload map[string]any `json:"score_payload"`
	// Timestamp is milliseconds since epoch, set at creation. Display and
	// ordering only; conflict resolution is by UUID, not time.
	Timestamp  int64  `json:"timestamp"`
	JudgeName  string `json:"judge_name"`
	JudgeEmail string `json:"judge_email"`
	JudgeUnit  string `json:"judge_unit"`
}

// Judge is the denormalized submitter identity carried on every packet.
// The core never validates it, it is audit data for the scorekeepers.
type Judge struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Unit  string `json:"unit"`
}
