package types

// HeadshotAnalysis is the AI feedback on a profile photo. It is never
// written to history.
type HeadshotAnalysis struct {
	Score           Score    `json:"score"`
	Professionalism string   `json:"professionalism"`
	Lighting        string   `json:"lighting"`
	Background      string   `json:"background"`
	Attire          string   `json:"attire"`
	Expression      string   `json:"expression"`
	Tips            []string `json:"tips"`
}
