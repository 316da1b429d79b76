package models

// PlayerSummary is the fixed player shape exchanged between the pick pool
// and the draft engine. The pool's internal representation never crosses
// this boundary.
type PlayerSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Position  string `json:"position"`
	Team      string `json:"team"`
	SubLeague string `json:"sub_league"`
}
