package models

// Term is one academic term from the SIS.
type Term struct {
	ID        int    `json:"Id"`
	Code      string `json:"Code"`
	StartDate string `json:"StartDate"`
	EndDate   string `json:"EndDate"`
}

// LMSTerm is one enrollment term from the learning platform.
type LMSTerm struct {
	ID        int64  `json:"id"`
	SISTermID string `json:"sis_term_id"`
	Name      string `json:"name"`
}
