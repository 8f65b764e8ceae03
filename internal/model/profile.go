package model

import "time"

// Profile describes the business a report is generated for. The pipeline
// only reads profiles; they are created and edited through the API/CLI.
type Profile struct {
	ID                 string    `json:"id"`
	CompanyName        string    `json:"company_name"`
	CompanyDescription string    `json:"company_description"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
