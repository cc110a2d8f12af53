// path: models/responses.go
package models

import "encoding/json"

// Envelope wraps every API response. Error carries the error kind name so
// clients can branch on it; stack traces are never included.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RequestListResp is the body of GET /api/requesters.
type RequestListResp struct {
	Success    bool          `json:"success"`
	Data       []RequestView `json:"data"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

// PatchRequest is the body of PATCH /api/requesters/:id. AssignedUser is
// raw so an explicit null can be told apart from an absent field.
type PatchRequest struct {
	Status       *Status `json:"status"`
	AssignedUser RawOpt  `json:"assignedUser"`
	Comments     *string `json:"comments"`
	MapLink      *string `json:"mapLink"`
	Address      *string `json:"address"`
	PersonCount  *Count  `json:"personCount"`
}

// RawOpt records whether a nullable string field was present in JSON.
type RawOpt struct {
	Set   bool
	Value *string
}

func (o *RawOpt) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// VerifyResp is the body of PATCH /api/volunteers/:id/verify.
type VerifyResp struct {
	Success   bool      `json:"success"`
	Volunteer Volunteer `json:"volunteer"`
}
