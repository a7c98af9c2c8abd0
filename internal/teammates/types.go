package teammates

// CreateRequestRequest is the payload for opening a teammate request.
type CreateRequestRequest struct {
	Sport                string `json:"sport"`
	Location             string `json:"location"`
	Date                 string `json:"date"`
	Time                 string `json:"time"`
	Description          string `json:"description"`
	RequiredParticipants int    `json:"required_participants"`
}

// JoinRequest is the payload for asking to join a teammate request.
type JoinRequest struct {
	Message string `json:"message"`
}

// UpdateParticipantStatusRequest carries the creator's approve/reject
// decision for one participant.
type UpdateParticipantStatusRequest struct {
	Status string `json:"status"`
}

// ListRequestsFilter narrows the active-request listing.
type ListRequestsFilter struct {
	Sport string
	Date  string
}
