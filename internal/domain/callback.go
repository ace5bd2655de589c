package domain

// CallbackPayload is the body POSTed to the caller's callback URL once a job is terminal.
type CallbackPayload struct {
	RowID           string    `json:"row_id"`
	JobID           string    `json:"job_id"`
	Status          JobStatus `json:"status"`
	ChatID          *string   `json:"chat_id"`
	SiteURL         *string   `json:"site_url"`
	HeroImageURL    *string   `json:"hero_image_url"`
	ContactImageURL *string   `json:"contact_image_url"`
	Error           *string   `json:"error"`
}

// NewCallbackPayload flattens a job record into the callback body.
func NewCallbackPayload(j *Job) CallbackPayload {
	p := CallbackPayload{
		RowID:   j.RowID,
		JobID:   j.ID,
		Status:  j.Status,
		ChatID:  cloneString(j.ChatID),
		SiteURL: cloneString(j.SiteURL),
		Error:   cloneString(j.Error),
	}
	if j.ImageURLs != nil {
		p.HeroImageURL = optional(j.ImageURLs.Hero)
		p.ContactImageURL = optional(j.ImageURLs.Contact)
	}
	return p
}
