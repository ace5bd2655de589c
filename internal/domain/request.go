package domain

// Business defaults used when the caller omits site details.
const (
	DefaultSiteName     = "Local Business"
	DefaultBusinessType = "small business"
	DefaultLocation     = "your area"
)

// JobRequest is the caller input that drives one job.
type JobRequest struct {
	RowID        string `json:"row_id" binding:"required"`
	Prompt       string `json:"prompt" binding:"required"`
	CallbackURL  string `json:"callback_url" binding:"required,url"`
	ChatID       string `json:"chat_id"`
	SiteName     string `json:"site_name"`
	BusinessType string `json:"business_type"`
	Location     string `json:"location"`
}

// Business describes the business the generated images are about.
type Business struct {
	Name     string
	Type     string
	Location string
}

// Business returns the site details with defaults applied.
func (r JobRequest) Business() Business {
	b := Business{Name: r.SiteName, Type: r.BusinessType, Location: r.Location}
	if b.Name == "" {
		b.Name = DefaultSiteName
	}
	if b.Type == "" {
		b.Type = DefaultBusinessType
	}
	if b.Location == "" {
		b.Location = DefaultLocation
	}
	return b
}
