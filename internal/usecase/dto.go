package usecase

type IntakeLeadInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Agree   *bool  `json:"agree"`
	Channel string `json:"channel,omitempty"`
}

type IntakeLeadOutput struct {
	ID string `json:"id"`
}

// PublicLeadItem is the only shape that leaves the public list endpoint.
type PublicLeadItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type AdminListInput struct {
	Limit     int
	Status    string
	Query     string
	Start     string
	End       string
	PageToken string
}

type AdminLeadItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Channel   string `json:"channel"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt *int64 `json:"updatedAt,omitempty"`
}

type AdminListOutput struct {
	Items         []AdminLeadItem `json:"items"`
	NextPageToken string          `json:"nextPageToken"`
	Degraded      bool            `json:"degraded,omitempty"`
}
