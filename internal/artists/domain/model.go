package domain

import "time"

// Artist is the identity returned by login and kept in the session store.
type Artist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
}

// ProjectStatus is driven by the backend (admin review); this client only
// observes it.
type ProjectStatus string

const (
	StatusPending  ProjectStatus = "pending"
	StatusApproved ProjectStatus = "approved"
	StatusRejected ProjectStatus = "rejected"
)

// Project is a configured NFT mint campaign owned by an artist.
type Project struct {
	ID              string        `json:"id"`
	ArtistID        string        `json:"artistId,omitempty"`
	ArtistName      string        `json:"artistName,omitempty"`
	ProjectName     string        `json:"projectName"`
	ProjectSymbol   string        `json:"projectSymbol"`
	TotalSupply     int64         `json:"totalSupply"`
	MintPrice       float64       `json:"mintPrice"`
	Royalties       *float64      `json:"royalties,omitempty"`
	Status          ProjectStatus `json:"status"`
	ImageURL        string        `json:"imageUrl,omitempty"`
	ContractOwner   string        `json:"contractOwner,omitempty"`
	ContractAddress string        `json:"contractAddress,omitempty"`
	MintingEnabled  bool          `json:"mintingEnabled"`
	Description     string        `json:"description,omitempty"`
	CoverImageURL   string        `json:"coverImageUrl,omitempty"`
	BackgroundColor string        `json:"backgroundColor,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
}

// Mintable reports whether the mint controls may be offered for p.
func (p *Project) Mintable() bool {
	return p != nil &&
		p.Status == StatusApproved &&
		p.ContractAddress != "" &&
		p.MintingEnabled
}

// Upload is an image picked in a form but not yet sent anywhere.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProjectForm stages the create-project form. Numeric fields hold the raw
// text the artist typed; they are parsed during validation.
type ProjectForm struct {
	ProjectName   string
	ProjectSymbol string
	TotalSupply   string
	MintPrice     string
	Royalties     string
	ContractOwner string
	Image         *Upload
}

// ProjectDraft is a ProjectForm that passed validation, with typed values.
type ProjectDraft struct {
	ProjectName   string
	ProjectSymbol string
	TotalSupply   int64
	MintPrice     float64
	Royalties     float64
	ContractOwner string
	Image         *Upload
}

// DetailsForm stages the project-details editor.
type DetailsForm struct {
	ProjectID       string
	ProjectName     string
	Description     string
	BackgroundColor string
	CoverImage      *Upload
}

type LoginForm struct {
	Email    string
	Password string
}

type RegisterForm struct {
	Name     string
	Email    string
	Mobile   string
	Password string
}
