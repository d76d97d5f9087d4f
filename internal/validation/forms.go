package validation

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
)

const maxSymbolLen = 10

// Availability is the last known uniqueness verdict for a form field, as seen
// by the caller. Only a definite "taken" blocks submission; an unknown verdict
// is left for the backend to enforce.
type Availability struct {
	NameTaken   bool
	SymbolTaken bool
}

// Project validates the create-project form fail-fast: the first failing rule
// in the fixed order below is reported and nothing after it is evaluated.
//
// name, symbol, symbol length, name availability, symbol availability,
// total supply, mint price, royalties, royalties range, contract owner,
// contract owner format, image.
func Project(form domain.ProjectForm, avail Availability) (*domain.ProjectDraft, error) {
	name := strings.TrimSpace(form.ProjectName)
	symbol := strings.TrimSpace(form.ProjectSymbol)
	owner := strings.TrimSpace(form.ContractOwner)

	if name == "" {
		return nil, fail("projectName", "Project name is required")
	}
	if symbol == "" {
		return nil, fail("projectSymbol", "Project symbol is required")
	}
	if utf8.RuneCountInString(symbol) > maxSymbolLen {
		return nil, fail("projectSymbol", "Project symbol must be 10 characters or less")
	}
	if avail.NameTaken {
		return nil, fail("projectName", "Project name is already taken")
	}
	if avail.SymbolTaken {
		return nil, fail("projectSymbol", "Project symbol is already taken")
	}

	supply, err := strconv.ParseInt(strings.TrimSpace(form.TotalSupply), 10, 64)
	if err != nil || supply < 1 {
		return nil, fail("totalSupply", "Total supply must be at least 1")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(form.MintPrice), 64)
	if err != nil || !finite(price) || price < 0 {
		return nil, fail("mintPrice", "Mint price must be 0 or greater")
	}

	royalties, err := strconv.ParseFloat(strings.TrimSpace(form.Royalties), 64)
	if err != nil {
		return nil, fail("royalties", "Royalties are required")
	}
	if !finite(royalties) || royalties < 0 || royalties > 100 {
		return nil, fail("royalties", "Royalties must be between 0 and 100")
	}

	if owner == "" {
		return nil, fail("contractOwner", "Contract owner address is required")
	}
	if !ethAddressPattern.MatchString(owner) {
		return nil, fail("contractOwner", "Please enter a valid Ethereum address")
	}

	if form.Image == nil || len(form.Image.Data) == 0 {
		return nil, fail("image", "Project image is required")
	}

	return &domain.ProjectDraft{
		ProjectName:   name,
		ProjectSymbol: symbol,
		TotalSupply:   supply,
		MintPrice:     price,
		Royalties:     royalties,
		ContractOwner: owner,
		Image:         form.Image,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func Login(form domain.LoginForm) error {
	if msg := Email(form.Email); msg != "" {
		return fail("email", msg)
	}
	if msg := Password(form.Password); msg != "" {
		return fail("password", msg)
	}
	return nil
}

func Register(form domain.RegisterForm) error {
	if msg := Name(form.Name); msg != "" {
		return fail("name", msg)
	}
	if msg := Email(form.Email); msg != "" {
		return fail("email", msg)
	}
	if msg := Mobile(form.Mobile); msg != "" {
		return fail("mobile", msg)
	}
	if msg := Password(form.Password); msg != "" {
		return fail("password", msg)
	}
	return nil
}

func Details(form domain.DetailsForm) error {
	if strings.TrimSpace(form.ProjectID) == "" {
		return fail("projectId", "Project is required")
	}
	if msg := BackgroundColor(form.BackgroundColor); msg != "" {
		return fail("backgroundColor", msg)
	}
	return nil
}

func fail(field, msg string) *domain.ValidationError {
	return &domain.ValidationError{Field: field, Message: msg}
}
