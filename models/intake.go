package models

import (
	"time"

	"github.com/linesmerrill/vehicle-intake-api/workflow"
)

// Auction sharing scopes
const (
	AuctionLocal = "local"
	AuctionAll   = "all"
)

// AuctionSelection is how widely the owner shares the vehicle, plus terms consent
type AuctionSelection struct {
	Option       string `json:"option" bson:"option"`
	TermsConsent bool   `json:"termsConsent" bson:"termsConsent"`
}

// Image is an uploaded vehicle photo
type Image struct {
	ID         string    `json:"id" bson:"id"`
	URL        string    `json:"url" bson:"url"`
	UploadedAt time.Time `json:"uploadedAt" bson:"uploadedAt"`
}

// Identity is the contact info attached to a submission
type Identity struct {
	FirstName string `json:"first_name" bson:"firstName"`
	LastName  string `json:"last_name" bson:"lastName"`
	Email     string `json:"email" bson:"email"`
	Phone     string `json:"phone" bson:"phone"`
	ZipCode   string `json:"zipcode" bson:"zipCode"`
	City      string `json:"city" bson:"city"`
	State     string `json:"state" bson:"state"`
}

// IdentityFromProfile copies the contact fields of an upstream user
func IdentityFromProfile(p UserProfile) Identity {
	return Identity{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		ZipCode:   p.ZipCode,
		City:      p.City,
		State:     p.State,
	}
}

// IdentityFromRegistration copies the contact fields of a registration form
func IdentityFromRegistration(r RegistrationRequest) Identity {
	return Identity{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		ZipCode:   r.ZipCode,
	}
}

// Intake holds the structure for the intakes collection in mongo. It is the workflow
// namespace of the persisted client state; a logout does not remove it. OwnerID is the
// upstream user id once someone signs in during the intake.
type Intake struct {
	ID        string              `json:"_id" bson:"_id"`
	OwnerID   string              `json:"ownerId,omitempty" bson:"ownerId,omitempty"`
	Workflow  workflow.Workflow   `json:"workflow" bson:"workflow"`
	Vehicle   VehicleRecord       `json:"vehicle" bson:"vehicle"`
	Questions []ConditionQuestion `json:"questions" bson:"questions"`
	Selection AuctionSelection    `json:"selection" bson:"selection"`
	Identity  *Identity           `json:"identity,omitempty" bson:"identity,omitempty"`
	Images    []Image             `json:"images" bson:"images"`
	Offer     *OfferResult        `json:"offer,omitempty" bson:"offer,omitempty"`
	Auction   *AuctionStart       `json:"auction,omitempty" bson:"auction,omitempty"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// IntakeView is an intake plus the values derived from it
type IntakeView struct {
	Intake
	Completion     Completion      `json:"completion"`
	Missing        []string        `json:"missingAnswers"`
	Finished       bool            `json:"finished"`
	Deductions     DeductionResult `json:"deductions"`
	DeductionTotal int             `json:"deductionTotal"`
}
