package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Residency status values accepted on profile update.
var ResidencyStatuses = []string{
	"Citizen",
	"Permanent Resident (PR)",
	"Student Visa",
	"Work Permit",
	"Visitor / Tourist",
	"Other",
}

// Marital status values accepted on profile update.
var MaritalStatuses = []string{
	"Never Married",
	"Annulled/Dissolved",
	"Divorced",
	"Widowed",
	"Married",
}

// Bounds on the free-form custom fields map.
const (
	MaxCustomFields      = 20
	MaxCustomFieldKey    = 40
	MaxCustomFieldValue  = 200
	MaxTags              = 10
	MaxTagLength         = 20
)

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName   string             `bson:"firstName" json:"firstName"`
	LastName    string             `bson:"lastName" json:"lastName"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"`
	DateOfBirth time.Time          `bson:"dateOfBirth" json:"dateOfBirth"`
	Gender      string             `bson:"gender" json:"gender"`
	IsAdmin     bool               `bson:"isAdmin" json:"isAdmin"`

	ProfileCompleted bool              `bson:"profileCompleted" json:"profileCompleted"`
	ProfilePicture   string            `bson:"profilePicture" json:"profilePicture"`
	Ethnicity        string            `bson:"ethnicity" json:"ethnicity"`
	Height           string            `bson:"height" json:"height"`
	BirthPlace       string            `bson:"birthPlace" json:"birthPlace"`
	CurrentLocation  string            `bson:"currentLocation" json:"currentLocation"`
	ResidencyStatus  string            `bson:"residencyStatus" json:"residencyStatus"`
	Profession       string            `bson:"profession" json:"profession"`
	Education        string            `bson:"education" json:"education"`
	MaritalStatus    string            `bson:"maritalStatus" json:"maritalStatus"`
	Languages        []string          `bson:"languages" json:"languages"`
	PhoneNumber      string            `bson:"phoneNumber" json:"phoneNumber,omitempty"`
	CustomFields     map[string]string `bson:"customFields" json:"customFields"`
	Tags             []string          `bson:"tags" json:"tags"`

	MatchCount           int `bson:"matchCount" json:"matchCount"`
	PendingMatchRequests int `bson:"pendingMatchRequests" json:"pendingMatchRequests"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// requiredProfileFields lists every field that must be non-blank before a
// profile counts as completed. Languages are checked separately.
func (u *User) requiredProfileFields() []string {
	return []string{
		u.Ethnicity,
		u.Height,
		u.BirthPlace,
		u.CurrentLocation,
		u.ResidencyStatus,
		u.Profession,
		u.Education,
		u.MaritalStatus,
		u.PhoneNumber,
	}
}

// ComputeProfileCompleted derives the completion flag from the current
// field values. Callers persist the result; the stored flag is never
// trusted on its own.
func (u *User) ComputeProfileCompleted() bool {
	for _, f := range u.requiredProfileFields() {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	for _, lang := range u.Languages {
		if strings.TrimSpace(lang) != "" {
			return true
		}
	}
	return false
}

// OppositeGender returns the browse target for this user. Gender is stored
// lowercase but compared case-insensitively to tolerate legacy documents.
func (u *User) OppositeGender() string {
	if strings.EqualFold(u.Gender, "male") {
		return "female"
	}
	return "male"
}

// FullName joins first and last name for email templates.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// PublicProfile is the shape of a user document when embedded in a payload
// returned to another user. Password and email are always dropped; the
// phone number is included only when the viewer holds an accepted
// connection with the subject.
type PublicProfile struct {
	ID               primitive.ObjectID `json:"id"`
	FirstName        string             `json:"firstName"`
	LastName         string             `json:"lastName"`
	DateOfBirth      time.Time          `json:"dateOfBirth"`
	Gender           string             `json:"gender"`
	ProfileCompleted bool               `json:"profileCompleted"`
	ProfilePicture   string             `json:"profilePicture"`
	Ethnicity        string             `json:"ethnicity"`
	Height           string             `json:"height"`
	BirthPlace       string             `json:"birthPlace"`
	CurrentLocation  string             `json:"currentLocation"`
	ResidencyStatus  string             `json:"residencyStatus"`
	Profession       string             `json:"profession"`
	Education        string             `json:"education"`
	MaritalStatus    string             `json:"maritalStatus"`
	Languages        []string           `json:"languages"`
	PhoneNumber      string             `json:"phoneNumber,omitempty"`
	CustomFields     map[string]string  `json:"customFields"`
	Tags             []string           `json:"tags"`
	MatchCount       int                `json:"matchCount"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// Public strips credentials and contact details from a user document.
// includePhone must only be true when an accepted connection exists
// between the viewer and this user.
func (u *User) Public(includePhone bool) PublicProfile {
	p := PublicProfile{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		DateOfBirth:      u.DateOfBirth,
		Gender:           u.Gender,
		ProfileCompleted: u.ProfileCompleted,
		ProfilePicture:   u.ProfilePicture,
		Ethnicity:        u.Ethnicity,
		Height:           u.Height,
		BirthPlace:       u.BirthPlace,
		CurrentLocation:  u.CurrentLocation,
		ResidencyStatus:  u.ResidencyStatus,
		Profession:       u.Profession,
		Education:        u.Education,
		MaritalStatus:    u.MaritalStatus,
		Languages:        u.Languages,
		CustomFields:     u.CustomFields,
		Tags:             u.Tags,
		MatchCount:       u.MatchCount,
		CreatedAt:        u.CreatedAt,
	}
	if includePhone {
		p.PhoneNumber = u.PhoneNumber
	}
	return p
}
