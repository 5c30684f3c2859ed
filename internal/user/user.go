package user

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wire format for the birthDay field. An input that does not parse in this
// exact layout is stored as the zero time, which round-trips as "01/01/0001".
const birthDayLayout = "02/01/2006"

// User is the stored representation of a user row.
type User struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	BirthDay   time.Time
	Occupation string
	Sex        string
	Profile    []byte
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Input carries the mutable user fields as they arrive on the wire. The same
// shape is accepted by both the create and update routes.
type Input struct {
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	BirthDay   string  `json:"birthDay"`
	Occupation string  `json:"occupation"`
	Sex        string  `json:"sex"`
	Profile    *string `json:"profile"`
}

// Payload is the wire representation of a user. Timestamps stay internal.
type Payload struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	BirthDay   string    `json:"birthDay"`
	Occupation string    `json:"occupation"`
	Sex        string    `json:"sex"`
	Profile    *string   `json:"profile"`
}

// NewPayload maps a stored user to its wire representation.
func NewPayload(u User) Payload {
	var profile *string
	if u.Profile != nil {
		encoded := base64.StdEncoding.EncodeToString(u.Profile)
		profile = &encoded
	}

	return Payload{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Phone:      u.Phone,
		BirthDay:   formatBirthDay(u.BirthDay),
		Occupation: u.Occupation,
		Sex:        u.Sex,
		Profile:    profile,
	}
}

func (in Input) normalizedEmail() string {
	return strings.TrimSpace(strings.ToLower(in.Email))
}

// apply overwrites every mutable field of u with the normalized input:
// names, occupation and sex are trimmed, email is lower-cased and trimmed,
// phone is kept verbatim. A profile that fails base64 decoding is the only
// way apply can error.
func (in Input) apply(u *User) error {
	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	u.Email = in.normalizedEmail()
	u.Phone = in.Phone
	u.BirthDay = parseBirthDay(in.BirthDay)
	u.Occupation = strings.TrimSpace(in.Occupation)
	u.Sex = strings.TrimSpace(in.Sex)

	if in.Profile != nil {
		raw, err := base64.StdEncoding.DecodeString(*in.Profile)
		if err != nil {
			return err
		}
		u.Profile = raw
	} else {
		u.Profile = nil
	}

	return nil
}

func parseBirthDay(value string) time.Time {
	t, err := time.Parse(birthDayLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatBirthDay(t time.Time) string {
	return t.Format(birthDayLayout)
}
