package user

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func newTestService() (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository(nil)
	return NewService(repo, nil), repo
}

func strPtr(s string) *string { return &s }

func sampleInput() Input {
	return Input{
		FirstName:  "  Jane ",
		LastName:   " Doe  ",
		Email:      " Jane.Doe@Example.COM ",
		Phone:      " 555-0100 ",
		BirthDay:   "15/06/1990",
		Occupation: " Engineer ",
		Sex:        " F ",
		Profile:    strPtr("aGVsbG8="),
	}
}

func TestCreateNormalizesAndAssignsID(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("expected create to succeed, got error: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("expected a generated id")
	}
	if created.FirstName != "Jane" || created.LastName != "Doe" {
		t.Fatalf("names not trimmed: %q %q", created.FirstName, created.LastName)
	}
	if created.Email != "jane.doe@example.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}
	if created.Phone != " 555-0100 " {
		t.Fatalf("phone must be stored verbatim, got %q", created.Phone)
	}
	if created.Occupation != "Engineer" || created.Sex != "F" {
		t.Fatalf("occupation/sex not trimmed: %q %q", created.Occupation, created.Sex)
	}
	if !bytes.Equal(created.Profile, []byte("hello")) {
		t.Fatalf("profile not decoded, got %q", created.Profile)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("createdAt not set")
	}
	if created.UpdatedAt != nil {
		t.Fatalf("updatedAt must be unset on create")
	}

	fetched, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("expected get to succeed, got error: %v", err)
	}
	if fetched.Email != created.Email || formatBirthDay(fetched.BirthDay) != "15/06/1990" {
		t.Fatalf("round trip mismatch: %+v", fetched)
	}
}

func TestCreateDuplicateEmailIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), sampleInput()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	second := sampleInput()
	second.Email = "JANE.DOE@example.com"
	if _, err := svc.Create(context.Background(), second); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestCreateRejectsBadProfileBase64(t *testing.T) {
	svc, _ := newTestService()

	input := sampleInput()
	input.Profile = strPtr("!!! not base64 !!!")
	_, err := svc.Create(context.Background(), input)
	if err == nil {
		t.Fatalf("expected an error for invalid base64")
	}
	if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a generic error, got %v", err)
	}
}

func TestMalformedBirthDayBecomesSentinel(t *testing.T) {
	svc, _ := newTestService()

	input := sampleInput()
	input.BirthDay = "not-a-date"
	created, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("malformed birthday must not fail create: %v", err)
	}
	if !created.BirthDay.IsZero() {
		t.Fatalf("expected sentinel minimum date, got %v", created.BirthDay)
	}
	if got := formatBirthDay(created.BirthDay); got != "01/01/0001" {
		t.Fatalf("expected sentinel to echo as 01/01/0001, got %q", got)
	}
}

func TestCreateOverlongFieldFailsLikeColumnLimit(t *testing.T) {
	svc, _ := newTestService()

	input := sampleInput()
	input.Email = strings.Repeat("a", 300) + "@example.com"
	_, err := svc.Create(context.Background(), input)
	if err == nil {
		t.Fatalf("expected an error for an overlong email")
	}
	if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a generic error, got %v", err)
	}

	users, err := svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all failed: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("failed create must not persist anything, got %d users", len(users))
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.GetByID(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAllReturnsEveryUser(t *testing.T) {
	svc, _ := newTestService()

	users, err := svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all failed: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected empty store, got %d users", len(users))
	}

	seen := map[uuid.UUID]bool{}
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		input := sampleInput()
		input.Email = email
		created, err := svc.Create(context.Background(), input)
		if err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
		seen[created.ID] = true
	}

	users, err = svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	for _, u := range users {
		if !seen[u.ID] {
			t.Fatalf("unexpected user in listing: %v", u.ID)
		}
		delete(seen, u.ID)
	}
	if len(seen) != 0 {
		t.Fatalf("listing omitted users: %v", seen)
	}
}

func TestUpdateReplacesFieldsAndSetsUpdatedAt(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	update := sampleInput()
	update.Occupation = "Manager"
	update.Profile = nil
	updated, err := svc.Update(context.Background(), created.ID, update)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Occupation != "Manager" {
		t.Fatalf("occupation not updated: %q", updated.Occupation)
	}
	if updated.Profile != nil {
		t.Fatalf("absent profile must clear the stored bytes")
	}
	if updated.UpdatedAt == nil {
		t.Fatalf("updatedAt not set on update")
	}

	fetched, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get after update failed: %v", err)
	}
	if fetched.Occupation != "Manager" || fetched.UpdatedAt == nil {
		t.Fatalf("update not persisted: %+v", fetched)
	}
}

func TestUpdateToAnotherUsersEmailFails(t *testing.T) {
	svc, _ := newTestService()

	first, err := svc.Create(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	secondInput := sampleInput()
	secondInput.Email = "other@example.com"
	second, err := svc.Create(context.Background(), secondInput)
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	collide := sampleInput()
	collide.Email = first.Email
	if _, err := svc.Update(context.Background(), second.ID, collide); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// both records untouched
	for _, want := range []User{first, second} {
		got, err := svc.GetByID(context.Background(), want.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Email != want.Email || got.UpdatedAt != nil {
			t.Fatalf("record changed by failed update: %+v", got)
		}
	}
}

func TestUpdateKeepingOwnEmailSucceeds(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Update(context.Background(), created.ID, sampleInput()); err != nil {
		t.Fatalf("update with unchanged email failed: %v", err)
	}
}

func TestOperationsOnMissingID(t *testing.T) {
	svc, _ := newTestService()
	missing := uuid.New()

	if _, err := svc.Update(context.Background(), missing, sampleInput()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}

	users, err := svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all failed: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("failed operations must not change state, got %d users", len(users))
	}
}

func TestDeleteRemovesUserFromListing(t *testing.T) {
	svc, _ := newTestService()

	keepInput := sampleInput()
	keepInput.Email = "keep@example.com"
	keep, err := svc.Create(context.Background(), keepInput)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	gone, err := svc.Create(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), gone.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	users, err := svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all failed: %v", err)
	}
	if len(users) != 1 || users[0].ID != keep.ID {
		t.Fatalf("expected only %v to remain, got %+v", keep.ID, users)
	}
}
