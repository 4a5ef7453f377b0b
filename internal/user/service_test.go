// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uknown-one/stellarAds/internal/core"
)

type fakeRepo struct {
	users map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*User{}}
}

func (f *fakeRepo) Create(_ context.Context, u *User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return core.ErrDuplicateKey
		}
	}
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) UpdateProfile(_ context.Context, u *User) error {
	if _, ok := f.users[u.ID]; !ok {
		return core.ErrNotFound
	}
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *fakeRepo) SetAccountType(
	_ context.Context,
	id, accountType string,
) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.AccountType = accountType
	return nil
}

func (f *fakeRepo) SetPremium(_ context.Context, u *User) error {
	if _, ok := f.users[u.ID]; !ok {
		return core.ErrNotFound
	}
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *fakeRepo) RecordLogin(
	_ context.Context,
	id string,
	at time.Time,
) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func TestGetMeDowngradesLapsedPremium(t *testing.T) {
	repo := newFakeRepo()
	past := time.Now().Add(-time.Hour)
	repo.users["u1"] = &User{
		ID:               "u1",
		Username:         "lapsed",
		Email:            "lapsed@example.com",
		AccountType:      AccountPremium,
		PremiumEnd:       &past,
		PremiumAutoRenew: false,
	}

	svc := &Service{repo: repo}

	u, err := svc.GetMe(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}

	if u.AccountType != AccountFree {
		t.Errorf("accountType = %q, want free", u.AccountType)
	}
	if repo.users["u1"].AccountType != AccountFree {
		t.Error("downgrade not persisted")
	}
}

func TestGetMeKeepsAutoRenewPremium(t *testing.T) {
	repo := newFakeRepo()
	past := time.Now().Add(-time.Hour)
	repo.users["u1"] = &User{
		ID:               "u1",
		AccountType:      AccountPremium,
		PremiumEnd:       &past,
		PremiumAutoRenew: true,
	}

	svc := &Service{repo: repo}

	u, err := svc.GetMe(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if u.AccountType != AccountPremium {
		t.Errorf("accountType = %q, want premium", u.AccountType)
	}
}

func TestGetMeUnauthenticated(t *testing.T) {
	svc := &Service{repo: newFakeRepo()}

	_, err := svc.GetMe(context.Background(), "")
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestUpdateProfileMergesMaps(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = &User{
		ID:          "u1",
		Username:    "original",
		ContactInfo: core.JSONMap{"phone": "111", "city": "Oslo"},
		Preferences: core.JSONMap{"newsletter": true},
	}

	svc := &Service{repo: repo}

	u, err := svc.UpdateProfile(context.Background(), "u1", UpdateProfileRequest{
		ContactInfo: core.JSONMap{"phone": "222"},
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if u.ContactInfo["phone"] != "222" {
		t.Errorf("phone = %v, want 222", u.ContactInfo["phone"])
	}
	if u.ContactInfo["city"] != "Oslo" {
		t.Errorf("city lost in merge: %v", u.ContactInfo)
	}
	if u.Preferences["newsletter"] != true {
		t.Errorf("preferences changed: %v", u.Preferences)
	}
	if u.Username != "original" {
		t.Errorf("username changed to %q", u.Username)
	}
}

func TestAccountTypeReflectsDowngrade(t *testing.T) {
	repo := newFakeRepo()
	past := time.Now().Add(-time.Minute)
	repo.users["u1"] = &User{
		ID:          "u1",
		AccountType: AccountPremium,
		PremiumEnd:  &past,
	}

	svc := &Service{repo: repo}

	accountType, err := svc.AccountType(context.Background(), "u1")
	if err != nil {
		t.Fatalf("AccountType: %v", err)
	}
	if accountType != AccountFree {
		t.Errorf("accountType = %q, want free", accountType)
	}
}
