package handlers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"rishta/models"
)

func browseProfiles(t *testing.T, env *testEnv, viewer *models.User) []any {
	t.Helper()
	w := env.do(t, http.MethodGet, "/api/browse/profiles", env.token(t, viewer), nil, "")
	wantStatus(t, w, http.StatusOK)
	return decodeBody(t, w)["profiles"].([]any)
}

func TestBrowseShowsOnlyCompletedOppositeGender(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	env.seedUser(t, "Omar", "omar@example.com", "male", nil)
	env.seedUser(t, "Dania", "dania@example.com", "female", func(u *models.User) {
		u.Profession = "" // incomplete profile, must be hidden
	})

	profiles := browseProfiles(t, env, viewer)
	if len(profiles) != 1 {
		t.Fatalf("expected exactly one browsable profile, got %d", len(profiles))
	}
	p := profiles[0].(map[string]any)
	if p["firstName"] != "Bushra" {
		t.Fatalf("expected Bushra, got %v", p["firstName"])
	}
	if _, present := p["phoneNumber"]; present {
		t.Fatalf("phone number must be hidden without an accepted connection: %v", p)
	}
}

func TestBrowseExcludesViewer(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	env.seedUser(t, "Dania", "dania@example.com", "female", nil)
	env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)

	profiles := browseProfiles(t, env, viewer)
	for _, raw := range profiles {
		if raw.(map[string]any)["firstName"] == "Bushra" {
			t.Fatal("viewer must not appear in their own browse results")
		}
	}
}

func TestBrowseRequiresCompletedProfile(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", func(u *models.User) {
		u.Education = ""
	})

	w := env.do(t, http.MethodGet, "/api/browse/profiles", env.token(t, viewer), nil, "")
	wantStatus(t, w, http.StatusForbidden)
	body := decodeBody(t, w)
	if body["profileCompleted"] != false {
		t.Fatalf("expected profileCompleted:false in the gate response: %v", body)
	}
}

func TestBrowseRevealsPhoneAfterMatch(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	env.seedUser(t, "Dania", "dania@example.com", "female", nil)

	conn := sendRequest(t, env, a, b)
	w := env.do(t, http.MethodPut, "/api/connections/accept/"+conn.ID.Hex(), env.token(t, b), nil, "")
	wantStatus(t, w, http.StatusOK)

	for _, raw := range browseProfiles(t, env, a) {
		p := raw.(map[string]any)
		_, hasPhone := p["phoneNumber"]
		switch p["firstName"] {
		case "Bushra":
			if !hasPhone {
				t.Fatal("matched profile must include the phone number")
			}
		case "Dania":
			if hasPhone {
				t.Fatal("unmatched profile must not include the phone number")
			}
		}
	}
}

func TestFilteredBrowse(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	env.seedUser(t, "Bushra", "bushra@example.com", "female", func(u *models.User) {
		u.Profession = "Doctor"
		u.DateOfBirth = time.Now().AddDate(-30, 0, 0)
	})
	env.seedUser(t, "Dania", "dania@example.com", "female", func(u *models.User) {
		u.Profession = "Engineer"
		u.DateOfBirth = time.Now().AddDate(-24, 0, 0)
	})

	w := env.do(t, http.MethodPost, "/api/browse/profiles/filter", env.token(t, viewer),
		strings.NewReader(`{"profession":"doctor"}`), "application/json")
	wantStatus(t, w, http.StatusOK)
	profiles := decodeBody(t, w)["profiles"].([]any)
	if len(profiles) != 1 || profiles[0].(map[string]any)["firstName"] != "Bushra" {
		t.Fatalf("expected only Bushra for profession filter, got %v", profiles)
	}

	w = env.do(t, http.MethodPost, "/api/browse/profiles/filter", env.token(t, viewer),
		strings.NewReader(`{"minAge":28,"maxAge":35}`), "application/json")
	wantStatus(t, w, http.StatusOK)
	profiles = decodeBody(t, w)["profiles"].([]any)
	if len(profiles) != 1 || profiles[0].(map[string]any)["firstName"] != "Bushra" {
		t.Fatalf("expected only Bushra for age filter, got %v", profiles)
	}
}

func TestGetProfileByID(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	other := env.seedUser(t, "Omar", "omar@example.com", "male", nil)

	w := env.do(t, http.MethodGet, "/api/browse/profile/"+b.ID.Hex(), env.token(t, a), nil, "")
	wantStatus(t, w, http.StatusOK)
	profile := decodeBody(t, w)["profile"].(map[string]any)
	if _, present := profile["phoneNumber"]; present {
		t.Fatalf("phone hidden without a match: %v", profile)
	}

	// Same-gender profiles are off limits.
	w = env.do(t, http.MethodGet, "/api/browse/profile/"+other.ID.Hex(), env.token(t, a), nil, "")
	wantStatus(t, w, http.StatusForbidden)

	w = env.do(t, http.MethodGet, "/api/browse/profile/ffffffffffffffffffffffff", env.token(t, a), nil, "")
	wantStatus(t, w, http.StatusNotFound)
}

func TestGetProfileWithStatus(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)

	w := env.do(t, http.MethodGet, "/api/browse/profile-with-status/"+b.ID.Hex(), env.token(t, a), nil, "")
	wantStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	if body["isMatched"] != false {
		t.Fatalf("expected isMatched false, got %v", body)
	}

	conn := sendRequest(t, env, a, b)
	w = env.do(t, http.MethodPut, "/api/connections/accept/"+conn.ID.Hex(), env.token(t, b), nil, "")
	wantStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodGet, "/api/browse/profile-with-status/"+b.ID.Hex(), env.token(t, a), nil, "")
	wantStatus(t, w, http.StatusOK)
	body = decodeBody(t, w)
	if body["isMatched"] != true {
		t.Fatalf("expected isMatched true after accept, got %v", body)
	}
	profile := body["profile"].(map[string]any)
	if profile["phoneNumber"] != b.PhoneNumber {
		t.Fatalf("matched profile must carry the phone number: %v", profile)
	}
}
