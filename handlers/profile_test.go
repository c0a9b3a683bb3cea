package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"rishta/models"
	"rishta/store"
)

func updateProfile(t *testing.T, env *testEnv, u *models.User, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return env.do(t, http.MethodPut, "/api/profile/update", env.token(t, u),
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)

	w := env.do(t, http.MethodGet, "/api/profile", env.token(t, u), nil, "")
	wantStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	user := body["user"].(map[string]any)
	if user["email"] != u.Email {
		t.Fatalf("unexpected profile payload: %v", user)
	}
	if _, present := user["password"]; present {
		t.Fatal("password hash must never be serialized")
	}
}

func TestUpdateProfileCompletesProfile(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", func(u *models.User) {
		u.Ethnicity = ""
		u.Profession = ""
		u.Languages = nil
	})
	if u.ProfileCompleted {
		t.Fatal("seed should start incomplete")
	}

	form := url.Values{}
	form.Set("ethnicity", "Punjabi")
	form.Set("profession", "Architect")
	form.Set("languages", `["Urdu","English"]`)
	w := updateProfile(t, env, u, form)
	wantStatus(t, w, http.StatusOK)

	fresh := mustUser(t, env, u)
	if !fresh.ProfileCompleted {
		t.Fatalf("profile should be completed after the update: %+v", fresh)
	}
	if fresh.Profession != "Architect" {
		t.Fatalf("profession not applied: %q", fresh.Profession)
	}
	if len(fresh.Languages) != 2 {
		t.Fatalf("languages not applied: %v", fresh.Languages)
	}
}

func TestUpdateProfileIgnoresBlankAndUndefined(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)

	form := url.Values{}
	form.Set("profession", "undefined")
	form.Set("education", "")
	w := updateProfile(t, env, u, form)
	wantStatus(t, w, http.StatusOK)

	fresh := mustUser(t, env, u)
	if fresh.Profession != u.Profession || fresh.Education != u.Education {
		t.Fatalf("blank form values must not clear existing fields: %+v", fresh)
	}
	if !fresh.ProfileCompleted {
		t.Fatal("profile must stay completed")
	}
}

func TestUpdateProfileValidatesEnums(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)

	form := url.Values{}
	form.Set("residencyStatus", "Stowaway")
	w := updateProfile(t, env, u, form)
	wantStatus(t, w, http.StatusBadRequest)

	form = url.Values{}
	form.Set("maritalStatus", "Complicated")
	w = updateProfile(t, env, u, form)
	wantStatus(t, w, http.StatusBadRequest)

	form = url.Values{}
	form.Set("maritalStatus", models.MaritalStatuses[0])
	w = updateProfile(t, env, u, form)
	wantStatus(t, w, http.StatusOK)
}

func TestUpdateProfileCustomFieldBounds(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)

	form := url.Values{}
	form.Set("customFields", `{"hobby":"`+strings.Repeat("x", models.MaxCustomFieldValue+1)+`"}`)
	w := updateProfile(t, env, u, form)
	wantStatus(t, w, http.StatusBadRequest)

	form = url.Values{}
	form.Set("customFields", `{"hobby":"calligraphy","diet":"halal"}`)
	w = updateProfile(t, env, u, form)
	wantStatus(t, w, http.StatusOK)
	if fields := mustUser(t, env, u).CustomFields; fields["hobby"] != "calligraphy" {
		t.Fatalf("custom fields not applied: %v", fields)
	}
}

func TestUpdateProfileClampsTags(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)

	tags := make([]string, 0, models.MaxTags+5)
	for i := 0; i < models.MaxTags+5; i++ {
		tags = append(tags, "tag"+strings.Repeat("g", i))
	}
	form := url.Values{}
	form.Set("tags", `["`+strings.Join(tags, `","`)+`"]`)
	w := updateProfile(t, env, u, form)
	wantStatus(t, w, http.StatusOK)

	fresh := mustUser(t, env, u)
	if len(fresh.Tags) != models.MaxTags {
		t.Fatalf("expected tags clamped to %d, got %d", models.MaxTags, len(fresh.Tags))
	}
	for _, tag := range fresh.Tags {
		if len(tag) > models.MaxTagLength {
			t.Fatalf("tag %q exceeds the length clamp", tag)
		}
	}
}

func TestUpdateProfileLanguagesDoNotAliasStoredSlice(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", func(u *models.User) {
		u.Languages = []string{"English", "Urdu"}
	})
	before := u.Languages

	form := url.Values{}
	form.Set("languages", `["Farsi"]`)
	w := updateProfile(t, env, u, form)
	wantStatus(t, w, http.StatusOK)

	// The update must write a fresh slice; snapshots taken before the
	// request keep their contents.
	if before[0] != "English" || before[1] != "Urdu" {
		t.Fatalf("earlier snapshot mutated in place: %v", before)
	}
	fresh := mustUser(t, env, u)
	if len(fresh.Languages) != 1 || fresh.Languages[0] != "Farsi" {
		t.Fatalf("languages not replaced: %v", fresh.Languages)
	}
}

func TestUpdateProfileCanDrift(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)

	// Emptying languages takes the profile back below the completion bar.
	form := url.Values{}
	form.Set("languages", `[]`)
	w := updateProfile(t, env, u, form)
	wantStatus(t, w, http.StatusOK)

	fresh := mustUser(t, env, u)
	if fresh.ProfileCompleted {
		t.Fatal("profile without languages must not count as completed")
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	conn := sendRequest(t, env, a, b)
	if mustUser(t, env, b).PendingMatchRequests != 1 {
		t.Fatal("expected receiver counter at 1 before the delete")
	}

	w := env.do(t, http.MethodDelete, "/api/profile", env.token(t, a), nil, "")
	wantStatus(t, w, http.StatusOK)

	if _, err := env.users.FindByID(context.Background(), a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
	if _, err := env.conns.FindByID(context.Background(), conn.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected connection gone, got %v", err)
	}

	// The request vanished with the sender, so the receiver's inbox
	// counter must come back down with it.
	if got := mustUser(t, env, b).PendingMatchRequests; got != 0 {
		t.Fatalf("receiver counter left at %d after sender account delete", got)
	}
}

func TestDeleteAccountSettlesMatchCount(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	conn := sendRequest(t, env, a, b)

	w := env.do(t, http.MethodPut, "/api/connections/accept/"+conn.ID.Hex(), env.token(t, b), nil, "")
	wantStatus(t, w, http.StatusOK)
	if mustUser(t, env, b).MatchCount != 1 {
		t.Fatal("expected match count at 1 before the delete")
	}

	w = env.do(t, http.MethodDelete, "/api/profile", env.token(t, a), nil, "")
	wantStatus(t, w, http.StatusOK)

	fresh := mustUser(t, env, b)
	if fresh.MatchCount != 0 {
		t.Fatalf("match count left at %d after the matched account delete", fresh.MatchCount)
	}
	if fresh.PendingMatchRequests != 0 {
		t.Fatalf("pending counter must stay 0, got %d", fresh.PendingMatchRequests)
	}
}
