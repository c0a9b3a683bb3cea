package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"rishta/models"
)

func sendRequest(t *testing.T, env *testEnv, sender, receiver *models.User) *models.Connection {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/connections/request", env.token(t, sender),
		strings.NewReader(`{"receiverId":"`+receiver.ID.Hex()+`"}`), "application/json")
	wantStatus(t, w, http.StatusCreated)

	conn, err := env.conns.FindByPair(context.Background(), sender.ID, receiver.ID)
	if err != nil {
		t.Fatalf("connection not stored: %v", err)
	}
	return conn
}

func TestSendConnectionRequest(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)

	conn := sendRequest(t, env, a, b)
	if conn.Status != models.ConnectionPending {
		t.Fatalf("expected pending status, got %q", conn.Status)
	}

	if got := mustUser(t, env, b).PendingMatchRequests; got != 1 {
		t.Fatalf("expected receiver pending counter 1, got %d", got)
	}

	if sent := env.mailer.byKind("requestSent"); len(sent) != 1 || sent[0].to != a.Email {
		t.Fatalf("expected one request-sent email to sender, got %+v", sent)
	}
	if recv := env.mailer.byKind("requestReceived"); len(recv) != 1 || recv[0].to != b.Email {
		t.Fatalf("expected one request-received email to receiver, got %+v", recv)
	}
}

func TestSendConnectionRequestToSelf(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)

	w := env.do(t, http.MethodPost, "/api/connections/request", env.token(t, a),
		strings.NewReader(`{"receiverId":"`+a.ID.Hex()+`"}`), "application/json")
	wantStatus(t, w, http.StatusBadRequest)
}

func TestDuplicateRequestRejectedInEitherDirection(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)

	sendRequest(t, env, a, b)

	// Same direction
	w := env.do(t, http.MethodPost, "/api/connections/request", env.token(t, a),
		strings.NewReader(`{"receiverId":"`+b.ID.Hex()+`"}`), "application/json")
	wantStatus(t, w, http.StatusBadRequest)
	if msg := decodeBody(t, w)["message"]; msg != "A connection request is already pending" {
		t.Fatalf("unexpected message: %v", msg)
	}

	// Reverse direction
	w = env.do(t, http.MethodPost, "/api/connections/request", env.token(t, b),
		strings.NewReader(`{"receiverId":"`+a.ID.Hex()+`"}`), "application/json")
	wantStatus(t, w, http.StatusBadRequest)
}

func TestAcceptConnection(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	conn := sendRequest(t, env, a, b)

	w := env.do(t, http.MethodPut, "/api/connections/accept/"+conn.ID.Hex(), env.token(t, b), nil, "")
	wantStatus(t, w, http.StatusOK)

	updated, err := env.conns.FindByID(context.Background(), conn.ID)
	if err != nil {
		t.Fatalf("reload connection: %v", err)
	}
	if updated.Status != models.ConnectionAccepted {
		t.Fatalf("expected accepted status, got %q", updated.Status)
	}

	if got := mustUser(t, env, a).MatchCount; got != 1 {
		t.Fatalf("expected sender matchCount 1, got %d", got)
	}
	freshB := mustUser(t, env, b)
	if freshB.MatchCount != 1 {
		t.Fatalf("expected receiver matchCount 1, got %d", freshB.MatchCount)
	}
	if freshB.PendingMatchRequests != 0 {
		t.Fatalf("expected receiver pending counter back to 0, got %d", freshB.PendingMatchRequests)
	}

	accepted := env.mailer.byKind("requestAccepted")
	if len(accepted) != 1 || accepted[0].to != a.Email {
		t.Fatalf("expected one accepted email to original sender, got %+v", accepted)
	}
	if accepted[0].phone != b.PhoneNumber {
		t.Fatalf("expected receiver phone in accepted email, got %q", accepted[0].phone)
	}
}

func TestAcceptRequiresReceiver(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	conn := sendRequest(t, env, a, b)

	// The sender cannot accept their own request.
	w := env.do(t, http.MethodPut, "/api/connections/accept/"+conn.ID.Hex(), env.token(t, a), nil, "")
	wantStatus(t, w, http.StatusForbidden)

	// A third party cannot either.
	other := env.seedUser(t, "Omar", "omar@example.com", "male", nil)
	w = env.do(t, http.MethodPut, "/api/connections/accept/"+conn.ID.Hex(), env.token(t, other), nil, "")
	wantStatus(t, w, http.StatusForbidden)

	stored, err := env.conns.FindByID(context.Background(), conn.ID)
	if err != nil {
		t.Fatalf("reload connection: %v", err)
	}
	if stored.Status != models.ConnectionPending {
		t.Fatalf("status must be unchanged after failed accepts, got %q", stored.Status)
	}
}

func TestAcceptAlreadyProcessed(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	conn := sendRequest(t, env, a, b)

	w := env.do(t, http.MethodPut, "/api/connections/decline/"+conn.ID.Hex(), env.token(t, b), nil, "")
	wantStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPut, "/api/connections/accept/"+conn.ID.Hex(), env.token(t, b), nil, "")
	wantStatus(t, w, http.StatusBadRequest)

	stored, err := env.conns.FindByID(context.Background(), conn.ID)
	if err != nil {
		t.Fatalf("reload connection: %v", err)
	}
	if stored.Status != models.ConnectionDeclined {
		t.Fatalf("declined is terminal, got %q", stored.Status)
	}
}

func TestAcceptUnknownConnection(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)

	w := env.do(t, http.MethodPut, "/api/connections/accept/ffffffffffffffffffffffff", env.token(t, b), nil, "")
	wantStatus(t, w, http.StatusNotFound)
}

func TestDeclineConnection(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	conn := sendRequest(t, env, a, b)

	w := env.do(t, http.MethodPut, "/api/connections/decline/"+conn.ID.Hex(), env.token(t, b), nil, "")
	wantStatus(t, w, http.StatusOK)

	freshA := mustUser(t, env, a)
	freshB := mustUser(t, env, b)
	if freshA.MatchCount != 0 || freshB.MatchCount != 0 {
		t.Fatalf("decline must not touch match counts, got %d/%d", freshA.MatchCount, freshB.MatchCount)
	}
	if freshB.PendingMatchRequests != 0 {
		t.Fatalf("expected receiver pending counter 0, got %d", freshB.PendingMatchRequests)
	}

	declined := env.mailer.byKind("requestDeclined")
	if len(declined) != 1 || declined[0].to != a.Email {
		t.Fatalf("expected one declined email to sender, got %+v", declined)
	}

	// A further request between the pair is permanently blocked.
	w = env.do(t, http.MethodPost, "/api/connections/request", env.token(t, a),
		strings.NewReader(`{"receiverId":"`+b.ID.Hex()+`"}`), "application/json")
	wantStatus(t, w, http.StatusBadRequest)
	if msg := decodeBody(t, w)["message"]; msg != "Connection request was previously declined" {
		t.Fatalf("unexpected message: %v", msg)
	}
}

func TestPendingAndSentListings(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	sendRequest(t, env, a, b)

	// B sees A in the pending inbox, phone hidden.
	w := env.do(t, http.MethodGet, "/api/connections/pending", env.token(t, b), nil, "")
	wantStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	requests := body["requests"].([]any)
	if len(requests) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(requests))
	}
	sender := requests[0].(map[string]any)["sender"].(map[string]any)
	if sender["firstName"] != "Ahmed" {
		t.Fatalf("expected sender Ahmed, got %v", sender["firstName"])
	}
	if _, present := sender["phoneNumber"]; present {
		t.Fatalf("phone number must be hidden in pending listing: %v", sender)
	}

	// A sees B in the sent list with pending status, phone hidden.
	w = env.do(t, http.MethodGet, "/api/connections/sent", env.token(t, a), nil, "")
	wantStatus(t, w, http.StatusOK)
	body = decodeBody(t, w)
	sent := body["requests"].([]any)
	if len(sent) != 1 {
		t.Fatalf("expected 1 sent request, got %d", len(sent))
	}
	item := sent[0].(map[string]any)
	if item["status"] != "pending" {
		t.Fatalf("expected pending status, got %v", item["status"])
	}
	receiver := item["receiver"].(map[string]any)
	if _, present := receiver["phoneNumber"]; present {
		t.Fatalf("phone number must be hidden for pending sent requests: %v", receiver)
	}
}

func TestStatusMapping(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	conn := sendRequest(t, env, a, b)

	statusFor := func(u *models.User) string {
		t.Helper()
		w := env.do(t, http.MethodGet, "/api/connections/status", env.token(t, u), nil, "")
		wantStatus(t, w, http.StatusOK)
		statuses := decodeBody(t, w)["statuses"].([]any)
		if len(statuses) != 1 {
			t.Fatalf("expected 1 status entry, got %d", len(statuses))
		}
		return statuses[0].(map[string]any)["status"].(string)
	}

	if got := statusFor(a); got != "pending" {
		t.Fatalf("expected pending before response, got %q", got)
	}

	w := env.do(t, http.MethodPut, "/api/connections/accept/"+conn.ID.Hex(), env.token(t, b), nil, "")
	wantStatus(t, w, http.StatusOK)

	if got := statusFor(a); got != "matched" {
		t.Fatalf("expected matched after accept, got %q", got)
	}
	if got := statusFor(b); got != "matched" {
		t.Fatalf("expected matched for receiver too, got %q", got)
	}
}

func TestStatusMappingDeclined(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	conn := sendRequest(t, env, a, b)

	w := env.do(t, http.MethodPut, "/api/connections/decline/"+conn.ID.Hex(), env.token(t, b), nil, "")
	wantStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodGet, "/api/connections/status", env.token(t, a), nil, "")
	wantStatus(t, w, http.StatusOK)
	statuses := decodeBody(t, w)["statuses"].([]any)
	if got := statuses[0].(map[string]any)["status"]; got != "declined" {
		t.Fatalf("expected declined, got %v", got)
	}
}

func TestMyConnectionsIncludesPhone(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedUser(t, "Ahmed", "ahmed@example.com", "male", nil)
	b := env.seedUser(t, "Bushra", "bushra@example.com", "female", nil)
	conn := sendRequest(t, env, a, b)

	w := env.do(t, http.MethodPut, "/api/connections/accept/"+conn.ID.Hex(), env.token(t, b), nil, "")
	wantStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodGet, "/api/connections/my-connections", env.token(t, a), nil, "")
	wantStatus(t, w, http.StatusOK)
	connections := decodeBody(t, w)["connections"].([]any)
	if len(connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(connections))
	}
	other := connections[0].(map[string]any)["user"].(map[string]any)
	if other["phoneNumber"] != b.PhoneNumber {
		t.Fatalf("expected matched party phone number, got %v", other["phoneNumber"])
	}
}

func TestConnectionEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/connections/status", "", nil, "")
	wantStatus(t, w, http.StatusUnauthorized)
}
