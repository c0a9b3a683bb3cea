package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"rishta/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory implementations of the store interfaces, used by handler
// tests in place of MongoDB. Semantics mirror the Mongo backends: pair
// uniqueness, conditional pending transitions, floored counter
// decrements, sort orders.

// MemoryUsers implements UserStore.
type MemoryUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
	seq   int
	order map[primitive.ObjectID]int
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		users: make(map[primitive.ObjectID]models.User),
		order: make(map[primitive.ObjectID]int),
	}
}

func (m *MemoryUsers) Insert(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.seq++
	m.order[u.ID] = m.seq
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryUsers) Replace(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	u.UpdatedAt = time.Now()
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MemoryUsers) IncrementPending(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.PendingMatchRequests++
		m.users[id] = u
	}
	return nil
}

func (m *MemoryUsers) DecrementPending(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok && u.PendingMatchRequests > 0 {
		u.PendingMatchRequests--
		m.users[id] = u
	}
	return nil
}

func (m *MemoryUsers) IncrementMatchCount(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.MatchCount++
		m.users[id] = u
	}
	return nil
}

func (m *MemoryUsers) DecrementMatchCount(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok && u.MatchCount > 0 {
		u.MatchCount--
		m.users[id] = u
	}
	return nil
}

func ageOf(dob time.Time, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		age--
	}
	return age
}

func (m *MemoryUsers) Browse(ctx context.Context, f BrowseFilter) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []models.User
	for _, u := range m.users {
		if u.ID == f.ExcludeID || !u.ProfileCompleted {
			continue
		}
		if f.Gender != "" && !strings.EqualFold(u.Gender, f.Gender) {
			continue
		}
		age := ageOf(u.DateOfBirth, now)
		if f.MinAge > 0 && age < f.MinAge {
			continue
		}
		if f.MaxAge > 0 && age > f.MaxAge {
			continue
		}
		if f.Ethnicity != "" && f.Ethnicity != "Any" && u.Ethnicity != f.Ethnicity {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(u.CurrentLocation), strings.ToLower(f.Location)) {
			continue
		}
		if f.Profession != "" && !strings.Contains(strings.ToLower(u.Profession), strings.ToLower(f.Profession)) {
			continue
		}
		if f.Education != "" && u.Education != f.Education {
			continue
		}
		if f.MaritalStatus != "" && u.MaritalStatus != f.MaritalStatus {
			continue
		}
		out = append(out, u)
	}
	m.sortNewestFirst(out)
	return out, nil
}

func (m *MemoryUsers) sortNewestFirst(users []models.User) {
	sort.SliceStable(users, func(i, j int) bool {
		return m.order[users[i].ID] > m.order[users[j].ID]
	})
}

func (m *MemoryUsers) List(ctx context.Context, f AdminFilter) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var matched []models.User
	for _, u := range m.users {
		if u.IsAdmin {
			continue
		}
		if f.Gender != "" && f.Gender != "all" && u.Gender != f.Gender {
			continue
		}
		age := ageOf(u.DateOfBirth, now)
		if f.MinAge > 0 && age < f.MinAge {
			continue
		}
		if f.MaxAge > 0 && age > f.MaxAge {
			continue
		}
		if f.ProfileCompleted != nil && u.ProfileCompleted != *f.ProfileCompleted {
			continue
		}
		if f.Search != "" {
			s := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(u.FirstName), s) &&
				!strings.Contains(strings.ToLower(u.LastName), s) &&
				!strings.Contains(strings.ToLower(u.Email), s) {
				continue
			}
		}
		matched = append(matched, u)
	}
	m.sortNewestFirst(matched)

	total := int64(len(matched))
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 50
	}
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *MemoryUsers) Statistics(ctx context.Context) (Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats Statistics
	for _, u := range m.users {
		if u.IsAdmin {
			continue
		}
		stats.TotalUsers++
		switch u.Gender {
		case "male":
			stats.MaleUsers++
		case "female":
			stats.FemaleUsers++
		}
		if u.ProfileCompleted {
			stats.CompletedProfiles++
		} else {
			stats.IncompleteProfiles++
		}
	}
	return stats, nil
}

// MemoryConnections implements ConnectionStore.
type MemoryConnections struct {
	mu    sync.Mutex
	conns map[primitive.ObjectID]models.Connection
	seq   int
	order map[primitive.ObjectID]int
}

func NewMemoryConnections() *MemoryConnections {
	return &MemoryConnections{
		conns: make(map[primitive.ObjectID]models.Connection),
		order: make(map[primitive.ObjectID]int),
	}
}

func (m *MemoryConnections) Insert(ctx context.Context, c *models.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.PairKey(c.Sender, c.Receiver)
	for _, existing := range m.conns {
		if existing.PairKey == key {
			return ErrDuplicate
		}
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.PairKey = key
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	m.seq++
	m.order[c.ID] = m.seq
	m.conns[c.ID] = *c
	return nil
}

func (m *MemoryConnections) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conns[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryConnections) FindByPair(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findByPairLocked(a, b)
}

func (m *MemoryConnections) findByPairLocked(a, b primitive.ObjectID) (*models.Connection, error) {
	key := models.PairKey(a, b)
	for _, c := range m.conns {
		if c.PairKey == key {
			copied := c
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryConnections) TransitionFromPending(ctx context.Context, id primitive.ObjectID, newStatus string) (*models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conns[id]
	if !ok || c.Status != models.ConnectionPending {
		return nil, ErrNotFound
	}
	c.Status = newStatus
	c.UpdatedAt = time.Now()
	m.conns[id] = c
	return &c, nil
}

func (m *MemoryConnections) list(match func(models.Connection) bool) []models.Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Connection
	for _, c := range m.conns {
		if match(c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return m.order[out[i].ID] > m.order[out[j].ID]
	})
	return out
}

func (m *MemoryConnections) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return m.list(func(c models.Connection) bool {
		return c.Sender == userID || c.Receiver == userID
	}), nil
}

func (m *MemoryConnections) ListPendingForReceiver(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return m.list(func(c models.Connection) bool {
		return c.Receiver == userID && c.Status == models.ConnectionPending
	}), nil
}

func (m *MemoryConnections) ListSentBySender(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return m.list(func(c models.Connection) bool {
		return c.Sender == userID
	}), nil
}

func (m *MemoryConnections) ListAcceptedForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return m.list(func(c models.Connection) bool {
		return (c.Sender == userID || c.Receiver == userID) && c.Status == models.ConnectionAccepted
	}), nil
}

func (m *MemoryConnections) HasAccepted(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.findByPairLocked(a, b)
	if err != nil {
		return false, nil
	}
	return c.Status == models.ConnectionAccepted, nil
}

func (m *MemoryConnections) DeleteForUser(ctx context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.conns {
		if c.Sender == userID || c.Receiver == userID {
			delete(m.conns, id)
		}
	}
	return nil
}

// MemoryPending implements PendingStore, keyed by email like the unique
// index on the Mongo collection. TTL expiry is checked by callers.
type MemoryPending struct {
	mu      sync.Mutex
	pending map[string]models.PendingRegistration
}

func NewMemoryPending() *MemoryPending {
	return &MemoryPending{pending: make(map[string]models.PendingRegistration)}
}

func (m *MemoryPending) Upsert(ctx context.Context, p *models.PendingRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	m.pending[p.Email] = *p
	return nil
}

func (m *MemoryPending) FindByEmail(ctx context.Context, email string) (*models.PendingRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pending[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryPending) DeleteByEmail(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, email)
	return nil
}

// MemoryCities implements CityStore.
type MemoryCities struct {
	mu     sync.Mutex
	cities []models.City
}

func NewMemoryCities() *MemoryCities {
	return &MemoryCities{}
}

func (m *MemoryCities) SearchPrefix(ctx context.Context, q string, limit int64) ([]models.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.ToLower(q)
	var out []models.City
	for _, city := range m.cities {
		if strings.HasPrefix(strings.ToLower(city.Name), prefix) ||
			strings.HasPrefix(strings.ToLower(city.DisplayName), prefix) {
			out = append(out, city)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Population > out[j].Population
	})
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryCities) InsertMany(ctx context.Context, cities []models.City) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range cities {
		if cities[i].ID.IsZero() {
			cities[i].ID = primitive.NewObjectID()
		}
		if cities[i].CreatedAt.IsZero() {
			cities[i].CreatedAt = time.Now()
		}
	}
	m.cities = append(m.cities, cities...)
	return nil
}

func (m *MemoryCities) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cities = nil
	return nil
}
