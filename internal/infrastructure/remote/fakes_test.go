package remote

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/marketly/storefront/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub stores
// ---------------------------------------------------------------------------

var errStoreDown = errors.New("store unavailable")

type memAccounts struct {
	mu   sync.Mutex
	byID map[string]Account
}

func (m *memAccounts) CreateAccount(_ context.Context, a Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return domain.ErrEmailTaken
		}
	}
	m.byID[a.ID] = a
	return nil
}

func (m *memAccounts) AccountByEmail(_ context.Context, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memAccounts) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memAccounts) AccountByID(_ context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &a, nil
}

type memProfiles struct {
	mu      sync.Mutex
	byID    map[string]Profile
	getErr  error
	putErr  error
	roleErr error
}

func (m *memProfiles) GetProfile(_ context.Context, id string) (*Profile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &p, nil
}

func (m *memProfiles) PutProfile(_ context.Context, p Profile) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = p
	return nil
}

func (m *memProfiles) DeleteProfile(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memProfiles) SetRole(_ context.Context, id string, role domain.Role) error {
	if m.roleErr != nil {
		return m.roleErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	p.Role = role
	m.byID[id] = p
	return nil
}

type memProducts struct {
	mu   sync.Mutex
	recs []ProductRecord
	err  error
}

func (m *memProducts) sorted(keep func(ProductRecord) bool) []ProductRecord {
	out := []ProductRecord{}
	for _, r := range m.recs {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memProducts) ListProducts(_ context.Context, f domain.ProductFilter) ([]ProductRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r ProductRecord) bool {
		return f.Matches(domain.Product{Category: r.Category, Price: r.Price})
	}), nil
}

func (m *memProducts) ListBySeller(_ context.Context, sellerID string) ([]ProductRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r ProductRecord) bool { return r.SellerID == sellerID }), nil
}

func (m *memProducts) GetProduct(_ context.Context, id string) (*ProductRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recs {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (m *memProducts) InsertProduct(_ context.Context, p ProductRecord) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, p)
	return nil
}

func (m *memProducts) UpdateProduct(_ context.Context, id string, u ProductUpdate) (*ProductRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.recs {
		if r.ID != id {
			continue
		}
		if u.Name != nil {
			r.Name = *u.Name
		}
		if u.Price != nil {
			r.Price = *u.Price
		}
		if u.ImageIDs != nil {
			r.ImageIDs = u.ImageIDs
		}
		if u.Stock != nil {
			r.Stock = *u.Stock
		}
		r.UpdatedAt = u.UpdatedAt
		m.recs[i] = r
		return &r, nil
	}
	return nil, domain.ErrProductNotFound
}

func (m *memProducts) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.recs {
		if r.ID == id {
			m.recs = append(m.recs[:i], m.recs[i+1:]...)
			return nil
		}
	}
	return domain.ErrProductNotFound
}

type memOrders struct {
	mu     sync.Mutex
	orders []domain.Order // newest first
	err    error
}

func (m *memOrders) InsertOrder(_ context.Context, o domain.Order) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append([]domain.Order{o}, m.orders...)
	return nil
}

func (m *memOrders) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Order{}
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) ListAll(_ context.Context) ([]domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Order(nil), m.orders...), nil
}

func (m *memOrders) SetStatus(_ context.Context, id string, status domain.OrderStatus, at time.Time) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = status
			m.orders[i].UpdatedAt = at
			o := m.orders[i]
			return &o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

const fileBase = "https://files.test/bucket/"

type memFiles struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (m *memFiles) Put(_ context.Context, id string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[id] = data
	return nil
}

func (m *memFiles) URL(id string) string { return fileBase + id }

func (m *memFiles) IDFromURL(u string) (string, bool) {
	if !strings.HasPrefix(u, fileBase) {
		return "", false
	}
	return strings.TrimPrefix(u, fileBase), true
}

func (m *memFiles) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, id)
	return nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]string
	openErr  error
}

func (m *memSessions) Open(_ context.Context, sid, userID string, _ time.Duration) error {
	if m.openErr != nil {
		return m.openErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sid] = userID
	return nil
}

func (m *memSessions) Lookup(_ context.Context, sid string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, ok := m.sessions[sid]
	return uid, ok, nil
}

func (m *memSessions) Revoke(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sid)
	return nil
}

type fakeStores struct {
	accounts *memAccounts
	profiles *memProfiles
	products *memProducts
	orders   *memOrders
	files    *memFiles
	sessions *memSessions
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		accounts: &memAccounts{byID: map[string]Account{}},
		profiles: &memProfiles{byID: map[string]Profile{}},
		products: &memProducts{},
		orders:   &memOrders{},
		files:    &memFiles{blobs: map[string][]byte{}},
		sessions: &memSessions{sessions: map[string]string{}},
	}
}

func (f *fakeStores) Stores() Stores {
	return Stores{
		Accounts: f.accounts,
		Profiles: f.profiles,
		Products: f.products,
		Orders:   f.orders,
		Files:    f.files,
		Sessions: f.sessions,
	}
}
