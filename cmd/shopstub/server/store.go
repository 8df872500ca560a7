package server

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Account is a registered shop user. Field names follow the createAccount
// form.
type Account struct {
	ID           int
	Name         string
	Email        string
	Password     string
	Title        string
	BirthDate    string
	BirthMonth   string
	BirthYear    string
	FirstName    string
	LastName     string
	Company      string
	Address1     string
	Address2     string
	Country      string
	Zipcode      string
	State        string
	City         string
	MobileNumber string
}

// applyForm copies the non-empty createAccount/updateAccount fields of form.
func (a *Account) applyForm(form map[string]string) {
	set := func(dst *string, key string) {
		if v, ok := form[key]; ok && v != "" {
			*dst = v
		}
	}
	set(&a.Name, "name")
	set(&a.Password, "password")
	set(&a.Title, "title")
	set(&a.BirthDate, "birth_date")
	set(&a.BirthMonth, "birth_month")
	set(&a.BirthYear, "birth_year")
	set(&a.FirstName, "firstname")
	set(&a.LastName, "lastname")
	set(&a.Company, "company")
	set(&a.Address1, "address1")
	set(&a.Address2, "address2")
	set(&a.Country, "country")
	set(&a.Zipcode, "zipcode")
	set(&a.State, "state")
	set(&a.City, "city")
	set(&a.MobileNumber, "mobile_number")
}

// Store holds accounts, sessions and carts in memory. It is safe for
// concurrent use.
type Store struct {
	mu       sync.Mutex
	nextID   int
	accounts map[string]*Account // by lower-cased email
	sessions map[string]string   // session id -> email ("" for guests)
	carts    map[string][]int    // session id -> product ids
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		nextID:   1,
		accounts: make(map[string]*Account),
		sessions: make(map[string]string),
		carts:    make(map[string][]int),
	}
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount registers a. It returns false if the email is taken.
func (s *Store) CreateAccount(a Account) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(a.Email)
	if _, exists := s.accounts[k]; exists {
		return Account{}, false
	}
	a.ID = s.nextID
	s.nextID++
	s.accounts[k] = &a
	return a, true
}

// Account looks an account up by email.
func (s *Store) Account(email string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[key(email)]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

// Authenticate reports whether email and password match an account.
func (s *Store) Authenticate(email, password string) (Account, bool) {
	a, ok := s.Account(email)
	if !ok || a.Password != password {
		return Account{}, false
	}
	return a, true
}

// UpdateAccount applies form to the account matching email and password.
func (s *Store) UpdateAccount(email, password string, form map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[key(email)]
	if !ok || a.Password != password {
		return false
	}
	a.applyForm(form)
	return true
}

// DeleteAccount removes the account matching email and password and ends
// its sessions.
func (s *Store) DeleteAccount(email, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(email)
	a, ok := s.accounts[k]
	if !ok || a.Password != password {
		return false
	}
	delete(s.accounts, k)
	for sid, owner := range s.sessions {
		if key(owner) == k {
			s.sessions[sid] = ""
		}
	}
	return true
}

// Accounts returns every account ordered by id.
func (s *Store) Accounts() []Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NewSession starts an anonymous session and returns its id.
func (s *Store) NewSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sid := uuid.NewString()
	s.sessions[sid] = ""
	return sid
}

// HasSession reports whether sid is a live session.
func (s *Store) HasSession(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sid]
	return ok
}

// Login binds sid to email.
func (s *Store) Login(sid, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = email
}

// Logout makes sid anonymous again and empties its cart.
func (s *Store) Logout(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sid]; ok {
		s.sessions[sid] = ""
	}
	delete(s.carts, sid)
}

// SessionUser returns the account logged in on sid.
func (s *Store) SessionUser(sid string) (Account, bool) {
	s.mu.Lock()
	email := s.sessions[sid]
	s.mu.Unlock()

	if email == "" {
		return Account{}, false
	}
	return s.Account(email)
}

// AddToCart appends product id to the cart of sid.
func (s *Store) AddToCart(sid string, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sid] = append(s.carts[sid], id)
}

// Cart returns the product ids in the cart of sid.
func (s *Store) Cart(sid string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, len(s.carts[sid]))
	copy(out, s.carts[sid])
	return out
}

// ClearCart empties the cart of sid.
func (s *Store) ClearCart(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sid)
}
