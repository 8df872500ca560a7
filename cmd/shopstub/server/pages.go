package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

const (
	sessionCookie = "sessionid"
	siteTitle     = "Automation Exercise"

	msgLoginFailed    = "Your email or password is incorrect!"
	msgSignupExists   = "Email Address already exist!"
	msgCardIncomplete = "Please fill in every card field."
)

// pixelGIF is a transparent 1x1 GIF served by the ad endpoint.
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type cartItem struct {
	Product  Product
	Quantity int
}

type pageData struct {
	Title       string
	Consent     bool
	User        *Account
	Error       string
	SignupError string
	Name        string
	Email       string
	Products    []Product
	Product     Product
	Items       []cartItem
}

// session returns the caller's session id, starting a new session when the
// cookie is missing or stale.
func (s *Server) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && s.store.HasSession(c.Value) {
		return c.Value
	}
	sid := s.store.NewSession()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

func (s *Server) render(w http.ResponseWriter, sid, name string, data pageData) {
	if data.Title == "" {
		data.Title = siteTitle
	}
	if a, ok := s.store.SessionUser(sid); ok {
		data.User = &a
	}
	if s.flaky.ConsentOverlay && s.consentShown.CompareAndSwap(false, true) {
		data.Consent = true
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) cartItems(sid string) []cartItem {
	var items []cartItem
	index := map[int]int{}
	for _, id := range s.store.Cart(sid) {
		if i, ok := index[id]; ok {
			items[i].Quantity++
			continue
		}
		p, ok := ProductByID(id)
		if !ok {
			continue
		}
		index[id] = len(items)
		items = append(items, cartItem{Product: p, Quantity: 1})
	}
	return items
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	s.render(w, sid, "home", pageData{Products: catalog})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	s.render(w, sid, "login", pageData{Title: siteTitle + " - Signup / Login"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	_ = r.ParseForm()

	a, ok := s.store.Authenticate(r.PostForm.Get("email"), r.PostForm.Get("password"))
	if !ok {
		s.render(w, sid, "login", pageData{
			Title: siteTitle + " - Signup / Login",
			Error: msgLoginFailed,
		})
		return
	}
	s.store.Login(sid, a.Email)
	s.log.Debug("login", zap.String("email", a.Email))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	_ = r.ParseForm()

	name, email := r.PostForm.Get("name"), r.PostForm.Get("email")
	if _, exists := s.store.Account(email); exists {
		s.render(w, sid, "login", pageData{
			Title:       siteTitle + " - Signup / Login",
			SignupError: msgSignupExists,
		})
		return
	}
	q := url.Values{"name": {name}, "email": {email}}
	http.Redirect(w, r, "/signup?"+q.Encode(), http.StatusFound)
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	q := r.URL.Query()
	s.render(w, sid, "signup", pageData{
		Title: siteTitle + " - Signup",
		Name:  q.Get("name"),
		Email: q.Get("email"),
	})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	_ = r.ParseForm()

	form := map[string]string{}
	for k, v := range r.PostForm {
		form[k] = v[0]
	}
	for _, field := range requiredAccountFields {
		if form[field] == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
	}

	account := Account{Email: form["email"]}
	account.applyForm(form)
	created, ok := s.store.CreateAccount(account)
	if !ok {
		s.render(w, sid, "login", pageData{
			Title:       siteTitle + " - Signup / Login",
			SignupError: msgSignupExists,
		})
		return
	}
	s.store.Login(sid, created.Email)
	s.render(w, sid, "accountCreated", pageData{Title: siteTitle + " - Account Created"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	s.store.Logout(sid)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	s.render(w, sid, "products", pageData{
		Title:    siteTitle + " - All Products",
		Products: catalog,
	})
}

func (s *Server) handleProductDetail(w http.ResponseWriter, r *http.Request) {
	if s.detailFailures.Add(1) <= int64(s.flaky.DetailFailures) {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	p, ok := productID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sid := s.session(w, r)
	s.render(w, sid, "productDetail", pageData{
		Title:   siteTitle + " - Product Details",
		Product: p,
	})
}

// handleAddToCart backs the add-to-cart buttons. The reply tells the page
// whether to open the cart modal.
func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	p, ok := productID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.store.AddToCart(sid, p.ID)

	modal := true
	if s.flaky.SuppressModalOnce && s.modalSkipped.CompareAndSwap(false, true) {
		modal = false
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"added": p.ID, "modal": modal})
}

func (s *Server) handleViewCart(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	s.render(w, sid, "cart", pageData{
		Title: siteTitle + " - Checkout",
		Items: s.cartItems(sid),
	})
}

// requireUser redirects guests to the login page.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request, sid string) bool {
	if _, ok := s.store.SessionUser(sid); ok {
		return true
	}
	http.Redirect(w, r, "/login", http.StatusFound)
	return false
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	if !s.requireUser(w, r, sid) {
		return
	}
	s.render(w, sid, "checkout", pageData{
		Title: siteTitle + " - Checkout",
		Items: s.cartItems(sid),
	})
}

func (s *Server) handlePaymentPage(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	if !s.requireUser(w, r, sid) {
		return
	}
	s.render(w, sid, "payment", pageData{Title: siteTitle + " - Payment"})
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	if !s.requireUser(w, r, sid) {
		return
	}
	_ = r.ParseForm()
	for _, field := range []string{"name_on_card", "card_number", "cvc", "expiry_month", "expiry_year"} {
		if r.PostForm.Get(field) == "" {
			s.render(w, sid, "payment", pageData{
				Title: siteTitle + " - Payment",
				Error: msgCardIncomplete,
			})
			return
		}
	}
	s.store.ClearCart(sid)
	s.render(w, sid, "paymentDone", pageData{Title: siteTitle + " - Order Placed"})
}

func (s *Server) handleContactUs(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	s.render(w, sid, "contact", pageData{Title: siteTitle + " - Contact us"})
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/gif")
	_, _ = w.Write(pixelGIF)
}

func (s *Server) handleAd(w http.ResponseWriter, r *http.Request) {
	s.adHits.Add(1)
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(pixelGIF)
}
