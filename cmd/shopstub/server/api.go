package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Envelope messages, as worded by the public API.
const (
	msgMethodNotSupported = "This request method is not supported."
	msgUserExists         = "User exists!"
	msgUserNotFound       = "User not found!"
	msgUserCreated        = "User created!"
	msgEmailExists        = "Email already exists!"
	msgUserUpdated        = "User updated!"
	msgAccountDeleted     = "Account deleted!"
	msgAccountNotFound    = "Account not found!"
	msgNoAccountForEmail  = "Account not found with this email, try another email!"
)

func missingParam(what, method string) string {
	return "Bad request, " + what + " parameter is missing in " + method + " request."
}

// requiredAccountFields must be present in a createAccount form.
var requiredAccountFields = []string{"name", "email", "password"}

func (s *Server) apiRoutes(r chi.Router) {
	r.HandleFunc("/productsList", s.onlyMethod(http.MethodGet, s.apiProductsList))
	r.HandleFunc("/brandsList", s.onlyMethod(http.MethodGet, s.apiBrandsList))
	r.HandleFunc("/searchProduct", s.onlyMethod(http.MethodPost, s.apiSearchProduct))
	r.HandleFunc("/verifyLogin", s.onlyMethod(http.MethodPost, s.apiVerifyLogin))
	r.HandleFunc("/createAccount", s.onlyMethod(http.MethodPost, s.apiCreateAccount))
	r.HandleFunc("/updateAccount", s.onlyMethod(http.MethodPut, s.apiUpdateAccount))
	r.HandleFunc("/deleteAccount", s.onlyMethod(http.MethodDelete, s.apiDeleteAccount))
	r.HandleFunc("/getUserDetailByEmail", s.onlyMethod(http.MethodGet, s.apiGetUserDetail))
}

// onlyMethod answers any other method with a 405 envelope.
func (s *Server) onlyMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeEnvelope(w, http.StatusMethodNotAllowed, msgMethodNotSupported)
			return
		}
		h(w, r)
	}
}

// writeJSON answers HTTP 200 with v. The public API labels JSON as
// text/html, and clients have to cope with that.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func writeEnvelope(w http.ResponseWriter, code int, message string) {
	writeJSON(w, map[string]interface{}{
		"responseCode": code,
		"message":      message,
	})
}

// formValues reads a urlencoded body for any method (net/http only parses
// POST, PUT and PATCH bodies) merged over the query string.
func formValues(r *http.Request) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range r.URL.Query() {
		out[k] = v[0]
	}
	if r.Body == nil {
		return out, nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var doc map[string]interface{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &doc); err != nil {
				return nil, err
			}
		}
		for k, v := range doc {
			switch tv := v.(type) {
			case string:
				out[k] = tv
			default:
				b, _ := json.Marshal(tv)
				out[k] = string(b)
			}
		}
		return out, nil
	}
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, err
	}
	for k, v := range values {
		out[k] = v[0]
	}
	return out, nil
}

func (s *Server) form(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	form, err := formValues(r)
	if err != nil {
		s.log.Debug("bad request body", zap.Error(err))
		writeEnvelope(w, http.StatusBadRequest, "Bad request, invalid body.")
		return nil, false
	}
	return form, true
}

type apiProduct struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	Price    string      `json:"price"`
	Brand    string      `json:"brand"`
	Category apiCategory `json:"category"`
}

type apiCategory struct {
	UserType struct {
		UserType string `json:"usertype"`
	} `json:"usertype"`
	Category string `json:"category"`
}

func toAPIProducts(products []Product) []apiProduct {
	out := make([]apiProduct, 0, len(products))
	for _, p := range products {
		ap := apiProduct{ID: p.ID, Name: p.Name, Price: p.Price, Brand: p.Brand}
		ap.Category.UserType.UserType = p.UserType
		ap.Category.Category = p.Category
		out = append(out, ap)
	}
	return out
}

func (s *Server) apiProductsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"responseCode": http.StatusOK,
		"products":     toAPIProducts(catalog),
	})
}

func (s *Server) apiBrandsList(w http.ResponseWriter, r *http.Request) {
	type apiBrand struct {
		ID    int    `json:"id"`
		Brand string `json:"brand"`
	}
	out := make([]apiBrand, 0, len(brands))
	for _, b := range brands {
		out = append(out, apiBrand(b))
	}
	writeJSON(w, map[string]interface{}{
		"responseCode": http.StatusOK,
		"brands":       out,
	})
}

func (s *Server) apiSearchProduct(w http.ResponseWriter, r *http.Request) {
	form, ok := s.form(w, r)
	if !ok {
		return
	}
	term, present := form["search_product"]
	if !present {
		writeEnvelope(w, http.StatusBadRequest, missingParam("search_product", "POST"))
		return
	}
	writeJSON(w, map[string]interface{}{
		"responseCode": http.StatusOK,
		"products":     toAPIProducts(SearchProducts(term)),
	})
}

func (s *Server) apiVerifyLogin(w http.ResponseWriter, r *http.Request) {
	form, ok := s.form(w, r)
	if !ok {
		return
	}
	email, hasEmail := form["email"]
	password, hasPassword := form["password"]
	if !hasEmail || !hasPassword {
		writeEnvelope(w, http.StatusBadRequest, missingParam("email or password", "POST"))
		return
	}
	if _, ok := s.store.Authenticate(email, password); !ok {
		writeEnvelope(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	writeEnvelope(w, http.StatusOK, msgUserExists)
}

func (s *Server) apiCreateAccount(w http.ResponseWriter, r *http.Request) {
	form, ok := s.form(w, r)
	if !ok {
		return
	}
	for _, field := range requiredAccountFields {
		if form[field] == "" {
			writeEnvelope(w, http.StatusBadRequest, missingParam(field, "POST"))
			return
		}
	}

	account := Account{Email: form["email"]}
	account.applyForm(form)
	if _, created := s.store.CreateAccount(account); !created {
		writeEnvelope(w, http.StatusBadRequest, msgEmailExists)
		return
	}
	writeEnvelope(w, http.StatusCreated, msgUserCreated)
}

func (s *Server) apiUpdateAccount(w http.ResponseWriter, r *http.Request) {
	form, ok := s.form(w, r)
	if !ok {
		return
	}
	if form["email"] == "" || form["password"] == "" {
		writeEnvelope(w, http.StatusBadRequest, missingParam("email or password", "PUT"))
		return
	}
	if !s.store.UpdateAccount(form["email"], form["password"], form) {
		writeEnvelope(w, http.StatusNotFound, msgAccountNotFound)
		return
	}
	writeEnvelope(w, http.StatusOK, msgUserUpdated)
}

func (s *Server) apiDeleteAccount(w http.ResponseWriter, r *http.Request) {
	form, ok := s.form(w, r)
	if !ok {
		return
	}
	if form["email"] == "" || form["password"] == "" {
		writeEnvelope(w, http.StatusBadRequest, missingParam("email or password", "DELETE"))
		return
	}
	if !s.store.DeleteAccount(form["email"], form["password"]) {
		writeEnvelope(w, http.StatusNotFound, msgAccountNotFound)
		return
	}
	writeEnvelope(w, http.StatusOK, msgAccountDeleted)
}

func (s *Server) apiGetUserDetail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeEnvelope(w, http.StatusBadRequest, missingParam("email", "GET"))
		return
	}
	a, ok := s.store.Account(email)
	if !ok {
		writeEnvelope(w, http.StatusNotFound, msgNoAccountForEmail)
		return
	}
	writeJSON(w, map[string]interface{}{
		"responseCode": http.StatusOK,
		"user": map[string]interface{}{
			"id":          a.ID,
			"name":        a.Name,
			"email":       a.Email,
			"title":       a.Title,
			"birth_day":   a.BirthDate,
			"birth_month": a.BirthMonth,
			"birth_year":  a.BirthYear,
			"first_name":  a.FirstName,
			"last_name":   a.LastName,
			"company":     a.Company,
			"address1":    a.Address1,
			"address2":    a.Address2,
			"country":     a.Country,
			"state":       a.State,
			"city":        a.City,
			"zipcode":     a.Zipcode,
		},
	})
}

// productID parses the {id} URL parameter.
func productID(r *http.Request) (Product, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return Product{}, false
	}
	return ProductByID(id)
}
