package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerStartStop(t *testing.T) {
	// Create server with random port
	srv, err := NewServer(DefaultConfig())
	require.NoError(t, err)

	addr, err := srv.Start()
	require.NoError(t, err)

	// Verify we got a real address (not :0)
	assert.NotEmpty(t, addr)
	assert.NotEqual(t, ":0", addr)
	assert.Equal(t, addr, srv.Addr())
	assert.True(t, strings.HasPrefix(srv.URL(), "http://127.0.0.1:"), "URL() = %q", srv.URL())
	t.Logf("Server started on %s", addr)

	resp, err := http.Get(srv.URL() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<title>Automation Exercise</title>")

	// Second Start is a no-op
	again, err := srv.Start()
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, srv.Shutdown(ctx), "second Shutdown should be a no-op")

	// Verify server is stopped (should fail to connect)
	_, err = http.Get(srv.URL() + "/")
	assert.Error(t, err, "expected connection error after shutdown")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":0", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, Flaky{}, cfg.Flaky)

	flaky := FlakyConfig()
	assert.True(t, flaky.Flaky.ConsentOverlay)
	assert.Equal(t, 1, flaky.Flaky.DetailFailures)
	assert.True(t, flaky.Flaky.SuppressModalOnce)
}

func TestNewServerRejectsNegativeFailures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Flaky.DetailFailures = -1
	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestURLBeforeStart(t *testing.T) {
	srv, err := NewServer(DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, srv.Addr())
	assert.Empty(t, srv.URL())
}

// shop is an httptest server around the stub with a cookie-aware client.
type shop struct {
	t      *testing.T
	srv    *Server
	ts     *httptest.Server
	client *http.Client
}

func newShop(t *testing.T, cfg Config) *shop {
	t.Helper()
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &shop{t: t, srv: srv, ts: ts, client: &http.Client{Jar: jar, Timeout: 5 * time.Second}}
}

func (s *shop) do(method, path string, form url.Values) (int, string) {
	s.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, s.ts.URL+path, body)
	require.NoError(s.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := s.client.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, string(raw)
}

func (s *shop) get(path string) (int, string) {
	return s.do(http.MethodGet, path, nil)
}

func (s *shop) envelope(method, path string, form url.Values) map[string]interface{} {
	s.t.Helper()
	code, body := s.do(method, path, form)
	require.Equal(s.t, http.StatusOK, code, "the API always answers HTTP 200")
	var doc map[string]interface{}
	require.NoError(s.t, json.Unmarshal([]byte(body), &doc), body)
	return doc
}

func (s *shop) register(email, password string) {
	s.t.Helper()
	_, ok := s.srv.Store().CreateAccount(Account{Name: "Shopper", Email: email, Password: password})
	require.True(s.t, ok)
}

func TestAPIProductsList(t *testing.T) {
	s := newShop(t, DefaultConfig())

	resp, err := s.client.Get(s.ts.URL + "/api/productsList")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	var doc struct {
		ResponseCode int `json:"responseCode"`
		Products     []struct {
			ID       int    `json:"id"`
			Name     string `json:"name"`
			Price    string `json:"price"`
			Brand    string `json:"brand"`
			Category struct {
				UserType struct {
					UserType string `json:"usertype"`
				} `json:"usertype"`
				Category string `json:"category"`
			} `json:"category"`
		} `json:"products"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, 200, doc.ResponseCode)
	require.Len(t, doc.Products, len(catalog))
	assert.Equal(t, "Blue Top", doc.Products[0].Name)
	assert.Equal(t, "Women", doc.Products[0].Category.UserType.UserType)
	assert.Equal(t, "Tops", doc.Products[0].Category.Category)
}

func TestAPIMethodNotSupported(t *testing.T) {
	s := newShop(t, DefaultConfig())

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/productsList"},
		{http.MethodPut, "/api/brandsList"},
		{http.MethodGet, "/api/searchProduct"},
		{http.MethodDelete, "/api/verifyLogin"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			doc := s.envelope(tt.method, tt.path, nil)
			assert.EqualValues(t, 405, doc["responseCode"])
			assert.Equal(t, msgMethodNotSupported, doc["message"])
		})
	}
}

func TestAPIBrandsList(t *testing.T) {
	s := newShop(t, DefaultConfig())
	doc := s.envelope(http.MethodGet, "/api/brandsList", nil)
	assert.EqualValues(t, 200, doc["responseCode"])
	list, ok := doc["brands"].([]interface{})
	require.True(t, ok)
	assert.Len(t, list, len(brands))
}

func TestAPISearchProduct(t *testing.T) {
	s := newShop(t, DefaultConfig())

	doc := s.envelope(http.MethodPost, "/api/searchProduct", url.Values{"search_product": {"jean"}})
	assert.EqualValues(t, 200, doc["responseCode"])
	list := doc["products"].([]interface{})
	assert.Len(t, list, len(SearchProducts("jean")))
	assert.NotEmpty(t, list)

	doc = s.envelope(http.MethodPost, "/api/searchProduct", nil)
	assert.EqualValues(t, 400, doc["responseCode"])
	assert.Equal(t, "Bad request, search_product parameter is missing in POST request.", doc["message"])
}

func TestAPIVerifyLogin(t *testing.T) {
	s := newShop(t, DefaultConfig())
	s.register("buyer@example.com", "secret")

	tests := []struct {
		name     string
		form     url.Values
		wantCode float64
		wantMsg  string
	}{
		{"valid", url.Values{"email": {"buyer@example.com"}, "password": {"secret"}}, 200, msgUserExists},
		{"email is case-insensitive", url.Values{"email": {"BUYER@example.com"}, "password": {"secret"}}, 200, msgUserExists},
		{"wrong password", url.Values{"email": {"buyer@example.com"}, "password": {"nope"}}, 404, msgUserNotFound},
		{"unknown user", url.Values{"email": {"ghost@example.com"}, "password": {"secret"}}, 404, msgUserNotFound},
		{"missing email", url.Values{"password": {"secret"}}, 400, "Bad request, email or password parameter is missing in POST request."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := s.envelope(http.MethodPost, "/api/verifyLogin", tt.form)
			assert.Equal(t, tt.wantCode, doc["responseCode"])
			assert.Equal(t, tt.wantMsg, doc["message"])
		})
	}
}

func TestAPIAccountLifecycle(t *testing.T) {
	s := newShop(t, DefaultConfig())
	form := url.Values{
		"name":      {"Test Bot"},
		"email":     {"bot@example.com"},
		"password":  {"pw1"},
		"firstname": {"Test"},
		"lastname":  {"Bot"},
		"city":      {"Lagos"},
	}

	doc := s.envelope(http.MethodPost, "/api/createAccount", form)
	assert.EqualValues(t, 201, doc["responseCode"])
	assert.Equal(t, msgUserCreated, doc["message"])

	doc = s.envelope(http.MethodPost, "/api/createAccount", form)
	assert.EqualValues(t, 400, doc["responseCode"])
	assert.Equal(t, msgEmailExists, doc["message"])

	doc = s.envelope(http.MethodGet, "/api/getUserDetailByEmail?email=bot@example.com", nil)
	assert.EqualValues(t, 200, doc["responseCode"])
	user := doc["user"].(map[string]interface{})
	assert.Equal(t, "Test Bot", user["name"])
	assert.Equal(t, "Test", user["first_name"])
	assert.Equal(t, "Lagos", user["city"])

	doc = s.envelope(http.MethodPut, "/api/updateAccount", url.Values{
		"email": {"bot@example.com"}, "password": {"pw1"}, "city": {"Abuja"},
	})
	assert.EqualValues(t, 200, doc["responseCode"])
	assert.Equal(t, msgUserUpdated, doc["message"])
	a, ok := s.srv.Store().Account("bot@example.com")
	require.True(t, ok)
	assert.Equal(t, "Abuja", a.City)
	assert.Equal(t, "Test Bot", a.Name, "fields absent from the update are kept")

	doc = s.envelope(http.MethodDelete, "/api/deleteAccount", url.Values{"email": {"bot@example.com"}, "password": {"wrong"}})
	assert.EqualValues(t, 404, doc["responseCode"])
	assert.Equal(t, msgAccountNotFound, doc["message"])

	doc = s.envelope(http.MethodDelete, "/api/deleteAccount", url.Values{"email": {"bot@example.com"}, "password": {"pw1"}})
	assert.EqualValues(t, 200, doc["responseCode"])
	assert.Equal(t, msgAccountDeleted, doc["message"])

	doc = s.envelope(http.MethodGet, "/api/getUserDetailByEmail?email=bot@example.com", nil)
	assert.EqualValues(t, 404, doc["responseCode"])
}

func TestAPICreateAccountRequiresFields(t *testing.T) {
	s := newShop(t, DefaultConfig())
	doc := s.envelope(http.MethodPost, "/api/createAccount", url.Values{"email": {"x@example.com"}})
	assert.EqualValues(t, 400, doc["responseCode"])
	assert.Equal(t, "Bad request, name parameter is missing in POST request.", doc["message"])
}

func TestAPIAcceptsJSONBodies(t *testing.T) {
	s := newShop(t, DefaultConfig())
	s.register("json@example.com", "pw")

	req, err := http.NewRequest(http.MethodPost, s.ts.URL+"/api/verifyLogin",
		strings.NewReader(`{"email":"json@example.com","password":"pw"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var doc map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.EqualValues(t, 200, doc["responseCode"])
}

func TestLoginPageFlow(t *testing.T) {
	s := newShop(t, DefaultConfig())
	s.register("buyer@example.com", "secret")

	_, body := s.get("/")
	assert.Contains(t, body, "Signup / Login")
	assert.NotContains(t, body, "Logged in as")

	_, body = s.get("/login")
	assert.Contains(t, body, "Login to your account")
	assert.Contains(t, body, "New User Signup!")
	assert.Contains(t, body, `data-qa="login-email"`)

	code, body := s.do(http.MethodPost, "/login", url.Values{"email": {"buyer@example.com"}, "password": {"bad"}})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, msgLoginFailed)

	code, body = s.do(http.MethodPost, "/login", url.Values{"email": {"buyer@example.com"}, "password": {"secret"}})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Logged in as <b>Shopper</b>")
	assert.Contains(t, body, `href="/logout"`)

	_, body = s.get("/logout")
	assert.Contains(t, body, "Login to your account")
	assert.NotContains(t, body, "Logged in as")
}

func TestSignupFlow(t *testing.T) {
	s := newShop(t, DefaultConfig())
	s.register("taken@example.com", "pw")

	_, body := s.do(http.MethodPost, "/signup", url.Values{"name": {"Taken"}, "email": {"taken@example.com"}})
	assert.Contains(t, body, msgSignupExists)

	_, body = s.do(http.MethodPost, "/signup", url.Values{"name": {"New"}, "email": {"new@example.com"}})
	assert.Contains(t, body, "Enter Account Information")
	assert.Contains(t, body, `value="new@example.com"`)

	_, body = s.do(http.MethodPost, "/signup/create", url.Values{
		"name": {"New"}, "email": {"new@example.com"}, "password": {"pw"},
	})
	assert.Contains(t, body, "Account Created!")
	assert.Contains(t, body, "Logged in as <b>New</b>")
	_, ok := s.srv.Store().Authenticate("new@example.com", "pw")
	assert.True(t, ok)
}

func TestCartAndPaymentFlow(t *testing.T) {
	s := newShop(t, DefaultConfig())
	s.register("buyer@example.com", "secret")

	_, body := s.get("/view_cart")
	assert.Contains(t, body, "Cart is empty!")

	code, body := s.get("/add_to_cart/33")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"added":33,"modal":true}`, body)
	s.get("/add_to_cart/33")
	s.get("/add_to_cart/1")

	code, _ = s.get("/add_to_cart/9999")
	assert.Equal(t, http.StatusNotFound, code)

	_, body = s.get("/view_cart")
	assert.NotContains(t, body, "Cart is empty!")
	assert.Equal(t, 2, strings.Count(body, `<tr id="product-`))
	assert.Contains(t, body, "Regular Fit Straight Jeans")
	assert.Contains(t, body, "checkoutModal")
	assert.Contains(t, body, `href="#" class="btn btn-default check_out"`, "guests get the login modal")

	// Guests are sent to the login page.
	_, body = s.get("/checkout")
	assert.Contains(t, body, "Login to your account")

	s.do(http.MethodPost, "/login", url.Values{"email": {"buyer@example.com"}, "password": {"secret"}})
	_, body = s.get("/view_cart")
	assert.Contains(t, body, `href="/checkout" class="btn btn-default check_out"`)

	_, body = s.get("/checkout")
	assert.Contains(t, body, `href="/payment"`)
	assert.Contains(t, body, "Place Order")

	_, body = s.get("/payment")
	assert.Contains(t, body, `data-qa="pay-button"`)

	_, body = s.do(http.MethodPost, "/payment", url.Values{"name_on_card": {"Test"}})
	assert.Contains(t, body, msgCardIncomplete)

	_, body = s.do(http.MethodPost, "/payment", url.Values{
		"name_on_card": {"Test Bot"},
		"card_number":  {"4111111111111111"},
		"cvc":          {"123"},
		"expiry_month": {"12"},
		"expiry_year":  {"2030"},
	})
	assert.Contains(t, body, `id="form"`)
	assert.Contains(t, body, "Congratulations! Your order has been confirmed!")
	assert.Contains(t, body, `data-qa="continue-button"`)

	_, body = s.get("/view_cart")
	assert.Contains(t, body, "Cart is empty!", "payment clears the cart")
}

func TestProductDetail(t *testing.T) {
	s := newShop(t, DefaultConfig())

	code, body := s.get("/product_details/33")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Regular Fit Straight Jeans")
	assert.Contains(t, body, `class="btn btn-default cart"`)

	code, _ = s.get("/product_details/9999")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.get("/product_details/abc")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFlakyQuirks(t *testing.T) {
	cfg := FlakyConfig()
	cfg.Flaky.DetailFailures = 2
	s := newShop(t, cfg)

	t.Run("consent overlay shows once", func(t *testing.T) {
		_, body := s.get("/")
		assert.Contains(t, body, "fc-consent-root")
		_, body = s.get("/")
		assert.NotContains(t, body, "fc-consent-root")
	})

	t.Run("detail page fails first", func(t *testing.T) {
		code, _ := s.get("/product_details/33")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		code, _ = s.get("/product_details/33")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		code, _ = s.get("/product_details/33")
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("modal suppressed once", func(t *testing.T) {
		_, body := s.get("/add_to_cart/1")
		assert.JSONEq(t, `{"added":1,"modal":false}`, body)
		_, body = s.get("/add_to_cart/1")
		assert.JSONEq(t, `{"added":1,"modal":true}`, body)
	})
}

func TestAdEndpointCountsHits(t *testing.T) {
	s := newShop(t, DefaultConfig())
	assert.Zero(t, s.srv.AdHits())

	_, body := s.get("/")
	assert.Contains(t, body, `src="/pagead/pixel.gif"`)

	code, _ := s.get("/pagead/pixel.gif")
	assert.Equal(t, http.StatusOK, code)
	s.get("/pagead/other")
	assert.EqualValues(t, 2, s.srv.AdHits())
}
