package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thompsonoloko-droid/automation-e2e/cmd/shopstub/server"
)

// newStubClient points a client at a fresh shop stub.
func newStubClient(t *testing.T) (*Client, *server.Server) {
	t.Helper()
	srv, err := server.NewServer(server.DefaultConfig())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/api", WithLimiter(nil), WithLogger(zaptest.NewLogger(t))), srv
}

func signupForm(email, password string) map[string]string {
	return map[string]string{
		"name":          "Test Bot",
		"email":         email,
		"password":      password,
		"title":         "Mr",
		"birth_date":    "10",
		"birth_month":   "5",
		"birth_year":    "1990",
		"firstname":     "Test",
		"lastname":      "Bot",
		"company":       "QA",
		"address1":      "1 Test Street",
		"country":       "India",
		"zipcode":       "100001",
		"state":         "State",
		"city":          "City",
		"mobile_number": "5550000",
	}
}

func TestProductsList(t *testing.T) {
	c, _ := newStubClient(t)
	ctx := context.Background()

	list, err := c.ProductsList(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, list.ResponseCode)
	require.NotEmpty(t, list.Products)
	for _, p := range list.Products {
		assert.NotZero(t, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Category.UserType.UserType)
	}

	resp, err := c.Get(ctx, ProductsListPath, nil)
	require.NoError(t, err)
	assert.NoError(t, ValidateSchema(resp, SchemaProductsList))
}

func TestProductsListRejectsPost(t *testing.T) {
	c, _ := newStubClient(t)

	resp, err := c.Post(context.Background(), ProductsListPath, Body{})
	require.NoError(t, err)
	require.NoError(t, VerifyStatusCode(resp, http.StatusOK))
	assert.NoError(t, ValidateSchema(resp, SchemaEnvelope))

	env, err := resp.Envelope()
	require.NoError(t, err)
	assert.Equal(t, 405, env.ResponseCode)
	assert.Contains(t, env.Message, "not supported")
}

func TestBrandsList(t *testing.T) {
	c, _ := newStubClient(t)

	brands, err := c.BrandsList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, brands.ResponseCode)
	require.NotEmpty(t, brands.Brands)
	for _, b := range brands.Brands {
		assert.NotZero(t, b.ID)
		assert.NotEmpty(t, b.Brand)
	}

	resp, err := c.Get(context.Background(), BrandsListPath, nil)
	require.NoError(t, err)
	assert.NoError(t, ValidateSchema(resp, SchemaBrandsList))
}

func TestSearchProduct(t *testing.T) {
	c, _ := newStubClient(t)

	for _, term := range []string{"Top", "Tshirt", "Jean"} {
		t.Run(term, func(t *testing.T) {
			res, err := c.SearchProduct(context.Background(), term)
			require.NoError(t, err)
			assert.Equal(t, 200, res.ResponseCode)
			assert.NotEmpty(t, res.Products)
		})
	}

	resp, err := c.Post(context.Background(), SearchProductPath, Body{})
	require.NoError(t, err)
	env, err := resp.Envelope()
	require.NoError(t, err)
	assert.Equal(t, 400, env.ResponseCode)
	assert.Contains(t, env.Message, "parameter")
}

func TestAccountLifecycle(t *testing.T) {
	c, srv := newStubClient(t)
	ctx := context.Background()
	email, password := "bot@example.com", "TestPassword123!"

	env, err := c.CreateAccount(ctx, signupForm(email, password))
	require.NoError(t, err)
	assert.Equal(t, Envelope{ResponseCode: 201, Message: "User created!"}, env)

	env, err = c.CreateAccount(ctx, signupForm(email, password))
	require.NoError(t, err)
	assert.Equal(t, 400, env.ResponseCode)

	env, err = c.VerifyLogin(ctx, email, password)
	require.NoError(t, err)
	assert.Equal(t, 200, env.ResponseCode)
	assert.Equal(t, "User exists!", env.Message)

	detail, err := c.GetUserDetailByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, 200, detail.ResponseCode)
	require.NotNil(t, detail.User)
	assert.Equal(t, email, detail.User.Email)
	assert.Equal(t, "Test", detail.User.FirstName)
	assert.Equal(t, "10", detail.User.BirthDay)

	resp, err := c.Get(ctx, GetUserDetailByEmailPath, map[string]string{"email": email})
	require.NoError(t, err)
	assert.NoError(t, ValidateSchema(resp, SchemaUserDetail))

	update := signupForm(email, password)
	update["city"] = "Updated City"
	env, err = c.UpdateAccount(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, 200, env.ResponseCode)
	a, ok := srv.Store().Account(email)
	require.True(t, ok)
	assert.Equal(t, "Updated City", a.City)

	env, err = c.DeleteAccount(ctx, email, password)
	require.NoError(t, err)
	assert.Equal(t, Envelope{ResponseCode: 200, Message: "Account deleted!"}, env)

	env, err = c.VerifyLogin(ctx, email, password)
	require.NoError(t, err)
	assert.Equal(t, 404, env.ResponseCode)

	detail, err = c.GetUserDetailByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, 404, detail.ResponseCode)
	assert.Nil(t, detail.User)
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		schema  string
		wantErr string
	}{
		{"valid envelope", `{"responseCode": 404, "message": "User not found!"}`, SchemaEnvelope, ""},
		{"envelope without message", `{"responseCode": 404}`, SchemaEnvelope, "message"},
		{"empty products", `{"responseCode": 200, "products": []}`, SchemaProductsList, "products"},
		{"wrong code", `{"responseCode": 400, "brands": [{"id": 1, "brand": "Polo"}]}`, SchemaBrandsList, "responseCode"},
		{"brand without name", `{"responseCode": 200, "brands": [{"id": 1}]}`, SchemaBrandsList, "brand"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON([]byte(tt.doc), tt.schema)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "does not match "+tt.schema+" schema")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSchemaUnknownName(t *testing.T) {
	err := ValidateJSON([]byte(`{}`), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown schema "nope"`)

	assert.Error(t, ValidateSchema(nil, SchemaEnvelope))
}
