package api

import (
	"context"
	"fmt"
)

// Endpoints.
const (
	ProductsListPath         = "/productsList"
	BrandsListPath           = "/brandsList"
	SearchProductPath        = "/searchProduct"
	VerifyLoginPath          = "/verifyLogin"
	CreateAccountPath        = "/createAccount"
	UpdateAccountPath        = "/updateAccount"
	DeleteAccountPath        = "/deleteAccount"
	GetUserDetailByEmailPath = "/getUserDetailByEmail"
)

// UserType wraps the audience of a category.
type UserType struct {
	UserType string `json:"usertype"`
}

// Category is a product category.
type Category struct {
	UserType UserType `json:"usertype"`
	Category string   `json:"category"`
}

// Product is an item of the catalogue.
type Product struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Brand    string   `json:"brand"`
	Category Category `json:"category"`
}

// ProductsResponse answers productsList and searchProduct.
type ProductsResponse struct {
	ResponseCode int       `json:"responseCode"`
	Message      string    `json:"message,omitempty"`
	Products     []Product `json:"products"`
}

// Brand is a catalogue brand.
type Brand struct {
	ID    int    `json:"id"`
	Brand string `json:"brand"`
}

// BrandsResponse answers brandsList.
type BrandsResponse struct {
	ResponseCode int     `json:"responseCode"`
	Message      string  `json:"message,omitempty"`
	Brands       []Brand `json:"brands"`
}

// UserDetail is an account as returned by getUserDetailByEmail.
type UserDetail struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Title      string `json:"title"`
	BirthDay   string `json:"birth_day"`
	BirthMonth string `json:"birth_month"`
	BirthYear  string `json:"birth_year"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Company    string `json:"company"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`
	Zipcode    string `json:"zipcode"`
}

// UserDetailResponse answers getUserDetailByEmail.
type UserDetailResponse struct {
	ResponseCode int         `json:"responseCode"`
	Message      string      `json:"message,omitempty"`
	User         *UserDetail `json:"user,omitempty"`
}

// ProductsList fetches the whole catalogue.
func (c *Client) ProductsList(ctx context.Context) (*ProductsResponse, error) {
	out := &ProductsResponse{}
	if err := c.getJSON(ctx, ProductsListPath, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// BrandsList fetches every brand.
func (c *Client) BrandsList(ctx context.Context) (*BrandsResponse, error) {
	out := &BrandsResponse{}
	if err := c.getJSON(ctx, BrandsListPath, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchProduct searches the catalogue for term.
func (c *Client) SearchProduct(ctx context.Context, term string) (*ProductsResponse, error) {
	resp, err := c.Post(ctx, SearchProductPath, Form(map[string]string{"search_product": term}))
	if err != nil {
		return nil, err
	}
	out := &ProductsResponse{}
	if err := resp.JSON(out); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyLogin checks a pair of credentials.
func (c *Client) VerifyLogin(ctx context.Context, email, password string) (Envelope, error) {
	return c.envelope(c.Post(ctx, VerifyLoginPath, Form(map[string]string{
		"email":    email,
		"password": password,
	})))
}

// CreateAccount registers an account from a complete signup form.
func (c *Client) CreateAccount(ctx context.Context, form map[string]string) (Envelope, error) {
	return c.envelope(c.Post(ctx, CreateAccountPath, Form(form)))
}

// UpdateAccount updates the account identified by the form's email and
// password.
func (c *Client) UpdateAccount(ctx context.Context, form map[string]string) (Envelope, error) {
	return c.envelope(c.Put(ctx, UpdateAccountPath, Form(form)))
}

// DeleteAccount removes an account.
func (c *Client) DeleteAccount(ctx context.Context, email, password string) (Envelope, error) {
	return c.envelope(c.Delete(ctx, DeleteAccountPath, Form(map[string]string{
		"email":    email,
		"password": password,
	})))
}

// GetUserDetailByEmail looks an account up by email.
func (c *Client) GetUserDetailByEmail(ctx context.Context, email string) (*UserDetailResponse, error) {
	out := &UserDetailResponse{}
	if err := c.getJSON(ctx, GetUserDetailByEmailPath, map[string]string{"email": email}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params map[string]string, out interface{}) error {
	resp, err := c.Get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := VerifyStatusCode(resp, 200); err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	return resp.JSON(out)
}

func (c *Client) envelope(resp *Response, err error) (Envelope, error) {
	if err != nil {
		return Envelope{}, err
	}
	return resp.Envelope()
}
