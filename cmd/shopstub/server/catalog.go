package server

import "strings"

// Product is a catalogue entry.
type Product struct {
	ID       int
	Name     string
	Price    string
	Brand    string
	UserType string
	Category string
}

// Brand is a catalogue brand.
type Brand struct {
	ID    int
	Brand string
}

// catalog is a slice of the real shop's catalogue; ids 1 and 33 are the
// products the UI flows buy.
var catalog = []Product{
	{1, "Blue Top", "Rs. 500", "Polo", "Women", "Tops"},
	{2, "Men Tshirt", "Rs. 400", "H&M", "Men", "Tshirts"},
	{3, "Sleeveless Dress", "Rs. 1000", "Madame", "Women", "Dress"},
	{4, "Stylish Dress", "Rs. 1500", "Madame", "Women", "Dress"},
	{5, "Winter Top", "Rs. 600", "Mast & Harbour", "Women", "Tops"},
	{6, "Summer White Top", "Rs. 400", "H&M", "Women", "Tops"},
	{7, "Madame Top For Women", "Rs. 1000", "Madame", "Women", "Tops"},
	{11, "Fancy Green Top", "Rs. 700", "Polo", "Women", "Tops"},
	{12, "Sleeves Printed Top - White", "Rs. 499", "H&M", "Women", "Tops"},
	{21, "Soft Stretch Jeans", "Rs. 799", "Kookie Kids", "Men", "Jeans"},
	{28, "Pure Cotton V-Neck T-Shirt", "Rs. 1299", "Allen Solly Junior", "Men", "Tshirts"},
	{33, "Regular Fit Straight Jeans", "Rs. 1200", "Biba", "Men", "Jeans"},
	{37, "Grunt Blue Slim Fit Jeans", "Rs. 1400", "Allen Solly Junior", "Men", "Jeans"},
	{43, "GRAPHIC DESIGN MEN T SHIRT - BLUE", "Rs. 1389", "Mast & Harbour", "Men", "Tshirts"},
}

var brands = []Brand{
	{1, "Polo"},
	{2, "H&M"},
	{3, "Madame"},
	{4, "Mast & Harbour"},
	{5, "Babyhug"},
	{6, "Allen Solly Junior"},
	{7, "Kookie Kids"},
	{8, "Biba"},
}

// ProductByID looks a product up.
func ProductByID(id int) (Product, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// SearchProducts matches term against name, brand and category,
// case-insensitively.
func SearchProducts(term string) []Product {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []Product
	for _, p := range catalog {
		for _, field := range []string{p.Name, p.Brand, p.Category} {
			if strings.Contains(strings.ToLower(field), term) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
