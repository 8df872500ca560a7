package server

import "html/template"

// pageTemplates renders the shop pages. Element ids, classes and data-qa
// attributes match the public site so the page objects work unchanged.
var pageTemplates = template.Must(template.New("shop").Parse(layoutHTML + pagesHTML))

const layoutHTML = `
{{define "header"}}<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: Roboto, sans-serif; margin: 0; }
        header { display: flex; align-items: center; gap: 16px; padding: 12px 24px; border-bottom: 1px solid #ddd; }
        header ul { display: flex; gap: 16px; list-style: none; margin: 0; padding: 0; }
        main { padding: 24px; }
        .modal { display: none; position: fixed; inset: 0; background: rgba(0,0,0,.5); z-index: 100; }
        .modal.show { display: block; }
        .modal-content { background: #fff; margin: 120px auto; padding: 24px; width: 320px; }
        .fc-consent-root { position: fixed; inset: 0; background: rgba(0,0,0,.6); z-index: 1000; }
        .fc-dialog { background: #fff; margin: 160px auto; padding: 24px; width: 360px; }
        .product-image-wrapper { display: inline-block; width: 220px; margin: 8px; border: 1px solid #eee; padding: 8px; }
        #cart_items table { border-collapse: collapse; }
        #cart_items td { padding: 4px 12px; }
    </style>
</head>
<body>
{{if .Consent}}
<div class="fc-consent-root">
    <div class="fc-dialog-container fc-dialog">
        <p>This site asks for consent to use your data</p>
        <button class="fc-button fc-cta-consent" aria-label="Consent"
            onclick="document.querySelector('.fc-consent-root').remove()">Consent</button>
    </div>
</div>
{{end}}
<header id="header">
    <a href="/"><img src="/static/logo.png" alt="Website for automation practice" width="160" height="40"></a>
    <ul class="nav navbar-nav">
        <li><a href="/">Home</a></li>
        <li><a href="/products">Products</a></li>
        <li><a href="/view_cart">Cart</a></li>
        {{if .User}}
        <li><a href="/logout">Logout</a></li>
        <li><a>Logged in as <b>{{.User.Name}}</b></a></li>
        {{else}}
        <li><a href="/login">Signup / Login</a></li>
        {{end}}
        <li><a href="/contact_us">Contact us</a></li>
    </ul>
</header>
<main>
{{end}}

{{define "footer"}}
</main>
<img src="/pagead/pixel.gif" alt="" width="1" height="1">
<script>
function addToCart(id) {
    fetch('/add_to_cart/' + id, {credentials: 'same-origin'})
        .then(function (r) { return r.json(); })
        .then(function (res) {
            if (res.modal) {
                document.getElementById('cartModal').classList.add('show');
            }
        });
    return false;
}
function closeModal(id) {
    document.getElementById(id).classList.remove('show');
    return false;
}
</script>
</body>
</html>
{{end}}

{{define "cartModal"}}
<div class="modal" id="cartModal">
    <div class="modal-content">
        <h4 class="modal-title">Added!</h4>
        <p>Your product has been added to cart.</p>
        <p><a href="/view_cart"><u>View Cart</u></a></p>
        <button class="btn close-modal" onclick="closeModal('cartModal')">Continue Shopping</button>
    </div>
</div>
{{end}}
`

const pagesHTML = `
{{define "home"}}{{template "header" .}}
<section id="slider">
    <h1><span>Automation</span>Exercise</h1>
    <h2>Full-Fledged practice website for Automation Engineers</h2>
</section>
<section class="features_items">
    <h2 class="title text-center">Features Items</h2>
    {{template "productCards" .}}
</section>
{{template "cartModal" .}}
{{template "footer" .}}{{end}}

{{define "productCards"}}
{{range .Products}}
<div class="product-image-wrapper">
    <div class="single-products">
        <div class="productinfo text-center">
            <h2>{{.Price}}</h2>
            <p>{{.Name}}</p>
            <a href="#" data-product-id="{{.ID}}" class="btn btn-default add-to-cart" onclick="return addToCart({{.ID}})">Add to cart</a>
        </div>
    </div>
    <div class="choose"><a href="/product_details/{{.ID}}">View Product</a></div>
</div>
{{end}}
{{end}}

{{define "login"}}{{template "header" .}}
<section id="form">
    <div class="login-form">
        <h2>Login to your account</h2>
        <form action="/login" method="POST">
            <input type="email" data-qa="login-email" placeholder="Email Address" name="email" required>
            <input type="password" data-qa="login-password" placeholder="Password" name="password" required>
            {{if .Error}}<p style="color: red;">{{.Error}}</p>{{end}}
            <button type="submit" data-qa="login-button" class="btn btn-default">Login</button>
        </form>
    </div>
    <div class="signup-form">
        <h2>New User Signup!</h2>
        <form action="/signup" method="POST">
            <input type="text" data-qa="signup-name" placeholder="Name" name="name" required>
            <input type="email" data-qa="signup-email" placeholder="Email Address" name="email" required>
            {{if .SignupError}}<p style="color: red;">{{.SignupError}}</p>{{end}}
            <button type="submit" data-qa="signup-button" class="btn btn-default">Signup</button>
        </form>
    </div>
</section>
{{template "footer" .}}{{end}}

{{define "signup"}}{{template "header" .}}
<div class="login-form">
    <h2 class="title text-center"><b>Enter Account Information</b></h2>
    <form action="/signup/create" method="POST">
        <input type="text" data-qa="name" name="name" value="{{.Name}}">
        <input type="email" data-qa="email" name="email" value="{{.Email}}" readonly>
        <input type="password" data-qa="password" name="password" required>
        <button type="submit" data-qa="create-account" class="btn btn-default">Create Account</button>
    </form>
</div>
{{template "footer" .}}{{end}}

{{define "accountCreated"}}{{template "header" .}}
<h2 data-qa="account-created" class="title text-center"><b>Account Created!</b></h2>
<a href="/" data-qa="continue-button" class="btn btn-primary">Continue</a>
{{template "footer" .}}{{end}}

{{define "products"}}{{template "header" .}}
<h2 class="title text-center">All Products</h2>
<div class="features_items">
    {{template "productCards" .}}
</div>
{{template "cartModal" .}}
{{template "footer" .}}{{end}}

{{define "productDetail"}}{{template "header" .}}
<div class="product-details">
    <div class="product-information">
        <h2>{{.Product.Name}}</h2>
        <p>Category: {{.Product.UserType}} &gt; {{.Product.Category}}</p>
        <span>
            <span>{{.Product.Price}}</span>
            <label>Quantity:</label>
            <input type="number" id="quantity" name="quantity" value="1">
            <button type="button" class="btn btn-default cart" onclick="return addToCart({{.Product.ID}})">Add to cart</button>
        </span>
        <p><b>Brand:</b> {{.Product.Brand}}</p>
    </div>
</div>
{{template "cartModal" .}}
{{template "footer" .}}{{end}}

{{define "cart"}}{{template "header" .}}
<section id="cart_items">
    <table class="table table-condensed" id="cart_info_table">
        <thead><tr><td>Item</td><td>Description</td><td>Price</td><td>Quantity</td></tr></thead>
        <tbody>
        {{range .Items}}
        <tr id="product-{{.Product.ID}}">
            <td class="cart_product">#{{.Product.ID}}</td>
            <td class="cart_description"><h4><a href="/product_details/{{.Product.ID}}">{{.Product.Name}}</a></h4></td>
            <td class="cart_price"><p>{{.Product.Price}}</p></td>
            <td class="cart_quantity"><button class="disabled">{{.Quantity}}</button></td>
        </tr>
        {{end}}
        </tbody>
    </table>
    {{if not .Items}}
    <span id="empty_cart"><p class="text-center"><b>Cart is empty!</b> Click <a href="/products">here</a> to buy products.</p></span>
    {{end}}
</section>
{{if .Items}}
<section id="do_action">
    {{if .User}}
    <a href="/checkout" class="btn btn-default check_out">Proceed To Checkout</a>
    {{else}}
    <a href="#" class="btn btn-default check_out" onclick="document.getElementById('checkoutModal').classList.add('show'); return false;">Proceed To Checkout</a>
    {{end}}
</section>
{{end}}
<div class="modal" id="checkoutModal">
    <div class="modal-content">
        <h4 class="modal-title">Checkout</h4>
        <p>Register / Login account to proceed on checkout.</p>
        <p><a href="/login"><u>Register / Login</u></a></p>
        <button class="btn close" onclick="closeModal('checkoutModal')">Continue On Cart</button>
    </div>
</div>
{{template "footer" .}}{{end}}

{{define "checkout"}}{{template "header" .}}
<div class="step-one"><h2 class="heading">Address Details</h2></div>
<ul id="address_delivery">
    <li class="address_firstname address_lastname">{{.User.Title}} {{.User.FirstName}} {{.User.LastName}}</li>
    <li class="address_address1">{{.User.Address1}}</li>
    <li class="address_city">{{.User.City}} {{.User.State}} {{.User.Zipcode}}</li>
</ul>
<div class="step-one"><h2 class="heading">Review Your Order</h2></div>
<table id="cart_info">
    <tbody>
    {{range .Items}}
    <tr><td>{{.Product.Name}}</td><td>{{.Product.Price}}</td><td>{{.Quantity}}</td></tr>
    {{end}}
    </tbody>
</table>
<textarea name="message" class="form-control"></textarea>
<a href="/payment" class="btn btn-default check_out">Place Order</a>
{{template "footer" .}}{{end}}

{{define "payment"}}{{template "header" .}}
<div class="step-one"><h2 class="heading">Payment</h2></div>
<form id="payment-form" action="/payment" method="POST">
    <label>Name on Card</label>
    <input type="text" name="name_on_card" data-qa="name-on-card" required>
    <label>Card Number</label>
    <input type="text" name="card_number" data-qa="card-number" required>
    <label>CVC</label>
    <input type="text" name="cvc" data-qa="cvc" placeholder="ex. 311" required>
    <label>Expiration</label>
    <input type="text" name="expiry_month" data-qa="expiry-month" placeholder="MM" required>
    <input type="text" name="expiry_year" data-qa="expiry-year" placeholder="YYYY" required>
    {{if .Error}}<p style="color: red;">{{.Error}}</p>{{end}}
    <button type="submit" data-qa="pay-button" id="submit" class="btn btn-default">Pay and Confirm Order</button>
</form>
{{template "footer" .}}{{end}}

{{define "paymentDone"}}{{template "header" .}}
<section id="form">
    <h2 data-qa="order-placed" class="title text-center"><b>Order Placed!</b></h2>
    <p>Congratulations! Your order has been confirmed!</p>
    <a href="/" data-qa="continue-button" class="btn btn-primary">Continue</a>
</section>
{{template "footer" .}}{{end}}

{{define "contact"}}{{template "header" .}}
<div class="contact-form">
    <h2 class="title text-center">Get In Touch</h2>
    <form id="contact-us-form" action="/contact_us" method="GET">
        <input type="text" data-qa="name" name="name" placeholder="Name">
        <input type="email" data-qa="email" name="email" placeholder="Email">
        <input type="text" data-qa="subject" name="subject" placeholder="Subject">
        <textarea data-qa="message" name="message" placeholder="Your Message Here"></textarea>
    </form>
</div>
{{template "footer" .}}{{end}}
`
