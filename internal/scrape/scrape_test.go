package scrape

import "testing"

const loginPage = `<!DOCTYPE html>
<html>
<head>
<meta name="csrf-token" content="meta-csrf-value">
</head>
<body>
<form action="/login" method="post">
  <input type="hidden" name="_token" value="hidden-token-1">
  <input type="hidden" name="flow" value="signin">
  <input type="hidden" name="trace" value="">
  <input type="email" id="sign-in-email" name="login_email">
  <input type="password" id="signInPassword" name="login_password">
  <button type="submit">Sign In</button>
</form>
</body>
</html>`

func TestCSRFTokenFromMeta(t *testing.T) {
	if got := CSRFToken(loginPage); got != "meta-csrf-value" {
		t.Fatalf("CSRFToken = %q, want meta-csrf-value", got)
	}
}

func TestCSRFTokenFromInputFallback(t *testing.T) {
	page := `<form><input type="hidden" name="_csrf" value="input-csrf"></form>`
	if got := CSRFToken(page); got != "input-csrf" {
		t.Fatalf("CSRFToken = %q, want input-csrf", got)
	}
}

func TestCSRFTokenAbsent(t *testing.T) {
	if got := CSRFToken(`<p>no forms here</p>`); got != "" {
		t.Fatalf("CSRFToken = %q, want empty", got)
	}
}

func TestInputNameByID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"sign-in-email", "login_email"},
		{"signInPassword", "login_password"},
		{"missing-id", ""},
	}
	for _, tt := range tests {
		if got := InputNameByID(loginPage, tt.id); got != tt.want {
			t.Errorf("InputNameByID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestHiddenInputsBounded(t *testing.T) {
	inputs := HiddenInputs(loginPage, 5)
	if len(inputs) != 3 {
		t.Fatalf("HiddenInputs returned %d inputs, want 3", len(inputs))
	}
	if inputs[0].Name != "_token" || inputs[0].Value != "hidden-token-1" {
		t.Fatalf("first hidden input = %+v", inputs[0])
	}
	if inputs[2].Name != "trace" || inputs[2].Value != "" {
		t.Fatalf("third hidden input = %+v", inputs[2])
	}

	if got := HiddenInputs(loginPage, 2); len(got) != 2 {
		t.Fatalf("HiddenInputs(max=2) returned %d inputs", len(got))
	}
	if got := HiddenInputs(loginPage, 0); got != nil {
		t.Fatalf("HiddenInputs(max=0) = %v, want nil", got)
	}
}

const checkoutPage = `<div class="order">
  <div class="details-row">
    <div class="details-label text-white-50">Product</div>
    <div class="details-value">60 UC</div>
  </div>
  <div class="details-row">
    <div class="details-label text-white-50">Username</div>
    <div class="details-value">
      ProGamer99
    </div>
  </div>
</div>`

func TestCheckoutUsername(t *testing.T) {
	if got := CheckoutUsername(checkoutPage); got != "ProGamer99" {
		t.Fatalf("CheckoutUsername = %q, want ProGamer99", got)
	}
}

func TestCheckoutUsernameRowAbsent(t *testing.T) {
	page := `<div class="details-row">
	  <div class="details-label">Product</div>
	  <div class="details-value">60 UC</div>
	</div>`
	if got := CheckoutUsername(page); got != "" {
		t.Fatalf("CheckoutUsername = %q, want empty", got)
	}
}

func TestRegistrationID(t *testing.T) {
	page := `<script>var cfg = {'region': 'in', 'rgid': 'rg-4456', 'catalog': 'x'};</script>`
	if got := RegistrationID(page); got != "rg-4456" {
		t.Fatalf("RegistrationID = %q, want rg-4456", got)
	}
	if got := RegistrationID(`<script>var cfg = {};</script>`); got != "" {
		t.Fatalf("RegistrationID = %q, want empty", got)
	}
}
