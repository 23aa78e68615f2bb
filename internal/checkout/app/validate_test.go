package app

import (
	"errors"
	"testing"

	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

func TestPlaceOrderRequest_Validate(t *testing.T) {
	base := PlaceOrderRequest{
		ShippingAddress: ShippingAddressInput{Address: "10 Main Street", PostalCode: "12345"},
		PaymentMethod:   "stripe",
	}

	tests := []struct {
		name      string
		mutate    func(r *PlaceOrderRequest)
		wantField string
	}{
		{name: "valid", mutate: func(*PlaceOrderRequest) {}},
		{name: "us zip+4", mutate: func(r *PlaceOrderRequest) { r.ShippingAddress.PostalCode = "12345-6789" }},
		{name: "uk postcode lower case", mutate: func(r *PlaceOrderRequest) { r.ShippingAddress.PostalCode = "sw1a 1aa" }},
		{name: "canadian postcode", mutate: func(r *PlaceOrderRequest) { r.ShippingAddress.PostalCode = "K1A 0B1" }},
		{name: "paypal upper case", mutate: func(r *PlaceOrderRequest) { r.PaymentMethod = " PayPal " }},
		{name: "short address", mutate: func(r *PlaceOrderRequest) { r.ShippingAddress.Address = "St" }, wantField: "shippingAddress.address"},
		{name: "blank address", mutate: func(r *PlaceOrderRequest) { r.ShippingAddress.Address = "     " }, wantField: "shippingAddress.address"},
		{name: "missing postal code", mutate: func(r *PlaceOrderRequest) { r.ShippingAddress.PostalCode = "" }, wantField: "shippingAddress.postalCode"},
		{name: "garbage postal code", mutate: func(r *PlaceOrderRequest) { r.ShippingAddress.PostalCode = "??-!!" }, wantField: "shippingAddress.postalCode"},
		{name: "missing payment method", mutate: func(r *PlaceOrderRequest) { r.PaymentMethod = "" }, wantField: "paymentMethod"},
		{name: "unknown payment method", mutate: func(r *PlaceOrderRequest) { r.PaymentMethod = "cash" }, wantField: "paymentMethod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)

			_, err := req.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *apperr.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Fatalf("field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestPlaceOrderRequest_ValidateNormalizes(t *testing.T) {
	req, err := PlaceOrderRequest{
		ShippingAddress: ShippingAddressInput{Address: "  10 Main Street ", PostalCode: " sw1a 1aa "},
		PaymentMethod:   "PAYPAL",
	}.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ShippingAddress.Address != "10 Main Street" {
		t.Fatalf("address not trimmed: %q", req.ShippingAddress.Address)
	}
	if req.ShippingAddress.PostalCode != "SW1A 1AA" {
		t.Fatalf("postal code not normalized: %q", req.ShippingAddress.PostalCode)
	}
	if req.PaymentMethod != "paypal" {
		t.Fatalf("payment method not normalized: %q", req.PaymentMethod)
	}
}
