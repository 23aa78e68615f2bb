package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dwikikusuma/shoe-store/internal/api"
	"github.com/dwikikusuma/shoe-store/internal/payment/infra/gateway"
	"github.com/dwikikusuma/shoe-store/internal/storage/memory"
	"github.com/dwikikusuma/shoe-store/pkg/idempotency"
	"github.com/dwikikusuma/shoe-store/pkg/logger"
)

type APISuite struct {
	suite.Suite
	db  *memory.DB
	srv *httptest.Server
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.db = memory.NewDB()
	a := api.New(api.MemoryBackend(s.db), api.Options{
		Currency:    "USD",
		Gateway:     gateway.Mock{},
		Idempotency: idempotency.NewMemoryStore(time.Hour),
		Logger:      logger.Discard(),
	})
	s.srv = httptest.NewServer(a.Handler)
}

func (s *APISuite) TearDownTest() {
	s.srv.Close()
}

type call struct {
	method  string
	path    string
	user    string
	role    string
	body    any
	headers map[string]string
}

type reply struct {
	status int
	header http.Header
	body   map[string]any
	raw    []byte
}

func (s *APISuite) do(c call) reply {
	var body io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		s.Require().NoError(err)
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(context.Background(), c.method, s.srv.URL+c.path, body)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.Header.Set("X-User-ID", c.user)
	}
	if c.role != "" {
		req.Header.Set("X-User-Role", c.role)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	out := reply{status: resp.StatusCode, header: resp.Header, raw: raw}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(raw, &out.body))
	}
	return out
}

func (s *APISuite) createProduct(name string, price, stock int) string {
	r := s.do(call{method: http.MethodPost, path: "/api/products", user: "admin-1", role: "admin", body: map[string]any{
		"name": name, "price": price, "stock": stock, "category": "sports",
	}})
	s.Require().Equal(http.StatusCreated, r.status, string(r.raw))
	return r.body["product"].(map[string]any)["id"].(string)
}

func (s *APISuite) addToCart(user, productID string, qty int) {
	r := s.do(call{method: http.MethodPost, path: "/api/cart/items", user: user, body: map[string]any{
		"productId": productID, "quantity": qty,
	}})
	s.Require().Equal(http.StatusCreated, r.status, string(r.raw))
}

func (s *APISuite) stock(id string) float64 {
	r := s.do(call{method: http.MethodGet, path: "/api/products/" + id})
	s.Require().Equal(http.StatusOK, r.status)
	return r.body["product"].(map[string]any)["stock"].(float64)
}

func checkoutBody(address string) map[string]any {
	return map[string]any{
		"shippingAddress": map[string]any{"address": address, "city": "Springfield", "postalCode": "12345", "country": "US"},
		"paymentMethod":   "stripe",
	}
}

func errorCode(r reply) string {
	e, _ := r.body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (s *APISuite) TestPlaceOrder() {
	pid := s.createProduct("Runner", 50, 5)
	s.addToCart("u1", pid, 2)

	r := s.do(call{method: http.MethodPost, path: "/api/orders", user: "u1", body: checkoutBody("742 Evergreen Terrace")})
	s.Require().Equal(http.StatusCreated, r.status, string(r.raw))
	s.Equal(true, r.body["success"])

	order := r.body["order"].(map[string]any)
	s.Equal(float64(100), order["totalAmount"])
	s.Equal("pending", order["orderStatus"])
	s.Equal("pending", order["paymentStatus"])

	s.Equal(float64(3), s.stock(pid))

	cart := s.do(call{method: http.MethodGet, path: "/api/cart", user: "u1"})
	s.Empty(cart.body["cart"].(map[string]any)["items"])
}

func (s *APISuite) TestPlaceOrderInsufficientStock() {
	pid := s.createProduct("Runner", 50, 1)
	s.addToCart("u1", pid, 2)

	r := s.do(call{method: http.MethodPost, path: "/api/orders", user: "u1", body: checkoutBody("742 Evergreen Terrace")})
	s.Equal(http.StatusBadRequest, r.status)
	s.Equal("INSUFFICIENT_STOCK", errorCode(r))
	details := r.body["error"].(map[string]any)["details"].(map[string]any)
	s.Equal(float64(1), details["available"])
	s.Equal(float64(2), details["requested"])
	s.Equal(false, r.body["success"])

	s.Equal(float64(1), s.stock(pid))
}

func (s *APISuite) TestPlaceOrderValidation() {
	pid := s.createProduct("Runner", 50, 5)
	s.addToCart("u1", pid, 1)

	r := s.do(call{method: http.MethodPost, path: "/api/orders", user: "u1", body: checkoutBody("St")})
	s.Equal(http.StatusBadRequest, r.status)
	s.Equal("VALIDATION_FAILED", errorCode(r))
	s.Equal(float64(5), s.stock(pid))
}

func (s *APISuite) TestPlaceOrderEmptyCart() {
	r := s.do(call{method: http.MethodPost, path: "/api/orders", user: "u1", body: checkoutBody("742 Evergreen Terrace")})
	s.Equal(http.StatusBadRequest, r.status)
	s.Equal("EMPTY_CART", errorCode(r))
}

func (s *APISuite) TestPlaceOrderIdempotent() {
	pid := s.createProduct("Runner", 50, 5)
	s.addToCart("u1", pid, 1)

	c := call{
		method:  http.MethodPost,
		path:    "/api/orders",
		user:    "u1",
		body:    checkoutBody("742 Evergreen Terrace"),
		headers: map[string]string{"Idempotency-Key": "k-1"},
	}
	first := s.do(c)
	s.Require().Equal(http.StatusCreated, first.status, string(first.raw))

	second := s.do(c)
	s.Require().Equal(http.StatusOK, second.status)
	s.Equal("true", second.header.Get("Idempotent-Replayed"))
	s.Equal(first.body["order"].(map[string]any)["id"], second.body["order"].(map[string]any)["id"])

	reused := c
	reused.body = checkoutBody("1600 Pennsylvania Avenue")
	third := s.do(reused)
	s.Equal(http.StatusConflict, third.status)
	s.Equal("IDEMPOTENCY_KEY_REUSED", errorCode(third))

	mine := s.do(call{method: http.MethodGet, path: "/api/orders/my", user: "u1"})
	s.Equal(float64(1), mine.body["count"])
	s.Equal(float64(4), s.stock(pid))
}

func (s *APISuite) TestCartLineQuantityLimit() {
	pid := s.createProduct("Runner", 50, 5)
	s.addToCart("u1", pid, 999)

	r := s.do(call{method: http.MethodPost, path: "/api/cart/items", user: "u1", body: map[string]any{
		"productId": pid, "quantity": 1,
	}})
	s.Equal(http.StatusBadRequest, r.status)
	s.Equal("VALIDATION_FAILED", errorCode(r))

	r = s.do(call{method: http.MethodPost, path: "/api/orders", user: "u1", body: checkoutBody("742 Evergreen Terrace")})
	s.Equal(http.StatusBadRequest, r.status)
	s.Equal("INSUFFICIENT_STOCK", errorCode(r))
	s.Equal(float64(5), s.stock(pid))
}

func (s *APISuite) TestCancelRestoresStock() {
	pid := s.createProduct("Runner", 50, 5)
	s.addToCart("u1", pid, 2)
	placed := s.do(call{method: http.MethodPost, path: "/api/orders", user: "u1", body: checkoutBody("742 Evergreen Terrace")})
	s.Require().Equal(http.StatusCreated, placed.status)
	id := placed.body["order"].(map[string]any)["id"].(string)

	cancel := call{method: http.MethodPatch, path: "/api/orders/" + id + "/status", user: "admin-1", role: "admin", body: map[string]any{"status": "cancelled"}}
	r := s.do(cancel)
	s.Require().Equal(http.StatusOK, r.status, string(r.raw))
	s.Equal("cancelled", r.body["order"].(map[string]any)["orderStatus"])
	s.Equal(float64(5), s.stock(pid))

	r = s.do(cancel)
	s.Equal(http.StatusOK, r.status)
	s.Equal(float64(5), s.stock(pid))

	r = s.do(call{method: http.MethodPatch, path: "/api/orders/" + id + "/status", user: "admin-1", role: "admin", body: map[string]any{"status": "shipped"}})
	s.Equal(http.StatusBadRequest, r.status)
	s.Equal("INVALID_TRANSITION", errorCode(r))

	r = s.do(call{method: http.MethodPatch, path: "/api/orders/" + id + "/status", user: "admin-1", role: "admin", body: map[string]any{"status": "lost"}})
	s.Equal(http.StatusBadRequest, r.status)
	s.Equal("VALIDATION_FAILED", errorCode(r))

	r = s.do(call{method: http.MethodPatch, path: "/api/orders/missing/status", user: "admin-1", role: "admin", body: map[string]any{"status": "shipped"}})
	s.Equal(http.StatusNotFound, r.status)
}

func (s *APISuite) TestPayAndOwnership() {
	pid := s.createProduct("Runner", 50, 5)
	s.addToCart("u1", pid, 1)
	placed := s.do(call{method: http.MethodPost, path: "/api/orders", user: "u1", body: checkoutBody("742 Evergreen Terrace")})
	s.Require().Equal(http.StatusCreated, placed.status)
	id := placed.body["order"].(map[string]any)["id"].(string)

	r := s.do(call{method: http.MethodGet, path: "/api/orders/" + id, user: "u2"})
	s.Equal(http.StatusForbidden, r.status)

	r = s.do(call{method: http.MethodGet, path: "/api/orders/" + id, user: "admin-1", role: "admin"})
	s.Equal(http.StatusOK, r.status)

	r = s.do(call{method: http.MethodPost, path: "/api/orders/" + id + "/pay", user: "u1"})
	s.Require().Equal(http.StatusOK, r.status, string(r.raw))
	s.Equal("paid", r.body["order"].(map[string]any)["paymentStatus"])

	r = s.do(call{method: http.MethodPost, path: "/api/orders/" + id + "/pay", user: "u1"})
	s.Equal(http.StatusBadRequest, r.status)
	s.Equal("PAYMENT_SETTLED", errorCode(r))
}

func (s *APISuite) TestAccessControl() {
	r := s.do(call{method: http.MethodGet, path: "/api/cart"})
	s.Equal(http.StatusUnauthorized, r.status)
	s.Equal("UNAUTHENTICATED", errorCode(r))

	r = s.do(call{method: http.MethodPost, path: "/api/products", user: "u1", body: map[string]any{"name": "x"}})
	s.Equal(http.StatusForbidden, r.status)

	r = s.do(call{method: http.MethodGet, path: "/api/orders", user: "u1"})
	s.Equal(http.StatusForbidden, r.status)

	r = s.do(call{method: http.MethodGet, path: "/api/products"})
	s.Equal(http.StatusOK, r.status)
}

func (s *APISuite) TestCartAndWishlist() {
	pid := s.createProduct("Runner", 50, 5)
	s.addToCart("u1", pid, 1)

	r := s.do(call{method: http.MethodPatch, path: "/api/cart/items/" + pid + "/increment", user: "u1"})
	s.Require().Equal(http.StatusOK, r.status)
	s.Equal(float64(100), r.body["cart"].(map[string]any)["totalAmount"])

	r = s.do(call{method: http.MethodPut, path: "/api/cart/items/" + pid, user: "u1", body: map[string]any{"quantity": 0}})
	s.Require().Equal(http.StatusOK, r.status)
	s.Empty(r.body["cart"].(map[string]any)["items"])

	r = s.do(call{method: http.MethodDelete, path: "/api/cart/items/" + pid, user: "u1"})
	s.Equal(http.StatusNotFound, r.status)

	r = s.do(call{method: http.MethodPost, path: "/api/wishlist", user: "u1", body: map[string]any{"productId": pid}})
	s.Require().Equal(http.StatusCreated, r.status)
	s.Len(r.body["wishlist"].(map[string]any)["items"], 1)
}

func (s *APISuite) TestQuote() {
	pid := s.createProduct("Runner", 50, 1)
	s.addToCart("u1", pid, 2)

	r := s.do(call{method: http.MethodGet, path: "/api/checkout/quote", user: "u1"})
	s.Require().Equal(http.StatusOK, r.status, string(r.raw))
	q := r.body["quote"].(map[string]any)
	s.Equal(false, q["purchasable"])
	s.Equal(float64(100), q["total"].(map[string]any)["amount"])
}

func (s *APISuite) TestOperationalEndpoints() {
	r := s.do(call{method: http.MethodGet, path: "/healthz"})
	s.Equal(http.StatusOK, r.status)

	r = s.do(call{method: http.MethodGet, path: "/readyz"})
	s.Equal(http.StatusOK, r.status)

	s.do(call{method: http.MethodPost, path: "/api/orders", user: "u1", body: checkoutBody("742 Evergreen Terrace")})
	r = s.do(call{method: http.MethodGet, path: "/metrics"})
	s.Equal(http.StatusOK, r.status)
	s.Contains(string(r.raw), `shoestore_checkout_orders_total{outcome="EMPTY_CART"} 1`)
	s.Contains(string(r.raw), "http_requests_total")
}
