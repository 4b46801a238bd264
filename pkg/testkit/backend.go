package testkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/storefront/internal/api"
)

// Backend is an in-process fake of the storefront REST backend. It issues
// real HS256 JWTs, checks bcrypt password hashes and keeps orders, products
// and chat history in memory.
//
//	b := testkit.NewBackend(t)
//	b.AddUser("ada@example.com", "secret", "Ada", "Lovelace")
//	client := sfhttp.NewClient(sfhttp.Options{BaseURL: b.URL()})
type Backend struct {
	srv    *httptest.Server
	secret []byte

	mu        sync.Mutex
	users     map[string]*fakeUser // by email
	orders    map[string][]*api.Order
	products  []api.Product
	chat      map[string][]api.ChatMessage
	resets    map[string]string // reset token -> email
	overrides map[string]http.HandlerFunc
	hits      map[string]int
	nextID    int64
}

type fakeUser struct {
	api.User
	hash []byte
}

// NewBackend starts the fake on an httptest server closed with t.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		secret:    []byte("testkit-secret"),
		users:     map[string]*fakeUser{},
		orders:    map[string][]*api.Order{},
		chat:      map[string][]api.ChatMessage{},
		resets:    map[string]string{},
		overrides: map[string]http.HandlerFunc{},
		hits:      map[string]int{},
	}
	b.srv = httptest.NewServer(b.routes())
	t.Cleanup(b.srv.Close)
	return b
}

// URL is the base URL to point a client at.
func (b *Backend) URL() string { return b.srv.URL }

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", b.login)
		r.Post("/register", b.register)
		r.Post("/reset-password", b.resetPassword)
		r.Post("/complete-reset", b.completeReset)

		r.Group(func(r chi.Router) {
			r.Use(b.authenticate)
			r.Get("/verify", b.verify)
			r.Put("/profile", b.profile)
			r.Post("/change-password", b.changePassword)
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(b.authenticate)
		r.Get("/", b.listOrders)
		r.Post("/{orderNumber}/cancel", b.cancelOrder)
	})

	r.Get("/api/products", b.listProducts)
	r.Get("/api/products/category/{category}", b.listProducts)
	r.Get("/api/products/{id}", b.getProduct)

	r.Route("/api/chat", func(r chi.Router) {
		r.Use(b.authenticate)
		r.Get("/history", b.chatHistory)
		r.Post("/send", b.chatSend)
	})
	return r
}

// ------------------- Fixtures -------------------

// AddUser registers an account and returns it.
func (b *Backend) AddUser(email, password, first, last string) api.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	u := &fakeUser{User: api.User{ID: b.nextID, FirstName: first, LastName: last, Email: email, Role: "USER"}, hash: hash}
	b.users[email] = u
	return u.User
}

// AddOrder gives email an order and returns it.
func (b *Backend) AddOrder(email string, status api.Status, items ...api.OrderItem) api.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	o := &api.Order{
		ID:              b.nextID,
		OrderNumber:     fmt.Sprintf("ORD-%06d", b.nextID),
		Status:          status,
		Items:           items,
		TotalAmount:     total,
		OrderDate:       time.Now().UTC().Format("2006-01-02T15:04:05"),
		ShippingAddress: "1 Test Street",
	}
	b.orders[email] = append(b.orders[email], o)
	return *o
}

// SetStatus forces an order's status, as backend automation would.
func (b *Backend) SetStatus(orderNumber string, status api.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o := b.findOrder(orderNumber); o != nil {
		o.Status = status
	}
}

// AdvanceOrders moves every non-terminal order one step forward.
func (b *Backend) AdvanceOrders() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, list := range b.orders {
		for _, o := range list {
			if next := o.Status.Next(); next != "" {
				o.Status = next
			}
		}
	}
}

// AddProduct puts p in the catalog, assigning an id when it has none.
func (b *Backend) AddProduct(p api.Product) api.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == 0 {
		b.nextID++
		p.ID = b.nextID
	}
	b.products = append(b.products, p)
	return p
}

// Token issues a JWT for email valid for ttl. A negative ttl gives an
// already expired token.
func (b *Backend) Token(email string, ttl time.Duration) string {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	return s
}

// ResetToken returns the last reset token mailed to email.
func (b *Backend) ResetToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for tok, e := range b.resets {
		if e == email {
			return tok
		}
	}
	return ""
}

// Override replaces the handler for one method and exact path.
func (b *Backend) Override(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[method+" "+path] = h
}

// Hits counts requests seen for method and exact path.
func (b *Backend) Hits(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+path]
}

// ------------------- Middleware -------------------

type ctxEmail struct{}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimSuffix(r.URL.Path, "/")
		b.mu.Lock()
		b.hits[key]++
		h := b.overrides[key]
		b.mu.Unlock()
		if h != nil {
			h(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized", "error": "Unauthorized"})
			return
		}
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) { return b.secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token", "error": "Invalid token"})
			return
		}
		b.mu.Lock()
		_, ok := b.users[claims.Subject]
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "User not found"})
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithEmail(r, claims.Subject)))
	})
}

// ------------------- Auth handlers -------------------

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password string }
	if !readJSON(w, r, &in) {
		return
	}
	b.mu.Lock()
	u, ok := b.users[in.Email]
	b.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(in.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, api.LoginResponse{Token: b.Token(u.Email, time.Hour), User: u.User})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var in api.Registration
	if !readJSON(w, r, &in) {
		return
	}
	if in.Email == "" || in.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email and password are required"})
		return
	}
	b.mu.Lock()
	_, exists := b.users[in.Email]
	b.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email already registered"})
		return
	}
	u := b.AddUser(in.Email, in.Password, in.FirstName, in.LastName)
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "User registered successfully", "id": u.ID})
}

func (b *Backend) verify(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	u := b.users[emailFrom(r)].User
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) profile(w http.ResponseWriter, r *http.Request) {
	var in api.Profile
	if !readJSON(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[emailFrom(r)]
	u.FirstName, u.LastName = in.FirstName, in.LastName
	if in.Email != "" && in.Email != u.Email {
		delete(b.users, u.Email)
		u.Email = in.Email
		b.users[u.Email] = u
	}
	writeJSON(w, http.StatusOK, u.User)
}

func (b *Backend) changePassword(w http.ResponseWriter, r *http.Request) {
	var in struct{ CurrentPassword, NewPassword string }
	if !readJSON(w, r, &in) {
		return
	}
	b.mu.Lock()
	u := b.users[emailFrom(r)]
	b.mu.Unlock()
	if bcrypt.CompareHashAndPassword(u.hash, []byte(in.CurrentPassword)) != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Current password is incorrect"})
		return
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.MinCost)
	b.mu.Lock()
	u.hash = hash
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (b *Backend) resetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email string }
	if !readJSON(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[in.Email]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return
	}
	b.resets[uuid.NewString()] = in.Email
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset email sent"})
}

func (b *Backend) completeReset(w http.ResponseWriter, r *http.Request) {
	var in struct{ Token, NewPassword string }
	if !readJSON(w, r, &in) {
		return
	}
	b.mu.Lock()
	email, ok := b.resets[in.Token]
	delete(b.resets, in.Token)
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid or expired reset token"})
		return
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.MinCost)
	b.mu.Lock()
	b.users[email].hash = hash
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset"})
}

// ------------------- Orders -------------------

func (b *Backend) listOrders(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	list := b.orders[emailFrom(r)]
	out := make([]api.Order, 0, len(list))
	for _, o := range list {
		out = append(out, *o)
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var in struct{ Reason string }
	if !readJSON(w, r, &in) {
		return
	}
	if in.Reason == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Cancellation reason is required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	o := b.findOrder(chi.URLParam(r, "orderNumber"))
	if o == nil || !b.owns(emailFrom(r), o) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
		return
	}
	if !o.Status.Cancellable() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Only pending orders can be cancelled"})
		return
	}
	o.Status = api.StatusCancelled
	writeJSON(w, http.StatusOK, *o)
}

func (b *Backend) findOrder(number string) *api.Order {
	for _, list := range b.orders {
		for _, o := range list {
			if o.OrderNumber == number {
				return o
			}
		}
	}
	return nil
}

func (b *Backend) owns(email string, o *api.Order) bool {
	for _, mine := range b.orders[email] {
		if mine == o {
			return true
		}
	}
	return false
}

// ------------------- Products -------------------

func (b *Backend) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if size <= 0 {
		size = api.DefaultPageSize
	}
	category := chi.URLParam(r, "category")
	search := strings.ToLower(q.Get("query"))
	minP, minErr := decimal.NewFromString(q.Get("minPrice"))
	maxP, maxErr := decimal.NewFromString(q.Get("maxPrice"))
	byPrice := minErr == nil && maxErr == nil

	b.mu.Lock()
	var matched []api.Product
	for _, p := range b.products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), search) {
			continue
		}
		if byPrice && (p.Price.LessThan(minP) || p.Price.GreaterThan(maxP)) {
			continue
		}
		matched = append(matched, p)
	}
	b.mu.Unlock()

	desc := q.Get("sortOrder") == "desc"
	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		if q.Get("sortBy") == "price" {
			less = matched[i].Price.LessThan(matched[j].Price)
		} else {
			less = matched[i].Name < matched[j].Name
		}
		if desc {
			return !less
		}
		return less
	})

	total := len(matched)
	from, to := page*size, page*size+size
	if from > total {
		from = total
	}
	if to > total {
		to = total
	}
	content := matched[from:to]
	if content == nil {
		content = []api.Product{}
	}
	writeJSON(w, http.StatusOK, api.Page{
		Content:       content,
		Number:        page,
		TotalPages:    (total + size - 1) / size,
		TotalElements: int64(total),
		Size:          size,
	})
}

func (b *Backend) getProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
}

// ------------------- Chat -------------------

func (b *Backend) chatHistory(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	history := append([]api.ChatMessage{}, b.chat[emailFrom(r)]...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, history)
}

func (b *Backend) chatSend(w http.ResponseWriter, r *http.Request) {
	var in struct{ Message string }
	if !readJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Message cannot be empty"})
		return
	}
	now := time.Now().UTC().Format("2006-01-02T15:04:05")
	b.mu.Lock()
	email := emailFrom(r)
	b.nextID++
	user := api.ChatMessage{ID: b.nextID, Message: in.Message, UserMessage: true, Timestamp: now}
	b.nextID++
	bot := api.ChatMessage{ID: b.nextID, Message: "You said: " + in.Message, Timestamp: now}
	b.chat[email] = append(b.chat[email], user, bot)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, api.ChatExchange{UserMessage: user, BotResponse: bot})
}

// ------------------- Helpers -------------------

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return false
	}
	return true
}
