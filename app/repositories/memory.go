package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

// NewMemoryStore returns a process-local store with the same uniqueness
// rules as the Mongo driver. Values are copied in and out.
func NewMemoryStore() *Store {
	m := &memory{
		users:    map[primitive.ObjectID]memUser{},
		products: map[primitive.ObjectID]memProduct{},
		reviews:  map[primitive.ObjectID]memReview{},
		orders:   map[primitive.ObjectID]memOrder{},
	}
	return &Store{
		Users:    memoryUsers{m},
		Products: memoryProducts{m},
		Reviews:  memoryReviews{m},
		Orders:   memoryOrders{m},
	}
}

// memory guards all collections with one lock; each call holds it only for
// its own duration.
type memory struct {
	mu       sync.RWMutex
	seq      int64
	users    map[primitive.ObjectID]memUser
	products map[primitive.ObjectID]memProduct
	reviews  map[primitive.ObjectID]memReview
	orders   map[primitive.ObjectID]memOrder
}

type (
	memUser struct {
		seq int64
		v   models.User
	}
	memProduct struct {
		seq int64
		v   models.Product
	}
	memReview struct {
		seq int64
		v   models.Review
	}
	memOrder struct {
		seq int64
		v   models.Order
	}
)

func (m *memory) next() int64 {
	m.seq++
	return m.seq
}

func stamp() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// newestFirstBy sorts by descending insertion sequence.
func newestFirstBy[T any](items []T, seq func(T) int64) {
	sort.Slice(items, func(i, j int) bool { return seq(items[i]) > seq(items[j]) })
}

// ── users ────────────────────────────────────────────────────────────────────

type memoryUsers struct{ m *memory }

func (r memoryUsers) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range r.m.users {
		if id != except && u.v.Email == email {
			return true
		}
	}
	return false
}

func (r memoryUsers) Create(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.emailTaken(u.Email, primitive.NilObjectID) {
		return ErrDuplicate
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = stamp()
	u.UpdatedAt = u.CreatedAt
	r.m.users[u.ID] = memUser{seq: r.m.next(), v: *u}
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := u.v
	return &v, nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, u := range r.m.users {
		if u.v.Email == email {
			v := u.v
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) ListByRole(_ context.Context, role auth.Role) ([]models.User, error) {
	r.m.mu.RLock()
	rows := make([]memUser, 0, len(r.m.users))
	for _, u := range r.m.users {
		if u.v.Role == role {
			rows = append(rows, u)
		}
	}
	r.m.mu.RUnlock()

	newestFirstBy(rows, func(u memUser) int64 { return u.seq })
	out := make([]models.User, len(rows))
	for i, u := range rows {
		out[i] = u.v
		out[i].Password = ""
	}
	return out, nil
}

func (r memoryUsers) Names(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make(map[primitive.ObjectID]string, len(ids))
	for _, id := range ids {
		if u, ok := r.m.users[id]; ok {
			out[id] = u.v.Name
		}
	}
	return out, nil
}

func (r memoryUsers) Update(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if r.emailTaken(u.Email, u.ID) {
		return ErrDuplicate
	}
	u.UpdatedAt = stamp()
	cur.v.Name, cur.v.Email, cur.v.Password, cur.v.Role, cur.v.UpdatedAt = u.Name, u.Email, u.Password, u.Role, u.UpdatedAt
	r.m.users[u.ID] = cur
	return nil
}

// ── products ─────────────────────────────────────────────────────────────────

type memoryProducts struct{ m *memory }

func cloneProduct(p models.Product) models.Product {
	p.Colors = append([]string(nil), p.Colors...)
	return p
}

func (r memoryProducts) Create(_ context.Context, p *models.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = stamp()
	p.UpdatedAt = p.CreatedAt
	r.m.products[p.ID] = memProduct{seq: r.m.next(), v: cloneProduct(*p)}
	return nil
}

func (r memoryProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	p, ok := r.m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := cloneProduct(p.v)
	return &v, nil
}

func (r memoryProducts) List(_ context.Context) ([]models.Product, error) {
	r.m.mu.RLock()
	rows := make([]memProduct, 0, len(r.m.products))
	for _, p := range r.m.products {
		rows = append(rows, p)
	}
	r.m.mu.RUnlock()

	newestFirstBy(rows, func(p memProduct) int64 { return p.seq })
	out := make([]models.Product, len(rows))
	for i, p := range rows {
		out[i] = cloneProduct(p.v)
	}
	return out, nil
}

func (r memoryProducts) Names(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make(map[primitive.ObjectID]string, len(ids))
	for _, id := range ids {
		if p, ok := r.m.products[id]; ok {
			out[id] = p.v.Name
		}
	}
	return out, nil
}

func (r memoryProducts) Update(_ context.Context, p *models.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.UpdatedAt = stamp()
	next := cloneProduct(*p)
	next.AverageRating, next.NumOfReviews = cur.v.AverageRating, cur.v.NumOfReviews
	next.UserID, next.CreatedAt = cur.v.UserID, cur.v.CreatedAt
	cur.v = next
	r.m.products[p.ID] = cur
	return nil
}

func (r memoryProducts) SetRating(_ context.Context, id primitive.ObjectID, rating models.Rating) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.products[id]
	if !ok {
		return ErrNotFound
	}
	cur.v.AverageRating, cur.v.NumOfReviews = rating.Average, rating.Count
	r.m.products[id] = cur
	return nil
}

func (r memoryProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.products, id)
	return nil
}

// ── reviews ──────────────────────────────────────────────────────────────────

type memoryReviews struct{ m *memory }

func (r memoryReviews) Create(_ context.Context, rv *models.Review) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.reviews {
		if existing.v.UserID == rv.UserID && existing.v.ProductID == rv.ProductID {
			return ErrDuplicate
		}
	}
	rv.ID = primitive.NewObjectID()
	rv.CreatedAt = stamp()
	rv.UpdatedAt = rv.CreatedAt
	stored := *rv
	stored.UserName, stored.ProductName = "", ""
	r.m.reviews[rv.ID] = memReview{seq: r.m.next(), v: stored}
	return nil
}

func (r memoryReviews) FindByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	rv, ok := r.m.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := rv.v
	return &v, nil
}

func (r memoryReviews) filter(keep func(models.Review) bool) []models.Review {
	r.m.mu.RLock()
	rows := make([]memReview, 0)
	for _, rv := range r.m.reviews {
		if keep(rv.v) {
			rows = append(rows, rv)
		}
	}
	r.m.mu.RUnlock()

	newestFirstBy(rows, func(rv memReview) int64 { return rv.seq })
	out := make([]models.Review, len(rows))
	for i, rv := range rows {
		out[i] = rv.v
	}
	return out
}

func (r memoryReviews) List(_ context.Context) ([]models.Review, error) {
	return r.filter(func(models.Review) bool { return true }), nil
}

func (r memoryReviews) ListByProduct(_ context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	return r.filter(func(rv models.Review) bool { return rv.ProductID == productID }), nil
}

func (r memoryReviews) Update(_ context.Context, rv *models.Review) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.reviews[rv.ID]
	if !ok {
		return ErrNotFound
	}
	rv.UpdatedAt = stamp()
	cur.v.Rating, cur.v.Title, cur.v.Comment, cur.v.UpdatedAt = rv.Rating, rv.Title, rv.Comment, rv.UpdatedAt
	r.m.reviews[rv.ID] = cur
	return nil
}

func (r memoryReviews) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.reviews, id)
	return nil
}

func (r memoryReviews) DeleteByProduct(_ context.Context, productID primitive.ObjectID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for id, rv := range r.m.reviews {
		if rv.v.ProductID == productID {
			delete(r.m.reviews, id)
			n++
		}
	}
	return n, nil
}

func (r memoryReviews) Aggregate(_ context.Context, productID primitive.ObjectID) (models.Rating, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var sum, n int
	for _, rv := range r.m.reviews {
		if rv.v.ProductID == productID {
			sum += rv.v.Rating
			n++
		}
	}
	if n == 0 {
		return models.Rating{}, nil
	}
	return models.Rating{Average: float64(sum) / float64(n), Count: n}, nil
}

// ── orders ───────────────────────────────────────────────────────────────────

type memoryOrders struct{ m *memory }

func cloneOrder(o models.Order) models.Order {
	o.OrderItems = append([]models.OrderItem(nil), o.OrderItems...)
	o.UserName = ""
	return o
}

func (r memoryOrders) Create(_ context.Context, o *models.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = stamp()
	o.UpdatedAt = o.CreatedAt
	r.m.orders[o.ID] = memOrder{seq: r.m.next(), v: cloneOrder(*o)}
	return nil
}

func (r memoryOrders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	o, ok := r.m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := cloneOrder(o.v)
	return &v, nil
}

func (r memoryOrders) filter(keep func(models.Order) bool) []models.Order {
	r.m.mu.RLock()
	rows := make([]memOrder, 0)
	for _, o := range r.m.orders {
		if keep(o.v) {
			rows = append(rows, o)
		}
	}
	r.m.mu.RUnlock()

	newestFirstBy(rows, func(o memOrder) int64 { return o.seq })
	out := make([]models.Order, len(rows))
	for i, o := range rows {
		out[i] = cloneOrder(o.v)
	}
	return out
}

func (r memoryOrders) List(_ context.Context) ([]models.Order, error) {
	return r.filter(func(models.Order) bool { return true }), nil
}

func (r memoryOrders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r memoryOrders) Update(_ context.Context, o *models.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.orders[o.ID]
	if !ok {
		return ErrNotFound
	}
	o.UpdatedAt = stamp()
	cur.v.Status, cur.v.PaymentIntentID, cur.v.UpdatedAt = o.Status, o.PaymentIntentID, o.UpdatedAt
	r.m.orders[o.ID] = cur
	return nil
}
