package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/app/repositories"
	"github.com/shashiranjanraj/thali/pkg/auth"
	"github.com/shashiranjanraj/thali/pkg/event"
	"github.com/shashiranjanraj/thali/pkg/metrics"
	"github.com/shashiranjanraj/thali/pkg/session"
	"github.com/shashiranjanraj/thali/pkg/storage"
)

var testMenu = []models.MenuItem{
	{ID: 1, Name: "Butter Paneer", Price: 250, ImageFile: "img1.jpg"},
	{ID: 2, Name: "Masala Dosa", Price: 150, ImageFile: "img2.jpg"},
}

type recorder struct {
	mu   sync.Mutex
	msgs []feedMessage
}

func (r *recorder) ClientCount() int { return 1 }

func (r *recorder) Broadcast(data []byte) {
	var m feedMessage
	_ = json.Unmarshal(data, &m)
	r.mu.Lock()
	r.msgs = append(r.msgs, m)
	r.mu.Unlock()
}

type fixture struct {
	set      repositories.Set
	accounts *AuthService
	catalog  *CatalogService
	carts    *CartService
	orders   *OrderService
	identity *IdentityService
	feed     *recorder
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		set:   repositories.NewMemorySet(testMenu),
		feed:  &recorder{},
		clock: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	disks := storage.NewManager("local")
	disks.Register("local", storage.NewLocalDisk(t.TempDir(), "/storage"))

	bus := event.NewBus()
	RegisterListeners(bus, f.feed)

	f.accounts = NewAuthService(f.set.Users)
	f.catalog = NewCatalogService(f.set.Menu, disks)
	f.carts = NewCartService(f.set.Carts, f.catalog)
	f.orders = NewOrderService(f.set, f.catalog, bus).WithClock(func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	})
	f.identity = NewIdentityService(f.accounts, auth.NewTokens("secret", time.Hour))

	_, err := f.accounts.SeedAdmin(context.Background(), "admin@example.com", "admin")
	require.NoError(t, err)
	return f
}

func (f *fixture) register(t *testing.T, name, email string) models.User {
	t.Helper()
	u, err := f.accounts.Register(context.Background(), Registration{Name: name, Email: email, Password: "pw"})
	require.NoError(t, err)
	return u
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.register(t, "A", "a@x.com")
	assert.Equal(t, uint(2), first.ID)

	_, err := f.accounts.Register(ctx, Registration{Name: "Other", Email: "a@x.com", Password: "pw2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	u, err := f.accounts.Verify(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "A", u.Name)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accounts.Register(ctx, Registration{Name: "  ", Email: "a@x.com", Password: "pw"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "name")

	_, err = f.accounts.Register(ctx, Registration{Name: "A", Email: "a@x.com"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "password")

	// Any non-empty email is an account key.
	u, err := f.accounts.Register(ctx, Registration{Name: "Local", Email: "ops@localhost", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "ops@localhost", u.Email)
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 40 characters but 80 bytes.
	long := strings.Repeat("é", 40)
	_, err := f.accounts.Register(ctx, Registration{Name: "A", Email: "a@x.com", Password: long})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "72 bytes")

	_, err = f.set.Users.FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	u, err := f.accounts.Register(ctx, Registration{Name: "A", Email: "a@x.com", Password: strings.Repeat("é", 36)})
	require.NoError(t, err)
	_, err = f.accounts.Verify(ctx, u.Email, strings.Repeat("é", 36))
	assert.NoError(t, err)
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "A", "a@x.com")

	u, err := f.accounts.Verify(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, uint(2), u.ID)
	assert.NotEqual(t, "pw", u.Password)

	_, err = f.accounts.Verify(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.accounts.Verify(ctx, "nobody@x.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	admin, err := f.accounts.Verify(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	assert.Equal(t, uint(1), admin.ID)
	assert.True(t, admin.IsAdmin)
}

func TestCart_AddRemoveCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.Add(ctx, 2, 1)
	require.NoError(t, err)
	qty, err := f.carts.Add(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	_, err = f.carts.Add(ctx, 2, 99)
	require.NoError(t, err)

	n, err := f.carts.Count(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	view, err := f.carts.View(ctx, 2)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1, "unknown item is left out")
	assert.Equal(t, 500.0, view.Total)

	removed, err := f.carts.Remove(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = f.carts.Remove(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, f.carts.Clear(ctx, 2))
	view, err = f.carts.View(ctx, 2)
	require.NoError(t, err)
	assert.True(t, view.Empty())
}

func TestPlace_EmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders.Place(ctx, 2)
	assert.ErrorIs(t, err, ErrEmptyCart)

	all, err := f.orders.ListAll(ctx, models.User{IsAdmin: true})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.feed.msgs)
}

func TestPlace_TotalsAndClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []uint{1, 1, 2} {
		_, err := f.carts.Add(ctx, 2, id)
		require.NoError(t, err)
	}

	order, err := f.orders.Place(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(1), order.ID)
	assert.Equal(t, 650.0, order.TotalPrice)
	assert.Equal(t, models.StatusPlaced, order.Status)

	n, err := f.carts.Count(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.Len(t, f.feed.msgs, 1)
	assert.Equal(t, EventOrderPlaced, f.feed.msgs[0].Event)
	assert.Equal(t, 650.0, f.feed.msgs[0].Total)
}

func TestPlace_SkipsUnknownItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.Add(ctx, 2, 1)
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, 2, 99)
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, 2, 99)
	require.NoError(t, err)

	order, err := f.orders.Place(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 250.0, order.TotalPrice)

	n, err := f.carts.Count(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, n, "unknown items are cleared with the rest")
}

func TestStatusUpdates_MetricLabelsStayBounded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := models.User{ID: 1, IsAdmin: true}

	_, err := f.carts.Add(ctx, 2, 1)
	require.NoError(t, err)
	order, err := f.orders.Place(ctx, 2)
	require.NoError(t, err)

	other := testutil.ToFloat64(metrics.OrderStatusUpdates.WithLabelValues("other"))
	for i := 0; i < 50; i++ {
		require.NoError(t, f.orders.UpdateStatus(ctx, admin, order.ID, fmt.Sprintf("free text %d", i)))
	}
	require.NoError(t, f.orders.UpdateStatus(ctx, admin, order.ID, "Delivered"))

	assert.Equal(t, other+50, testutil.ToFloat64(metrics.OrderStatusUpdates.WithLabelValues("other")))
	assert.LessOrEqual(t, testutil.CollectAndCount(metrics.OrderStatusUpdates), len(models.Statuses)+1)

	// the feed still carries the exact text
	last := f.feed.msgs[len(f.feed.msgs)-1]
	assert.Equal(t, "Delivered", last.Status)
	assert.Equal(t, "free text 49", f.feed.msgs[len(f.feed.msgs)-2].Status)
}

type idleFeed struct{ sent int }

func (f *idleFeed) ClientCount() int { return 0 }
func (f *idleFeed) Broadcast([]byte) { f.sent++ }

func TestListeners_SkipIdleFeed(t *testing.T) {
	feed := &idleFeed{}
	bus := event.NewBus()
	RegisterListeners(bus, feed)

	bus.Fire(context.Background(), EventOrderStatusUpdated, OrderStatusUpdated{OrderID: 1, Status: "Delivered"})
	assert.Zero(t, feed.sent)
}

func TestListForUser_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	place := func(userID uint) models.Order {
		_, err := f.carts.Add(ctx, userID, 2)
		require.NoError(t, err)
		o, err := f.orders.Place(ctx, userID)
		require.NoError(t, err)
		return o
	}
	first := place(2)
	place(3)
	third := place(2)

	mine, err := f.orders.ListForUser(ctx, 2)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
}

func TestAdminOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "A", "a@x.com")

	_, err := f.carts.Add(ctx, user.ID, 1)
	require.NoError(t, err)
	order, err := f.orders.Place(ctx, user.ID)
	require.NoError(t, err)

	_, err = f.orders.ListAll(ctx, user)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.ErrorIs(t, f.orders.UpdateStatus(ctx, user, order.ID, "Shipped"), ErrNotAuthorized)

	admin := models.User{ID: 1, IsAdmin: true}
	require.NoError(t, f.orders.UpdateStatus(ctx, admin, order.ID, "Shipped"))
	require.NoError(t, f.orders.UpdateStatus(ctx, admin, 42, "Lost"))

	all, err := f.orders.ListAll(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Shipped", all[0].Status)
	assert.Equal(t, order.TotalPrice, all[0].TotalPrice)
	assert.Equal(t, order.OrderDate, all[0].OrderDate)
	assert.Equal(t, "A", all[0].Name)
	assert.Equal(t, "a@x.com", all[0].Email)

	require.Len(t, f.feed.msgs, 2, "missing order fires nothing")
	assert.Equal(t, "Shipped", f.feed.msgs[1].Status)
}

func TestListAll_UnknownAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.Add(ctx, 77, 1)
	require.NoError(t, err)
	_, err = f.orders.Place(ctx, 77)
	require.NoError(t, err)

	all, err := f.orders.ListAll(ctx, models.User{IsAdmin: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "N/A", all[0].Name)
	assert.Empty(t, all[0].Email)
}

func TestIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "A", "a@x.com")

	sess := session.FromCtx(httptestRequest())
	before := sess.ID()

	_, ok := f.identity.Resolve(ctx, sess)
	assert.False(t, ok)

	f.identity.Establish(sess, user)
	assert.NotEqual(t, before, sess.ID())

	got, ok := f.identity.Resolve(ctx, sess)
	require.True(t, ok)
	assert.Equal(t, user.ID, got.ID)

	f.identity.Terminate(sess)
	_, ok = f.identity.Resolve(ctx, sess)
	assert.False(t, ok)

	sess.Set(sessionUserKey, uint(404))
	_, ok = f.identity.Resolve(ctx, sess)
	assert.False(t, ok)
	_, still := sess.Get(sessionUserKey)
	assert.False(t, still)

	token, err := f.identity.IssueToken(user)
	require.NoError(t, err)
	got, ok = f.identity.ResolveToken(ctx, token)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", got.Email)

	_, ok = f.identity.ResolveToken(ctx, token+"x")
	assert.False(t, ok)
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	items, err := f.catalog.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	item, ok, err := f.catalog.Find(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/storage/images/img2.jpg", f.catalog.ImageURL(item))

	_, ok, err = f.catalog.Find(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}
