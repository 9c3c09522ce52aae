package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/cozy-cafe/internal/menu"
	"github.com/jcmexdev/cozy-cafe/internal/ordering/app"
	"github.com/jcmexdev/cozy-cafe/internal/ordering/domain"
	"github.com/jcmexdev/cozy-cafe/internal/pkg/cache"
	"github.com/jcmexdev/cozy-cafe/internal/pkg/constants"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	return nil
}

func (f *fakeCache) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value.(string)
	return true, nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeCache) value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

// gatedCache holds every SetNX until all expected callers have arrived.
type gatedCache struct {
	*fakeCache
	arrived sync.WaitGroup
}

func (g *gatedCache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	g.arrived.Done()
	g.arrived.Wait()
	return g.fakeCache.SetNX(ctx, key, value, ttl)
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key], nil
}

func (f *fakeCache) GenerateKey(operation, key string) string {
	return "test:" + operation + ":" + key
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeCache) {
	t.Helper()
	fc := &fakeCache{data: make(map[string]string)}
	return newTestServerWithCache(t, fc), fc
}

func newTestServerWithCache(t *testing.T, c cache.Cache) *httptest.Server {
	t.Helper()
	catalog, err := menu.Default()
	require.NoError(t, err)

	svc := app.NewService(catalog, app.WithLocation(time.UTC))
	srv := httptest.NewServer(NewRouter(NewHandler(svc, c, time.Hour, 5)))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestMenu(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/menu", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(constants.HeaderXRequestId))

	items := decode[[]MenuItemResponse](t, body)
	require.Len(t, items, 3)
	assert.Equal(t, "4,000원", items[0].PriceText)
	assert.Equal(t, 10, items[0].Stock)
	assert.False(t, items[0].SoldOut)
}

func TestQuotePrice(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/menu/1/price?shot=true&syrup=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	q := decode[PriceQuoteResponse](t, body)
	assert.Equal(t, 4500, q.UnitPrice)
	assert.Equal(t, "4,500원", q.UnitPriceText)

	resp, _ = do(t, srv, http.MethodGet, "/menu/1/price?shot=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/menu/77/price", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/menu/abc/price", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCartFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/cart/lines", AddToCartRequest{MenuItemID: 1})
	do(t, srv, http.MethodPost, "/cart/lines", AddToCartRequest{MenuItemID: 1})
	resp, body := do(t, srv, http.MethodPost, "/cart/lines", AddToCartRequest{MenuItemID: 1, Options: OptionsDTO{Shot: true}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cart := decode[CartResponse](t, body)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, "1--", cart.Lines[0].Key)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, "아메리카노(ICE) (샷 추가) X 1", cart.Lines[1].DisplayName)
	assert.Equal(t, 12500, cart.Total)
	assert.Equal(t, "12,500원", cart.TotalText)

	resp, body = do(t, srv, http.MethodPost, "/cart/lines/1--/decrement", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[CartResponse](t, body).Lines[0].Quantity)

	resp, body = do(t, srv, http.MethodDelete, "/cart/lines/1-shot-", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[CartResponse](t, body).Lines, 1)

	resp, _ = do(t, srv, http.MethodDelete, "/cart/lines/1-shot-", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/cart/lines", AddToCartRequest{MenuItemID: 99})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/cart/lines", AddToCartRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitOrder_EmptyCart(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/orders", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	e := decode[ErrorResponse](t, body)
	assert.Equal(t, domain.MsgEmptyCart, e.Message)

	_, body = do(t, srv, http.MethodGet, "/orders", nil)
	assert.Empty(t, decode[[]OrderResponse](t, body))
}

func TestSubmitOrder_ScenarioAndAdmin(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/cart/lines", AddToCartRequest{MenuItemID: 1})
	do(t, srv, http.MethodPost, "/cart/lines", AddToCartRequest{MenuItemID: 1, Options: OptionsDTO{Shot: true}})

	resp, body := do(t, srv, http.MethodPost, "/orders", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	submitted := decode[SubmitOrderResponse](t, body)
	assert.Equal(t, domain.MsgOrderPlaced, submitted.Message)
	assert.Equal(t, 8500, submitted.Order.TotalPrice)
	assert.Equal(t, "8,500원", submitted.Order.TotalPriceText)
	assert.Equal(t, "pending", submitted.Order.Status)
	assert.Equal(t, "주문 접수", submitted.Order.NextAction)
	require.Len(t, submitted.Order.Lines, 2)

	_, body = do(t, srv, http.MethodGet, "/cart", nil)
	assert.Empty(t, decode[CartResponse](t, body).Lines)

	_, body = do(t, srv, http.MethodGet, "/admin/inventory", nil)
	inv := decode[[]InventoryItemResponse](t, body)
	assert.Equal(t, 8, inv[0].Stock)
	assert.Equal(t, "정상", inv[0].Level)

	id := strconv.FormatInt(submitted.Order.ID, 10)
	for _, want := range []string{"received", "making", "completed"} {
		resp, body = do(t, srv, http.MethodPost, "/admin/orders/"+id+"/advance", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		adv := decode[AdvanceOrderResponse](t, body)
		assert.True(t, adv.Advanced)
		assert.Equal(t, want, adv.Order.Status)
	}
	resp, body = do(t, srv, http.MethodPost, "/admin/orders/"+id+"/advance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[AdvanceOrderResponse](t, body).Advanced)

	_, body = do(t, srv, http.MethodGet, "/admin/orders", nil)
	assert.Empty(t, decode[[]OrderResponse](t, body))

	_, body = do(t, srv, http.MethodGet, "/admin/stats", nil)
	assert.Equal(t, StatsResponse{Total: 1, Completed: 1}, decode[StatsResponse](t, body))

	resp, body = do(t, srv, http.MethodGet, "/orders/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "제조 완료", decode[OrderResponse](t, body).StatusLabel)

	resp, _ = do(t, srv, http.MethodGet, "/orders/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/admin/orders/1/advance", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/admin/orders/"+id+"/history", nil)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestSubmitOrder_Idempotent(t *testing.T) {
	srv, fc := newTestServer(t)

	do(t, srv, http.MethodPost, "/cart/lines", AddToCartRequest{MenuItemID: 3})
	resp, body := do(t, srv, http.MethodPost, "/orders", nil, constants.HeaderXIdempotencyKey, "kiosk-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[SubmitOrderResponse](t, body)

	stored, _ := fc.value("test:submit_order:kiosk-1")
	assert.Equal(t, strconv.FormatInt(first.Order.ID, 10), stored)

	resp, body = do(t, srv, http.MethodPost, "/orders", nil, constants.HeaderXIdempotencyKey, "kiosk-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first.Order.ID, decode[SubmitOrderResponse](t, body).Order.ID)

	_, body = do(t, srv, http.MethodGet, "/orders", nil)
	assert.Len(t, decode[[]OrderResponse](t, body), 1)
}

func TestSubmitOrder_ConcurrentSameKey(t *testing.T) {
	gc := &gatedCache{fakeCache: &fakeCache{data: make(map[string]string)}}
	gc.arrived.Add(2)
	srv := newTestServerWithCache(t, gc)

	do(t, srv, http.MethodPost, "/cart/lines", AddToCartRequest{MenuItemID: 1})

	type result struct {
		status int
		body   []byte
		err    error
	}
	results := make([]result, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodPost, srv.URL+"/orders", nil)
			if err != nil {
				results[i].err = err
				return
			}
			req.Header.Set(constants.HeaderXIdempotencyKey, "kiosk-1")
			resp, err := srv.Client().Do(req)
			if err != nil {
				results[i].err = err
				return
			}
			defer resp.Body.Close()
			var buf bytes.Buffer
			_, results[i].err = buf.ReadFrom(resp.Body)
			results[i].status = resp.StatusCode
			results[i].body = buf.Bytes()
		}(i)
	}
	wg.Wait()

	statuses := make([]int, 0, len(results))
	ids := make([]int64, 0, len(results))
	for _, res := range results {
		require.NoError(t, res.err)
		statuses = append(statuses, res.status)
		ids = append(ids, decode[SubmitOrderResponse](t, res.body).Order.ID)
	}
	assert.ElementsMatch(t, []int{http.StatusCreated, http.StatusOK}, statuses)
	assert.Equal(t, ids[0], ids[1])

	_, body := do(t, srv, http.MethodGet, "/orders", nil)
	assert.Len(t, decode[[]OrderResponse](t, body), 1)
}

func TestSubmitOrder_RejectedSubmitReleasesKey(t *testing.T) {
	srv, fc := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/orders", nil, constants.HeaderXIdempotencyKey, "kiosk-2")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	_, held := fc.value("test:submit_order:kiosk-2")
	assert.False(t, held)

	do(t, srv, http.MethodPost, "/cart/lines", AddToCartRequest{MenuItemID: 2})
	resp, _ = do(t, srv, http.MethodPost, "/orders", nil, constants.HeaderXIdempotencyKey, "kiosk-2")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAdjustStock(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/admin/inventory/2/adjust", AdjustStockRequest{Delta: -7})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item := decode[InventoryItemResponse](t, body)
	assert.Equal(t, 3, item.Stock)
	assert.Equal(t, "주의", item.Level)
	assert.Equal(t, "아메리카노(HOT)", item.Name)

	_, body = do(t, srv, http.MethodPost, "/admin/inventory/2/adjust", AdjustStockRequest{Delta: -5})
	item = decode[InventoryItemResponse](t, body)
	assert.Equal(t, 0, item.Stock)
	assert.Equal(t, "품절", item.Level)

	resp, _ = do(t, srv, http.MethodPost, "/admin/inventory/2/adjust", AdjustStockRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/admin/inventory/9/adjust", AdjustStockRequest{Delta: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body = do(t, srv, http.MethodPost, "/admin/inventory/3/adjust", AdjustStockRequest{Delta: math.MaxInt})
	item = decode[InventoryItemResponse](t, body)
	assert.Equal(t, math.MaxInt, item.Stock)
	assert.Equal(t, "정상", item.Level)

	_, body = do(t, srv, http.MethodGet, "/menu", nil)
	assert.True(t, decode[[]MenuItemResponse](t, body)[1].SoldOut)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, _ := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
