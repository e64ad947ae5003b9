package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/apiclient"
)

func TestOrders_List_FiltersAndPaging(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		require.Equal(t, "status=open&page=2&per_page=50", r.URL.RawQuery)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":  []Order{{ID: "o1", Number: "AT-1001", Status: "open"}},
			"total": 51,
		})
	}))

	orders, err := NewOrders(api).List(context.Background(), OrderListOptions{
		Status:      "open",
		PageOptions: PageOptions{Page: 2, PerPage: 50},
	})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "AT-1001", orders[0].Number)
}

func TestOrders_List_OmitsAbsentFilters(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.URL.RawQuery)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []Order{}, "total": 0})
	}))

	orders, err := NewOrders(api).List(context.Background(), OrderListOptions{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrders_Get_MalformedResponse(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance page</html>"))
	}))

	_, err := NewOrders(api).Get(context.Background(), "o1")
	require.Error(t, err)

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiclient.TypeMalformed, apiErr.Type)
}

func TestOrders_UpdateStatus(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/orders/o1", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "shipped", body["status"])

		_ = json.NewEncoder(w).Encode(Order{ID: "o1", Status: "shipped"})
	}))

	order, err := NewOrders(api).UpdateStatus(context.Background(), "o1", "shipped")
	require.NoError(t, err)
	assert.Equal(t, "shipped", order.Status)
}
