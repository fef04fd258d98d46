package store_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bylanglois/views-api/internal/catalog"
	"github.com/bylanglois/views-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func decodeGraphQL(t *testing.T, r *http.Request) graphqlRequest {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	var req graphqlRequest
	require.NoError(t, json.Unmarshal(body, &req))

	return req
}

func TestShopify_ListRecords(t *testing.T) {
	t.Run("paginates and sanitizes null field values", func(t *testing.T) {
		var requests []graphqlRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "secret-token", r.Header.Get("X-Shopify-Access-Token"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			req := decodeGraphQL(t, r)
			requests = append(requests, req)

			if _, ok := req.Variables["after"]; !ok {
				io.WriteString(w, `{"data":{"metaobjects":{
					"edges":[{"node":{"id":"gid://1","fields":[
						{"key":"post_id","value":"a"},
						{"key":"view_count","value":null}
					]}}],
					"pageInfo":{"hasNextPage":true,"endCursor":"cur-1"}}}}`)

				return
			}

			io.WriteString(w, `{"data":{"metaobjects":{
				"edges":[{"node":{"id":"gid://2","fields":[
					{"key":"post_id","value":"b"},
					{"key":"view_count","value":"7"}
				]}}],
				"pageInfo":{"hasNextPage":false,"endCursor":"cur-2"}}}}`)
		}))
		defer server.Close()

		client := store.NewShopifyEndpoint(server.URL, "secret-token", time.Second)

		first, err := client.ListRecords(context.Background(), "custom_post_views", 1, "")
		require.NoError(t, err)
		require.Len(t, first.Records, 1)
		assert.Equal(t, "gid://1", first.Records[0].ID)
		assert.Equal(t, "a", first.Records[0].Field(catalog.FieldPostID))
		assert.Equal(t, "", first.Records[0].Field(catalog.FieldViewCount))
		assert.True(t, first.HasNextPage)
		assert.Equal(t, "cur-1", first.EndCursor)

		second, err := client.ListRecords(context.Background(), "custom_post_views", 1, first.EndCursor)
		require.NoError(t, err)
		require.Len(t, second.Records, 1)
		assert.Equal(t, "b", second.Records[0].Field(catalog.FieldPostID))
		assert.False(t, second.HasNextPage)

		require.Len(t, requests, 2)
		assert.Equal(t, "custom_post_views", requests[0].Variables["type"])
		assert.NotContains(t, requests[0].Variables, "after")
		assert.Equal(t, "cur-1", requests[1].Variables["after"])
	})

	t.Run("graphql errors read as transport failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, `{"errors":[{"message":"throttled"}]}`)
		}))
		defer server.Close()

		client := store.NewShopifyEndpoint(server.URL, "t", time.Second)

		_, err := client.ListRecords(context.Background(), "custom_post_views", 10, "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "throttled")
	})

	t.Run("non-200 reads as transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := store.NewShopifyEndpoint(server.URL, "t", time.Second)

		_, err := client.ListRecords(context.Background(), "custom_post_views", 10, "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})
}

func TestShopify_UpdateRecords(t *testing.T) {
	t.Run("aliased sub-mutations fail independently", func(t *testing.T) {
		var request graphqlRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request = decodeGraphQL(t, r)

			io.WriteString(w, `{"data":{
				"u0":{"metaobject":{"id":"gid://1"},"userErrors":[]},
				"u1":{"metaobject":null,"userErrors":[{"field":["id"],"message":"not found"}]}
			}}`)
		}))
		defer server.Close()

		client := store.NewShopifyEndpoint(server.URL, "t", time.Second)

		results, err := client.UpdateRecords(context.Background(), []catalog.Update{
			{ID: "gid://1", Fields: map[string]string{catalog.FieldViewCount: "5"}},
			{ID: "gid://2", Fields: map[string]string{catalog.FieldViewCount: "9"}},
		})

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.NoError(t, results[0].Err)
		require.Error(t, results[1].Err)
		assert.Contains(t, results[1].Err.Error(), "not found")

		assert.Contains(t, request.Query, "u0: metaobjectUpdate")
		assert.Contains(t, request.Query, "u1: metaobjectUpdate")
		assert.Equal(t, "gid://1", request.Variables["id0"])
		assert.Equal(t, "gid://2", request.Variables["id1"])
	})

	t.Run("missing alias becomes a sub-operation error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, `{"data":{}}`)
		}))
		defer server.Close()

		client := store.NewShopifyEndpoint(server.URL, "t", time.Second)

		results, err := client.UpdateRecords(context.Background(), []catalog.Update{
			{ID: "gid://1", Fields: map[string]string{}},
		})

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Error(t, results[0].Err)
	})
}

func TestShopify_CreateRecord(t *testing.T) {
	t.Run("returns the created record", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, `{"data":{"metaobjectCreate":{
				"metaobject":{"id":"gid://new","fields":[
					{"key":"post_id","value":"a"},
					{"key":"view_count","value":"0"}
				]},
				"userErrors":[]}}}`)
		}))
		defer server.Close()

		client := store.NewShopifyEndpoint(server.URL, "t", time.Second)

		record, err := client.CreateRecord(context.Background(), "custom_post_views", map[string]string{
			catalog.FieldPostID:    "a",
			catalog.FieldViewCount: "0",
		})

		require.NoError(t, err)
		assert.Equal(t, "gid://new", record.ID)
		assert.Equal(t, "0", record.Field(catalog.FieldViewCount))
	})

	t.Run("surfaces user errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, `{"data":{"metaobjectCreate":{
				"metaobject":null,
				"userErrors":[{"field":["type"],"message":"invalid type"}]}}}`)
		}))
		defer server.Close()

		client := store.NewShopifyEndpoint(server.URL, "t", time.Second)

		_, err := client.CreateRecord(context.Background(), "bogus", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid type")
	})
}
