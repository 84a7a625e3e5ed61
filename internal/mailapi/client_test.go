package mailapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/new_address", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-admin-auth"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["name"])

		json.NewEncoder(w).Encode(NewAddressResult{
			Address:    "alice@example.com",
			AddressID:  7,
			Credential: "token",
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
	res, err := c.NewAddress(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.Address)
	assert.Equal(t, int64(7), res.AddressID)
	assert.Equal(t, "token", res.Credential)
}

func TestDeleteAddressErrorIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/admin/delete_address/7", r.URL.Path)
		http.Error(w, "address not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
	err := c.DeleteAddress(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "address not found")
}

func TestNewAddressIncompleteReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
	_, err := c.NewAddress(context.Background(), "")
	assert.Error(t, err)
}
