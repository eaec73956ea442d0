package leadapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunnystock/leaddesk/internal/usecase"
)

func TestList_SendsKeyAndParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/consults", r.URL.Path)
		assert.Equal(t, "k-1", r.Header.Get("X-API-Key"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "done", r.URL.Query().Get("status"))
		assert.Equal(t, "kim", r.URL.Query().Get("q"))
		assert.False(t, r.URL.Query().Has("start"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"items":[{"id":"a","name":"Kim","status":"done","createdAt":1714554000000}],"nextPageToken":""}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "k-1", "", srv.Client())
	out, err := c.List(context.Background(), ListParams{Limit: 50, Status: "done", Query: "kim"})

	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, usecase.AdminLeadItem{ID: "a", Name: "Kim", Status: "done", CreatedAt: 1714554000000}, out.Items[0])
}

func TestListAll_FollowsTokens(t *testing.T) {
	pages := map[string]string{
		"":   `{"ok":true,"items":[{"id":"c"},{"id":"b"}],"nextPageToken":"t1"}`,
		"t1": `{"ok":true,"items":[{"id":"a"}],"nextPageToken":"","degraded":true}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, pages[r.URL.Query().Get("pageToken")])
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL, "k", "", srv.Client()).ListAll(context.Background(), ListParams{})

	require.NoError(t, err)
	ids := []string{}
	for _, it := range out.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
	assert.True(t, out.Degraded)
	assert.Empty(t, out.NextPageToken)
}

func TestUpdateStatus_SendsOriginAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/consults/id%2Fx/status", r.URL.EscapedPath())
		assert.Equal(t, "https://admin.bunnystock.io", r.Header.Get("Origin"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"status": "in_progress"}, body)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "https://admin.bunnystock.io/", srv.Client())
	require.NoError(t, c.UpdateStatus(context.Background(), "id/x", "in_progress"))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		status int
		body   string
		code   string
	}{
		{http.StatusForbidden, `{"error":"forbidden"}`, "forbidden"},
		{http.StatusNotFound, `{"error":"not_found"}`, "not_found"},
		{http.StatusBadGateway, `<html>bad gateway</html>`, ""},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = io.WriteString(w, tt.body)
		}))

		err := NewClient(srv.URL, "", "", srv.Client()).UpdateStatus(context.Background(), "x", "done")
		srv.Close()

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tt.status, apiErr.StatusCode)
		assert.Equal(t, tt.code, apiErr.Code)
		if tt.code != "" {
			assert.True(t, IsCode(err, tt.code))
		}
	}
}
