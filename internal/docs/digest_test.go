package docs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromArticle(t *testing.T) {
	html := `
<h1>Acme Protocol</h1>
<p>Intro with a <a href="https://github.com/acme/core">repo link</a>
and a <a href="https://github.com/acme/core">duplicate</a>
and an <a href="/relative">internal link</a>.</p>
<h2 class="docs">How <em>staking</em> works</h2>
<h4>Too deep</h4>
`
	d := FromArticle("  Acme Docs  ", html, "  Users stake tokens.  ")

	assert.Equal(t, "Acme Docs", d.Title)
	assert.Equal(t, "Users stake tokens.", d.Text)
	assert.Equal(t, []string{"Acme Protocol", "How staking works"}, d.Sections)
	assert.Equal(t, []string{"https://github.com/acme/core"}, d.Links)
}

func TestEmptyDigest(t *testing.T) {
	d := Empty()
	assert.Empty(t, d.Text)
	assert.NotNil(t, d.Sections)
	assert.NotNil(t, d.Links)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Acme</title></head><body>
<article><h1>Acme Vault</h1>
<p>A yield vault protocol where users stake assets and keepers harvest rewards.
The protocol supports emergency pause and role based access control for admins.
Deposits are tracked per user and withdrawals are subject to share accounting.</p>
</article></body></html>`)
	}))
	defer srv.Close()

	d, err := Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, d.Text, "yield vault protocol")
}

func TestFetchInvalidURL(t *testing.T) {
	_, err := Fetch(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}
