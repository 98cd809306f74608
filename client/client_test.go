package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["email"] == "reader@example.com" && body["password"] == "letmein7" {
			json.NewEncoder(w).Encode(AuthResult{Message: "Login successful", Role: "user", Token: "tok-abc"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect email or password"})
	}))
	defer srv.Close()

	c := New(srv.URL)

	t.Run("success", func(t *testing.T) {
		res, err := c.Login(context.Background(), "reader@example.com", "letmein7")
		require.NoError(t, err)
		assert.Equal(t, "tok-abc", res.Token)
		assert.Equal(t, "user", res.Role)
		// The token is not installed implicitly.
		assert.Empty(t, c.Token())
	})

	t.Run("bad credentials", func(t *testing.T) {
		_, err := c.Login(context.Background(), "reader@example.com", "wrong")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAuth))
		assert.Equal(t, "Incorrect email or password", err.Error())
	})
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	cases := []struct {
		status int
		detail string
		want   error
	}{
		{http.StatusBadRequest, "Password must be at least 7 characters long", ErrValidation},
		{http.StatusUnauthorized, "Authentication required", ErrAuth},
		{http.StatusForbidden, "You must buy this book to download it", ErrAuthorization},
		{http.StatusNotFound, "Book not found", ErrNotFound},
		{http.StatusConflict, "Email already registered", ErrConflict},
	}

	for _, tc := range cases {
		t.Run(tc.detail, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(map[string]string{"detail": tc.detail})
			}))
			defer srv.Close()

			_, err := New(srv.URL).ListBooks(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.detail, apiErr.Detail)
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	// Server is closed immediately so the request never gets a response.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL).ListBooks(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestClient_BearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]Book{})
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, err := c.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	c.SetToken("tok-abc")
	_, err = c.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)

	c.SetToken("")
	_, err = c.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_Buy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/buy", r.URL.Path)
		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, int64(3), body["book_id"])

		json.NewEncoder(w).Encode(PaymentRequest{
			OrderID: 17, Amount: 380, UPIID: "shop@upi",
			UPIURL: "upi://pay?pa=shop%40upi", Status: "pending", PaymentRef: "ref-1",
		})
	}))
	defer srv.Close()

	payment, err := New(srv.URL).Buy(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(17), payment.OrderID)
	assert.Equal(t, "shop@upi", payment.UPIID)
}

func TestClient_VerifyPayment_WrapsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment/verify", r.URL.Path)
		require.Equal(t, "17", r.URL.Query().Get("order_id"))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Order not found"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).VerifyPayment(context.Background(), 17, "success")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVerification))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClient_Download(t *testing.T) {
	t.Run("streams the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/books/3/download", r.URL.Path)
			w.Write([]byte("%PDF-1.4 fake"))
		}))
		defer srv.Close()

		var buf bytes.Buffer
		require.NoError(t, New(srv.URL).Download(context.Background(), 3, &buf))
		assert.Equal(t, "%PDF-1.4 fake", buf.String())
	})

	t.Run("denial maps to authorization error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"detail": "You must buy this book to download it"})
		}))
		defer srv.Close()

		var buf bytes.Buffer
		err := New(srv.URL).Download(context.Background(), 3, &buf)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAuthorization))
		assert.Zero(t, buf.Len())
	})
}
