package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/expense-insight/internal/models"
)

const successBody = `{
	"insight": "Two unusual purchases.",
	"transactions": [
		{"Date": "2024-01-05", "Description": "Cafe", "Amount": -42.5, "Category": "Food", "is_anomaly": false},
		{"Date": "2024-01-06", "Description": "Shoes", "Amount": -300.0, "Category": "Shopping", "is_anomaly": true}
	],
	"anomalies": [
		{"Date": "2024-01-06", "Description": "Shoes", "Amount": -300.0, "Category": "Shopping", "is_anomaly": true}
	]
}`

func TestAnalyze_SendsMultipartFile(t *testing.T) {
	var gotName, gotBody, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, `{"detail":"no file"}`, http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName = hdr.Filename
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, successBody)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", 0)
	out := c.Analyze(context.Background(), models.UploadedFile{Name: "statement.csv", Data: []byte("Date,Amount\n")})

	require.Equal(t, models.OutcomeSuccess, out.Kind, out.Message)
	assert.Equal(t, "/upload", gotPath)
	assert.Equal(t, "statement.csv", gotName)
	assert.Equal(t, "Date,Amount\n", gotBody)
	assert.Equal(t, "Two unusual purchases.", out.Result.Insight)
	assert.Len(t, out.Result.Transactions, 2)
	assert.Len(t, out.Result.Anomalies, 1)
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"detail string", 500, `{"detail": "bad file"}`, "bad file"},
		{"no detail", 500, `{"error": "boom"}`, GenericError},
		{"detail not a string", 422, `{"detail": [{"msg": "field required"}]}`, GenericError},
		{"non-json body", 502, `Bad Gateway`, GenericError},
		{"empty detail", 400, `{"detail": ""}`, GenericError},
		{"undecodable success body", 200, `<html>`, GenericError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			out := New(srv.URL, 0).Analyze(context.Background(), models.UploadedFile{Name: "a.pdf", Data: []byte("%PDF")})
			assert.Equal(t, models.OutcomeFailure, out.Kind)
			assert.Equal(t, tt.wantMsg, out.Message)
			assert.Equal(t, tt.status, out.Status)
		})
	}
}

func TestAnalyze_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out := New(url, 0).Analyze(context.Background(), models.UploadedFile{Name: "a.csv"})
	assert.Equal(t, models.OutcomeFailure, out.Kind)
	assert.Equal(t, GenericError, out.Message)
	assert.Zero(t, out.Status)
}

func TestAnalyze_NilArraysBecomeEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"insight": "nothing"}`)
	}))
	defer srv.Close()

	out := New(srv.URL, 0).Analyze(context.Background(), models.UploadedFile{Name: "a.csv"})
	require.Equal(t, models.OutcomeSuccess, out.Kind)
	assert.NotNil(t, out.Result.Transactions)
	assert.NotNil(t, out.Result.Anomalies)
}

func TestErrorDetail(t *testing.T) {
	assert.Equal(t, "bad file", ErrorDetail([]byte(`{"detail":"bad file"}`)))
	assert.Equal(t, GenericError, ErrorDetail(nil))
	assert.Equal(t, GenericError, ErrorDetail([]byte(`{"detail":null}`)))
}
