package handlers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/bats-attribution/internal/application/reconcile"
	"github.com/eshaffer321/bats-attribution/internal/domain/report"
	"github.com/eshaffer321/bats-attribution/internal/infrastructure/logging"
)

const (
	leadsCSV = "Number,Customer Name,Assigned To,Source,Phone\n" +
		"O1,Ann,x,FB,1\n" +
		"O1,Ann,x,FB,1\n" +
		"O2,Bob,y,Google,2\n"
	salesCSV = "Order ID,Name,Agent,Deposit\n" +
		"O1,Ann,x,\"$1,000\"\n" +
		"O2,Bob,y,-$5\n"
)

type upload struct {
	field    string
	filename string
	content  string
}

func multipartBody(t *testing.T, uploads ...upload) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, u := range uploads {
		fw, err := mw.CreateFormFile(u.field, u.filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(u.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func newService() *reconcile.Service {
	return reconcile.NewService(report.CostTable{"FB": 2.5}, nil, logging.Discard())
}

// setChiURLParam is a helper to set chi URL params in tests.
func setChiURLParam(ctx context.Context, key, value string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}
