package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesDocumentCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	before := testutil.ToFloat64(TicketsIssued.WithLabelValues("upload"))
	TicketsIssued.WithLabelValues("upload").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(TicketsIssued.WithLabelValues("upload")))

	r := gin.New()
	r.GET("/metrics", Handler())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	require.True(t, strings.Contains(body, "trackjob_document_tickets_issued_total"), "missing ticket counter")
	require.True(t, strings.Contains(body, "go_goroutines"), "missing go collector")
}
