package mapserver

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseQuery_CaseInsensitive(t *testing.T) {
	q := ParseQuery(url.Values{"SERVICE": {"wfs"}, "Request": {"GetFeature"}, "VERSION": {"2.0.0"}, "typeName": {"ptv:locations"}})

	assert.Equal(t, Query{Service: "wfs", Request: "GetFeature", Version: "2.0.0", TypeName: "ptv:locations"}, q)
}

func TestQuery_Validate(t *testing.T) {
	allowed := []string{"WMS", "WFS"}
	tests := []struct {
		name     string
		q        Query
		wantCode string
		locator  string
	}{
		{"missing service", Query{Request: "GetMap"}, MissingParameterValue, "service"},
		{"unknown service", Query{Service: "WCS", Request: "GetCoverage"}, InvalidParameterValue, "service"},
		{"missing request", Query{Service: "WMS"}, MissingParameterValue, "request"},
		{"unsupported request", Query{Service: "WFS", Request: "GetMap", Version: "2.0.0"}, OperationNotSupported, "request"},
		{"missing version", Query{Service: "WMS", Request: "GetMap"}, MissingParameterValue, "version"},
		{"missing type name", Query{Service: "WFS", Request: "GetFeature", Version: "2.0.0"}, MissingParameterValue, "typeName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exc := tt.q.Validate(allowed)
			require.NotNil(t, exc)
			assert.Equal(t, tt.wantCode, exc.Code)
			assert.Equal(t, tt.locator, exc.Locator)
		})
	}

	assert.Nil(t, Query{Service: "wms", Request: "GetCapabilities"}.Validate(allowed))
	assert.Nil(t, Query{Service: "WFS", Request: "GetFeature", Version: "2.0.0", TypeName: "x"}.Validate(allowed))
}

func TestGate_RejectsWithExceptionReport(t *testing.T) {
	g, err := NewGate(DefaultConfig())
	require.NoError(t, err)

	r := gin.New()
	r.GET("/mapserver", g.Handle)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mapserver?request=GetMap", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")

	var report struct {
		Exception struct {
			Code    string `xml:"exceptionCode,attr"`
			Locator string `xml:"locator,attr"`
		} `xml:"Exception"`
	}
	require.NoError(t, xml.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, MissingParameterValue, report.Exception.Code)
	assert.Equal(t, "service", report.Exception.Locator)
}

func TestGate_ProxiesValidQuery(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "WMS", r.URL.Query().Get("service"))
		_, _ = w.Write([]byte("<capabilities/>"))
	}))
	defer upstream.Close()

	g, err := NewGate(Config{Upstream: upstream.URL, Services: []string{"WMS"}})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/mapserver", g.Handle)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mapserver?service=WMS&request=GetCapabilities", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<capabilities/>", w.Body.String())
}
