package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/recordmatcher/internal/candidates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sruPage = `<?xml version="1.0" encoding="UTF-8"?>
<zs:searchRetrieveResponse xmlns:zs="http://docs.oasis-open.org/ns/search-ws/sruResponse">
  <zs:version>2.0</zs:version>
  <zs:numberOfRecords>3</zs:numberOfRecords>
  <zs:records>
    <zs:record>
      <zs:recordSchema>marcxml</zs:recordSchema>
      <zs:recordXMLEscaping>xml</zs:recordXMLEscaping>
      <zs:recordData><record xmlns="http://www.loc.gov/MARC21/slim"><leader>00000cam a2200000 i 4500</leader><controlfield tag="001">000000001</controlfield></record></zs:recordData>
      <zs:recordPosition>1</zs:recordPosition>
    </zs:record>
    <zs:record>
      <zs:recordSchema>marcxml</zs:recordSchema>
      <zs:recordXMLEscaping>string</zs:recordXMLEscaping>
      <zs:recordData>&lt;record&gt;&lt;controlfield tag="001"&gt;000000002&lt;/controlfield&gt;&lt;/record&gt;</zs:recordData>
      <zs:recordPosition>2</zs:recordPosition>
    </zs:record>
  </zs:records>
  <zs:nextRecordPosition>3</zs:nextRecordPosition>
</zs:searchRetrieveResponse>`

const sruDiagnostic = `<?xml version="1.0"?>
<zs:searchRetrieveResponse xmlns:zs="http://docs.oasis-open.org/ns/search-ws/sruResponse">
  <zs:numberOfRecords>0</zs:numberOfRecords>
  <zs:diagnostics>
    <diag:diagnostic xmlns:diag="http://docs.oasis-open.org/ns/search-ws/diagnostic">
      <diag:uri>info:srw/diagnostic/1/10</diag:uri>
      <diag:details>dc.title=</diag:details>
      <diag:message>Query syntax error</diag:message>
    </diag:diagnostic>
  </zs:diagnostics>
</zs:searchRetrieveResponse>`

func TestSearch(t *testing.T) {
	var got http.Header
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(sruPage))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/sru/bib", WithTimeout(5*time.Second))
	stream, err := c.Search(context.Background(), `dc.title="^Kalevala*"`, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, "application/xml", got.Get("Accept"))
	assert.Equal(t, []string{`dc.title="^Kalevala*"`}, query["query"])
	assert.Equal(t, []string{"1"}, query["startRecord"])
	assert.Equal(t, []string{"2"}, query["maximumRecords"])
	assert.Equal(t, []string{"marcxml"}, query["recordSchema"])
	assert.Equal(t, []string{"2.0"}, query["version"])

	assert.Equal(t, 3, stream.Total())
	next, ok := stream.NextOffset()
	assert.True(t, ok)
	assert.Equal(t, 3, next)
	require.NoError(t, stream.Err())

	records := slices.Collect(stream.Records())
	require.Len(t, records, 2)

	for i, want := range []string{"000000001", "000000002"} {
		rec, err := candidates.ConvertMARCXML(records[i])
		require.NoError(t, err)
		assert.Equal(t, want, rec.ID())
	}
}

func TestSearchFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "diagnostic", status: http.StatusOK, body: sruDiagnostic, wantErr: "Query syntax error"},
		{name: "server error", status: http.StatusBadGateway, body: "upstream down", wantErr: "status 502"},
		{name: "not xml", status: http.StatusOK, body: "{}", wantErr: "failed to decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Search(context.Background(), "q", 1, 10)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSearchHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sruPage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL).Search(ctx, "q", 1, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientIsASearcher(t *testing.T) {
	var _ candidates.Searcher = NewClient("http://localhost")
}
