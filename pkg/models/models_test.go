package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Downstream tooling reads the pages files positionally by key, so the
// serialized key order and key presence are part of the contract.
func TestPageRecordJSONShape(t *testing.T) {
	rec := PageRecord{
		URL:            "https://www.tunisia-sat.com/threads/1/",
		FetchTimestamp: "2024-01-02T03:04:05Z",
		Title:          "Example thread",
		ExtractedText:  "body text",
		OutboundLinks:  []string{},
		Domain:         "tunisia-sat.com",
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	want := `{"url":"https://www.tunisia-sat.com/threads/1/",` +
		`"fetch_timestamp":"2024-01-02T03:04:05Z",` +
		`"title":"Example thread",` +
		`"extracted_text":"body text",` +
		`"outbound_links":[],` +
		`"domain":"tunisia-sat.com"}`
	assert.Equal(t, want, string(data))
}

func TestPageRecordEmptyFieldsStillPresent(t *testing.T) {
	data, err := json.Marshal(PageRecord{OutboundLinks: []string{}})
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(data, &keys))
	for _, k := range []string{"url", "fetch_timestamp", "title", "extracted_text", "outbound_links", "domain"} {
		assert.Contains(t, keys, k)
	}
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "idle", SessionState("").String())
	assert.Equal(t, "running", SessionRunning.String())
	assert.Equal(t, "done", SessionDone.String())
}
