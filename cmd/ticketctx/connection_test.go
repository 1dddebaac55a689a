package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignments(t *testing.T) {
	values, err := parseAssignments([]string{"CONFLUENCE_URL=https://x.atlassian.net/wiki?a=b", "ATLASSIAN_API_TOKEN="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"CONFLUENCE_URL":      "https://x.atlassian.net/wiki?a=b",
		"ATLASSIAN_API_TOKEN": "",
	}, values)

	for _, bad := range []string{"novalue", "=value"} {
		_, err := parseAssignments([]string{bad})
		assert.Error(t, err, bad)
	}
}
