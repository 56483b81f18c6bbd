package ingest

import (
	"errors"
	"strings"
	"testing"

	"qa-dashboard/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFirstRowOnly(t *testing.T) {
	body := " Total Test Cases , Total Executed,Total Passed ,Notes\n" +
		"100,80,70,first\n" +
		"999,999,999,second\n"

	doc, err := Parse(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"Total Test Cases", "Total Executed", "Total Passed", "Notes"}, doc.Header)
	require.Len(t, doc.Rows, 2)

	rec, ok := doc.First()
	require.True(t, ok)
	assert.Equal(t, metrics.Num(100), rec["Total Test Cases"])
	assert.Equal(t, metrics.Num(70), rec["Total Passed"])
	assert.Equal(t, metrics.String("first"), rec["Notes"])

	m := metrics.Resolve(rec)
	assert.Equal(t, 100, m.TotalCases)
	assert.Equal(t, 80.0, m.ExecutionRate)
}

func TestParseSkipsBlankLinesAndBOM(t *testing.T) {
	body := "\xEF\xBB\xBF\"Total Cases\",Executed\n\n , \n12,6\n"

	doc, err := Parse(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"Total Cases", "Executed"}, doc.Header)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, metrics.Num(12), doc.Rows[0]["Total Cases"])
}

func TestParseRaggedRows(t *testing.T) {
	doc, err := Parse(strings.NewReader("A,B,C\n1\n"))
	require.NoError(t, err)

	rec, ok := doc.First()
	require.True(t, ok)
	assert.Equal(t, metrics.Num(1), rec["A"])
	assert.False(t, rec["B"].Present())
	assert.False(t, rec["C"].Present())
}

func TestParseDuplicateHeaderKeepsFirst(t *testing.T) {
	doc, err := Parse(strings.NewReader("Passed,Passed\n5,9\n"))
	require.NoError(t, err)
	assert.Equal(t, metrics.Num(5), doc.Rows[0]["Passed"])
}

func TestParseEmptyDocument(t *testing.T) {
	for _, body := range []string{"", "\n\n", "Total Cases,Executed\n"} {
		doc, err := Parse(strings.NewReader(body))
		require.NoError(t, err)
		rec, ok := doc.First()
		assert.False(t, ok)
		assert.Equal(t, metrics.Defaults(), metrics.Resolve(rec), "empty document resolves to defaults")
	}
}

func TestParseStructuralError(t *testing.T) {
	_, err := Parse(strings.NewReader("A,B\n1,\"unterminated\n"))
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Greater(t, pe.Line, 0)
	assert.Contains(t, pe.Error(), "line")
}

func TestDocumentFirstNil(t *testing.T) {
	var d *Document
	_, ok := d.First()
	assert.False(t, ok)
}
