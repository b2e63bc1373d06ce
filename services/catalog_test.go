package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// graphQLServer answers every request with body and hands the decoded request to inspect.
func graphQLServer(t *testing.T, status int, body string, inspect func(r *http.Request, payload gjson.Result)) *CatalogClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		if inspect != nil {
			inspect(r, gjson.ParseBytes(raw))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewCatalogClient(srv.URL, srv.Client())
}

const questionList = `{"data":{"problemsetQuestionList":{"total":3,"questions":[
  {"title":"Premium One","titleSlug":"premium-one","difficulty":"Easy","frontendQuestionId":"10","paidOnly":true,"topicTags":[]},
  {"title":"Two Sum","titleSlug":"two-sum","difficulty":"Easy","frontendQuestionId":"1","paidOnly":false,"topicTags":[{"name":"Array"}]},
  {"title":"Premium Two","titleSlug":"premium-two","difficulty":"Easy","frontendQuestionId":"11","paidOnly":true,"topicTags":[]}
]}}}`

func TestFetchRandomByDifficultySkipsPaidOnly(t *testing.T) {
	client := graphQLServer(t, http.StatusOK, questionList, func(r *http.Request, payload gjson.Result) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "EASY", payload.Get("variables.filters.difficulty").String())
		assert.Equal(t, int64(1000), payload.Get("variables.limit").Int())
		assert.Contains(t, payload.Get("query").String(), "problemsetQuestionList")
	})
	client.Pick = func(n int) int {
		assert.Equal(t, 1, n)
		return 0
	}

	p, err := client.FetchRandomByDifficulty(context.Background(), " easy ")
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", p.Title)
	assert.Equal(t, "1", p.FrontendQuestionID)
	assert.False(t, p.PaidOnly)
}

func TestFetchRandomByDifficultyNoFreeProblems(t *testing.T) {
	client := graphQLServer(t, http.StatusOK,
		`{"data":{"problemsetQuestionList":{"questions":[{"title":"P","titleSlug":"p","paidOnly":true}]}}}`, nil)

	_, err := client.FetchRandomByDifficulty(context.Background(), "HARD")
	assert.ErrorIs(t, err, ErrNoEligibleProblems)
}

func TestCatalogSurfacesGraphQLErrors(t *testing.T) {
	client := graphQLServer(t, http.StatusOK, `{"errors":[{"message":"bad filter"}],"data":null}`, nil)

	_, err := client.FetchRandomByDifficulty(context.Background(), "MEDIUM")
	var gqlErr *GraphQLError
	require.True(t, errors.As(err, &gqlErr))
	assert.Contains(t, gqlErr.Payload, "bad filter")
	assert.Contains(t, err.Error(), "GraphQL query failed")
}

func TestCatalogNon200(t *testing.T) {
	client := graphQLServer(t, http.StatusTooManyRequests, `slow down`, nil)

	_, err := client.FetchDetails(context.Background(), "two-sum")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCatalogNon200TruncatesBody(t *testing.T) {
	client := graphQLServer(t, http.StatusBadGateway, strings.Repeat("x", 5000), nil)

	_, err := client.FetchDetails(context.Background(), "two-sum")
	require.Error(t, err)
	assert.Equal(t, "catalog returned status 502: "+strings.Repeat("x", 1024), err.Error())
}

func TestFetchDetails(t *testing.T) {
	body := `{"data":{"question":{
	  "title":"Two Sum","titleSlug":"two-sum","frontendQuestionId":"1","difficulty":"Easy",
	  "content":"<p>Given an array</p>","topicTags":[{"name":"Array"},{"name":"Hash Table"}],
	  "hints":["Use a map"],"sampleTestCase":"[2,7,11,15]\n9"}}}`
	client := graphQLServer(t, http.StatusOK, body, func(_ *http.Request, payload gjson.Result) {
		assert.Equal(t, "two-sum", payload.Get("variables.titleSlug").String())
	})

	p, err := client.FetchDetails(context.Background(), "two-sum")
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", p.Title)
	assert.Equal(t, "1", p.FrontendQuestionID)
	assert.Equal(t, "<p>Given an array</p>", p.Content)
	assert.Len(t, p.TopicTags, 2)
	assert.Equal(t, []string{"Use a map"}, p.Hints)
	assert.Equal(t, "[2,7,11,15]\n9", p.SampleTestCase)
}

func TestFetchDetailsUnknownSlug(t *testing.T) {
	client := graphQLServer(t, http.StatusOK, `{"data":{"question":null}}`, nil)

	_, err := client.FetchDetails(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestNormalizeDifficulty(t *testing.T) {
	assert.Equal(t, "MEDIUM", NormalizeDifficulty("Medium"))
	assert.Equal(t, "", NormalizeDifficulty("  "))
}
