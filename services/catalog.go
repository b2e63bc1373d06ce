package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"leetcode-companion/logger"
	"leetcode-companion/metrics"
	"leetcode-companion/models"
)

const DefaultCatalogURL = "https://leetcode.com/graphql"

// maxCatalogResponse bounds a successful response body; a full question list is well under it.
const maxCatalogResponse = 16 << 20

var (
	ErrNoEligibleProblems = errors.New("no eligible problems")
	ErrQuestionNotFound   = errors.New("question not found")
)

// GraphQLError carries the errors payload of an otherwise successful response.
type GraphQLError struct {
	Payload string
}

func (e *GraphQLError) Error() string {
	return "GraphQL query failed: " + e.Payload
}

const questionListQuery = `
query problemsetQuestionList($categorySlug: String, $limit: Int, $skip: Int, $filters: QuestionListFilterInput) {
  problemsetQuestionList: questionList(
    categorySlug: $categorySlug
    limit: $limit
    skip: $skip
    filters: $filters
  ) {
    total: totalNum
    questions: data {
      title
      titleSlug
      difficulty
      frontendQuestionId: questionFrontendId
      paidOnly: isPaidOnly
      topicTags {
        name
      }
    }
  }
}`

const questionDetailQuery = `
query getQuestionDetail($titleSlug: String!) {
  question(titleSlug: $titleSlug) {
    title
    titleSlug
    frontendQuestionId: questionFrontendId
    difficulty
    content
    topicTags {
      name
    }
    hints
    sampleTestCase
  }
}`

// ProblemCatalog is what the daily service needs from the catalog.
type ProblemCatalog interface {
	FetchDetails(ctx context.Context, slug string) (*models.Problem, error)
}

// CatalogClient talks to the external question catalog over GraphQL.
// One request per call; no retries or caching.
type CatalogClient struct {
	Endpoint   string
	HTTPClient *http.Client
	UserAgent  string
	// Pick returns an index in [0, n). Defaults to math/rand.
	Pick func(n int) int
}

func NewCatalogClient(endpoint string, httpClient *http.Client) *CatalogClient {
	if endpoint == "" {
		endpoint = DefaultCatalogURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &CatalogClient{
		Endpoint:   endpoint,
		HTTPClient: httpClient,
		UserAgent:  "LeetCompanion/1.0",
		Pick:       rand.IntN,
	}
}

// NormalizeDifficulty upper-cases a difficulty label for the catalog filter.
func NormalizeDifficulty(level string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(level))
}

// FetchRandomByDifficulty lists the catalog for level and picks one free question uniformly.
func (c *CatalogClient) FetchRandomByDifficulty(ctx context.Context, level string) (problem *models.Problem, err error) {
	defer func() { metrics.CatalogRequests.WithLabelValues("random", metrics.Status(err)).Inc() }()

	filters := map[string]any{}
	if d := NormalizeDifficulty(level); d != "" {
		filters["difficulty"] = d
	}
	data, err := c.do(ctx, map[string]any{
		"query": questionListQuery,
		"variables": map[string]any{
			"categorySlug": "",
			"limit":        1000,
			"skip":         0,
			"filters":      filters,
		},
	})
	if err != nil {
		return nil, err
	}

	var all []models.Problem
	if raw := data.Get("problemsetQuestionList.questions"); raw.IsArray() {
		if err := json.Unmarshal([]byte(raw.Raw), &all); err != nil {
			return nil, fmt.Errorf("decode question list: %w", err)
		}
	}

	free := make([]models.Problem, 0, len(all))
	for _, p := range all {
		if !p.PaidOnly {
			free = append(free, p)
		}
	}
	logger.Log.WithField("difficulty", level).Debugf("[fetch-random-problem] found %d free problems", len(free))
	if len(free) == 0 {
		return nil, ErrNoEligibleProblems
	}

	picked := free[c.Pick(len(free))]
	return &picked, nil
}

// FetchDetails returns the full question for slug.
func (c *CatalogClient) FetchDetails(ctx context.Context, slug string) (problem *models.Problem, err error) {
	defer func() { metrics.CatalogRequests.WithLabelValues("details", metrics.Status(err)).Inc() }()

	data, err := c.do(ctx, map[string]any{
		"query":     questionDetailQuery,
		"variables": map[string]any{"titleSlug": slug},
	})
	if err != nil {
		return nil, err
	}

	q := data.Get("question")
	if !q.Exists() || q.Type == gjson.Null {
		return nil, ErrQuestionNotFound
	}
	var p models.Problem
	if err := json.Unmarshal([]byte(q.Raw), &p); err != nil {
		return nil, fmt.Errorf("decode question: %w", err)
	}
	return &p, nil
}

// do posts one GraphQL request and returns the "data" member.
func (c *CatalogClient) do(ctx context.Context, payload map[string]any) (gjson.Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return gjson.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return gjson.Result{}, fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, string(snippet))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogResponse+1))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read catalog response: %w", err)
	}
	if len(raw) > maxCatalogResponse {
		return gjson.Result{}, fmt.Errorf("catalog response exceeds %d bytes", maxCatalogResponse)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, errors.New("catalog returned invalid JSON")
	}

	if errs := gjson.GetBytes(raw, "errors"); errs.Exists() && errs.Type != gjson.Null {
		logger.Log.WithField("errors", errs.Raw).Error("[catalog] GraphQL errors")
		return gjson.Result{}, &GraphQLError{Payload: errs.Raw}
	}
	return gjson.GetBytes(raw, "data"), nil
}
