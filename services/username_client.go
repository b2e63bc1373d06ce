package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"leetcode-companion/logger"
	"leetcode-companion/models"
)

// UsernameValidator checks a LeetCode username against the validation endpoint.
// Without a URL or API key it accepts any non-blank username.
type UsernameValidator struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewUsernameValidator(baseURL, apiKey string) *UsernameValidator {
	return &UsernameValidator{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (v *UsernameValidator) configured() bool {
	return v.BaseURL != "" && v.APIKey != ""
}

// Validate never fails; problems are reported in the Error field.
func (v *UsernameValidator) Validate(ctx context.Context, username string) models.UsernameCheck {
	if !v.configured() {
		logger.Log.Debug("[validate-username] API not configured, using mock validation")
		if strings.TrimSpace(username) == "" {
			return usernameError("Username cannot be empty")
		}
		return models.UsernameCheck{Exists: true}
	}

	body, err := v.call(ctx, username)
	if err != nil {
		logger.Log.WithError(err).WithField("username", username).Error("[validate-username] request failed")
		return usernameError("API request error: " + err.Error())
	}
	return parseUsernameResponse(body)
}

func (v *UsernameValidator) call(ctx context.Context, username string) ([]byte, error) {
	payload, _ := json.Marshal(map[string]string{"username": username})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", v.APIKey)

	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Log.Errorf("[validate-username] endpoint returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("request failed with status code %d", resp.StatusCode)
	}
	return body, nil
}

// parseUsernameResponse unwraps an API Gateway envelope ({statusCode, body}) when present.
// A response without an "exists" member is treated as a hit.
func parseUsernameResponse(raw []byte) models.UsernameCheck {
	if !gjson.ValidBytes(raw) {
		return usernameError("Error parsing API response")
	}
	res := gjson.ParseBytes(raw)

	if res.Get("statusCode").Exists() && res.Get("body").Exists() {
		inner := res.Get("body")
		if inner.Type == gjson.String {
			if !gjson.Valid(inner.Str) {
				return usernameError("Error parsing API response")
			}
			inner = gjson.Parse(inner.Str)
		}
		return checkFrom(inner)
	}

	if !res.Get("exists").Exists() {
		return models.UsernameCheck{Exists: true}
	}
	return checkFrom(res)
}

func checkFrom(res gjson.Result) models.UsernameCheck {
	out := models.UsernameCheck{Exists: res.Get("exists").Bool()}
	if e := res.Get("error"); e.Exists() && e.Type != gjson.Null {
		msg := e.String()
		out.Error = &msg
	}
	return out
}

func usernameError(msg string) models.UsernameCheck {
	return models.UsernameCheck{Exists: false, Error: &msg}
}
