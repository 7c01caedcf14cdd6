// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/bookkeeping/config"
	"github.com/finance-tracker/bookkeeping/internal/infra/dependency"
	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/bookkeeping/internal/integration/persistence"
	"github.com/finance-tracker/bookkeeping/test/integration/mock"
)

// classifierTag enables the Gemini classifier, backed by the API mock.
const classifierTag = "@classifier"

// geminiPath matches every generateContent call regardless of model.
const geminiPath = "/v1beta/models/*"

// TestContext holds the test state for each scenario.
type TestContext struct {
	// HTTP
	server       *httptest.Server
	response     *http.Response
	responseBody []byte

	// Request building
	requestHeaders map[string]string

	// Dependencies
	db       *mock.Db
	redis    *redis.Client
	gemini   *mock.ApiMock
	injector *dependency.Injector

	// Scenario data
	workspaceID     uuid.UUID
	transactions    map[string]uuid.UUID
	budgetGroups    map[string]uuid.UUID
	budgetLines     map[string]uuid.UUID
	saved           map[string]uuid.UUID
	classifications []map[string]any
}

// contextKey is used to store TestContext in context.Context.
type contextKey struct{}

// GetTestContext retrieves the TestContext from context.
func GetTestContext(ctx context.Context) *TestContext {
	if tc, ok := ctx.Value(contextKey{}).(*TestContext); ok {
		return tc
	}
	return nil
}

// SetTestContext stores the TestContext in context.
func SetTestContext(ctx context.Context, tc *TestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

var (
	suiteDB     *mock.Db
	suiteRedis  *redis.Client
	suiteGemini *mock.ApiMock
)

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)

		suiteDB = mock.NewDb(persistence.Models())
		suiteRedis = mock.NewRedis()
		suiteGemini = mock.NewApiServer()
		suiteGemini.Start()
	})

	ctx.AfterSuite(func() {
		if suiteGemini != nil {
			suiteGemini.Close()
		}
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		if err := suiteDB.ClearDB(); err != nil {
			return ctx, err
		}
		if err := mock.ClearRedis(suiteRedis); err != nil {
			return ctx, err
		}
		suiteGemini.Reset()

		tc := &TestContext{
			requestHeaders: make(map[string]string),
			db:             suiteDB,
			redis:          suiteRedis,
			gemini:         suiteGemini,
			workspaceID:    uuid.New(),
			transactions:   make(map[string]uuid.UUID),
			budgetGroups:   make(map[string]uuid.UUID),
			budgetLines:    make(map[string]uuid.UUID),
			saved:          make(map[string]uuid.UUID),
		}
		tc.requestHeaders[middleware.WorkspaceHeader] = tc.workspaceID.String()

		cfg := config.Load()
		cfg.Server.Environment = "test"
		cfg.Learning.AMQPURL = ""
		cfg.Learning.StoreEnabled = true
		cfg.Learning.NotifyTimeout = 2 * time.Second
		cfg.AI.Enabled = false
		cfg.AI.GeminiAPIKey = ""
		for _, tag := range sc.Tags {
			if tag.Name == classifierTag {
				cfg.AI.Enabled = true
				cfg.AI.GeminiAPIKey = "test-key"
				cfg.AI.Endpoint = suiteGemini.GetUrl()
				cfg.AI.Timeout = 5 * time.Second
			}
		}

		tc.injector = dependency.NewInjector(cfg, suiteDB.DbConn, suiteRedis, nil)
		tc.server = httptest.NewServer(tc.injector.Router.Setup(cfg.Server.Environment))

		return SetTestContext(ctx, tc), nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc := GetTestContext(ctx)
		if tc != nil && tc.server != nil {
			tc.server.Close()
		}
		return ctx, nil
	})

	registerAPISteps(ctx)
	registerResponseSteps(ctx)
	registerDataSteps(ctx)
}

// registerAPISteps registers HTTP request steps.
func registerAPISteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the API server is running$`, theAPIServerIsRunning)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)"$`, iSendARequestTo)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, iSendARequestToWithBody)
	ctx.Step(`^I set header "([^"]*)" to "([^"]*)"$`, iSetHeaderTo)
	ctx.Step(`^I do not send a workspace$`, iDoNotSendAWorkspace)
}

// registerResponseSteps registers response validation steps.
func registerResponseSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the response should be JSON$`, theResponseShouldBeJSON)
	ctx.Step(`^the response should contain "([^"]*)"$`, theResponseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, theResponseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should exist$`, theResponseFieldShouldExist)
	ctx.Step(`^the response field "([^"]*)" should have (\d+) items?$`, theResponseFieldShouldHaveItems)
	ctx.Step(`^I save the response field "([^"]*)" as "([^"]*)"$`, iSaveTheResponseFieldAs)
}

// Step implementations

func theAPIServerIsRunning(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil || tc.server == nil {
		return fmt.Errorf("test server is not running")
	}
	return nil
}

func iSendARequestTo(ctx context.Context, method, endpoint string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	return ctx, tc.send(method, endpoint, nil)
}

func iSendARequestToWithBody(ctx context.Context, method, endpoint string, body *godog.DocString) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	return ctx, tc.send(method, endpoint, []byte(body.Content))
}

func iSetHeaderTo(ctx context.Context, header, value string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	tc.requestHeaders[header] = value
	return ctx, nil
}

func iDoNotSendAWorkspace(ctx context.Context) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	delete(tc.requestHeaders, middleware.WorkspaceHeader)
	return ctx, nil
}

// send issues a request against the test server after expanding placeholders
// in the endpoint and body.
func (tc *TestContext) send(method, endpoint string, body []byte) error {
	endpoint, err := tc.expand(endpoint)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		expanded, err := tc.expand(string(body))
		if err != nil {
			return err
		}
		reader = bytes.NewBufferString(expanded)
	}

	req, err := http.NewRequest(method, tc.server.URL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range tc.requestHeaders {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	tc.response = resp
	tc.responseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

var placeholderPattern = regexp.MustCompile(`\{\{(\w+):([^}]+)\}\}`)

// expand replaces {{tx:alias}}, {{category:Parent > Child}},
// {{line:Parent > Child}} and {{saved:name}} with the matching IDs.
func (tc *TestContext) expand(content string) (string, error) {
	var expandErr error
	expanded := placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := placeholderPattern.FindStringSubmatch(match)
		kind, name := parts[1], strings.TrimSpace(parts[2])

		var (
			id uuid.UUID
			ok bool
		)
		switch kind {
		case "tx":
			id, ok = tc.transactions[name]
		case "line":
			id, ok = tc.budgetLines[name]
		case "saved":
			id, ok = tc.saved[name]
		case "category":
			found, err := tc.categoryID(name)
			if err != nil {
				expandErr = err
				return match
			}
			id, ok = found, true
		}
		if !ok {
			expandErr = fmt.Errorf("unknown %s %q", kind, name)
			return match
		}
		return id.String()
	})
	return expanded, expandErr
}

func theResponseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if tc.response == nil {
		return fmt.Errorf("no response received")
	}
	if tc.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expectedStatus, tc.response.StatusCode, string(tc.responseBody))
	}
	return nil
}

func theResponseShouldBeJSON(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	var js json.RawMessage
	if err := json.Unmarshal(tc.responseBody, &js); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}

func theResponseShouldContain(ctx context.Context, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if !strings.Contains(string(tc.responseBody), expected) {
		return fmt.Errorf("response does not contain '%s'. Body: %s", expected, string(tc.responseBody))
	}
	return nil
}

func theResponseFieldShouldBe(ctx context.Context, field, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	value, err := tc.responseField(field)
	if err != nil {
		return err
	}

	expected, err = tc.expand(expected)
	if err != nil {
		return err
	}

	actual := fmt.Sprintf("%v", value)
	if value == nil {
		actual = "null"
	}
	if actual != expected {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expected, actual)
	}
	return nil
}

// iSaveTheResponseFieldAs keeps an ID from the last response for later
// {{saved:name}} placeholders.
func iSaveTheResponseFieldAs(ctx context.Context, field, name string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	value, err := tc.responseField(field)
	if err != nil {
		return err
	}
	raw, ok := value.(string)
	if !ok {
		return fmt.Errorf("field '%s' is not a string", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("field '%s' is not an id: %w", field, err)
	}
	tc.saved[name] = id
	return nil
}

func theResponseFieldShouldExist(ctx context.Context, field string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	_, err := tc.responseField(field)
	return err
}

func theResponseFieldShouldHaveItems(ctx context.Context, field string, count int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	value, err := tc.responseField(field)
	if err != nil {
		return err
	}
	items, ok := value.([]any)
	if !ok && value != nil {
		return fmt.Errorf("field '%s' is not a list", field)
	}
	if len(items) != count {
		return fmt.Errorf("field '%s' has %d items, want %d. Body: %s", field, len(items), count, string(tc.responseBody))
	}
	return nil
}

func (tc *TestContext) responseField(field string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.responseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	value, ok := lookupField(data, field)
	if !ok {
		return nil, fmt.Errorf("field '%s' not found in response. Body: %s", field, string(tc.responseBody))
	}
	return value, nil
}

// lookupField walks a dot separated path through decoded JSON. Numeric
// segments index into lists.
func lookupField(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = value
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}
			current = node[index]
		default:
			return nil, false
		}
	}
	return current, true
}
