package mock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// ApiMock is an HTTP server that records requests and replies with canned
// responses keyed by method and path. A "*" path segment matches any segment.
type ApiMock struct {
	mu                    sync.Mutex
	server                *httptest.Server
	requestsReceived      map[string][]map[string]any
	responseMap           map[string]map[int]any
	responseStatus        map[string]map[int]int
	defaultResponseMap    map[string]any
	defaultResponseStatus map[string]int
}

func NewApiServer() *ApiMock {
	return &ApiMock{
		requestsReceived:      map[string][]map[string]any{},
		responseMap:           map[string]map[int]any{},
		responseStatus:        map[string]map[int]int{},
		defaultResponseMap:    map[string]any{},
		defaultResponseStatus: map[string]int{},
	}
}

func (a *ApiMock) Start() {
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
}

func (a *ApiMock) Close() {
	if a.server != nil {
		a.server.Close()
	}
}

func (a *ApiMock) GetUrl() string {
	if a.server == nil {
		return ""
	}
	return a.server.URL
}

func (a *ApiMock) handle(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	var request map[string]any
	_ = json.Unmarshal(body, &request)
	if request == nil {
		request = map[string]any{}
	}

	key := r.Method + r.URL.Path
	index := len(a.requestsReceived[key])
	a.requestsReceived[key] = append(a.requestsReceived[key], request)

	status, response := a.lookup(r.Method, r.URL.Path, index)
	raw, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

// SetResponse sets the reply for the index-th call to method and path. An
// index of -1 sets the reply for every call without a specific one.
func (a *ApiMock) SetResponse(index int, method, path string, status int, response any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := method + path
	if index == -1 {
		a.defaultResponseStatus[key] = status
		a.defaultResponseMap[key] = response
		return
	}
	if a.responseMap[key] == nil {
		a.responseMap[key] = map[int]any{}
		a.responseStatus[key] = map[int]int{}
	}
	a.responseMap[key][index] = response
	a.responseStatus[key][index] = status
}

// RequestCount returns how many calls matched method and path.
func (a *ApiMock) RequestCount(method, path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	for key, requests := range a.requestsReceived {
		if a.keyMatches(key, method, path) {
			count += len(requests)
		}
	}
	return count
}

func (a *ApiMock) GetRequestBody(method, path string, index int) map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, requests := range a.requestsReceived {
		if a.keyMatches(key, method, path) && index < len(requests) {
			return requests[index]
		}
	}
	return nil
}

// Reset forgets every recorded request and canned response.
func (a *ApiMock) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requestsReceived = map[string][]map[string]any{}
	a.responseMap = map[string]map[int]any{}
	a.responseStatus = map[string]map[int]int{}
	a.defaultResponseMap = map[string]any{}
	a.defaultResponseStatus = map[string]int{}
}

func (a *ApiMock) lookup(method, path string, index int) (int, any) {
	for key, responses := range a.responseMap {
		if !a.keyMatches(key, method, path) {
			continue
		}
		if response, ok := responses[index]; ok {
			return statusOrOK(a.responseStatus[key][index]), response
		}
	}
	for key, response := range a.defaultResponseMap {
		if a.keyMatches(key, method, path) {
			return statusOrOK(a.defaultResponseStatus[key]), response
		}
	}
	return http.StatusOK, map[string]any{}
}

func (a *ApiMock) keyMatches(key, method, path string) bool {
	if !strings.HasPrefix(key, method) {
		return false
	}
	return a.matchPath(strings.TrimPrefix(key, method), path)
}

func (a *ApiMock) matchPath(pattern string, path string) bool {
	if pattern == path {
		return true
	}

	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(path, "/")
	if len(patternParts) != len(pathParts) {
		return false
	}

	for i := range patternParts {
		if patternParts[i] != "*" && pathParts[i] != "*" && patternParts[i] != pathParts[i] {
			return false
		}
	}
	return true
}

// Return 200 as a safe default to prevent a panic from WriteHeader(0).
func statusOrOK(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}
