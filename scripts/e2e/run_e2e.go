// Package main runs E2E scenarios against a running booking API.
//
// Scenarios cover:
//   - Health and metrics
//   - Holiday calendar (JSON and iCalendar)
//   - Public availability for anonymous visitors
//   - Anonymous wizard up to identification
//   - Sign-in, booking confirmation and sign-out (needs credentials)
//
// Usage:
//
//	API_BASE_URL=... go run scripts/e2e/run_e2e.go [scenario-name]
//	API_BASE_URL=... E2E_USERNAME=... E2E_PASSWORD=... go run scripts/e2e/run_e2e.go
//
// E2E_VET_ID picks the veterinarian (default: first listed). E2E_CONFIRM=1
// lets the login scenario really book the appointment.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	apiBase  string
	username string
	password string
	vetID    int
	confirm  bool
)

// ---------------------------------------------------------------------------
// Scenario definition
// ---------------------------------------------------------------------------

type scenario struct {
	Name string
	Fn   func(t *T)
}

// T is a lightweight test context for a single scenario. Each scenario gets
// its own cookie jar, so its own session.
type T struct {
	passed int
	failed int
	name   string
	client *http.Client
}

func newT(name string) *T {
	jar, _ := cookiejar.New(nil)
	return &T{name: name, client: &http.Client{Jar: jar, Timeout: 30 * time.Second}}
}

func (t *T) check(name string, ok bool) {
	if ok {
		fmt.Printf("    PASS: %s\n", name)
		t.passed++
	} else {
		fmt.Printf("    FAIL: %s\n", name)
		t.failed++
	}
}

func (t *T) fatalf(format string, args ...interface{}) {
	fmt.Printf("    FATAL: "+format+"\n", args...)
	t.failed++
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r response) json() map[string]interface{} {
	var out map[string]interface{}
	_ = json.Unmarshal(r.body, &out)
	return out
}

func (t *T) call(method, path string, payload interface{}) (response, error) {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return response{}, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return response{status: resp.StatusCode, header: resp.Header, body: raw}, nil
}

// wizardStep posts one wizard action and reports the step it left us on.
func (t *T) wizardStep(path string, payload interface{}) (float64, bool) {
	resp, err := t.call(http.MethodPost, path, payload)
	if err != nil {
		t.fatalf("%s: %v", path, err)
		return 0, false
	}
	if resp.status != http.StatusOK && resp.status != http.StatusCreated {
		t.fatalf("%s returned %d: %s", path, resp.status, string(resp.body))
		return 0, false
	}
	b, _ := resp.json()["booking"].(map[string]interface{})
	step, _ := b["step"].(float64)
	return step, true
}

// firstBookableDay finds a selectable day with at least one slot, looking
// at the current and next month.
func (t *T) firstBookableDay() (string, int, bool) {
	now := time.Now()
	for i := 0; i < 2; i++ {
		m := now.AddDate(0, i, 0)
		resp, err := t.call(http.MethodGet, fmt.Sprintf("/api/booking/calendar?year=%d&month=%d", m.Year(), int(m.Month())), nil)
		if err != nil || resp.status != http.StatusOK {
			continue
		}
		cells, _ := resp.json()["cells"].([]interface{})
		for _, c := range cells {
			cell, _ := c.(map[string]interface{})
			if ok, _ := cell["selectable"].(bool); !ok {
				continue
			}
			date, _ := cell["date"].(string)
			if _, ok := t.wizardStep("/api/booking/date", map[string]string{"date": date}); !ok {
				return "", 0, false
			}
			slots, err := t.call(http.MethodGet, "/api/booking/slots", nil)
			if err != nil || slots.status != http.StatusOK {
				continue
			}
			list, _ := slots.json()["slots"].([]interface{})
			if len(list) == 0 {
				continue
			}
			first, _ := list[0].(map[string]interface{})
			id, _ := first["id"].(float64)
			return date, int(id), true
		}
	}
	return "", 0, false
}

// walkWizard runs the wizard up to identification.
func (t *T) walkWizard() bool {
	if _, ok := t.wizardStep("/api/booking", nil); !ok {
		return false
	}
	t.wizardStep("/api/booking/service", map[string]string{"area": "CONSULTA_VETERINARIA", "service": "CONSULTA_VETERINARIA"})
	t.wizardStep("/api/booking/next", nil)
	t.wizardStep("/api/booking/veterinarian", map[string]int{"veterinarian_id": vetID})
	step, _ := t.wizardStep("/api/booking/next", nil)
	t.check("reached date and time selection", step == 3)

	date, slot, ok := t.firstBookableDay()
	if !ok {
		t.fatalf("no bookable day in the next two months for veterinarian %d", vetID)
		return false
	}
	fmt.Printf("    using %s slot %d\n", date, slot)
	step, _ = t.wizardStep("/api/booking/slot", map[string]int{"slot_id": slot})
	t.check("slot selection advances to identification", step == 4)
	return step == 4
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func scenarioHealth(t *T) {
	resp, err := t.call(http.MethodGet, "/health", nil)
	if err != nil {
		t.fatalf("%v", err)
		return
	}
	t.check("health returns 200", resp.status == http.StatusOK)
	t.check("health reports ok", resp.json()["status"] == "ok")

	resp, err = t.call(http.MethodGet, "/metrics", nil)
	if err == nil && resp.status == http.StatusOK {
		t.check("metrics expose http counter", strings.Contains(string(resp.body), "pochita_http_requests_total"))
	}
}

func scenarioHolidays(t *T) {
	year := time.Now().Year()
	resp, err := t.call(http.MethodGet, fmt.Sprintf("/api/holidays/%d", year), nil)
	if err != nil {
		t.fatalf("%v", err)
		return
	}
	list, _ := resp.json()["holidays"].([]interface{})
	t.check("holiday list returns 200", resp.status == http.StatusOK)
	t.check("at least 15 national holidays", len(list) >= 15)
	t.check("Fiestas Patrias included", strings.Contains(string(resp.body), "Independencia"))

	resp, err = t.call(http.MethodGet, fmt.Sprintf("/api/holidays/%d.ics", year), nil)
	if err != nil {
		t.fatalf("%v", err)
		return
	}
	t.check("ics content type", strings.HasPrefix(resp.header.Get("Content-Type"), "text/calendar"))
	t.check("ics has events", strings.Count(string(resp.body), "BEGIN:VEVENT") == len(list))
}

func scenarioPublicCalendar(t *T) {
	now := time.Now()
	resp, err := t.call(http.MethodGet, fmt.Sprintf("/api/calendar/month?year=%d&month=%d", now.Year(), int(now.Month())), nil)
	if err != nil {
		t.fatalf("%v", err)
		return
	}
	t.check("anonymous calendar without vet is rejected", resp.status == http.StatusBadRequest)

	resp, err = t.call(http.MethodGet, fmt.Sprintf("/api/calendar/month?year=%d&month=%d&vet=%d", now.Year(), int(now.Month()), vetID), nil)
	if err != nil {
		t.fatalf("%v", err)
		return
	}
	cells, _ := resp.json()["cells"].([]interface{})
	t.check("public calendar returns 200", resp.status == http.StatusOK)
	t.check("grid is whole weeks", len(cells) > 0 && len(cells)%7 == 0)
}

func scenarioAnonymousWizard(t *T) {
	if !t.walkWizard() {
		return
	}
	resp, err := t.call(http.MethodPost, "/api/booking/confirm", nil)
	if err != nil {
		t.fatalf("%v", err)
		return
	}
	t.check("anonymous confirm asks for login", resp.status == http.StatusUnauthorized)
	t.check("redirect points to login", resp.json()["redirect"] != nil)

	resp, _ = t.call(http.MethodDelete, "/api/booking", nil)
	t.check("wizard discarded", resp.status == http.StatusNoContent)
}

func scenarioLoginAndBook(t *T) {
	if username == "" || password == "" {
		fmt.Println("    SKIP: E2E_USERNAME / E2E_PASSWORD not set")
		return
	}
	resp, err := t.call(http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": password})
	if err != nil {
		t.fatalf("%v", err)
		return
	}
	t.check("login succeeds", resp.status == http.StatusOK)

	resp, _ = t.call(http.MethodGet, "/api/dashboard", nil)
	t.check("dashboard loads", resp.status == http.StatusOK)

	if confirm && t.walkWizard() {
		resp, _ = t.call(http.MethodPost, "/api/booking/confirm", nil)
		t.check("booking confirmed or conflict offered", resp.status == http.StatusCreated || resp.status == http.StatusConflict)
	}

	resp, _ = t.call(http.MethodPost, "/api/auth/logout", nil)
	t.check("logout succeeds", resp.status == http.StatusOK)
	resp, _ = t.call(http.MethodGet, "/api/dashboard", nil)
	t.check("dashboard locked after logout", resp.status == http.StatusUnauthorized)
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	apiBase = strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if apiBase == "" {
		fmt.Fprintln(os.Stderr, "ERROR: API_BASE_URL required")
		os.Exit(1)
	}
	username = os.Getenv("E2E_USERNAME")
	password = os.Getenv("E2E_PASSWORD")
	confirm = os.Getenv("E2E_CONFIRM") == "1"
	vetID, _ = strconv.Atoi(os.Getenv("E2E_VET_ID"))
	if vetID == 0 {
		vetID = discoverVet()
	}

	scenarios := []scenario{
		{"health", scenarioHealth},
		{"holidays", scenarioHolidays},
		{"public-calendar", scenarioPublicCalendar},
		{"anonymous-wizard", scenarioAnonymousWizard},
		{"login-and-book", scenarioLoginAndBook},
	}

	// Filter by name if argument provided
	filter := ""
	if len(os.Args) > 1 {
		filter = os.Args[1]
	}

	totalPassed := 0
	totalFailed := 0
	scenarioResults := make([]string, 0)

	for _, s := range scenarios {
		if filter != "" && s.Name != filter {
			continue
		}

		fmt.Printf("\n========================================\n")
		fmt.Printf("SCENARIO: %s\n", s.Name)
		fmt.Printf("========================================\n")

		t := newT(s.Name)
		s.Fn(t)

		totalPassed += t.passed
		totalFailed += t.failed

		status := "✅"
		if t.failed > 0 {
			status = "❌"
		}
		scenarioResults = append(scenarioResults, fmt.Sprintf("  %s %s (%d passed, %d failed)", status, s.Name, t.passed, t.failed))
	}

	fmt.Printf("\n========================================\n")
	fmt.Println("SUMMARY")
	fmt.Printf("========================================\n")
	for _, r := range scenarioResults {
		fmt.Println(r)
	}
	fmt.Printf("\nTotal: %d passed, %d failed\n", totalPassed, totalFailed)

	if totalFailed > 0 {
		fmt.Println("\n❌ SOME TESTS FAILED")
		os.Exit(1)
	}
	fmt.Println("\n✅ ALL TESTS PASSED")
}

func discoverVet() int {
	resp, err := http.Get(apiBase + "/api/veterinarians")
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	var vets []struct {
		ID int `json:"id"`
	}
	if json.NewDecoder(resp.Body).Decode(&vets) != nil || len(vets) == 0 {
		return 0
	}
	return vets[0].ID
}
