package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestGoalFlow_FundToAchievement(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "goals@test.com", "password123")

	rec := app.request("POST", "/api/v1/jars", `{"name":"Laptop Jar"}`, token)
	jarID := parseJSON(t, rec)["jar"].(map[string]interface{})["id"].(float64)

	rec = app.request("POST", "/api/v1/goals",
		fmt.Sprintf(`{"title":"New Laptop","target_amount":30000,"target_date":"2027-06-01","jar_id":%.0f}`, jarID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	goal := parseJSON(t, rec)["goal"].(map[string]interface{})
	goalID := goal["id"].(float64)
	if goal["status"] != "active" {
		t.Errorf("expected status active, got %v", goal["status"])
	}

	// Funding a goal deposits into its jar and advances progress
	rec = app.request("POST", fmt.Sprintf("/api/v1/goals/%.0f/fund", goalID),
		`{"amount":20000,"memo":"bonus"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["goal"].(map[string]interface{})["current_amount"].(float64) != 20000 {
		t.Errorf("expected current_amount 20000, got %v", result["goal"])
	}
	if result["to_jar"].(map[string]interface{})["balance"].(float64) != 20000 {
		t.Errorf("expected jar balance 20000, got %v", result["to_jar"])
	}

	// Crossing the target flips the goal to achieved
	rec = app.request("POST", fmt.Sprintf("/api/v1/goals/%.0f/fund", goalID),
		`{"amount":10000}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	funded := parseJSON(t, rec)["goal"].(map[string]interface{})
	if funded["status"] != "achieved" {
		t.Errorf("expected status achieved, got %v", funded["status"])
	}
	if funded["current_amount"].(float64) != 30000 {
		t.Errorf("expected current_amount 30000, got %.0f", funded["current_amount"].(float64))
	}
}

func TestGoalFlow_AutoAllocation(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "alloc@test.com", "password123")

	rec := app.request("POST", "/api/v1/jars", `{"name":"Savings"}`, token)
	jarID := parseJSON(t, rec)["jar"].(map[string]interface{})["id"].(float64)

	rec = app.request("POST", "/api/v1/goals",
		fmt.Sprintf(`{"title":"New Laptop","target_amount":30000,"target_date":"2027-06-01","jar_id":%.0f,"auto_allocate":true,"auto_allocate_type":"percent","auto_allocate_value":20}`, jarID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	goalID := parseJSON(t, rec)["goal"].(map[string]interface{})["id"].(float64)

	// Adding income triggers the allocator: 20% of 10000 lands in the jar
	rec = app.request("POST", "/api/v1/income",
		`{"amount":10000,"source":"Salary","category":"Work"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/goals/%.0f", goalID), "", token)
	goal := parseJSON(t, rec)["goal"].(map[string]interface{})
	if goal["current_amount"].(float64) != 2000 {
		t.Errorf("expected current_amount 2000 after allocation, got %.0f", goal["current_amount"].(float64))
	}
	if goal["status"] != "active" {
		t.Errorf("expected status active, got %v", goal["status"])
	}

	// Manual allocation runs the same distribution
	rec = app.request("POST", "/api/v1/goals/allocate", `{"amount":5000,"memo":"extra"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	allocations := parseJSON(t, rec)["allocations"].([]interface{})
	if len(allocations) != 1 {
		t.Fatalf("expected 1 allocation, got %d", len(allocations))
	}
	alloc := allocations[0].(map[string]interface{})
	if alloc["amount"].(float64) != 1000 {
		t.Errorf("expected allocation amount 1000, got %.0f", alloc["amount"].(float64))
	}
}

func TestGoalFlow_DuplicateTitleRejected(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "dupgoal@test.com", "password123")

	rec := app.request("POST", "/api/v1/jars", `{"name":"Jar"}`, token)
	jarID := parseJSON(t, rec)["jar"].(map[string]interface{})["id"].(float64)

	body := fmt.Sprintf(`{"title":"Same Title","target_amount":1000,"target_date":"2027-01-01","jar_id":%.0f}`, jarID)
	rec = app.request("POST", "/api/v1/goals", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("POST", "/api/v1/goals", body, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "DUPLICATE_GOAL_TITLE" {
		t.Errorf("expected DUPLICATE_GOAL_TITLE, got %v", errObj["code"])
	}
}
