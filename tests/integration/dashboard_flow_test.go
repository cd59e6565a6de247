package integration

import (
	"net/http"
	"testing"
)

func TestDashboard_Summary(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "dashboard@test.com", "password123")

	rec := app.request("POST", "/api/v1/income", `{"amount":10000,"source":"Salary"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", "/api/v1/expense", `{"amount":4000,"source":"Groceries"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/dashboard", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	dashboard := parseJSON(t, rec)["dashboard"].(map[string]interface{})
	if dashboard["total_income"].(float64) != 10000 {
		t.Errorf("expected total_income 10000, got %v", dashboard["total_income"])
	}
	if dashboard["total_expense"].(float64) != 4000 {
		t.Errorf("expected total_expense 4000, got %v", dashboard["total_expense"])
	}
	if dashboard["total_balance"].(float64) != 6000 {
		t.Errorf("expected total_balance 6000, got %v", dashboard["total_balance"])
	}
	// Records dated today land inside both rolling windows.
	if dashboard["last_60_days_income"].(float64) != 10000 {
		t.Errorf("expected last_60_days_income 10000, got %v", dashboard["last_60_days_income"])
	}
	if dashboard["last_30_days_expense"].(float64) != 4000 {
		t.Errorf("expected last_30_days_expense 4000, got %v", dashboard["last_30_days_expense"])
	}

	// Another user's dashboard stays empty.
	otherToken, _ := app.registerUser(t, "dashboard2@test.com", "password123")
	rec = app.request("GET", "/api/v1/dashboard", "", otherToken)
	dashboard = parseJSON(t, rec)["dashboard"].(map[string]interface{})
	if dashboard["total_income"].(float64) != 0 {
		t.Errorf("expected empty dashboard, got %v", dashboard)
	}
}
