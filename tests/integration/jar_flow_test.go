package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestJarFlow_FundAndWithdraw(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "jars@test.com", "password123")

	// Create the jar
	rec := app.request("POST", "/api/v1/jars", `{"name":"Travel Fund","color":"#0ea5e9"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	jar := parseJSON(t, rec)["jar"].(map[string]interface{})
	jarID := jar["id"].(float64)
	if jar["balance"].(float64) != 0 {
		t.Errorf("expected new jar balance 0, got %.0f", jar["balance"].(float64))
	}

	// Fund it with 5000 satang of free cash
	rec = app.request("POST", fmt.Sprintf("/api/v1/jars/%.0f/fund", jarID),
		`{"amount":5000,"memo":"trip savings"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	toJar := result["to_jar"].(map[string]interface{})
	if toJar["balance"].(float64) != 5000 {
		t.Errorf("expected balance 5000 after fund, got %.0f", toJar["balance"].(float64))
	}

	// Overdraw attempt leaves the balance untouched
	rec = app.request("POST", fmt.Sprintf("/api/v1/jars/%.0f/withdraw", jarID),
		`{"amount":6000}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "INSUFFICIENT_JAR_BALANCE" {
		t.Errorf("expected INSUFFICIENT_JAR_BALANCE, got %v", errObj["code"])
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/jars/%.0f", jarID), "", token)
	jar = parseJSON(t, rec)["jar"].(map[string]interface{})
	if jar["balance"].(float64) != 5000 {
		t.Errorf("expected balance 5000 after rejected withdrawal, got %.0f", jar["balance"].(float64))
	}

	// A partial withdrawal works
	rec = app.request("POST", fmt.Sprintf("/api/v1/jars/%.0f/withdraw", jarID),
		`{"amount":2000}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	fromJar := parseJSON(t, rec)["from_jar"].(map[string]interface{})
	if fromJar["balance"].(float64) != 3000 {
		t.Errorf("expected balance 3000 after withdrawal, got %.0f", fromJar["balance"].(float64))
	}
}

func TestJarFlow_TransferBetweenJars(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "jarxfer@test.com", "password123")

	rec := app.request("POST", "/api/v1/jars", `{"name":"Emergency"}`, token)
	emergency := parseJSON(t, rec)["jar"].(map[string]interface{})
	emergencyID := emergency["id"].(float64)

	rec = app.request("POST", "/api/v1/jars", `{"name":"Vacation"}`, token)
	vacation := parseJSON(t, rec)["jar"].(map[string]interface{})
	vacationID := vacation["id"].(float64)

	rec = app.request("POST", fmt.Sprintf("/api/v1/jars/%.0f/fund", emergencyID),
		`{"amount":10000}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("fund failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("POST", "/api/v1/jars/transfer",
		fmt.Sprintf(`{"from_jar_id":%.0f,"to_jar_id":%.0f,"amount":4000,"memo":"rebalance"}`,
			emergencyID, vacationID), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["from_jar"].(map[string]interface{})["balance"].(float64) != 6000 {
		t.Errorf("expected source balance 6000, got %v", result["from_jar"])
	}
	if result["to_jar"].(map[string]interface{})["balance"].(float64) != 4000 {
		t.Errorf("expected destination balance 4000, got %v", result["to_jar"])
	}

	// History records all three movements, newest first
	rec = app.request("GET", "/api/v1/jars/transfers", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	page := parseJSON(t, rec)
	if page["total_items"].(float64) != 2 {
		t.Errorf("expected 2 transfers, got %.0f", page["total_items"].(float64))
	}
	data := page["data"].([]interface{})
	newest := data[0].(map[string]interface{})
	if newest["amount"].(float64) != 4000 {
		t.Errorf("expected newest transfer amount 4000, got %.0f", newest["amount"].(float64))
	}
}

func TestJarFlow_SameJarTransferRejected(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "samejar@test.com", "password123")

	rec := app.request("POST", "/api/v1/jars", `{"name":"Only Jar"}`, token)
	jarID := parseJSON(t, rec)["jar"].(map[string]interface{})["id"].(float64)

	rec = app.request("POST", fmt.Sprintf("/api/v1/jars/%.0f/fund", jarID), `{"amount":5000}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("fund failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("POST", "/api/v1/jars/transfer",
		fmt.Sprintf(`{"from_jar_id":%.0f,"to_jar_id":%.0f,"amount":3000}`, jarID, jarID), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "SAME_JAR_TRANSFER" {
		t.Errorf("expected SAME_JAR_TRANSFER, got %v", errObj["code"])
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/jars/%.0f", jarID), "", token)
	jar := parseJSON(t, rec)["jar"].(map[string]interface{})
	if jar["balance"].(float64) != 5000 {
		t.Errorf("expected balance unchanged at 5000, got %.0f", jar["balance"].(float64))
	}
}

func TestJarFlow_DeleteNonEmptyRejected(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "jardel@test.com", "password123")

	rec := app.request("POST", "/api/v1/jars", `{"name":"Keeps Money"}`, token)
	jarID := parseJSON(t, rec)["jar"].(map[string]interface{})["id"].(float64)

	rec = app.request("POST", fmt.Sprintf("/api/v1/jars/%.0f/fund", jarID), `{"amount":100}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("fund failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("DELETE", fmt.Sprintf("/api/v1/jars/%.0f", jarID), "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "JAR_NOT_EMPTY" {
		t.Errorf("expected JAR_NOT_EMPTY, got %v", errObj["code"])
	}

	// Empty it out, then deletion succeeds
	rec = app.request("POST", fmt.Sprintf("/api/v1/jars/%.0f/withdraw", jarID), `{"amount":100}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("withdraw failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/jars/%.0f", jarID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestJarFlow_UserIsolation(t *testing.T) {
	app := setupApp(t)
	tokenA, _ := app.registerUser(t, "owner@test.com", "password123")
	tokenB, _ := app.registerUser(t, "other@test.com", "password123")

	rec := app.request("POST", "/api/v1/jars", `{"name":"Private"}`, tokenA)
	jarID := parseJSON(t, rec)["jar"].(map[string]interface{})["id"].(float64)

	rec = app.request("POST", fmt.Sprintf("/api/v1/jars/%.0f/fund", jarID), `{"amount":500}`, tokenB)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign jar, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "JAR_NOT_FOUND" {
		t.Errorf("expected JAR_NOT_FOUND, got %v", errObj["code"])
	}
}
