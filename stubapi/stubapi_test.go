package stubapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glimpsehq/glimpse-go/model"
)

func TestWire(t *testing.T) {
	start := model.NewTimestamp(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	handler := Wire("secret", []model.Survey{{ID: "1", Name: "NPS", StartDate: start}})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/surveys/?token=secret")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Surveys []model.Survey `json:"surveys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Surveys) != 1 || body.Surveys[0].ID != "1" {
		t.Errorf("surveys = %v, want [1]", body.Surveys)
	}
}

func TestWireRejectsBadToken(t *testing.T) {
	srv := httptest.NewServer(Wire("secret", nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/surveys/?token=wrong")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}
