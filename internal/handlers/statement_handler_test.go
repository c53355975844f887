package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "khata/internal/errors"
	"khata/internal/models"
	"khata/internal/services"
)

// --- mock statement service ---

type mockStatementService struct {
	personStatementFn  func(personID string) ([]services.StatementEntry, int64, error)
	monthlyStatementFn func(personID string) ([]services.MonthGroup, int64, error)
	smartStatementFn   func(personID string) (*services.SmartStatement, error)
}

func (m *mockStatementService) PersonStatement(personID string) ([]services.StatementEntry, int64, error) {
	if m.personStatementFn != nil {
		return m.personStatementFn(personID)
	}
	return []services.StatementEntry{}, 0, nil
}

func (m *mockStatementService) MonthlyStatement(personID string) ([]services.MonthGroup, int64, error) {
	if m.monthlyStatementFn != nil {
		return m.monthlyStatementFn(personID)
	}
	return []services.MonthGroup{}, 0, nil
}

func (m *mockStatementService) SmartStatement(personID string) (*services.SmartStatement, error) {
	if m.smartStatementFn != nil {
		return m.smartStatementFn(personID)
	}
	return &services.SmartStatement{Mode: services.SmartStatementModeSettled}, nil
}

func (m *mockStatementService) TotalBalance(string) (int64, error) { return 0, nil }

var _ services.StatementServicer = (*mockStatementService)(nil)

func setupStatementRouter(handler *StatementHandler) *gin.Engine {
	r := gin.New()
	r.GET("/persons/:id/statement", handler.GetStatement)
	r.GET("/persons/:id/statement/smart", handler.GetSmartStatement)
	return r
}

// --- tests ---

func TestStatementHandler_GetStatement(t *testing.T) {
	t.Run("returns months and total", func(t *testing.T) {
		svc := &mockStatementService{
			monthlyStatementFn: func(string) ([]services.MonthGroup, int64, error) {
				return []services.MonthGroup{
					{Label: "August 2026", Net: 250},
					{Label: "July 2026", Net: 700},
				}, 950, nil
			},
		}
		r := setupStatementRouter(NewStatementHandler(svc))

		rec := doRequest(r, "GET", "/persons/p1/statement", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["total_balance"].(float64) != 950 {
			t.Errorf("expected total 950, got %v", result["total_balance"])
		}
		months := result["months"].([]interface{})
		if len(months) != 2 {
			t.Fatalf("expected 2 months, got %d", len(months))
		}
		first := months[0].(map[string]interface{})
		if first["label"] != "August 2026" {
			t.Errorf("expected newest month first, got %v", first["label"])
		}
	})

	t.Run("returns 404 on unknown person", func(t *testing.T) {
		svc := &mockStatementService{
			monthlyStatementFn: func(string) ([]services.MonthGroup, int64, error) {
				return nil, 0, apperrors.ErrPersonNotFound
			},
		}
		r := setupStatementRouter(NewStatementHandler(svc))

		rec := doRequest(r, "GET", "/persons/missing/statement", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestStatementHandler_GetSmartStatement(t *testing.T) {
	svc := &mockStatementService{
		smartStatementFn: func(string) (*services.SmartStatement, error) {
			return &services.SmartStatement{
				Mode: services.SmartStatementModeUnsettled,
				Entries: []services.StatementEntry{
					{
						Transaction: models.Transaction{Base: models.Base{ID: "t1"}, Amount: 800, Type: models.TransactionTypeGave},
						Status:      models.SettlementStatusOpen,
					},
				},
				TotalBalance: 800,
			}, nil
		},
	}
	r := setupStatementRouter(NewStatementHandler(svc))

	rec := doRequest(r, "GET", "/persons/p1/statement/smart", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	if result["mode"] != "UNSETTLED" {
		t.Errorf("expected UNSETTLED mode, got %v", result["mode"])
	}
	entries := result["entries"].([]interface{})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}
