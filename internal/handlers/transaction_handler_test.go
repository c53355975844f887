package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "khata/internal/errors"
	"khata/internal/models"
	"khata/internal/pagination"
	"khata/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createWithSettlementsFn func(personID string, amount int64, txType models.TransactionType, note string, date time.Time, dueDate *time.Time, tagIDs []string, allocations []services.Allocation) (*models.Transaction, error)
	getTransactionByIDFn    func(txnID string) (*models.Transaction, error)
	getPersonTransactionsFn func(personID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	updateTransactionFn     func(txnID string, amount int64, txType models.TransactionType, note string, date time.Time, dueDate *time.Time) (*models.Transaction, error)
	deleteTransactionFn     func(txnID string) error
}

func (m *mockTransactionService) CreateTransaction(personID string, amount int64, txType models.TransactionType, note string, date time.Time, dueDate *time.Time) (*models.Transaction, error) {
	return m.CreateTransactionWithSettlements(personID, amount, txType, note, date, dueDate, nil, nil)
}

func (m *mockTransactionService) CreateTransactionWithSettlements(personID string, amount int64, txType models.TransactionType, note string, date time.Time, dueDate *time.Time, tagIDs []string, allocations []services.Allocation) (*models.Transaction, error) {
	if m.createWithSettlementsFn != nil {
		return m.createWithSettlementsFn(personID, amount, txType, note, date, dueDate, tagIDs, allocations)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransactionByID(txnID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(txnID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetPersonTransactions(personID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.getPersonTransactionsFn != nil {
		return m.getPersonTransactionsFn(personID, page)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 50, 0)
	return &resp, nil
}

func (m *mockTransactionService) UpdateTransaction(txnID string, amount int64, txType models.TransactionType, note string, date time.Time, dueDate *time.Time) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(txnID, amount, txType, note, date, dueDate)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(txnID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(txnID)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	r.POST("/persons/:id/transactions", handler.CreateTransaction)
	r.GET("/persons/:id/transactions", handler.GetPersonTransactions)
	r.GET("/transactions/:id", handler.GetTransaction)
	r.PUT("/transactions/:id", handler.UpdateTransaction)
	r.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

// --- tests ---

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockTransactionService{
			createWithSettlementsFn: func(personID string, amount int64, txType models.TransactionType, note string, _ time.Time, _ *time.Time, _ []string, _ []services.Allocation) (*models.Transaction, error) {
				return &models.Transaction{
					Base:     models.Base{ID: "t1"},
					PersonID: personID,
					Amount:   amount,
					Type:     txType,
					Note:     note,
				}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "POST", "/persons/p1/transactions",
			`{"amount":5000,"type":"GAVE","note":"lunch"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		txn := result["transaction"].(map[string]interface{})
		if txn["amount"].(float64) != 5000 {
			t.Errorf("expected amount 5000, got %v", txn["amount"])
		}
		if txn["type"] != "GAVE" {
			t.Errorf("expected type GAVE, got %v", txn["type"])
		}
	})

	t.Run("passes allocations through", func(t *testing.T) {
		var got []services.Allocation
		svc := &mockTransactionService{
			createWithSettlementsFn: func(_ string, _ int64, _ models.TransactionType, _ string, _ time.Time, _ *time.Time, _ []string, allocations []services.Allocation) (*models.Transaction, error) {
				got = allocations
				return &models.Transaction{}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "POST", "/persons/p1/transactions",
			`{"amount":500,"type":"GOT","allocations":[{"target_txn_id":"t9","amount":500}]}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(got) != 1 || got[0].TargetTxnID != "t9" || got[0].Amount != 500 {
			t.Errorf("expected allocation forwarded, got %+v", got)
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, "POST", "/persons/p1/transactions", `{"amount":500,"type":"LENT"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "VALIDATION_ERROR")
	})

	t.Run("returns 400 on malformed date", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, "POST", "/persons/p1/transactions",
			`{"amount":500,"type":"GAVE","date":"28-08-2026"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on allocation conflict", func(t *testing.T) {
		svc := &mockTransactionService{
			createWithSettlementsFn: func(string, int64, models.TransactionType, string, time.Time, *time.Time, []string, []services.Allocation) (*models.Transaction, error) {
				return nil, apperrors.ErrAllocation
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "POST", "/persons/p1/transactions",
			`{"amount":500,"type":"GOT","allocations":[{"target_txn_id":"t9","amount":500}]}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ALLOCATION_ERROR")
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockTransactionService{
			updateTransactionFn: func(txnID string, amount int64, txType models.TransactionType, note string, _ time.Time, _ *time.Time) (*models.Transaction, error) {
				return &models.Transaction{Base: models.Base{ID: txnID}, Amount: amount, Type: txType, Note: note}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "PUT", "/transactions/t1",
			`{"amount":750,"type":"GAVE","date":"2026-08-01"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		txn := result["transaction"].(map[string]interface{})
		if txn["amount"].(float64) != 750 {
			t.Errorf("expected amount 750, got %v", txn["amount"])
		}
	})

	t.Run("returns 400 on missing date", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, "PUT", "/transactions/t1", `{"amount":750,"type":"GAVE"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, "DELETE", "/transactions/t1", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("returns 404 on unknown transaction", func(t *testing.T) {
		svc := &mockTransactionService{
			deleteTransactionFn: func(string) error { return apperrors.ErrTransactionNotFound },
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "DELETE", "/transactions/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
