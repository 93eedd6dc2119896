package wallet

import "time"

type TopUpRequest struct {
	Amount string `json:"amount" binding:"required"`
	// Client-generated idempotency token, reused on retry of the same top-up.
	Reference string `json:"reference" binding:"required,max=64"`
}

type BalanceResponse struct {
	Balance string `json:"balance"`
}

type TopUpResponse struct {
	TransactionID uint   `json:"transaction_id"`
	Amount        string `json:"amount"`
	NewBalance    string `json:"new_balance"`
}

type TransactionListItem struct {
	ID            uint      `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	BalanceAfter  string    `json:"balance_after"`
	Description   string    `json:"description"`
	Reference     string    `json:"reference"`
}

type TransactionListResponse struct {
	Transactions []TransactionListItem `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}
