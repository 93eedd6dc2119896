package transaction

import "time"

type TransactionListItem struct {
	ID            uint      `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	AccountID     uint      `json:"account_id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	BalanceBefore string    `json:"balance_before"`
	BalanceAfter  string    `json:"balance_after"`
	Description   string    `json:"description"`
	Reference     string    `json:"reference"`
	Operator      string    `json:"operator"`
	Hash          string    `json:"hash"`
}

type TransactionListResponse struct {
	Transactions []TransactionListItem `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}

// ManualTransactionRequest covers staff counter operations: manual top-up
// (credit) and manually imposed fines (debit).
type ManualTransactionRequest struct {
	AccountID   uint   `json:"account_id" binding:"required"`
	Type        string `json:"type" binding:"required,oneof=credit debit"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description" binding:"required,max=255"`
	Reference   string `json:"reference" binding:"omitempty,max=64"`
}

type ManualTransactionResponse struct {
	TransactionID uint   `json:"transaction_id"`
	AccountID     uint   `json:"account_id"`
	Amount        string `json:"amount"`
	NewBalance    string `json:"new_balance"`
}
